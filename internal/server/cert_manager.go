package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"resumerank/internal/config"
	"resumerank/internal/errors"
	"resumerank/internal/observability"

	"github.com/fsnotify/fsnotify"
)

// CertMetrics tracks certificate reload activity
type CertMetrics struct {
	ReloadCount        int64
	ReloadSuccessCount int64
	ReloadFailureCount int64
	LastReloadTime     time.Time
	LastReloadSuccess  bool
	LastReloadError    string
}

// CertManager holds the current certificate pair and swaps it in place when
// the files on disk change. GetServerCertificate is handed to tls.Config so
// new connections pick up the fresh pair without a restart.
type CertManager struct {
	mu sync.RWMutex

	tlsConfig *config.TLSConfig

	certificate *tls.Certificate
	metrics     CertMetrics

	// File watching
	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer
	stopChan      chan struct{}
	reloadChan    chan struct{}
	running       bool

	reloadCallbacks []func(success bool, err error)

	obs    *observability.ObservabilityManager
	logger *errors.Logger
}

// NewCertManager creates a certificate manager for the given TLS configuration
func NewCertManager(tlsConfig *config.TLSConfig, obs *observability.ObservabilityManager, logger *errors.Logger) *CertManager {
	debounce := tlsConfig.Reload.DebounceDelay
	if debounce == 0 {
		debounce = time.Second
	}

	return &CertManager{
		tlsConfig:     tlsConfig,
		debounceDelay: debounce,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1), // Buffered to prevent blocking
		obs:           obs,
		logger:        logger,
	}
}

// Start loads the initial certificate and begins watching the files when
// reload is enabled.
func (cm *CertManager) Start() error {
	if err := cm.Reload(); err != nil {
		return fmt.Errorf("failed to load initial certificate: %w", err)
	}

	if !cm.tlsConfig.Reload.Enabled {
		return nil
	}

	return cm.startWatcher()
}

// Stop shuts down the file watcher
func (cm *CertManager) Stop() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if !cm.running {
		return nil
	}

	close(cm.stopChan)

	if cm.debounceTimer != nil {
		cm.debounceTimer.Stop()
	}

	cm.running = false

	if cm.fsWatcher != nil {
		if err := cm.fsWatcher.Close(); err != nil {
			if cm.logger != nil {
				cm.logger.LogError(err, "Failed to close certificate file watcher")
			}
			return err
		}
	}

	if cm.logger != nil {
		cm.logger.Info("Certificate file watcher stopped")
	}

	return nil
}

// AddReloadCallback registers a callback invoked after every reload attempt
func (cm *CertManager) AddReloadCallback(cb func(success bool, err error)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.reloadCallbacks = append(cm.reloadCallbacks, cb)
}

// GetServerCertificate is the tls.Config callback returning the current pair
func (cm *CertManager) GetServerCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.certificate == nil {
		return nil, fmt.Errorf("no certificate loaded")
	}
	return cm.certificate, nil
}

// Reload loads the certificate pair from disk and swaps it in
func (cm *CertManager) Reload() error {
	cert, err := tls.LoadX509KeyPair(cm.tlsConfig.CertFile, cm.tlsConfig.KeyFile)

	cm.mu.Lock()
	cm.metrics.ReloadCount++
	cm.metrics.LastReloadTime = time.Now()
	if err != nil {
		cm.metrics.ReloadFailureCount++
		cm.metrics.LastReloadSuccess = false
		cm.metrics.LastReloadError = err.Error()
	} else {
		cm.certificate = &cert
		cm.metrics.ReloadSuccessCount++
		cm.metrics.LastReloadSuccess = true
		cm.metrics.LastReloadError = ""
	}
	callbacks := append([]func(bool, error){}, cm.reloadCallbacks...)
	cm.mu.Unlock()

	for _, cb := range callbacks {
		cb(err == nil, err)
	}

	if err != nil {
		return fmt.Errorf("failed to load cert/key pair: %w", err)
	}
	return nil
}

// CheckExpiry returns the time remaining until the leaf certificate expires
func (cm *CertManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	cert := cm.certificate
	cm.mu.RUnlock()

	if cert == nil || len(cert.Certificate) == 0 {
		return 0, fmt.Errorf("no certificate loaded")
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return 0, fmt.Errorf("failed to parse certificate: %w", err)
	}

	remaining := time.Until(leaf.NotAfter)

	if cm.obs != nil {
		// Gauge is recorded opportunistically on each health check
		metrics := cm.obs.GetMetrics()
		if metrics.CertExpiryTime != nil {
			metrics.CertExpiryTime.Record(context.Background(), remaining.Seconds())
		}
	}

	return remaining, nil
}

// GetMetrics returns a copy of the reload metrics
func (cm *CertManager) GetMetrics() *CertMetrics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	metrics := cm.metrics
	return &metrics
}

// WatcherRunning reports whether the file watcher is active
func (cm *CertManager) WatcherRunning() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.running
}

// startWatcher wires up fsnotify on the certificate files and their
// directories. Watching the directory catches atomic writes (rename
// operations) that replace the file.
func (cm *CertManager) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	cm.mu.Lock()
	cm.fsWatcher = watcher
	cm.running = true
	cm.mu.Unlock()

	for _, file := range cm.watchedFiles() {
		if err := watcher.Add(file); err != nil && cm.logger != nil {
			cm.logger.Warn("Failed to watch certificate file", "file", file, "error", err)
		}
		if err := watcher.Add(filepath.Dir(file)); err != nil && cm.logger != nil {
			cm.logger.Warn("Failed to watch certificate directory",
				"directory", filepath.Dir(file), "error", err)
		}
	}

	go cm.watchLoop()

	if cm.logger != nil {
		cm.logger.Info("Certificate file watcher started",
			"files", cm.watchedFiles(),
			"debounce_delay", cm.debounceDelay)
	}

	return nil
}

// watchedFiles returns the certificate files to watch
func (cm *CertManager) watchedFiles() []string {
	files := []string{}
	if cm.tlsConfig.CertFile != "" {
		files = append(files, cm.tlsConfig.CertFile)
	}
	if cm.tlsConfig.KeyFile != "" {
		files = append(files, cm.tlsConfig.KeyFile)
	}
	if cm.tlsConfig.CAFile != "" {
		files = append(files, cm.tlsConfig.CAFile)
	}
	return files
}

// watchLoop is the main event loop for file watching
func (cm *CertManager) watchLoop() {
	for {
		select {
		case event, ok := <-cm.fsWatcher.Events:
			if !ok {
				return
			}
			if cm.shouldProcessEvent(event) {
				cm.scheduleReload()
			}

		case err, ok := <-cm.fsWatcher.Errors:
			if !ok {
				return
			}
			if cm.logger != nil {
				cm.logger.LogError(err, "Certificate file watcher error")
			}

		case <-cm.reloadChan:
			if cm.logger != nil {
				cm.logger.Info("Certificate files changed, triggering reload")
			}
			if err := cm.Reload(); err == nil {
				cm.recordReloadMetric()
			}

		case <-cm.stopChan:
			return
		}
	}
}

// shouldProcessEvent determines if a file system event should trigger a reload
func (cm *CertManager) shouldProcessEvent(event fsnotify.Event) bool {
	watched := false
	for _, file := range cm.watchedFiles() {
		if event.Name == file || filepath.Base(event.Name) == filepath.Base(file) {
			watched = true
			break
		}
	}
	if !watched {
		return false
	}

	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// scheduleReload schedules a debounced reload
func (cm *CertManager) scheduleReload() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.debounceTimer != nil {
		cm.debounceTimer.Stop()
	}

	cm.debounceTimer = time.AfterFunc(cm.debounceDelay, func() {
		select {
		case cm.reloadChan <- struct{}{}:
		default:
			// Reload already scheduled
		}
	})
}

// recordReloadMetric bumps the reload counter if observability is wired
func (cm *CertManager) recordReloadMetric() {
	if cm.obs == nil {
		return
	}
	metrics := cm.obs.GetMetrics()
	if metrics.CertReloadCount != nil {
		metrics.CertReloadCount.Add(context.Background(), 1)
	}
}
