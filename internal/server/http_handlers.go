package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"resumerank/internal/ai"
	"resumerank/internal/config"
	rankErrors "resumerank/internal/errors"
)

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	if s.AppConfig.Observability.HealthCheck.Timeout > 0 {
		return s.AppConfig.Observability.HealthCheck.Timeout
	}
	return 10 * time.Second
}

// healthHandler provides a comprehensive health check endpoint including AI model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "resumerank",
		"version": s.Version,
	}

	aiStatus := s.checkAIModelsHealth()
	response["ai_models"] = aiStatus

	response["identity_gate"] = s.checkIdentityGateHealth()

	certStatus := s.checkCertificateHealth()
	if certStatus != nil {
		response["certificates"] = certStatus
	}

	// Determine overall health status
	overallHealthy := true
	for _, modelStatus := range aiStatus {
		if modelInfo, ok := modelStatus.(map[string]any); ok {
			if available, exists := modelInfo["available"]; exists {
				if avail, ok := available.(bool); ok && !avail {
					overallHealthy = false
					break
				}
			}
		}
	}

	if certStatus != nil {
		if healthy, ok := certStatus["healthy"].(bool); ok && !healthy {
			overallHealthy = false
		}
	}

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// checkAIModelsHealth checks the health of all AI models used by different operations
func (s *Server) checkAIModelsHealth() map[string]any {
	timeout := s.getHealthCheckTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	aiStatus := make(map[string]any)

	for name, opConfig := range map[string]config.OperationAIConfig{
		"summarize": s.AppConfig.GetSummarizeConfig(),
		"questions": s.AppConfig.GetQuestionsConfig(),
		"rank":      s.AppConfig.GetRankConfig(),
	} {
		service, err := s.newAIService(&opConfig, name)
		if err != nil {
			aiStatus[name] = map[string]any{
				"available": false,
				"error":     fmt.Sprintf("Failed to create %s service: %v", name, err),
			}
			continue
		}
		aiStatus[name] = service.GetModelInfo(ctx)
	}

	return aiStatus
}

// checkIdentityGateHealth reports whether the identity gate is configured
func (s *Server) checkIdentityGateHealth() map[string]any {
	ready, msg := s.AppConfig.IdentityGateReady()

	status := map[string]any{
		"enabled": s.AppConfig.Auth.Enabled,
		"ready":   ready,
	}
	if msg != "" {
		status["message"] = msg
	}
	if s.Gate != nil && s.Gate.Enabled() {
		status["active_sessions"] = s.Gate.Sessions().Count()
		status["pending_challenges"] = s.Gate.Challenges().Count()
		status["attestation_ready"] = s.Gate.Attestation().Ready()
	}
	return status
}

// checkCertificateHealth checks the health of TLS certificates
func (s *Server) checkCertificateHealth() map[string]any {
	if s.CertManager == nil {
		return nil
	}

	certStatus := make(map[string]any)

	timeToExpiry, err := s.CertManager.CheckExpiry()
	if err != nil {
		certStatus["healthy"] = false
		certStatus["error"] = fmt.Sprintf("Failed to check certificate expiry: %v", err)
		return certStatus
	}

	// Certificates expiring within 24 hours count as unhealthy
	criticalThreshold := 24 * time.Hour
	warningThreshold := 7 * 24 * time.Hour

	certStatus["time_to_expiry_hours"] = int(timeToExpiry.Hours())
	certStatus["time_to_expiry"] = timeToExpiry.String()

	switch {
	case timeToExpiry <= 0:
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
		certStatus["message"] = "Certificate has expired"
	case timeToExpiry <= criticalThreshold:
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
		certStatus["message"] = "Certificate expires within 24 hours"
	case timeToExpiry <= warningThreshold:
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
		certStatus["message"] = "Certificate expires within 7 days"
	default:
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
		certStatus["message"] = "Certificate is valid"
	}

	certStatus["auto_reload"] = map[string]any{
		"enabled": s.TLSConfig.Reload.Enabled,
		"running": s.CertManager.WatcherRunning(),
	}

	if metrics := s.CertManager.GetMetrics(); metrics != nil {
		certStatus["metrics"] = map[string]any{
			"reload_count":         metrics.ReloadCount,
			"reload_success_count": metrics.ReloadSuccessCount,
			"reload_failure_count": metrics.ReloadFailureCount,
			"last_reload_time":     metrics.LastReloadTime,
			"last_reload_success":  metrics.LastReloadSuccess,
			"last_reload_error":    metrics.LastReloadError,
		}
	}

	return certStatus
}

// newAIService builds an AI service for one operation with the configured
// short job description threshold.
func (s *Server) newAIService(opConfig *config.OperationAIConfig, operation string) (*ai.Service, error) {
	return ai.NewService(opConfig, operation, s.AppConfig.App.MinJobDescriptionChars, s.Logger)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "resumerank",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_session":       s.RateLimit.BySession,
		}
	}

	if s.Gate != nil && s.Gate.Enabled() {
		response["sessions"] = map[string]any{
			"active": s.Gate.Sessions().Count(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// writeAppError maps a typed application error onto an HTTP status and body.
// Unknown errors default to 500 without leaking internals.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *rankErrors.AppError
	if !errors.As(err, &appErr) {
		writeErrorResponse(w, "Internal error", err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case rankErrors.ErrCodeInvalidCredential,
		rankErrors.ErrCodeSessionInvalid,
		rankErrors.ErrCodeCodeInvalid,
		rankErrors.ErrCodeCodeExpired:
		status = http.StatusUnauthorized
	case rankErrors.ErrCodeAttestationFailed,
		rankErrors.ErrCodeMissingFactor:
		status = http.StatusForbidden
	case rankErrors.ErrCodeEmailAlreadyInUse:
		status = http.StatusConflict
	case rankErrors.ErrCodeInvalidConfig:
		status = http.StatusServiceUnavailable
	default:
		switch appErr.Type {
		case rankErrors.ErrorTypeValidation:
			status = http.StatusBadRequest
		case rankErrors.ErrorTypeAuth:
			status = http.StatusUnauthorized
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Message: appErr.Message,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
