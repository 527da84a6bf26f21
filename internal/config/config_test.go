package config

import (
	"testing"
	"time"
)

func baseConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			Timeout:     60 * time.Second,
			APIKey:      "global-key",
			MaxRetries:  3,
			Temperature: 0.7,
		},
		Server: ServerConfig{
			Port: "8080",
			TLS:  TLSConfig{Mode: "disabled"},
		},
		App: AppConfig{
			LogLevel:               "info",
			DefaultFormat:          "json",
			SupportedFormats:       []string{"json", "text", "markdown"},
			MinJobDescriptionChars: 50,
		},
	}
}

func TestOperationConfigFallsBackToGlobal(t *testing.T) {
	cfg := baseConfig()

	rank := cfg.GetRankConfig()
	if rank.Provider != "gemini" {
		t.Errorf("expected provider fallback, got %q", rank.Provider)
	}
	if rank.Model != "gemini-2.0-flash" {
		t.Errorf("expected model fallback, got %q", rank.Model)
	}
	if rank.APIKey != "global-key" {
		t.Errorf("expected API key fallback, got %q", rank.APIKey)
	}
	if rank.Timeout == nil || *rank.Timeout != 60*time.Second {
		t.Errorf("expected timeout fallback, got %v", rank.Timeout)
	}
	if rank.MaxRetries == nil || *rank.MaxRetries != 3 {
		t.Errorf("expected maxRetries fallback, got %v", rank.MaxRetries)
	}
}

func TestOperationConfigOverridesGlobal(t *testing.T) {
	cfg := baseConfig()
	opTimeout := 90 * time.Second
	cfg.AI.Summarize = OperationAIConfig{
		Model:   "gemini-2.5-pro",
		Timeout: &opTimeout,
	}

	summarize := cfg.GetSummarizeConfig()
	if summarize.Model != "gemini-2.5-pro" {
		t.Errorf("operation model not honored: %q", summarize.Model)
	}
	if *summarize.Timeout != opTimeout {
		t.Errorf("operation timeout not honored: %v", *summarize.Timeout)
	}
	// Unset fields still fall back
	if summarize.APIKey != "global-key" {
		t.Errorf("expected API key fallback, got %q", summarize.APIKey)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := baseConfig()
	cfg.AI.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing API key")
	}
}

func TestValidateRejectsUnsupportedDefaultFormat(t *testing.T) {
	cfg := baseConfig()
	cfg.App.DefaultFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unsupported default format")
	}
}

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name    string
		tls     TLSConfig
		wantErr bool
	}{
		{"disabled", TLSConfig{Mode: "disabled"}, false},
		{"invalid mode", TLSConfig{Mode: "bogus"}, true},
		{"server without cert", TLSConfig{Mode: "server"}, true},
		{"server complete", TLSConfig{Mode: "server", CertFile: "cert.pem", KeyFile: "key.pem", MinVersion: "1.2"}, false},
		{"mutual without ca", TLSConfig{Mode: "mutual", CertFile: "cert.pem", KeyFile: "key.pem"}, true},
		{"mutual complete", TLSConfig{Mode: "mutual", CertFile: "cert.pem", KeyFile: "key.pem", CAFile: "ca.pem"}, false},
		{"bad version", TLSConfig{Mode: "server", CertFile: "cert.pem", KeyFile: "key.pem", MinVersion: "1.0"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.Server.TLS = tt.tls
			err := cfg.ValidateTLSConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTLSConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIdentityGateReady(t *testing.T) {
	cfg := baseConfig()
	cfg.Auth = AuthConfig{
		Enabled: true,
		Identity: IdentityConfig{
			Endpoint: "https://identitytoolkit.googleapis.com",
			APIKey:   "identity-key",
		},
	}
	if ready, msg := cfg.IdentityGateReady(); !ready {
		t.Errorf("expected gate ready, got %q", msg)
	}

	cfg.Auth.Identity.APIKey = ""
	if ready, msg := cfg.IdentityGateReady(); ready || msg == "" {
		t.Error("expected gate not ready with missing API key and a diagnostic message")
	}

	cfg.Auth.Enabled = false
	if ready, _ := cfg.IdentityGateReady(); ready {
		t.Error("expected gate not ready when disabled")
	}
}

func TestAttestationReady(t *testing.T) {
	cfg := baseConfig()
	cfg.Auth.Attestation = AttestationConfig{
		Enabled:  true,
		Endpoint: "https://www.google.com/recaptcha/api/siteverify",
		SiteKey:  "site",
		Secret:   "secret",
	}
	if !cfg.AttestationReady() {
		t.Error("expected attestation ready")
	}

	cfg.Auth.Attestation.Secret = ""
	if cfg.AttestationReady() {
		t.Error("expected attestation not ready without secret")
	}
}
