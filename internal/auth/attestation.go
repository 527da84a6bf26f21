package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resumerank/internal/config"
	"resumerank/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// AttestationVerifier checks CAPTCHA-class tokens against a siteverify
// endpoint before any SMS code is dispatched. It is an owned resource passed
// to the gate, never a package-level singleton, and it fails closed: a
// missing or incomplete configuration refuses verification rather than
// waving requests through.
type AttestationVerifier struct {
	cfg        config.AttestationConfig
	ready      bool
	httpClient *http.Client
	logger     *errors.Logger
}

// NewAttestationVerifier creates a verifier from configuration. An
// incomplete configuration still returns a verifier; it reports not-ready
// and rejects all tokens.
func NewAttestationVerifier(cfg config.AttestationConfig, logger *errors.Logger) *AttestationVerifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ready := cfg.Enabled && cfg.Endpoint != "" && cfg.SiteKey != "" && cfg.Secret != ""
	if !ready {
		logger.Warn("Attestation verifier not fully configured, second-factor code dispatch will be refused")
	}

	return &AttestationVerifier{
		cfg:   cfg,
		ready: ready,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// Ready reports whether the verifier has the configuration it needs
func (v *AttestationVerifier) Ready() bool {
	return v != nil && v.ready
}

// SiteKey returns the public site key clients embed in their pages
func (v *AttestationVerifier) SiteKey() string {
	if v == nil {
		return ""
	}
	return v.cfg.SiteKey
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks an attestation token. A not-ready verifier returns a
// configuration error so callers can surface an actionable message instead
// of a generic failure.
func (v *AttestationVerifier) Verify(ctx context.Context, token string) error {
	if !v.Ready() {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"Bot attestation is not configured, cannot send verification codes", nil)
	}

	if strings.TrimSpace(token) == "" {
		return errors.NewAuthError(errors.ErrCodeAttestationFailed,
			"Bot attestation token is required", nil)
	}

	form := url.Values{
		"secret":   {v.cfg.Secret},
		"response": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.Endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeAuthUnknown, "Failed to build attestation request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "Attestation service unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeAuthUnknown, "Failed to read attestation response", err)
	}

	var result siteVerifyResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return errors.NewInternalError(errors.ErrCodeAuthUnknown, "Failed to decode attestation response", err)
	}

	if !result.Success {
		v.logger.Debug("Attestation verification rejected", "error_codes", result.ErrorCodes)
		return errors.NewAuthError(errors.ErrCodeAttestationFailed,
			"Bot attestation check failed, reload and try again", nil)
	}

	return nil
}
