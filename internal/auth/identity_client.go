package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"resumerank/internal/config"
	"resumerank/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// IdentityClient talks to a Firebase-style Identity Toolkit REST API.
type IdentityClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *errors.Logger
}

var _ IdentityProvider = (*IdentityClient)(nil)

// NewIdentityClient creates a client for the configured identity provider
func NewIdentityClient(cfg config.IdentityConfig, logger *errors.Logger) *IdentityClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &IdentityClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type mfaEnrollment struct {
	MFAEnrollmentID string `json:"mfaEnrollmentId"`
	DisplayName     string `json:"displayName,omitempty"`
	PhoneInfo       string `json:"phoneInfo,omitempty"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`

	// Set instead of the token fields when a second factor is enrolled
	MFAPendingCredential string          `json:"mfaPendingCredential,omitempty"`
	MFAInfo              []mfaEnrollment `json:"mfaInfo,omitempty"`
}

type providerError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithPassword verifies an email/password pair against the provider
func (c *IdentityClient) SignInWithPassword(ctx context.Context, email, password string) (*Credentials, error) {
	var resp signInResponse
	err := c.post(ctx, "/v1/accounts:signInWithPassword", signInRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.MFAPendingCredential != "" {
		return nil, &SecondFactorRequiredError{
			PendingCredential: resp.MFAPendingCredential,
			Hints:             hintsFromEnrollments(resp.MFAInfo),
		}
	}

	return credentialsFromResponse(&resp), nil
}

// SignUp creates a new email/password account
func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (*Credentials, error) {
	var resp signInResponse
	err := c.post(ctx, "/v1/accounts:signUp", signInRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return credentialsFromResponse(&resp), nil
}

// SendPasswordReset dispatches a password reset email
func (c *IdentityClient) SendPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}
	var resp struct{}
	return c.post(ctx, "/v1/accounts:sendOobCode", body, &resp)
}

type mfaStartRequest struct {
	MFAPendingCredential string `json:"mfaPendingCredential"`
	MFAEnrollmentID      string `json:"mfaEnrollmentId"`
}

type mfaStartResponse struct {
	PhoneResponseInfo struct {
		SessionInfo string `json:"sessionInfo"`
	} `json:"phoneResponseInfo"`
}

// StartMFASignIn asks the provider to send an SMS code to the selected factor
func (c *IdentityClient) StartMFASignIn(ctx context.Context, pendingCredential, hintID string) (string, error) {
	var resp mfaStartResponse
	err := c.post(ctx, "/v2/accounts/mfaSignIn:start", mfaStartRequest{
		MFAPendingCredential: pendingCredential,
		MFAEnrollmentID:      hintID,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.PhoneResponseInfo.SessionInfo, nil
}

type mfaFinalizeRequest struct {
	MFAPendingCredential  string `json:"mfaPendingCredential"`
	PhoneVerificationInfo struct {
		SessionInfo string `json:"sessionInfo"`
		Code        string `json:"code"`
	} `json:"phoneVerificationInfo"`
}

type mfaFinalizeResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// FinalizeMFASignIn exchanges the verification ID and code for credentials
func (c *IdentityClient) FinalizeMFASignIn(ctx context.Context, pendingCredential, verificationID, code string) (*Credentials, error) {
	req := mfaFinalizeRequest{MFAPendingCredential: pendingCredential}
	req.PhoneVerificationInfo.SessionInfo = verificationID
	req.PhoneVerificationInfo.Code = code

	var resp mfaFinalizeResponse
	if err := c.post(ctx, "/v2/accounts/mfaSignIn:finalize", req, &resp); err != nil {
		return nil, err
	}

	return &Credentials{
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    time.Hour,
	}, nil
}

// post sends a JSON request to the provider and decodes the response,
// mapping any provider error to a typed auth error
func (c *IdentityClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeAuthUnknown, "Failed to encode identity request", err)
	}

	url := c.endpoint + path + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeAuthUnknown, "Failed to build identity request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "Identity provider unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeAuthUnknown, "Failed to read identity response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.mapProviderError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewInternalError(errors.ErrCodeAuthUnknown, "Failed to decode identity response", err)
	}
	return nil
}

// mapProviderError translates provider error codes into the fixed auth error
// taxonomy. The invalid-credential class deliberately collapses to a generic
// message so callers cannot distinguish a wrong password from an unknown
// account.
func (c *IdentityClient) mapProviderError(status int, body []byte) error {
	var perr providerError
	_ = json.Unmarshal(body, &perr)
	code := perr.Error.Message

	// WEAK_PASSWORD arrives with explanatory suffix text
	base, _, _ := strings.Cut(code, " ")

	switch base {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_EMAIL":
		return errors.NewAuthError(errors.ErrCodeInvalidCredential,
			"Invalid email or password", nil)
	case "EMAIL_EXISTS":
		return errors.NewAuthError(errors.ErrCodeEmailAlreadyInUse,
			"An account with this email already exists", nil)
	case "WEAK_PASSWORD":
		return errors.NewAuthError(errors.ErrCodeWeakPassword,
			"Password is too weak, use at least 6 characters", nil)
	case "CAPTCHA_CHECK_FAILED", "INVALID_RECAPTCHA_TOKEN", "MISSING_RECAPTCHA_TOKEN":
		return errors.NewAuthError(errors.ErrCodeAttestationFailed,
			"Bot attestation check failed, reload and try again", nil)
	case "INVALID_CODE", "INVALID_SESSION_INFO":
		return errors.NewAuthError(errors.ErrCodeCodeInvalid,
			"The verification code is incorrect", nil)
	case "CODE_EXPIRED", "SESSION_EXPIRED", "EXPIRED_OOB_CODE":
		return errors.NewAuthError(errors.ErrCodeCodeExpired,
			"The verification code has expired, request a new one", nil)
	case "SECOND_FACTOR_EXISTS", "UNSUPPORTED_FIRST_FACTOR", "UNVERIFIED_EMAIL":
		return errors.NewAuthError(errors.ErrCodeMissingFactor,
			"No usable second factor is enrolled for this account", nil)
	default:
		c.logger.Warn("Unmapped identity provider error",
			"status", status,
			"provider_code", code)
		return errors.NewAuthError(errors.ErrCodeAuthUnknown,
			"Authentication failed", nil).WithContext("provider_code", code)
	}
}

func hintsFromEnrollments(enrollments []mfaEnrollment) []FactorHint {
	hints := make([]FactorHint, 0, len(enrollments))
	for _, e := range enrollments {
		hints = append(hints, FactorHint{
			ID:          e.MFAEnrollmentID,
			DisplayName: e.DisplayName,
			MaskedPhone: e.PhoneInfo,
		})
	}
	return hints
}

func credentialsFromResponse(resp *signInResponse) *Credentials {
	expires := time.Hour
	if resp.ExpiresIn != "" {
		if secs, err := strconv.Atoi(resp.ExpiresIn); err == nil && secs > 0 {
			expires = time.Duration(secs) * time.Second
		}
	}
	return &Credentials{
		UserID:       resp.LocalID,
		Email:        resp.Email,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    expires,
	}
}
