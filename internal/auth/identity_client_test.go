package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"resumerank/internal/config"
	rankErrors "resumerank/internal/errors"
)

func identityStub(t *testing.T, status int, body string) *IdentityClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	return NewIdentityClient(config.IdentityConfig{
		Endpoint: srv.URL,
		APIKey:   "test-key",
	}, testLogger())
}

func TestSignInSuccess(t *testing.T) {
	client := identityStub(t, http.StatusOK,
		`{"localId":"u1","email":"jane@example.com","idToken":"id","refreshToken":"rt","expiresIn":"3600"}`)

	creds, err := client.SignInWithPassword(context.Background(), "jane@example.com", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.UserID != "u1" || creds.IDToken != "id" {
		t.Errorf("credentials not decoded: %+v", creds)
	}
}

func TestSignInSecondFactorRequired(t *testing.T) {
	client := identityStub(t, http.StatusOK,
		`{"mfaPendingCredential":"pending","mfaInfo":[{"mfaEnrollmentId":"h1","phoneInfo":"+1•••••1234"}]}`)

	_, err := client.SignInWithPassword(context.Background(), "jane@example.com", "pw")
	sfr, ok := err.(*SecondFactorRequiredError)
	if !ok {
		t.Fatalf("expected SecondFactorRequiredError, got %v", err)
	}
	if sfr.PendingCredential != "pending" || len(sfr.Hints) != 1 || sfr.Hints[0].ID != "h1" {
		t.Errorf("challenge not decoded: %+v", sfr)
	}
}

func TestProviderErrorMapping(t *testing.T) {
	tests := []struct {
		providerCode string
		wantCode     string
	}{
		{"EMAIL_NOT_FOUND", rankErrors.ErrCodeInvalidCredential},
		{"INVALID_PASSWORD", rankErrors.ErrCodeInvalidCredential},
		{"INVALID_LOGIN_CREDENTIALS", rankErrors.ErrCodeInvalidCredential},
		{"EMAIL_EXISTS", rankErrors.ErrCodeEmailAlreadyInUse},
		{"WEAK_PASSWORD : Password should be at least 6 characters", rankErrors.ErrCodeWeakPassword},
		{"CAPTCHA_CHECK_FAILED", rankErrors.ErrCodeAttestationFailed},
		{"INVALID_CODE", rankErrors.ErrCodeCodeInvalid},
		{"SESSION_EXPIRED", rankErrors.ErrCodeCodeExpired},
		{"SOMETHING_NEW", rankErrors.ErrCodeAuthUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.providerCode, func(t *testing.T) {
			client := identityStub(t, http.StatusBadRequest,
				fmt.Sprintf(`{"error":{"code":400,"message":"%s"}}`, tt.providerCode))

			_, err := client.SignInWithPassword(context.Background(), "jane@example.com", "pw")
			appErr, ok := err.(*rankErrors.AppError)
			if !ok {
				t.Fatalf("expected AppError, got %T", err)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("mapped to %s, want %s", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestInvalidCredentialMessageIsGeneric(t *testing.T) {
	// Wrong password and unknown account must be indistinguishable
	for _, code := range []string{"EMAIL_NOT_FOUND", "INVALID_PASSWORD"} {
		client := identityStub(t, http.StatusBadRequest,
			fmt.Sprintf(`{"error":{"code":400,"message":"%s"}}`, code))

		_, err := client.SignInWithPassword(context.Background(), "jane@example.com", "pw")
		appErr := err.(*rankErrors.AppError)
		if appErr.Message != "Invalid email or password" {
			t.Errorf("%s: message %q leaks detail", code, appErr.Message)
		}
	}
}

func TestMFAStartReturnsVerificationID(t *testing.T) {
	client := identityStub(t, http.StatusOK,
		`{"phoneResponseInfo":{"sessionInfo":"verification-1"}}`)

	id, err := client.StartMFASignIn(context.Background(), "pending", "h1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "verification-1" {
		t.Errorf("verification ID = %q", id)
	}
}
