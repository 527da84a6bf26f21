package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resumerank/internal/config"
	rankErrors "resumerank/internal/errors"
)

// fakeIdentity is a scriptable IdentityProvider for gate tests
type fakeIdentity struct {
	signInErr   error
	signInCreds *Credentials

	startErr       error
	verificationID string
	startCalls     int

	finalizeErr   error
	finalizeCreds *Credentials
}

func (f *fakeIdentity) SignInWithPassword(ctx context.Context, email, password string) (*Credentials, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.signInCreds, nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) (*Credentials, error) {
	return f.signInCreds, f.signInErr
}

func (f *fakeIdentity) SendPasswordReset(ctx context.Context, email string) error {
	return f.signInErr
}

func (f *fakeIdentity) StartMFASignIn(ctx context.Context, pendingCredential, hintID string) (string, error) {
	f.startCalls++
	if f.startErr != nil {
		return "", f.startErr
	}
	return f.verificationID, nil
}

func (f *fakeIdentity) FinalizeMFASignIn(ctx context.Context, pendingCredential, verificationID, code string) (*Credentials, error) {
	if f.finalizeErr != nil {
		return nil, f.finalizeErr
	}
	return f.finalizeCreds, nil
}

func testLogger() *rankErrors.Logger {
	return rankErrors.NewLogger(slog.LevelError)
}

// attestationOK spins up a siteverify stub that approves every token
func attestationOK(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testGate(t *testing.T, provider IdentityProvider, attestEndpoint string) *Gate {
	t.Helper()
	cfg := &config.Config{}
	cfg.Auth = config.AuthConfig{
		Enabled: true,
		Identity: config.IdentityConfig{
			Endpoint: "https://identity.example",
			APIKey:   "test-key",
		},
		Attestation: config.AttestationConfig{
			Enabled:  attestEndpoint != "",
			Endpoint: attestEndpoint,
			SiteKey:  "site",
			Secret:   "secret",
		},
		Session: config.SessionConfig{TTL: time.Hour, CleanupInterval: time.Minute},
		MFA:     config.MFAConfig{ChallengeTTL: time.Minute, MaxAttempts: 3},
	}

	gate := NewGate(cfg, provider, testLogger())
	t.Cleanup(gate.Close)
	return gate
}

func TestSignInIssuesSession(t *testing.T) {
	fake := &fakeIdentity{signInCreds: &Credentials{UserID: "u1", Email: "jane@example.com", ExpiresIn: time.Hour}}
	gate := testGate(t, fake, "")

	session, challenge, err := gate.SignIn(context.Background(), "jane@example.com", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if challenge != nil {
		t.Fatal("expected no MFA challenge")
	}
	if session == nil || session.Token == "" {
		t.Fatal("expected a session with a token")
	}

	resolved, err := gate.Authenticate(session.Token)
	if err != nil {
		t.Fatalf("session did not resolve: %v", err)
	}
	if resolved.UserID != "u1" {
		t.Errorf("wrong user: %s", resolved.UserID)
	}
}

func TestSignInInvalidCredentials(t *testing.T) {
	fake := &fakeIdentity{signInErr: rankErrors.NewAuthError(rankErrors.ErrCodeInvalidCredential, "Invalid email or password", nil)}
	gate := testGate(t, fake, "")

	_, _, err := gate.SignIn(context.Background(), "jane@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := err.(*rankErrors.AppError)
	if appErr.Code != rankErrors.ErrCodeInvalidCredential {
		t.Errorf("wrong code: %s", appErr.Code)
	}
}

func TestSignInReturnsMFAChallenge(t *testing.T) {
	fake := &fakeIdentity{signInErr: &SecondFactorRequiredError{
		PendingCredential: "pending",
		Hints:             []FactorHint{{ID: "h1", MaskedPhone: "+1•••••1234"}},
	}}
	gate := testGate(t, fake, "")

	session, challenge, err := gate.SignIn(context.Background(), "jane@example.com", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session != nil {
		t.Fatal("expected no session before second factor")
	}
	if challenge == nil || !challenge.MFARequired || challenge.MFAToken == "" {
		t.Fatal("expected an MFA challenge with a token")
	}
	if len(challenge.Hints) != 1 || challenge.Hints[0].ID != "h1" {
		t.Errorf("hints not carried over: %+v", challenge.Hints)
	}
}

func TestSignInMFAWithoutFactorsIsTerminal(t *testing.T) {
	fake := &fakeIdentity{signInErr: &SecondFactorRequiredError{PendingCredential: "pending"}}
	gate := testGate(t, fake, "")

	_, _, err := gate.SignIn(context.Background(), "jane@example.com", "pw")
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := err.(*rankErrors.AppError)
	if appErr.Code != rankErrors.ErrCodeMissingFactor {
		t.Errorf("wrong code: %s", appErr.Code)
	}
}

func TestRequestCodeFailsClosedWithoutAttestation(t *testing.T) {
	fake := &fakeIdentity{verificationID: "v1"}
	gate := testGate(t, fake, "") // attestation not configured

	challenge := gate.Challenges().Create("pending", []FactorHint{{ID: "h1"}})

	err := gate.RequestSecondFactorCode(context.Background(), challenge.Token, "h1", "token")
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if fake.startCalls != 0 {
		t.Errorf("provider called %d times, expected 0", fake.startCalls)
	}
}

func TestRequestCodeDispatchesAfterAttestation(t *testing.T) {
	fake := &fakeIdentity{verificationID: "v1"}
	gate := testGate(t, fake, attestationOK(t).URL)

	challenge := gate.Challenges().Create("pending", []FactorHint{{ID: "h1"}})

	if err := gate.RequestSecondFactorCode(context.Background(), challenge.Token, "h1", "attest-token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.startCalls != 1 {
		t.Errorf("provider called %d times, expected 1", fake.startCalls)
	}

	stored, err := gate.Challenges().Get(challenge.Token)
	if err != nil {
		t.Fatalf("challenge vanished: %v", err)
	}
	if stored.VerificationID != "v1" || stored.SelectedHintID != "h1" {
		t.Errorf("verification not recorded: %+v", stored)
	}
}

func TestRequestCodeRejectsUnknownFactor(t *testing.T) {
	fake := &fakeIdentity{verificationID: "v1"}
	gate := testGate(t, fake, attestationOK(t).URL)

	challenge := gate.Challenges().Create("pending", []FactorHint{{ID: "h1"}})

	err := gate.RequestSecondFactorCode(context.Background(), challenge.Token, "h9", "attest-token")
	if err == nil {
		t.Fatal("expected error for unenrolled factor")
	}
	if fake.startCalls != 0 {
		t.Errorf("provider called %d times, expected 0", fake.startCalls)
	}
}

func TestSubmitCodeCompletesSignIn(t *testing.T) {
	fake := &fakeIdentity{
		verificationID: "v1",
		finalizeCreds:  &Credentials{UserID: "u1", IDToken: "id", ExpiresIn: time.Hour},
	}
	gate := testGate(t, fake, attestationOK(t).URL)

	challenge := gate.Challenges().Create("pending", []FactorHint{{ID: "h1"}})
	if err := gate.RequestSecondFactorCode(context.Background(), challenge.Token, "h1", "attest-token"); err != nil {
		t.Fatalf("request code: %v", err)
	}

	session, err := gate.SubmitSecondFactorCode(context.Background(), challenge.Token, "123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session == nil || session.Token == "" {
		t.Fatal("expected a session")
	}

	// Challenge is consumed
	if _, err := gate.Challenges().Get(challenge.Token); err == nil {
		t.Error("challenge should be removed after success")
	}
}

func TestSubmitCodeBeforeDispatchRejected(t *testing.T) {
	fake := &fakeIdentity{}
	gate := testGate(t, fake, "")

	challenge := gate.Challenges().Create("pending", []FactorHint{{ID: "h1"}})

	_, err := gate.SubmitSecondFactorCode(context.Background(), challenge.Token, "123456")
	if err == nil {
		t.Fatal("expected error when no code was dispatched")
	}
}

func TestExpiredCodeForcesFactorReselection(t *testing.T) {
	fake := &fakeIdentity{
		verificationID: "v1",
		finalizeErr:    rankErrors.NewAuthError(rankErrors.ErrCodeCodeExpired, "The verification code has expired, request a new one", nil),
	}
	gate := testGate(t, fake, attestationOK(t).URL)

	challenge := gate.Challenges().Create("pending", []FactorHint{{ID: "h1"}})
	if err := gate.RequestSecondFactorCode(context.Background(), challenge.Token, "h1", "attest-token"); err != nil {
		t.Fatalf("request code: %v", err)
	}

	_, err := gate.SubmitSecondFactorCode(context.Background(), challenge.Token, "123456")
	if err == nil {
		t.Fatal("expected expired-code error")
	}

	stored, getErr := gate.Challenges().Get(challenge.Token)
	if getErr != nil {
		t.Fatalf("challenge should survive expiry: %v", getErr)
	}
	if stored.VerificationID != "" || stored.SelectedHintID != "" {
		t.Errorf("verification not cleared: %+v", stored)
	}
	if stored.State != StateSelectingFactor {
		t.Errorf("expected selecting_factor, got %s", stored.State)
	}
}

func TestInvalidCodeKeepsChallengeOpen(t *testing.T) {
	fake := &fakeIdentity{
		verificationID: "v1",
		finalizeErr:    rankErrors.NewAuthError(rankErrors.ErrCodeCodeInvalid, "The verification code is incorrect", nil),
	}
	gate := testGate(t, fake, attestationOK(t).URL)

	challenge := gate.Challenges().Create("pending", []FactorHint{{ID: "h1"}})
	if err := gate.RequestSecondFactorCode(context.Background(), challenge.Token, "h1", "attest-token"); err != nil {
		t.Fatalf("request code: %v", err)
	}

	_, err := gate.SubmitSecondFactorCode(context.Background(), challenge.Token, "000000")
	if err == nil {
		t.Fatal("expected invalid-code error")
	}

	stored, getErr := gate.Challenges().Get(challenge.Token)
	if getErr != nil {
		t.Fatalf("challenge should stay open: %v", getErr)
	}
	if stored.VerificationID != "v1" {
		t.Error("verification should survive an invalid code")
	}
	if stored.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", stored.Attempts)
	}
}

func TestTooManyInvalidCodesDestroysChallenge(t *testing.T) {
	fake := &fakeIdentity{
		verificationID: "v1",
		finalizeErr:    rankErrors.NewAuthError(rankErrors.ErrCodeCodeInvalid, "The verification code is incorrect", nil),
	}
	gate := testGate(t, fake, attestationOK(t).URL)

	challenge := gate.Challenges().Create("pending", []FactorHint{{ID: "h1"}})
	if err := gate.RequestSecondFactorCode(context.Background(), challenge.Token, "h1", "attest-token"); err != nil {
		t.Fatalf("request code: %v", err)
	}

	// MaxAttempts is 3 in the test gate
	for i := 0; i < 3; i++ {
		gate.SubmitSecondFactorCode(context.Background(), challenge.Token, "000000")
	}

	if _, err := gate.Challenges().Get(challenge.Token); err == nil {
		t.Error("challenge should be destroyed after attempt limit")
	}
}

func TestSignOutDestroysSession(t *testing.T) {
	fake := &fakeIdentity{signInCreds: &Credentials{UserID: "u1", ExpiresIn: time.Hour}}
	gate := testGate(t, fake, "")

	session, _, err := gate.SignIn(context.Background(), "jane@example.com", "pw")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	gate.SignOut(session.Token)
	if _, err := gate.Authenticate(session.Token); err == nil {
		t.Error("session should be gone after sign-out")
	}

	// Idempotent
	gate.SignOut(session.Token)
}

func TestSessionStateChangeNotifications(t *testing.T) {
	fake := &fakeIdentity{signInCreds: &Credentials{UserID: "u1", Email: "jane@example.com", ExpiresIn: time.Hour}}
	gate := testGate(t, fake, "")

	changes := gate.Sessions().Subscribe()

	session, _, err := gate.SignIn(context.Background(), "jane@example.com", "pw")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	select {
	case change := <-changes:
		if !change.SignedIn || change.UserID != "u1" {
			t.Errorf("unexpected change: %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatal("no sign-in notification")
	}

	gate.SignOut(session.Token)
	select {
	case change := <-changes:
		if change.SignedIn {
			t.Errorf("expected sign-out change, got %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatal("no sign-out notification")
	}
}

func TestGateNotReadyWithoutConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.Enabled = true // endpoint and key missing

	gate := NewGate(cfg, &fakeIdentity{}, testLogger())
	defer gate.Close()

	if gate.Enabled() {
		t.Fatal("gate should not be enabled without identity config")
	}
	if _, _, err := gate.SignIn(context.Background(), "a@b.c", "pw"); err == nil {
		t.Error("expected configuration error")
	}
}
