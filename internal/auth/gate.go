package auth

import (
	"context"
	"strings"

	"resumerank/internal/config"
	"resumerank/internal/errors"
)

// MFAChallengeResponse is returned when sign-in requires a second factor
type MFAChallengeResponse struct {
	MFARequired bool         `json:"mfaRequired"` // always true
	MFAToken    string       `json:"mfaToken"`    // opaque challenge reference
	Hints       []FactorHint `json:"hints"`       // enrolled factors to choose from
}

// Gate is the identity gate in front of the screening endpoints. It
// orchestrates the provider, the attestation verifier, the session store,
// and the MFA challenge registry through the auth state machine.
type Gate struct {
	provider    IdentityProvider
	attestation *AttestationVerifier
	sessions    *SessionManager
	challenges  *ChallengeRegistry
	ready       bool
	notReadyMsg string
	logger      *errors.Logger
}

// NewGate wires the identity gate from configuration. A misconfigured gate
// is still constructed; every operation then returns a configuration error
// instead of crashing the process.
func NewGate(cfg *config.Config, provider IdentityProvider, logger *errors.Logger) *Gate {
	ready, msg := cfg.IdentityGateReady()
	if !ready {
		logger.Warn("Identity gate not operational", "reason", msg)
	}

	return &Gate{
		provider:    provider,
		attestation: NewAttestationVerifier(cfg.Auth.Attestation, logger),
		sessions:    NewSessionManager(cfg.Auth.Session, logger),
		challenges:  NewChallengeRegistry(cfg.Auth.MFA),
		ready:       ready,
		notReadyMsg: msg,
		logger:      logger,
	}
}

// Enabled reports whether the gate is operational
func (g *Gate) Enabled() bool {
	return g.ready
}

// Sessions exposes the session manager for middleware and stats
func (g *Gate) Sessions() *SessionManager {
	return g.sessions
}

// Challenges exposes the challenge registry for stats
func (g *Gate) Challenges() *ChallengeRegistry {
	return g.challenges
}

// Attestation exposes the verifier, mainly for its site key
func (g *Gate) Attestation() *AttestationVerifier {
	return g.attestation
}

func (g *Gate) configError() error {
	return errors.NewConfigError(errors.ErrCodeInvalidConfig, g.notReadyMsg, nil)
}

// SignIn verifies email/password credentials. It returns either a session,
// or an MFA challenge when the account has a second factor enrolled.
func (g *Gate) SignIn(ctx context.Context, email, password string) (*Session, *MFAChallengeResponse, error) {
	if !g.ready {
		return nil, nil, g.configError()
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Email and password are required", nil)
	}

	creds, err := g.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		if sfr, ok := err.(*SecondFactorRequiredError); ok {
			if len(sfr.Hints) == 0 {
				// MFA demanded but nothing enrolled to satisfy it. Terminal.
				return nil, nil, errors.NewAuthError(errors.ErrCodeMissingFactor,
					"No usable second factor is enrolled for this account", nil)
			}
			challenge := g.challenges.Create(sfr.PendingCredential, sfr.Hints)
			g.logger.Info("Second factor required", "hints", len(sfr.Hints))
			return nil, &MFAChallengeResponse{
				MFARequired: true,
				MFAToken:    challenge.Token,
				Hints:       sfr.Hints,
			}, nil
		}
		return nil, nil, err
	}

	session := g.sessions.Create(creds)
	g.logger.Info("User signed in", "user_id", session.UserID)
	return session, nil, nil
}

// SignUp creates a new account and signs it in
func (g *Gate) SignUp(ctx context.Context, email, password string) (*Session, error) {
	if !g.ready {
		return nil, g.configError()
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Email and password are required", nil)
	}

	creds, err := g.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	session := g.sessions.Create(creds)
	g.logger.Info("Account created", "user_id", session.UserID)
	return session, nil
}

// SendPasswordReset dispatches a reset email. The response does not reveal
// whether the address is registered.
func (g *Gate) SendPasswordReset(ctx context.Context, email string) error {
	if !g.ready {
		return g.configError()
	}
	if strings.TrimSpace(email) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Email is required", nil)
	}

	if err := g.provider.SendPasswordReset(ctx, email); err != nil {
		// Hide whether the account exists
		appErr, ok := err.(*errors.AppError)
		if ok && appErr.Code == errors.ErrCodeInvalidCredential {
			return nil
		}
		return err
	}
	return nil
}

// RequestSecondFactorCode verifies the attestation token and asks the
// provider to send an SMS code for the selected factor. Attestation fails
// closed: without a ready verifier no code is ever dispatched.
func (g *Gate) RequestSecondFactorCode(ctx context.Context, mfaToken, hintID, attestationToken string) error {
	if !g.ready {
		return g.configError()
	}

	if err := g.attestation.Verify(ctx, attestationToken); err != nil {
		return err
	}

	challenge, err := g.challenges.Get(mfaToken)
	if err != nil {
		return err
	}

	if !hintKnown(challenge.Hints, hintID) {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Selected factor is not enrolled for this account", nil)
	}

	verificationID, err := g.provider.StartMFASignIn(ctx, challenge.PendingCredential, hintID)
	if err != nil {
		return err
	}

	if err := g.challenges.MarkCodeSent(mfaToken, hintID, verificationID); err != nil {
		return err
	}

	g.logger.Info("Second factor code dispatched", "hint_id", hintID)
	return nil
}

// SubmitSecondFactorCode exchanges the SMS code for a full session. An
// expired code clears the dispatched verification so the flow restarts at
// factor selection; an incorrect code keeps the challenge open for another
// attempt up to the limit.
func (g *Gate) SubmitSecondFactorCode(ctx context.Context, mfaToken, code string) (*Session, error) {
	if !g.ready {
		return nil, g.configError()
	}

	challenge, err := g.challenges.Get(mfaToken)
	if err != nil {
		return nil, err
	}

	if challenge.VerificationID == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Request a verification code before submitting one", nil)
	}

	if _, err := Transition(challenge.State, EventCodeSubmitted); err != nil {
		return nil, errors.NewAuthError(errors.ErrCodeAuthUnknown,
			"Verification is not awaiting a code", err)
	}

	creds, err := g.provider.FinalizeMFASignIn(ctx, challenge.PendingCredential, challenge.VerificationID, code)
	if err != nil {
		appErr, ok := err.(*errors.AppError)
		if ok {
			switch appErr.Code {
			case errors.ErrCodeCodeExpired:
				g.challenges.ResetVerification(mfaToken)
				return nil, err
			case errors.ErrCodeCodeInvalid:
				if attemptErr := g.challenges.RecordFailedAttempt(mfaToken); attemptErr != nil {
					return nil, attemptErr
				}
				return nil, err
			}
		}
		return nil, err
	}

	g.challenges.Complete(mfaToken)
	session := g.sessions.Create(creds)
	g.logger.Info("Second factor verified, user signed in", "user_id", session.UserID)
	return session, nil
}

// SignOut destroys the session identified by token. Unknown tokens are a
// no-op; sign-out is idempotent.
func (g *Gate) SignOut(token string) {
	g.sessions.Destroy(token)
}

// Authenticate resolves a session token for the gate middleware
func (g *Gate) Authenticate(token string) (*Session, error) {
	if !g.ready {
		return nil, g.configError()
	}
	if token == "" {
		return nil, errors.NewAuthError(errors.ErrCodeSessionInvalid,
			"Sign in to use this endpoint", nil)
	}
	return g.sessions.Get(token)
}

// Close releases gate resources
func (g *Gate) Close() {
	g.sessions.Close()
}

func hintKnown(hints []FactorHint, hintID string) bool {
	for _, h := range hints {
		if h.ID == hintID {
			return true
		}
	}
	return false
}
