// Package auth implements the identity gate in front of the screening
// endpoints: password sign-in against a hosted identity provider, SMS
// second-factor verification with bot attestation, and in-memory session
// handling. Nothing here is persisted across restarts.
package auth

import (
	"context"
	"fmt"
	"time"
)

// Credentials are the provider tokens backing a signed-in session
type Credentials struct {
	UserID       string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// FactorHint describes one enrolled second factor the user may select
type FactorHint struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	MaskedPhone string `json:"maskedPhone,omitempty"`
}

// SecondFactorRequiredError signals that password verification succeeded but
// the provider demands a second factor before issuing tokens. It carries the
// pending credential the provider expects back on the MFA endpoints.
type SecondFactorRequiredError struct {
	PendingCredential string
	Hints             []FactorHint
}

func (e *SecondFactorRequiredError) Error() string {
	return fmt.Sprintf("second factor required (%d enrolled factors)", len(e.Hints))
}

// IdentityProvider abstracts the hosted identity API. Implementations map
// every provider failure to a typed auth error before returning it.
type IdentityProvider interface {
	// SignInWithPassword verifies an email/password pair. When the account
	// has MFA enrolled the returned error is *SecondFactorRequiredError.
	SignInWithPassword(ctx context.Context, email, password string) (*Credentials, error)

	// SignUp creates a new email/password account.
	SignUp(ctx context.Context, email, password string) (*Credentials, error)

	// SendPasswordReset dispatches a password reset email.
	SendPasswordReset(ctx context.Context, email string) error

	// StartMFASignIn asks the provider to send an SMS code to the enrolled
	// factor identified by hintID and returns the verification ID the code
	// must be submitted against.
	StartMFASignIn(ctx context.Context, pendingCredential, hintID string) (string, error)

	// FinalizeMFASignIn exchanges the verification ID and SMS code for full
	// credentials.
	FinalizeMFASignIn(ctx context.Context, pendingCredential, verificationID, code string) (*Credentials, error)
}
