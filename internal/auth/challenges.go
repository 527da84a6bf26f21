package auth

import (
	"sync"
	"time"

	"resumerank/internal/config"
	"resumerank/internal/errors"

	"github.com/google/uuid"
)

// Challenge is a pending second-factor verification keyed by an opaque
// token. It tracks where the flow stands so a stateless HTTP client can
// resume it across requests.
type Challenge struct {
	Token             string
	PendingCredential string
	Hints             []FactorHint
	State             State

	// Set once a factor is selected and a code has been dispatched
	SelectedHintID string
	VerificationID string

	Attempts  int
	ExpiresAt time.Time
}

// ChallengeRegistry holds pending MFA challenges in memory with expiry and
// attempt limiting.
type ChallengeRegistry struct {
	mu          sync.Mutex
	challenges  map[string]*Challenge
	ttl         time.Duration
	maxAttempts int
}

// NewChallengeRegistry creates a registry from MFA configuration
func NewChallengeRegistry(cfg config.MFAConfig) *ChallengeRegistry {
	ttl := cfg.ChallengeTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	return &ChallengeRegistry{
		challenges:  make(map[string]*Challenge),
		ttl:         ttl,
		maxAttempts: maxAttempts,
	}
}

// Create registers a new challenge for a sign-in that requires a second
// factor and returns its opaque token.
func (r *ChallengeRegistry) Create(pendingCredential string, hints []FactorHint) *Challenge {
	challenge := &Challenge{
		Token:             uuid.NewString(),
		PendingCredential: pendingCredential,
		Hints:             hints,
		State:             StateSelectingFactor,
		ExpiresAt:         time.Now().Add(r.ttl),
	}

	r.mu.Lock()
	r.challenges[challenge.Token] = challenge
	r.mu.Unlock()

	return challenge
}

// Get resolves a challenge token and returns a snapshot of its state.
// Expired challenges are removed on access and the caller has to restart
// sign-in. All mutation goes through the registry methods, which operate on
// the live entry under the lock.
func (r *ChallengeRegistry) Get(token string) (*Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	challenge, ok := r.challenges[token]
	if !ok {
		return nil, errors.NewAuthError(errors.ErrCodeSessionInvalid,
			"No pending verification found, sign in again", nil)
	}

	if time.Now().After(challenge.ExpiresAt) {
		delete(r.challenges, token)
		return nil, errors.NewAuthError(errors.ErrCodeCodeExpired,
			"The sign-in attempt expired, sign in again", nil)
	}

	snapshot := *challenge
	snapshot.Hints = append([]FactorHint(nil), challenge.Hints...)
	return &snapshot, nil
}

// MarkCodeSent records the dispatched verification on the challenge
func (r *ChallengeRegistry) MarkCodeSent(token, hintID, verificationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	challenge, ok := r.challenges[token]
	if !ok {
		return errors.NewAuthError(errors.ErrCodeSessionInvalid,
			"No pending verification found, sign in again", nil)
	}

	next, err := Transition(challenge.State, EventFactorSelected)
	if err != nil {
		return errors.NewAuthError(errors.ErrCodeAuthUnknown,
			"Verification is not at a point where a code can be sent", err)
	}

	challenge.State = next
	challenge.SelectedHintID = hintID
	challenge.VerificationID = verificationID
	return nil
}

// RecordFailedAttempt counts an invalid code submission. The challenge stays
// open until the attempt limit is reached, then it is destroyed.
func (r *ChallengeRegistry) RecordFailedAttempt(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	challenge, ok := r.challenges[token]
	if !ok {
		return errors.NewAuthError(errors.ErrCodeSessionInvalid,
			"No pending verification found, sign in again", nil)
	}

	challenge.Attempts++
	challenge.State = StateCodeSent
	if challenge.Attempts >= r.maxAttempts {
		delete(r.challenges, token)
		return errors.NewAuthError(errors.ErrCodeCodeInvalid,
			"Too many incorrect codes, sign in again", nil)
	}

	return nil
}

// ResetVerification clears the dispatched code after expiry so the flow
// returns to factor selection.
func (r *ChallengeRegistry) ResetVerification(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if challenge, ok := r.challenges[token]; ok {
		challenge.VerificationID = ""
		challenge.SelectedHintID = ""
		challenge.State = StateSelectingFactor
	}
}

// Complete removes a successfully verified challenge
func (r *ChallengeRegistry) Complete(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.challenges, token)
}

// Count returns the number of pending challenges
func (r *ChallengeRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.challenges)
}
