package auth

import "testing"

func TestTransitionLegalMoves(t *testing.T) {
	tests := []struct {
		name    string
		current State
		event   Event
		want    State
	}{
		{"sign in starts authentication", StateLoggedOut, EventSubmitCredentials, StateAuthenticating},
		{"accepted credentials log in", StateAuthenticating, EventCredentialsAccepted, StateLoggedIn},
		{"rejected credentials fail", StateAuthenticating, EventCredentialsRejected, StateFailed},
		{"mfa demand goes to factor selection", StateAuthenticating, EventSecondFactorRequired, StateSelectingFactor},
		{"selecting a factor sends a code", StateSelectingFactor, EventFactorSelected, StateCodeSent},
		{"resending a code stays in code sent", StateCodeSent, EventFactorSelected, StateCodeSent},
		{"submitting a code verifies", StateCodeSent, EventCodeSubmitted, StateVerifying},
		{"accepted code logs in", StateVerifying, EventCodeAccepted, StateLoggedIn},
		{"rejected code returns to code sent", StateVerifying, EventCodeRejected, StateCodeSent},
		{"expired code returns to factor selection", StateVerifying, EventCodeExpired, StateSelectingFactor},
		{"sign out from logged in", StateLoggedIn, EventSignOut, StateLoggedOut},
		{"failed attempt can retry", StateFailed, EventSubmitCredentials, StateAuthenticating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, tt.event)
			if err != nil {
				t.Fatalf("Transition(%s, %s) error: %v", tt.current, tt.event, err)
			}
			if got != tt.want {
				t.Errorf("Transition(%s, %s) = %s, want %s", tt.current, tt.event, got, tt.want)
			}
		})
	}
}

func TestTransitionRejectsIllegalMoves(t *testing.T) {
	tests := []struct {
		name    string
		current State
		event   Event
	}{
		{"cannot submit a code before one is sent", StateSelectingFactor, EventCodeSubmitted},
		{"cannot log in directly from logged out", StateLoggedOut, EventCredentialsAccepted},
		{"cannot accept a code without verifying", StateCodeSent, EventCodeAccepted},
		{"cannot select a factor when logged in", StateLoggedIn, EventFactorSelected},
		{"cannot sign out mid password check", StateAuthenticating, EventSignOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, tt.event)
			if err == nil {
				t.Fatalf("Transition(%s, %s) allowed, expected error", tt.current, tt.event)
			}
			if got != tt.current {
				t.Errorf("failed transition changed state to %s", got)
			}
		})
	}
}
