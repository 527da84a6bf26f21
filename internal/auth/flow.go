package auth

import "fmt"

// State is the explicit authentication flow state. Every sign-in walks this
// machine; handlers never flip ad-hoc booleans.
type State int

const (
	StateLoggedOut State = iota
	StateAuthenticating
	StateLoggedIn
	StateMFARequired
	StateFailed

	// MFA sub-states, entered only from StateMFARequired
	StateSelectingFactor
	StateCodeSent
	StateVerifying
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateAuthenticating:
		return "authenticating"
	case StateLoggedIn:
		return "logged_in"
	case StateMFARequired:
		return "mfa_required"
	case StateFailed:
		return "failed"
	case StateSelectingFactor:
		return "selecting_factor"
	case StateCodeSent:
		return "code_sent"
	case StateVerifying:
		return "verifying"
	default:
		return "unknown"
	}
}

// Event is a trigger that moves the flow between states
type Event int

const (
	EventSubmitCredentials Event = iota
	EventCredentialsAccepted
	EventCredentialsRejected
	EventSecondFactorRequired
	EventFactorSelected
	EventCodeSubmitted
	EventCodeAccepted
	EventCodeRejected
	EventCodeExpired
	EventSignOut
)

func (e Event) String() string {
	switch e {
	case EventSubmitCredentials:
		return "submit_credentials"
	case EventCredentialsAccepted:
		return "credentials_accepted"
	case EventCredentialsRejected:
		return "credentials_rejected"
	case EventSecondFactorRequired:
		return "second_factor_required"
	case EventFactorSelected:
		return "factor_selected"
	case EventCodeSubmitted:
		return "code_submitted"
	case EventCodeAccepted:
		return "code_accepted"
	case EventCodeRejected:
		return "code_rejected"
	case EventCodeExpired:
		return "code_expired"
	case EventSignOut:
		return "sign_out"
	default:
		return "unknown"
	}
}

// transitions is the complete legal move table. Anything absent is invalid.
var transitions = map[State]map[Event]State{
	StateLoggedOut: {
		EventSubmitCredentials: StateAuthenticating,
	},
	StateAuthenticating: {
		EventCredentialsAccepted:  StateLoggedIn,
		EventCredentialsRejected:  StateFailed,
		EventSecondFactorRequired: StateSelectingFactor,
	},
	StateSelectingFactor: {
		EventFactorSelected: StateCodeSent,
		EventSignOut:        StateLoggedOut,
	},
	StateCodeSent: {
		EventCodeSubmitted: StateVerifying,
		// Requesting a fresh code for the same or another factor
		EventFactorSelected: StateCodeSent,
		EventSignOut:        StateLoggedOut,
	},
	StateVerifying: {
		EventCodeAccepted: StateLoggedIn,
		// An incorrect code keeps the challenge open for another attempt
		EventCodeRejected: StateCodeSent,
		// An expired code forces factor re-selection with verification cleared
		EventCodeExpired: StateSelectingFactor,
		EventSignOut:     StateLoggedOut,
	},
	StateLoggedIn: {
		EventSignOut: StateLoggedOut,
	},
	StateFailed: {
		EventSubmitCredentials: StateAuthenticating,
	},
}

// Transition validates and applies a single state machine move. An illegal
// combination returns the current state and an error; callers must not
// proceed with the side effect.
func Transition(current State, event Event) (State, error) {
	if next, ok := transitions[current][event]; ok {
		return next, nil
	}
	return current, fmt.Errorf("invalid auth transition: %s on %s", event, current)
}
