package auth

import "context"

type contextKey struct{}

var sessionKey contextKey

// WithSession attaches an authenticated session to the context
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext returns the authenticated session, or nil when the
// request passed through an ungated path.
func SessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionKey).(*Session)
	return session
}
