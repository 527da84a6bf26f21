package server

import (
	"net/http"
	"strings"

	"resumerank/internal/auth"
	"resumerank/internal/observability"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes(om *observability.ObservabilityManager) *http.ServeMux {
	mux := http.NewServeMux()

	rateLimitHandler := s.createRateLimitMiddleware(om)
	requestLimitHandler := s.requestSizeLimitMiddleware()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/stats", s.statsHandler)

	// Identity endpoints are public but rate limited and size limited
	mux.HandleFunc("/auth/signin",
		rateLimitHandler(requestLimitHandler(s.createSignInHandler(om))))
	mux.HandleFunc("/auth/signup",
		rateLimitHandler(requestLimitHandler(s.createSignUpHandler(om))))
	mux.HandleFunc("/auth/reset",
		rateLimitHandler(requestLimitHandler(s.createPasswordResetHandler())))
	mux.HandleFunc("/auth/mfa/send",
		rateLimitHandler(requestLimitHandler(s.createMFASendHandler(om))))
	mux.HandleFunc("/auth/mfa/verify",
		rateLimitHandler(requestLimitHandler(s.createMFAVerifyHandler(om))))
	mux.HandleFunc("/auth/signout",
		rateLimitHandler(s.createSignOutHandler()))

	// Screening endpoints sit behind the session gate
	for pattern, handler := range map[string]http.HandlerFunc{
		"/summarize":        s.createSummarizeHandler(om),
		"/questions":        s.createQuestionsHandler(om),
		"/rank":             s.createRankHandler(om),
		"/convert":          s.createConvertHandler(om),
		"/export/rankings":  s.createExportRankingsHandler(om),
		"/export/questions": s.createExportQuestionsHandler(om),
	} {
		mux.HandleFunc(pattern,
			rateLimitHandler(
				s.sessionMiddleware(requestLimitHandler(handler)),
			),
		)
	}

	return mux
}

// sessionMiddleware requires a valid session token on gated endpoints. When
// the identity gate is disabled requests pass through unauthenticated.
func (s *Server) sessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.Gate.Enabled() {
			next(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			s.Logger.Info("Authentication failed: missing session token",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, "Missing session token", "Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		session, err := s.Gate.Authenticate(token)
		if err != nil {
			s.Logger.Info("Authentication failed: invalid session",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, "Invalid session", "Session is missing or expired, sign in again", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("Session authentication successful",
			"endpoint", r.URL.Path,
			"user_id", session.UserID)

		next(w, r.WithContext(auth.WithSession(r.Context(), session)))
	}
}

// bearerToken extracts the Bearer token from the Authorization header
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return token
	}
	return ""
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}

			next(w, r)
		}
	}
}
