package server

import (
	"net/http"
	"strings"

	"resumerank/internal/auth"
	"resumerank/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// createSignInHandler handles email/password sign-in. A second factor
// requirement is not an error: the response carries a challenge token and
// the enrolled factor hints instead of a session.
func (s *Server) createSignInHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumerank.api")
		ctx, span := tracer.Start(ctx, "api.auth.signin")
		defer span.End()

		var req SignInRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			writeErrorResponse(w, "Missing credentials", "email and password fields are required", http.StatusBadRequest)
			return
		}

		session, challenge, err := s.Gate.SignIn(ctx, req.Email, req.Password)

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(ctx, "signin_attempt", err == nil,
			attribute.Bool("mfa_required", challenge != nil))

		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}

		if challenge != nil {
			span.SetAttributes(attribute.Bool("mfa_required", true))
			writeJSONResponse(w, challenge)
			return
		}

		span.SetAttributes(attribute.Bool("success", true))
		writeJSONResponse(w, sessionResponse(session))
	}
}

// createSignUpHandler handles account creation
func (s *Server) createSignUpHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumerank.api")
		ctx, span := tracer.Start(ctx, "api.auth.signup")
		defer span.End()

		var req SignUpRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			writeErrorResponse(w, "Missing credentials", "email and password fields are required", http.StatusBadRequest)
			return
		}

		session, err := s.Gate.SignUp(ctx, req.Email, req.Password)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}

		span.SetAttributes(attribute.Bool("success", true))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		writeJSONResponse(w, sessionResponse(session))
	}
}

// createPasswordResetHandler dispatches a password reset email. The response
// is identical whether or not the account exists.
func (s *Server) createPasswordResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PasswordResetRequest
		if err := parseJSONRequest(r, &req); err != nil {
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Email) == "" {
			writeErrorResponse(w, "Missing email", "email field is required", http.StatusBadRequest)
			return
		}

		if err := s.Gate.SendPasswordReset(r.Context(), req.Email); err != nil {
			writeAppError(w, err)
			return
		}

		writeJSONResponse(w, map[string]string{
			"status": "If an account exists for that address, a reset email has been sent",
		})
	}
}

// createMFASendHandler dispatches a verification code to the selected factor.
// Attestation is verified before any code leaves the building.
func (s *Server) createMFASendHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumerank.api")
		ctx, span := tracer.Start(ctx, "api.auth.mfa.send")
		defer span.End()

		var req MFASendRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if req.MFAToken == "" || req.HintID == "" {
			writeErrorResponse(w, "Missing challenge fields", "mfaToken and hintId fields are required", http.StatusBadRequest)
			return
		}

		err := s.Gate.RequestSecondFactorCode(ctx, req.MFAToken, req.HintID, req.AttestationToken)

		om.GetMetrics().RecordBusinessMetric(ctx, "mfa_challenge", err == nil,
			attribute.String("stage", "send"))

		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}

		span.SetAttributes(attribute.Bool("success", true))
		writeJSONResponse(w, map[string]string{"status": "code sent"})
	}
}

// createMFAVerifyHandler verifies the submitted code and completes sign-in
func (s *Server) createMFAVerifyHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumerank.api")
		ctx, span := tracer.Start(ctx, "api.auth.mfa.verify")
		defer span.End()

		var req MFAVerifyRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if req.MFAToken == "" || req.Code == "" {
			writeErrorResponse(w, "Missing challenge fields", "mfaToken and code fields are required", http.StatusBadRequest)
			return
		}

		session, err := s.Gate.SubmitSecondFactorCode(ctx, req.MFAToken, req.Code)

		om.GetMetrics().RecordBusinessMetric(ctx, "mfa_challenge", err == nil,
			attribute.String("stage", "verify"))

		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}

		span.SetAttributes(attribute.Bool("success", true))
		writeJSONResponse(w, sessionResponse(session))
	}
}

// createSignOutHandler destroys the caller's session. Signing out an already
// dead session still succeeds.
func (s *Server) createSignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		token := bearerToken(r)
		if token != "" {
			s.Gate.SignOut(token)
		}

		writeJSONResponse(w, map[string]string{"status": "signed out"})
	}
}

func sessionResponse(session *auth.Session) SessionResponse {
	return SessionResponse{
		Token:     session.Token,
		Email:     session.Email,
		ExpiresAt: session.ExpiresAt,
	}
}
