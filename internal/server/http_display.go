package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health            - Health check")
	fmt.Println("  GET  /stats             - Server statistics")
	fmt.Println("  POST /auth/signin       - Sign in with email and password")
	fmt.Println("  POST /auth/signup       - Create an account")
	fmt.Println("  POST /auth/reset        - Request a password reset email")
	fmt.Println("  POST /auth/mfa/send     - Dispatch a second factor code")
	fmt.Println("  POST /auth/mfa/verify   - Verify a second factor code")
	fmt.Println("  POST /auth/signout      - Destroy the current session")
	fmt.Println("  POST /summarize         - Summarize a resume (requires session)")
	fmt.Println("  POST /questions         - Generate interview questions (requires session)")
	fmt.Println("  POST /rank              - Rank resumes against a job (requires session)")
	fmt.Println("  POST /convert           - Convert resume files to text (requires session)")
	fmt.Println("  POST /export/rankings   - Export rankings as xlsx (requires session)")
	fmt.Println("  POST /export/questions  - Export questions as PDF (requires session)")
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if s.Gate != nil && s.Gate.Enabled() {
		fmt.Println("Identity gate: ENABLED (session token required on screening endpoints)")
		fmt.Println("Include 'Authorization: Bearer <session-token>' from /auth/signin")
	} else {
		fmt.Println("Identity gate: DISABLED")
		fmt.Println("WARNING: Screening endpoints are publicly accessible!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.BySession {
			fmt.Println("  - Per session rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
	}
}
