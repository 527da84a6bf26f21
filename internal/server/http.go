package server

import (
	"time"

	"resumerank/internal/auth"
	"resumerank/internal/config"
	"resumerank/internal/convert"
	rankErrors "resumerank/internal/errors"
	"resumerank/internal/types"
)

// SummarizeRequest represents the request body for the summarize endpoint
type SummarizeRequest struct {
	ResumeText string `json:"resumeText"`
}

// QuestionsRequest represents the request body for the questions endpoint
type QuestionsRequest struct {
	JobDescription string `json:"jobDescription"`
}

// RankRequest represents the request body for the rank endpoint. Resumes may
// be submitted either as an explicit list or as a single corpus blob with
// blank-line separators; when both are present the list wins.
type RankRequest struct {
	JobDescription string   `json:"jobDescription"`
	Resumes        []string `json:"resumes,omitempty"`
	ResumeCorpus   string   `json:"resumeCorpus,omitempty"`
}

// ExportRankingsRequest represents the request body for the rankings export
// endpoint
type ExportRankingsRequest struct {
	Results types.RankResumesOutput `json:"results"`
}

// ExportQuestionsRequest represents the request body for the questions export
// endpoint
type ExportQuestionsRequest struct {
	Title string          `json:"title,omitempty"`
	QnA   []types.QnAPair `json:"qna"`
}

// SignInRequest represents the request body for the sign-in endpoint
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest represents the request body for the sign-up endpoint
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest represents the request body for the reset endpoint
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// MFASendRequest represents the request body for second factor code dispatch
type MFASendRequest struct {
	MFAToken         string `json:"mfaToken"`
	HintID           string `json:"hintId"`
	AttestationToken string `json:"attestationToken"`
}

// MFAVerifyRequest represents the request body for second factor verification
type MFAVerifyRequest struct {
	MFAToken string `json:"mfaToken"`
	Code     string `json:"code"`
}

// SessionResponse is returned on successful sign-in or verification
type SessionResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate management
	CertManager *CertManager

	// Identity gate for session-based authentication
	Gate *auth.Gate

	// Resume file conversion
	Converter *convert.Converter

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *rankErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *rankErrors.Logger) *Server {
	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	provider := auth.NewIdentityClient(appCfg.Auth.Identity, logger)
	gate := auth.NewGate(appCfg, provider, logger)

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		Gate:           gate,
		Converter:      convert.NewConverter(appCfg.App.MaxFileSize, logger),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
