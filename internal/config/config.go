package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Secret precedence order:
// 1. Vault (if configured) - highest priority
// 2. Config file values
// 3. Environment variables (RESUMERANK_AI_APIKEY, etc.)
// 4. Default values - lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds AI service configuration
type AIConfig struct {
	// Global/fallback configuration
	Provider         string        `mapstructure:"provider"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"`
	APIKey           string        `mapstructure:"apiKey"`
	MaxRetries       int           `mapstructure:"maxRetries"`
	Temperature      float32       `mapstructure:"temperature"`
	UseSystemPrompts bool          `mapstructure:"useSystemPrompts"`
	CustomPrompts    PromptConfig  `mapstructure:"customPrompts"`

	// Operation-specific configurations
	Summarize OperationAIConfig `mapstructure:"summarize"`
	Questions OperationAIConfig `mapstructure:"questions"`
	Rank      OperationAIConfig `mapstructure:"rank"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for specific operations
type OperationAIConfig struct {
	Provider         string               `mapstructure:"provider"`
	Model            string               `mapstructure:"model"`
	Timeout          *time.Duration       `mapstructure:"timeout"`
	APIKey           string               `mapstructure:"apiKey"`
	MaxRetries       *int                 `mapstructure:"maxRetries"`
	Temperature      *float32             `mapstructure:"temperature"`
	UseSystemPrompts *bool                `mapstructure:"useSystemPrompts"`
	CustomPrompts    PromptConfig         `mapstructure:"customPrompts"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// PromptConfig holds configuration for customizable prompts
type PromptConfig struct {
	SystemPrompts SystemPrompts `mapstructure:"systemPrompts"`
	UserPrompts   UserPrompts   `mapstructure:"userPrompts"`
}

// SystemPrompts contains system-level instructions, either inline or as a
// path to an external file
type SystemPrompts struct {
	SummarizeResume     string `mapstructure:"summarizeResume"`
	SummarizeResumeFile string `mapstructure:"summarizeResumeFile"`
	GenerateQnA         string `mapstructure:"generateQnA"`
	GenerateQnAFile     string `mapstructure:"generateQnAFile"`
	RankResumes         string `mapstructure:"rankResumes"`
	RankResumesFile     string `mapstructure:"rankResumesFile"`
}

// UserPrompts contains user-level prompt templates
type UserPrompts struct {
	SummarizeResume     string `mapstructure:"summarizeResume"`
	SummarizeResumeFile string `mapstructure:"summarizeResumeFile"`
	GenerateQnA         string `mapstructure:"generateQnA"`
	GenerateQnAFile     string `mapstructure:"generateQnAFile"`
	RankResumes         string `mapstructure:"rankResumes"`
	RankResumesFile     string `mapstructure:"rankResumesFile"`
}

// AuthConfig holds identity gate configuration
type AuthConfig struct {
	// Enabled gates the screening endpoints behind the identity provider.
	// When required identity configuration is missing the gate reports a
	// configuration error and refuses sign-in instead of crashing.
	Enabled bool `mapstructure:"enabled"`

	Identity    IdentityConfig    `mapstructure:"identity"`
	Attestation AttestationConfig `mapstructure:"attestation"`
	Session     SessionConfig     `mapstructure:"session"`
	MFA         MFAConfig         `mapstructure:"mfa"`
}

// IdentityConfig holds the hosted identity provider connection settings
type IdentityConfig struct {
	// Endpoint is the base URL of the Identity Toolkit style REST API.
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"apiKey"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AttestationConfig holds the bot-attestation (CAPTCHA-class) verifier
// settings. MFA code dispatch fails closed when these are incomplete.
type AttestationConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	SiteKey  string        `mapstructure:"siteKey"`
	Secret   string        `mapstructure:"secret"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SessionConfig controls in-memory session lifecycle
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanupInterval"`
}

// MFAConfig controls second-factor challenge lifecycle
type MFAConfig struct {
	ChallengeTTL time.Duration `mapstructure:"challengeTTL"`
	MaxAttempts  int           `mapstructure:"maxAttempts"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	// TLS Configuration
	TLS TLSConfig `mapstructure:"tls"`

	// Rate Limiting Configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds TLS/mTLS configuration
type TLSConfig struct {
	Mode     string `mapstructure:"mode"`     // "disabled", "server", "mutual"
	CertFile string `mapstructure:"certFile"` // Server certificate file (PEM)
	KeyFile  string `mapstructure:"keyFile"`  // Server private key file (PEM)
	CAFile   string `mapstructure:"caFile"`   // CA certificate for client cert verification (mutual mode)

	MinVersion string `mapstructure:"minVersion"` // Minimum TLS version: "1.2", "1.3"

	// Reload watches the certificate files and swaps certificates in place
	// when they change.
	Reload CertReloadConfig `mapstructure:"reload"`
}

// CertReloadConfig holds configuration for certificate hot reload
type CertReloadConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	BySession      bool          `mapstructure:"bySession"`
	Window         time.Duration `mapstructure:"window"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`

	// MinJobDescriptionChars is the minimum trimmed job description length
	// below which the questions and rank pipelines return an empty result
	// without calling the model.
	MinJobDescriptionChars int `mapstructure:"minJobDescriptionChars"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	ServiceName     string            `mapstructure:"serviceName"`
	ServiceVersion  string            `mapstructure:"serviceVersion"`
	ServiceInstance string            `mapstructure:"serviceInstance"`
	ConsoleOutput   bool              `mapstructure:"consoleOutput"`
	SampleRate      float64           `mapstructure:"sampleRate"`
	Tracing         TracingConfig     `mapstructure:"tracing"`
	Metrics         MetricsConfig     `mapstructure:"metrics"`
	Console         ConsoleConfig     `mapstructure:"console"`
	Prometheus      PrometheusConfig  `mapstructure:"prometheus"`
	OTLP            OTLPConfig        `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console exporter configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	AIModelCheckTimeout time.Duration `mapstructure:"aiModelCheckTimeout"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("RESUMERANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/resumerank/")
	v.AddConfigPath("$HOME/.resumerank")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()

	if err := ApplyVaultSecrets(&config, nil); err != nil {
		return nil, fmt.Errorf("failed to load secrets from vault: %w", err)
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// Summarize: short, cheap calls
	v.SetDefault("ai.summarize.provider", "gemini")
	v.SetDefault("ai.summarize.timeout", 45*time.Second)
	v.SetDefault("ai.summarize.maxRetries", 3)
	v.SetDefault("ai.summarize.temperature", 0.3)

	// Questions: moderate generation workload
	v.SetDefault("ai.questions.provider", "gemini")
	v.SetDefault("ai.questions.timeout", 60*time.Second)
	v.SetDefault("ai.questions.maxRetries", 2)
	v.SetDefault("ai.questions.temperature", 0.5)

	// Rank: largest prompts, longest timeout, low temperature for stable scoring
	v.SetDefault("ai.rank.provider", "gemini")
	v.SetDefault("ai.rank.timeout", 90*time.Second)
	v.SetDefault("ai.rank.maxRetries", 2)
	v.SetDefault("ai.rank.temperature", 0.2)

	for _, op := range []string{"summarize", "questions", "rank"} {
		v.SetDefault("ai."+op+".circuitBreaker.enabled", true)
		v.SetDefault("ai."+op+".circuitBreaker.maxRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.timeout", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.minRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.failureThreshold", 0.6)
	}

	// Auth Configuration
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.identity.endpoint", "https://identitytoolkit.googleapis.com")
	v.SetDefault("auth.identity.apiKey", "")
	v.SetDefault("auth.identity.timeout", 15*time.Second)
	v.SetDefault("auth.attestation.enabled", true)
	v.SetDefault("auth.attestation.endpoint", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("auth.attestation.siteKey", "")
	v.SetDefault("auth.attestation.secret", "")
	v.SetDefault("auth.attestation.timeout", 10*time.Second)
	v.SetDefault("auth.session.ttl", time.Hour)
	v.SetDefault("auth.session.cleanupInterval", 5*time.Minute)
	v.SetDefault("auth.mfa.challengeTTL", 5*time.Minute)
	v.SetDefault("auth.mfa.maxAttempts", 5)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)

	// TLS Configuration defaults
	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.reload.enabled", true)
	v.SetDefault("server.tls.reload.debounceDelay", time.Second)

	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.bySession", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB
	v.SetDefault("app.minJobDescriptionChars", 50)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.identityKey", "")
	v.SetDefault("vault.secrets.attestationSecret", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumerank")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("AI API key is required (set RESUMERANK_AI_APIKEY environment variable)")
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.App.MinJobDescriptionChars < 0 {
		return fmt.Errorf("minimum job description length cannot be negative")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if c.App.DefaultFormat != "" && !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("default format %q is not in supported formats %v",
			c.App.DefaultFormat, c.App.SupportedFormats)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return err
	}

	return nil
}

// IdentityGateReady reports whether the identity gate has the configuration
// it needs. The returned message names what is missing; the gate uses it to
// surface a one-time configuration error instead of crashing.
func (c *Config) IdentityGateReady() (bool, string) {
	if !c.Auth.Enabled {
		return false, "identity gate disabled by configuration"
	}
	if c.Auth.Identity.Endpoint == "" {
		return false, "identity provider endpoint is not configured"
	}
	if c.Auth.Identity.APIKey == "" {
		return false, "identity provider API key is not configured (set RESUMERANK_AUTH_IDENTITY_APIKEY)"
	}
	return true, ""
}

// AttestationReady reports whether the bot-attestation verifier is fully
// configured. MFA code dispatch fails closed when it is not.
func (c *Config) AttestationReady() bool {
	a := c.Auth.Attestation
	return a.Enabled && a.Endpoint != "" && a.SiteKey != "" && a.Secret != ""
}
