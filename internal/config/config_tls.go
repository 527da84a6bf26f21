package config

import "fmt"

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	if err := validateTLSMode(tls); err != nil {
		return err
	}

	switch tls.Mode {
	case "server":
		return validateServerModeTLS(tls)
	case "mutual":
		return validateMutualModeTLS(tls)
	}

	return nil
}

func validateTLSMode(tls TLSConfig) error {
	switch tls.Mode {
	case "disabled", "server", "mutual":
		return nil
	default:
		return fmt.Errorf("invalid TLS mode %q: must be one of disabled, server, mutual", tls.Mode)
	}
}

func validateServerModeTLS(tls TLSConfig) error {
	if err := validateCertAndKeyRequired(tls, "server"); err != nil {
		return err
	}
	return validateTLSVersion(tls)
}

func validateMutualModeTLS(tls TLSConfig) error {
	if err := validateCertAndKeyRequired(tls, "mutual"); err != nil {
		return err
	}
	if tls.CAFile == "" {
		return fmt.Errorf("TLS CA file is required for mutual mode")
	}
	return validateTLSVersion(tls)
}

func validateCertAndKeyRequired(tls TLSConfig, mode string) error {
	if tls.CertFile == "" || tls.KeyFile == "" {
		return fmt.Errorf("TLS certificate and key files are required for %s mode", mode)
	}
	return nil
}

func validateTLSVersion(tls TLSConfig) error {
	switch tls.MinVersion {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minimum version %q: must be 1.2 or 1.3", tls.MinVersion)
	}
}
