package cli

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/telekom/loghtml/pkg/config"
)

// getEnvString returns the value of an environment variable or the provided default if not set.
func getEnvString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvBool returns the value of an environment variable as a bool, or the provided default if not set.
// Valid true values are "true", "1", "yes" (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// printConfig logs the effective configuration. Credentials are reported only
// by where they come from.
func printConfig(log *zap.SugaredLogger, path string, cfg config.Config) {
	passwordSource := "none"
	switch {
	case os.Getenv(config.PasswordEnv) != "":
		passwordSource = "env"
	case cfg.Mail.SMTP.PasswordKeyring != nil:
		passwordSource = "keyring"
	case cfg.Mail.SMTP.Password != "":
		passwordSource = "file"
	}
	log.Infow("Effective configuration",
		"config_path", path,
		// Mail
		"smtp_host", cfg.Mail.SMTP.Host,
		"smtp_port", cfg.Mail.SMTP.Port,
		"smtp_insecure_skip_verify", cfg.Mail.SMTP.InsecureSkipVerify,
		"smtp_password_source", passwordSource,
		"sender", cfg.Mail.SenderAddress,
		"recipients", len(cfg.Mail.Recipients),
		"mail_level", cfg.Mail.Level.Name(),
		// Server
		"listen_address", cfg.Server.ListenAddress,
		"rate_limit", cfg.Server.RateLimit,
		"rate_burst", cfg.Server.RateBurst,
		// Tracing
		"telemetry_enabled", cfg.Telemetry.Enabled,
		"telemetry_exporter", cfg.Telemetry.Exporter,
	)
}
