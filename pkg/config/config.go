package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v2"

	"github.com/telekom/loghtml/pkg/record"
)

// PasswordEnv overrides the configured SMTP password when set.
const PasswordEnv = "LOGHTML_SMTP_PASSWORD"

// DefaultSubject is used when no subject template is configured.
const DefaultSubject = "[{{ .LevelName }}] {{ .Message | trunc 120 }}"

// KeyringRef points at an SMTP password stored in the OS keyring.
type KeyringRef struct {
	Service string `yaml:"service" validate:"required"`
	User    string `yaml:"user" validate:"required"`
}

type SMTP struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"gte=1,lte=65535"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// PasswordKeyring takes precedence over Password when set.
	PasswordKeyring    *KeyringRef `yaml:"passwordKeyring" validate:"omitempty"`
	InsecureSkipVerify bool        `yaml:"insecureSkipVerify"`
}

type Mail struct {
	SMTP          SMTP     `yaml:"smtp"`
	SenderAddress string   `yaml:"senderAddress" validate:"required,email"`
	SenderName    string   `yaml:"senderName"`
	Recipients    []string `yaml:"recipients" validate:"min=1,dive,email"`
	// Subject is a text/template rendered with sprig functions.
	Subject string       `yaml:"subject"`
	Level   record.Level `yaml:"level"`
	// Headers are appended to the fixed HTML headers.
	Headers []string `yaml:"headers"`
}

// ColorThresholds are the host ordinals at which label colors change.
type ColorThresholds struct {
	Error   record.Level `yaml:"error"`
	Warning record.Level `yaml:"warning"`
	Info    record.Level `yaml:"info"`
}

type Server struct {
	ListenAddress  string   `yaml:"listenAddress"`
	TrustedProxies []string `yaml:"trustedProxies"`
	// RateLimit is requests per second per client IP; RateBurst the burst size.
	RateLimit float64 `yaml:"rateLimit"`
	RateBurst int     `yaml:"rateBurst"`
}

// Telemetry configures OpenTelemetry tracing of renders and mail delivery.
type Telemetry struct {
	Enabled bool `yaml:"enabled"`
	// Exporter is one of otlp, stdout or none.
	Exporter     string  `yaml:"exporter" validate:"omitempty,oneof=otlp stdout none"`
	Endpoint     string  `yaml:"endpoint"`
	Insecure     bool    `yaml:"insecure"`
	SamplingRate float64 `yaml:"samplingRate" validate:"gte=0,lte=1"`
}

type Config struct {
	Mail            Mail            `yaml:"mail"`
	ColorThresholds ColorThresholds `yaml:"colorThresholds"`
	Server          Server          `yaml:"server"`
	Telemetry       Telemetry       `yaml:"telemetry"`
}

var validate = validator.New()

// Load loads the configuration from a file path.
// If configPath is empty, defaults to "./config.yaml".
func Load(configPath ...string) (Config, error) {
	path := "./config.yaml"
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	}

	var config Config
	content, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("trying to open config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, &config); err != nil {
		return config, fmt.Errorf("error unmarshaling YAML %s: %w", path, err)
	}
	config.Defaults()
	return config, nil
}

// Defaults fills unset values.
func (c *Config) Defaults() {
	if c.Mail.SMTP.Port == 0 {
		c.Mail.SMTP.Port = 25
	}
	if c.Mail.Subject == "" {
		c.Mail.Subject = DefaultSubject
	}
	if c.Mail.Level == 0 {
		c.Mail.Level = record.Error
	}
	if c.ColorThresholds.Error == 0 {
		c.ColorThresholds.Error = record.Error
	}
	if c.ColorThresholds.Warning == 0 {
		c.ColorThresholds.Warning = record.Warning
	}
	if c.ColorThresholds.Info == 0 {
		c.ColorThresholds.Info = record.Info
	}
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":8080"
	}
	if c.Server.RateLimit <= 0 {
		c.Server.RateLimit = 20
	}
	if c.Server.RateBurst <= 0 {
		c.Server.RateBurst = 50
	}
	if c.Telemetry.Exporter == "" {
		c.Telemetry.Exporter = "otlp"
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4317"
	}
	if c.Telemetry.SamplingRate == 0 {
		c.Telemetry.SamplingRate = 1.0
	}
}

// ValidateMail checks the settings needed to deliver mail.
func (c *Config) ValidateMail() error {
	if err := validate.Struct(c.Mail); err != nil {
		return fmt.Errorf("invalid mail configuration: %w", err)
	}
	return nil
}

// ValidateTelemetry checks the tracing settings.
func (c *Config) ValidateTelemetry() error {
	if err := validate.Struct(c.Telemetry); err != nil {
		return fmt.Errorf("invalid telemetry configuration: %w", err)
	}
	return nil
}

// ResolvePassword returns the SMTP password from the environment, the OS
// keyring or the file, in that order.
func (s SMTP) ResolvePassword() (string, error) {
	if pw, ok := os.LookupEnv(PasswordEnv); ok {
		return pw, nil
	}
	if s.PasswordKeyring != nil {
		pw, err := keyring.Get(s.PasswordKeyring.Service, s.PasswordKeyring.User)
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("no keyring entry for service %q user %q", s.PasswordKeyring.Service, s.PasswordKeyring.User)
		}
		if err != nil {
			return "", fmt.Errorf("failed to read SMTP password from keyring: %w", err)
		}
		return pw, nil
	}
	return s.Password, nil
}
