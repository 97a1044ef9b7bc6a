package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/telekom/loghtml/pkg/record"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validMail() Mail {
	return Mail{
		SMTP:          SMTP{Host: "smtp.example.com", Port: 587},
		SenderAddress: "noreply@example.com",
		Recipients:    []string{"ops@example.com"},
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
mail:
  smtp:
    host: smtp.example.com
    port: 587
    username: bot
  senderAddress: noreply@example.com
  senderName: Alerts
  recipients:
    - ops@example.com
    - dev@example.com
  level: warning
  headers:
    - "X-Priority: 1"
colorThresholds:
  error: 40
server:
  listenAddress: 127.0.0.1:9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com", cfg.Mail.SMTP.Host)
	assert.Equal(t, 587, cfg.Mail.SMTP.Port)
	assert.Equal(t, []string{"ops@example.com", "dev@example.com"}, cfg.Mail.Recipients)
	assert.Equal(t, record.Warning, cfg.Mail.Level)
	assert.Equal(t, []string{"X-Priority: 1"}, cfg.Mail.Headers)
	assert.Equal(t, DefaultSubject, cfg.Mail.Subject)
	assert.Equal(t, record.Level(40), cfg.ColorThresholds.Error)
	assert.Equal(t, record.Warning, cfg.ColorThresholds.Warning)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.ListenAddress)
	assert.NoError(t, cfg.ValidateMail())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "mail: [unterminated"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "mail:\n  level: shouting\n"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	var cfg Config
	cfg.Defaults()

	assert.Equal(t, 25, cfg.Mail.SMTP.Port)
	assert.Equal(t, record.Error, cfg.Mail.Level)
	assert.Equal(t, ColorThresholds{Error: record.Error, Warning: record.Warning, Info: record.Info}, cfg.ColorThresholds)
	assert.Equal(t, ":8080", cfg.Server.ListenAddress)
	assert.False(t, cfg.Mail.SMTP.InsecureSkipVerify, "insecure TLS must be opt-in")
	assert.Equal(t, Telemetry{Exporter: "otlp", Endpoint: "localhost:4317", SamplingRate: 1.0}, cfg.Telemetry)
}

func TestValidateTelemetry(t *testing.T) {
	tests := []struct {
		name    string
		tel     Telemetry
		wantErr bool
	}{
		{name: "defaults", tel: Telemetry{}},
		{name: "stdout", tel: Telemetry{Enabled: true, Exporter: "stdout", SamplingRate: 0.25}},
		{name: "unknown exporter", tel: Telemetry{Enabled: true, Exporter: "zipkin"}, wantErr: true},
		{name: "sampling above one", tel: Telemetry{SamplingRate: 1.5}, wantErr: true},
		{name: "negative sampling", tel: Telemetry{SamplingRate: -0.1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Telemetry: tt.tel}
			err := cfg.ValidateTelemetry()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMail(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Mail)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Mail) {}},
		{name: "missing host", mutate: func(m *Mail) { m.SMTP.Host = "" }, wantErr: true},
		{name: "port out of range", mutate: func(m *Mail) { m.SMTP.Port = 70000 }, wantErr: true},
		{name: "bad sender", mutate: func(m *Mail) { m.SenderAddress = "not-an-address" }, wantErr: true},
		{name: "no recipients", mutate: func(m *Mail) { m.Recipients = nil }, wantErr: true},
		{name: "bad recipient", mutate: func(m *Mail) { m.Recipients = []string{"ops@example.com", "nope"} }, wantErr: true},
		{name: "incomplete keyring ref", mutate: func(m *Mail) { m.SMTP.PasswordKeyring = &KeyringRef{Service: "loghtml"} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Mail: validMail()}
			tt.mutate(&cfg.Mail)
			err := cfg.ValidateMail()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolvePassword(t *testing.T) {
	keyring.MockInit()

	t.Run("plain password", func(t *testing.T) {
		pw, err := SMTP{Password: "file-secret"}.ResolvePassword()
		require.NoError(t, err)
		assert.Equal(t, "file-secret", pw)
	})

	t.Run("keyring", func(t *testing.T) {
		require.NoError(t, keyring.Set("loghtml", "bot", "keyring-secret"))
		s := SMTP{Password: "file-secret", PasswordKeyring: &KeyringRef{Service: "loghtml", User: "bot"}}
		pw, err := s.ResolvePassword()
		require.NoError(t, err)
		assert.Equal(t, "keyring-secret", pw)
	})

	t.Run("keyring entry missing", func(t *testing.T) {
		s := SMTP{PasswordKeyring: &KeyringRef{Service: "loghtml", User: "nobody"}}
		_, err := s.ResolvePassword()
		assert.Error(t, err)
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv(PasswordEnv, "env-secret")
		s := SMTP{Password: "file-secret", PasswordKeyring: &KeyringRef{Service: "loghtml", User: "bot"}}
		pw, err := s.ResolvePassword()
		require.NoError(t, err)
		assert.Equal(t, "env-secret", pw)
	})
}
