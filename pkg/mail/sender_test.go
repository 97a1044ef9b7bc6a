package mail

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/telekom/loghtml/pkg/config"
	"github.com/telekom/loghtml/pkg/metrics"
)

// fakeDialer records messages instead of talking SMTP.
type fakeDialer struct {
	err  error
	sent []*gomail.Message
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestNewSender(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SMTP
	}{
		{name: "Basic mail configuration", cfg: config.SMTP{Host: "smtp.example.com", Port: 587, Username: "bot", Password: "pw"}},
		{name: "InsecureSkipVerify", cfg: config.SMTP{Host: "smtp.internal", Port: 25, InsecureSkipVerify: true}},
		{name: "Unauthenticated relay", cfg: config.SMTP{Host: "relay.internal", Port: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSender(tt.cfg, zap.NewNop().Sugar())
			require.NoError(t, err)
			assert.Implements(t, (*Sender)(nil), s)
			assert.Equal(t, tt.cfg.Host, s.GetHost())
			assert.Equal(t, tt.cfg.Port, s.GetPort())
		})
	}
}

func TestNewSenderPrefersEnvironmentPassword(t *testing.T) {
	t.Setenv(config.PasswordEnv, "")
	// the keyring is not consulted when the environment provides a password
	_, err := NewSender(config.SMTP{Host: "h", Port: 25, PasswordKeyring: &config.KeyringRef{Service: "s", User: "u"}}, nil)
	assert.NoError(t, err)
}

func TestSender_Send(t *testing.T) {
	host := "send-test.example.com"
	d := &fakeDialer{}
	s := NewSenderWithDialer(d, host, 25, nil)

	msg := gomail.NewMessage()
	msg.SetHeader("To", "ops@example.com")

	before := testutil.ToFloat64(metrics.MailSendSuccess.WithLabelValues(host))
	require.NoError(t, s.Send(msg))
	assert.Len(t, d.sent, 1)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.MailSendSuccess.WithLabelValues(host)))
}

func TestSender_SendFailureIsNotRetried(t *testing.T) {
	host := "fail-test.example.com"
	d := &countingDialer{err: errors.New("connection refused")}
	s := NewSenderWithDialer(d, host, 25, zap.NewNop().Sugar())

	before := testutil.ToFloat64(metrics.MailSendFailure.WithLabelValues(host))
	err := s.Send(gomail.NewMessage())
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 1, d.calls)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.MailSendFailure.WithLabelValues(host)))
}

type countingDialer struct {
	err   error
	calls int
}

func (d *countingDialer) DialAndSend(...*gomail.Message) error {
	d.calls++
	return d.err
}
