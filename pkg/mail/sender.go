/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package mail

import (
	"crypto/tls"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/telekom/loghtml/pkg/config"
	"github.com/telekom/loghtml/pkg/metrics"
)

// Sender delivers composed messages. Delivery is attempted once; retries
// belong to the caller.
type Sender interface {
	Send(msg *gomail.Message) error
	GetHost() string
	GetPort() int
}

// Dialer is the part of *gomail.Dialer used by the sender.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type sender struct {
	dialer Dialer
	host   string
	port   int
	log    *zap.SugaredLogger
}

// NewSender creates an SMTP sender from the transport configuration.
func NewSender(cfg config.SMTP, log *zap.SugaredLogger) (Sender, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("mail-sender")

	password, err := cfg.ResolvePassword()
	if err != nil {
		return nil, err
	}

	log.Infow("Initializing mail sender", "host", cfg.Host, "port", cfg.Port, "user", cfg.Username)
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, password)
	if cfg.InsecureSkipVerify {
		log.Warn("InsecureSkipVerify is enabled for mail TLS connection")
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in
	}
	return NewSenderWithDialer(d, cfg.Host, cfg.Port, log), nil
}

// NewSenderWithDialer wraps an existing dialer.
func NewSenderWithDialer(d Dialer, host string, port int, log *zap.SugaredLogger) Sender {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &sender{dialer: d, host: host, port: port, log: log}
}

func (s *sender) Send(msg *gomail.Message) error {
	if err := s.dialer.DialAndSend(msg); err != nil {
		s.log.Errorw("Failed to send mail", "host", s.host, "port", s.port, "error", err)
		metrics.MailSendFailure.WithLabelValues(s.host).Inc()
		return err
	}
	s.log.Debugw("Mail sent", "host", s.host, "to", msg.GetHeader("To"))
	metrics.MailSendSuccess.WithLabelValues(s.host).Inc()
	return nil
}

func (s *sender) GetHost() string {
	return s.host
}

func (s *sender) GetPort() int {
	return s.port
}
