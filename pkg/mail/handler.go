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
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/telekom/loghtml/pkg/config"
	"github.com/telekom/loghtml/pkg/formatter"
	"github.com/telekom/loghtml/pkg/metrics"
	"github.com/telekom/loghtml/pkg/record"
	"github.com/telekom/loghtml/pkg/telemetry"
)

var (
	ErrNoRecipients = errors.New("mail handler needs at least one recipient")
	ErrNoSender     = errors.New("mail handler needs a sender address")
)

// Handler mails log records. It renders records with its formatter and
// composes messages using its header list, which defaults to HTMLHeaders.
// Handle and HandleBatch are safe for concurrent use.
type Handler struct {
	sender     Sender
	formatter  formatter.Formatter
	from       string
	senderName string
	to         []string
	subject    *template.Template
	minLevel   record.Level
	log        *zap.SugaredLogger

	mu      sync.RWMutex
	headers []Header
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler) error

// WithFormatter replaces the default HTML formatter.
func WithFormatter(f formatter.Formatter) HandlerOption {
	return func(h *Handler) error {
		if f == nil {
			return errors.New("formatter is nil")
		}
		h.formatter = f
		return nil
	}
}

// WithSubject sets the subject template.
func WithSubject(text string) HandlerOption {
	return func(h *Handler) error {
		t, err := parseSubject(text)
		if err != nil {
			return err
		}
		h.subject = t
		return nil
	}
}

// WithMinLevel sets the lowest level that is mailed.
func WithMinLevel(level record.Level) HandlerOption {
	return func(h *Handler) error {
		h.minLevel = level
		return nil
	}
}

// WithSenderName sets the display name used in the From header.
func WithSenderName(name string) HandlerOption {
	return func(h *Handler) error {
		h.senderName = name
		return nil
	}
}

// WithHeaders replaces the header list.
func WithHeaders(lines ...string) HandlerOption {
	return func(h *Handler) error {
		headers := make([]Header, 0, len(lines))
		for _, line := range lines {
			parsed, err := ParseHeader(line)
			if err != nil {
				return err
			}
			headers = append(headers, parsed)
		}
		h.headers = headers
		return nil
	}
}

// WithLogger sets the logger for delivery diagnostics. It must not write back
// into this handler.
func WithLogger(log *zap.SugaredLogger) HandlerOption {
	return func(h *Handler) error {
		if log != nil {
			h.log = log.Named("mail-handler")
		}
		return nil
	}
}

// NewHandler returns a handler sending HTML mail from one address to the given recipients.
func NewHandler(sender Sender, from string, to []string, opts ...HandlerOption) (*Handler, error) {
	if sender == nil {
		return nil, errors.New("sender is nil")
	}
	if strings.TrimSpace(from) == "" {
		return nil, ErrNoSender
	}
	if len(to) == 0 {
		return nil, ErrNoRecipients
	}
	subject, err := parseSubject(config.DefaultSubject)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		sender:    sender,
		formatter: formatter.NewHTMLFormatter(),
		from:      from,
		to:        append([]string(nil), to...),
		subject:   subject,
		minLevel:  record.Error,
		log:       zap.NewNop().Sugar(),
	}
	if err := WithHeaders(HTMLHeaders()...)(h); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// NewHandlerFromConfig builds the sender, formatter and handler described by cfg.
func NewHandlerFromConfig(cfg config.Config, log *zap.SugaredLogger) (*Handler, error) {
	if err := cfg.ValidateMail(); err != nil {
		return nil, err
	}
	sender, err := NewSender(cfg.Mail.SMTP, log)
	if err != nil {
		return nil, err
	}
	return NewHandlerForSender(cfg, sender, log)
}

// NewHandlerForSender applies the mail settings of cfg to a handler that
// delivers through sender.
func NewHandlerForSender(cfg config.Config, sender Sender, log *zap.SugaredLogger) (*Handler, error) {
	if err := cfg.ValidateMail(); err != nil {
		return nil, err
	}
	f := formatter.NewHTMLFormatter(formatter.WithColorTable(formatter.NewColorTable(
		cfg.ColorThresholds.Error,
		cfg.ColorThresholds.Warning,
		cfg.ColorThresholds.Info,
	)))
	h, err := NewHandler(sender, cfg.Mail.SenderAddress, cfg.Mail.Recipients,
		WithFormatter(f),
		WithSubject(cfg.Mail.Subject),
		WithMinLevel(cfg.Mail.Level),
		WithSenderName(cfg.Mail.SenderName),
		WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	for _, line := range cfg.Mail.Headers {
		if err := h.AddHeader(line); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// AddHeader appends a header line to every outgoing message.
func (h *Handler) AddHeader(line string) error {
	parsed, err := ParseHeader(line)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.headers = append(h.headers, parsed)
	return nil
}

// Headers returns the configured header lines.
func (h *Handler) Headers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.headers))
	for _, hd := range h.headers {
		out = append(out, hd.String())
	}
	return out
}

// MinLevel is the lowest level this handler mails.
func (h *Handler) MinLevel() record.Level {
	return h.minLevel
}

// IsHandling reports whether records at level would be mailed.
func (h *Handler) IsHandling(level record.Level) bool {
	return level >= h.minLevel
}

// Handle mails a single record if it passes the level filter.
func (h *Handler) Handle(ctx context.Context, r record.Record) error {
	return h.HandleBatch(ctx, []record.Record{r})
}

// HandleBatch mails all records that pass the level filter in one message.
// Nothing is sent when no record passes.
func (h *Handler) HandleBatch(ctx context.Context, records []record.Record) error {
	accepted := make([]record.Record, 0, len(records))
	for _, r := range records {
		if h.IsHandling(r.Level) {
			accepted = append(accepted, r)
		}
	}
	if skipped := len(records) - len(accepted); skipped > 0 {
		metrics.MailRecordsFiltered.WithLabelValues(h.sender.GetHost()).Add(float64(skipped))
	}
	if len(accepted) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, span := telemetry.Tracer("mail").Start(ctx, "mail.send", trace.WithAttributes(
		attribute.Int("loghtml.records", len(accepted)),
		attribute.Int("loghtml.recipients", len(h.to)),
		attribute.String("loghtml.level", mostSevere(accepted).Level.Name()),
	))
	defer span.End()

	msg, err := h.Compose(accepted)
	if err == nil {
		h.log.Debugw("Sending log mail", "records", len(accepted), "recipients", len(h.to), "subject", msg.GetHeader("Subject"))
		if err = h.sender.Send(msg); err != nil {
			err = fmt.Errorf("failed to send log mail: %w", err)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mail not sent")
		return err
	}
	return nil
}

// Compose builds the message for records without sending it.
func (h *Handler) Compose(records []record.Record) (*gomail.Message, error) {
	subject, err := renderSubject(h.subject, records)
	if err != nil {
		return nil, err
	}

	h.mu.RLock()
	headers := append([]Header(nil), h.headers...)
	h.mu.RUnlock()

	mediaType, charset := bodyType(headers)
	msg := gomail.NewMessage(gomail.SetCharset(charset))

	grouped := make(map[string][]string)
	var order []string
	for _, hd := range headers {
		name := hd.key()
		if name == "Content-Type" {
			continue
		}
		if _, seen := grouped[name]; !seen {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], hd.Value)
	}
	for _, name := range order {
		msg.SetHeader(name, grouped[name]...)
	}

	if h.senderName != "" {
		msg.SetAddressHeader("From", h.from, h.senderName)
	} else {
		msg.SetHeader("From", h.from)
	}
	msg.SetHeader("To", h.to...)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-Id", messageID(h.from))

	var body string
	if len(records) == 1 {
		body = h.formatter.Format(records[0])
	} else {
		body = h.formatter.FormatBatch(records)
	}
	msg.SetBody(mediaType, body)
	return msg, nil
}

func messageID(from string) string {
	domain := "localhost"
	if _, d, ok := strings.Cut(from, "@"); ok && d != "" {
		domain = d
	}
	return "<" + uuid.NewString() + "@" + domain + ">"
}
