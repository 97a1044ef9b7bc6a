package mail

import (
	"errors"
	"fmt"
	"mime"
	"net/textproto"
	"strings"
)

const (
	// MIMEVersionHeader declares a MIME message.
	MIMEVersionHeader = "MIME-Version: 1.0"
	// HTMLContentTypeHeader marks the body as UTF-8 HTML.
	HTMLContentTypeHeader = `Content-Type: text/html; charset="utf8"`
)

var (
	ErrHeaderInjection = errors.New("header contains a line break")
	ErrMalformedHeader = errors.New("header must have the form \"Name: value\"")
)

// HTMLHeaders returns the header lines that mark outgoing mail as HTML.
func HTMLHeaders() []string {
	return []string{MIMEVersionHeader, HTMLContentTypeHeader}
}

// Header is a single parsed header line.
type Header struct {
	Name  string
	Value string
}

func (h Header) String() string {
	return h.Name + ": " + h.Value
}

// key is the canonical name gomail uses in its header map.
func (h Header) key() string {
	return textproto.CanonicalMIMEHeaderKey(h.Name)
}

// ParseHeader parses and validates a "Name: value" line.
func ParseHeader(line string) (Header, error) {
	if strings.ContainsAny(line, "\r\n") {
		return Header{}, fmt.Errorf("%w: %q", ErrHeaderInjection, line)
	}
	name, value, ok := strings.Cut(line, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.ContainsAny(name, " \t") {
		return Header{}, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}
	h := Header{
		Name:  name,
		Value: strings.TrimSpace(value),
	}
	if h.key() == "Content-Type" {
		if _, _, err := mime.ParseMediaType(h.Value); err != nil {
			return Header{}, fmt.Errorf("invalid content type %q: %w", h.Value, err)
		}
	}
	return h, nil
}

// bodyType reports the media type and charset selected by the headers.
func bodyType(headers []Header) (mediaType, charset string) {
	mediaType, charset = "text/plain", "UTF-8"
	for _, h := range headers {
		if h.key() != "Content-Type" {
			continue
		}
		mt, params, err := mime.ParseMediaType(h.Value)
		if err != nil {
			continue
		}
		mediaType = mt
		if cs := params["charset"]; cs != "" {
			charset = cs
		}
	}
	return mediaType, charset
}
