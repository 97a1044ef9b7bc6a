package formatter

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/telekom/loghtml/pkg/metrics"
	"github.com/telekom/loghtml/pkg/record"
)

// Formatter converts records into text. Implementations must be safe for
// concurrent use.
type Formatter interface {
	Format(r record.Record) string
	FormatBatch(records []record.Record) string
}

// BatchSeparator is placed between documents produced by FormatBatch.
const BatchSeparator = "<hr/>"

const lineBreak = "\r\n"

var documentTemplate = template.Must(template.New("record").Parse(strings.Join([]string{
	`<html xmlns="http://www.w3.org/1999/xhtml">`,
	`<head>`,
	`    <meta http-equiv="Content-Type" content="text/html; charset=utf-8" />`,
	`    <meta name="viewport" content="width=device-width, initial-scale=1.0"/>`,
	`    <title>{{.Message}}</title>`,
	`</head>`,
	`<body>`,
	`    <h1>`,
	`        <span style="{{.LabelStyle}}">`,
	`{{.Message}}`,
	`        </span>`,
	`    </h1>`,
	`    <pre style="{{.PreStyle}}">{{.Dump}}</pre>`,
	`{{- if .Extra}}`,
	`   <table style="{{.TableStyle}}">`,
	`{{- range .Extra}}`,
	`       <tr>`,
	`           <td style="{{$.CellStyle}}">{{.Key}}</td>`,
	`           <td style="{{$.CellStyle}}"><code style="{{$.CodeStyle}}">{{.Value}}</code></td>`,
	`       </tr>`,
	`{{- end}}`,
	`   </table>`,
	`{{- end}}`,
	`</body>`,
	`</html>`,
}, lineBreak)))

type extraRow struct {
	Key   string
	Value string
}

type document struct {
	Message    string
	Dump       string
	Extra      []extraRow
	LabelStyle template.CSS
	PreStyle   template.CSS
	TableStyle template.CSS
	CellStyle  template.CSS
	CodeStyle  template.CSS
}

// HTMLFormatter renders each record as a styled HTML document.
type HTMLFormatter struct {
	styles *StyleSheet
	colors ColorTable
}

// Option configures an HTMLFormatter.
type Option func(*HTMLFormatter)

// WithStyleSheet replaces the default stylesheet.
func WithStyleSheet(s *StyleSheet) Option {
	return func(f *HTMLFormatter) {
		if s != nil {
			f.styles = s
		}
	}
}

// WithColorTable replaces the default severity colors.
func WithColorTable(t ColorTable) Option {
	return func(f *HTMLFormatter) {
		f.colors = t
	}
}

// NewHTMLFormatter returns a formatter using the default styles and colors
// unless overridden.
func NewHTMLFormatter(opts ...Option) *HTMLFormatter {
	f := &HTMLFormatter{
		styles: DefaultStyleSheet(),
		colors: DefaultColorTable(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format renders a single record as a complete HTML document.
func (f *HTMLFormatter) Format(r record.Record) string {
	r = normalize(r)
	doc := document{
		Message:    r.Message,
		Dump:       Dump(r),
		LabelStyle: template.CSS(f.styles.Lookup("label") + " background-color:" + f.colors.Color(r.Level)), //nolint:gosec // ColorTable only holds hex colors and CSS keywords
		PreStyle:   f.styles.css("pre"),
		TableStyle: f.styles.css("table"),
		CellStyle:  f.styles.css("td"),
		CodeStyle:  f.styles.css("code"),
	}
	for _, field := range r.Extra {
		doc.Extra = append(doc.Extra, extraRow{Key: field.Key, Value: field.Text()})
	}

	metrics.RecordsFormatted.WithLabelValues(r.Level.Name()).Inc()

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, doc); err != nil {
		return fallbackDocument(r.Message, err)
	}
	return buf.String()
}

// FormatBatch renders every record and joins the documents with BatchSeparator.
// An empty batch yields an empty string.
func (f *HTMLFormatter) FormatBatch(records []record.Record) string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, f.Format(r))
	}
	return strings.Join(out, BatchSeparator)
}

func fallbackDocument(message string, err error) string {
	escaped := html.EscapeString(message)
	return strings.Join([]string{
		`<html xmlns="http://www.w3.org/1999/xhtml">`,
		`<head><title>` + escaped + `</title></head>`,
		`<body><h1>` + escaped + `</h1><pre>` + html.EscapeString(err.Error()) + `</pre></body>`,
		`</html>`,
	}, lineBreak)
}
