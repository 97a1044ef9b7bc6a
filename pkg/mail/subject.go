package mail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/telekom/loghtml/pkg/record"
)

// SubjectData is exposed to subject templates.
type SubjectData struct {
	Message   string
	Level     int
	LevelName string
	Channel   string
	// Count is the number of records in the mail.
	Count int
}

func parseSubject(text string) (*template.Template, error) {
	t, err := template.New("subject").Funcs(sprig.TxtFuncMap()).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid subject template: %w", err)
	}
	return t, nil
}

// renderSubject renders the subject for a batch using its most severe record.
// Line breaks are folded so the result is always a single header line.
func renderSubject(t *template.Template, records []record.Record) (string, error) {
	top := mostSevere(records)
	data := SubjectData{
		Message:   top.Message,
		Level:     int(top.Level),
		LevelName: top.Level.Name(),
		Channel:   top.Channel,
		Count:     len(records),
	}
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render subject: %w", err)
	}
	return strings.Join(strings.Fields(b.String()), " "), nil
}

func mostSevere(records []record.Record) record.Record {
	var top record.Record
	for i, r := range records {
		if i == 0 || r.Level > top.Level {
			top = r
		}
	}
	return top
}
