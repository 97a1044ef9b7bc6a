package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/telekom/loghtml/pkg/config"
	"github.com/telekom/loghtml/pkg/formatter"
	"github.com/telekom/loghtml/pkg/record"
)

var errNoRecords = errors.New("no records in input")

// readRecords decodes records from the named file, or from stdin when the
// argument is absent or "-".
func (rt *runtimeState) readRecords(args []string) ([]record.Record, error) {
	var in io.Reader = rt.reader
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open records: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		in = f
	}
	records, err := record.Decode(in)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errNoRecords
	}
	return records, nil
}

func newFormatter(cfg config.Config) *formatter.HTMLFormatter {
	return formatter.NewHTMLFormatter(formatter.WithColorTable(formatter.NewColorTable(
		cfg.ColorThresholds.Error,
		cfg.ColorThresholds.Warning,
		cfg.ColorThresholds.Info,
	)))
}
