package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Decode reads records from r. The input is either a JSON array of records, a
// single record object (which may span several lines), or a stream of record
// objects such as newline-delimited JSON.
func Decode(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to parse record array: %w", err)
		}
		return records, nil
	}

	var records []Record
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		start := skipSpace(trimmed, dec.InputOffset())
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to parse record on line %d: %w", lineAt(trimmed, start), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func skipSpace(data []byte, off int64) int {
	i := int(off)
	for i < len(data) {
		switch data[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}

// lineAt returns the 1-based line number of the byte at off.
func lineAt(data []byte, off int) int {
	return bytes.Count(data[:off], []byte{'\n'}) + 1
}
