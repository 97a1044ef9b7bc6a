package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Record is a single log event.
type Record struct {
	Message  string    `json:"message"`
	Level    Level     `json:"level"`
	Channel  string    `json:"channel,omitempty"`
	Datetime time.Time `json:"datetime"`
	Context  Fields    `json:"context,omitempty"`
	Extra    Fields    `json:"extra,omitempty"`
}

// New returns a record stamped with the current time.
func New(level Level, message string) Record {
	return Record{
		Message:  message,
		Level:    level,
		Datetime: time.Now(),
	}
}

// Field is one key/value pair of contextual metadata.
type Field struct {
	Key   string
	Value any
}

// Text coerces the value to a string. It never fails.
func (f Field) Text() string {
	switch v := f.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		// fmt recovers from panicking String and Error methods, such as
		// those of typed nil pointers.
		return fmt.Sprint(v)
	}
}

// Fields is an ordered list of key/value pairs; iteration order is insertion order.
type Fields []Field

// With returns a copy of fs with key set to value. An existing key keeps its position.
func (fs Fields) With(key string, value any) Fields {
	out := make(Fields, len(fs), len(fs)+1)
	copy(out, fs)
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, Field{Key: key, Value: value})
}

// Get returns the value stored under key.
func (fs Fields) Get(key string) (any, bool) {
	for _, f := range fs {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes the fields as a JSON object in insertion order.
func (fs Fields) MarshalJSON() ([]byte, error) {
	if fs == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object and keeps the order of its keys.
func (fs *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*fs = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("fields must be a JSON object")
	}
	out := Fields{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out = append(out, Field{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*fs = out
	return nil
}
