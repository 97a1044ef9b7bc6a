package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Level is an ordinal severity. Higher values are more severe.
type Level int

// Standard severity ladder of the host logging framework.
const (
	Debug     Level = 100
	Info      Level = 200
	Notice    Level = 250
	Warning   Level = 300
	Error     Level = 400
	Critical  Level = 500
	Alert     Level = 550
	Emergency Level = 600
)

var levelNames = map[Level]string{
	Debug:     "DEBUG",
	Info:      "INFO",
	Notice:    "NOTICE",
	Warning:   "WARNING",
	Error:     "ERROR",
	Critical:  "CRITICAL",
	Alert:     "ALERT",
	Emergency: "EMERGENCY",
}

// Name returns the upper-case level name, or the ordinal for non-standard levels.
func (l Level) Name() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return strconv.Itoa(int(l))
}

// ParseLevel accepts a level name (case-insensitive) or a numeric ordinal.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty level")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Level(n), nil
	}
	upper := strings.ToUpper(s)
	if upper == "WARN" {
		return Warning, nil
	}
	for l, name := range levelNames {
		if name == upper {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// UnmarshalJSON accepts both numbers and level names.
func (l *Level) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*l = Level(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("level must be a number or a name: %w", err)
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// UnmarshalYAML lets configuration files use level names.
func (l *Level) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
