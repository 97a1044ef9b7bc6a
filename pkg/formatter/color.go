package formatter

import (
	"cmp"

	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slices"

	"github.com/telekom/loghtml/pkg/record"
)

// Label colors by severity.
const (
	ColorError   = "#b94a48"
	ColorWarning = "#f89406"
	ColorInfo    = "#3a87ad"
	ColorDefault = "#999999"
)

// Threshold assigns Color to every level at or above Level.
type Threshold struct {
	Level record.Level
	Color string
}

// ColorTable selects a label color for a severity level. Thresholds are
// evaluated highest first; the first one not above the level wins.
type ColorTable struct {
	thresholds []Threshold
	fallback   string
}

// NewColorTable builds the standard three-step table from the host's
// ERROR, WARNING and INFO ordinals.
func NewColorTable(errorLevel, warningLevel, infoLevel record.Level) ColorTable {
	return NewCustomColorTable(ColorDefault,
		Threshold{Level: errorLevel, Color: ColorError},
		Threshold{Level: warningLevel, Color: ColorWarning},
		Threshold{Level: infoLevel, Color: ColorInfo},
	)
}

// colorTag accepts hex colors and CSS color keywords. Anything else could
// break out of the label's style declaration.
const colorTag = "hexcolor|alpha"

var validate = validator.New()

func safeColor(c string) string {
	if validate.Var(c, colorTag) != nil {
		return ColorDefault
	}
	return c
}

// NewCustomColorTable builds a table from arbitrary thresholds. Colors that
// are neither hex values nor CSS keywords are replaced with ColorDefault.
func NewCustomColorTable(fallback string, thresholds ...Threshold) ColorTable {
	if fallback != "" {
		fallback = safeColor(fallback)
	}
	sorted := slices.Clone(thresholds)
	for i := range sorted {
		sorted[i].Color = safeColor(sorted[i].Color)
	}
	slices.SortStableFunc(sorted, func(a, b Threshold) int {
		return cmp.Compare(b.Level, a.Level)
	})
	return ColorTable{thresholds: sorted, fallback: fallback}
}

// DefaultColorTable uses the standard record levels.
func DefaultColorTable() ColorTable {
	return NewColorTable(record.Error, record.Warning, record.Info)
}

// Color returns the label color for level.
func (t ColorTable) Color(level record.Level) string {
	for _, th := range t.thresholds {
		if level >= th.Level {
			return th.Color
		}
	}
	if t.fallback == "" {
		return ColorDefault
	}
	return t.fallback
}
