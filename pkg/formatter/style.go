package formatter

import (
	"html/template"
	"strings"
)

// StyleGroup is a list of CSS declarations shared by one or more tags.
type StyleGroup struct {
	Tags         []string
	Declarations []string
}

// StyleSheet maps tag names to the inline styles applied to them. A tag's
// style is the union, in declaration order, of every group that names it.
// A StyleSheet is immutable once built.
type StyleSheet struct {
	groups [][]string
	byTag  map[string][]int
}

// NewStyleSheet builds a stylesheet from groups in declaration order.
func NewStyleSheet(groups ...StyleGroup) *StyleSheet {
	s := &StyleSheet{
		groups: make([][]string, 0, len(groups)),
		byTag:  make(map[string][]int),
	}
	for _, g := range groups {
		id := len(s.groups)
		s.groups = append(s.groups, append([]string(nil), g.Declarations...))
		seen := make(map[string]bool, len(g.Tags))
		for _, tag := range g.Tags {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			s.byTag[tag] = append(s.byTag[tag], id)
		}
	}
	return s
}

// Lookup returns the space-separated declarations for tag. Unknown tags yield "".
func (s *StyleSheet) Lookup(tag string) string {
	var b strings.Builder
	for _, id := range s.byTag[tag] {
		for _, decl := range s.groups[id] {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(decl)
		}
	}
	return b.String()
}

// css wraps a lookup for use in a style attribute. Declarations are trusted
// constants, never record data.
func (s *StyleSheet) css(tag string) template.CSS {
	return template.CSS(s.Lookup(tag)) //nolint:gosec // constant stylesheet
}

// DefaultStyleSheet returns the Bootstrap-derived styles used for email output.
func DefaultStyleSheet() *StyleSheet {
	return NewStyleSheet(
		StyleGroup{
			Tags: []string{"table"},
			Declarations: []string{
				"max-width: 100%;",
				"background-color: transparent;",
				"border-collapse: collapse;",
				"border-spacing: 0;",
			},
		},
		StyleGroup{
			Tags: []string{"td"},
			Declarations: []string{
				"padding: 4px 5px;",
				"line-height: 20px;",
				"text-align: left;",
				"vertical-align: top;",
				"border-top: 1px solid #dddddd;",
			},
		},
		StyleGroup{
			Tags: []string{"pre", "code"},
			Declarations: []string{
				"padding: 0 3px 2px;",
				"font-size: 12px;",
				"color: #333333;",
				"border-radius: 3px;",
			},
		},
		StyleGroup{
			Tags: []string{"code"},
			Declarations: []string{
				"padding: 2px 4px;",
				"color: #d14;",
				"white-space: nowrap;",
				"background-color: #f7f7f9;",
				"border: 1px solid #e1e1e8;",
			},
		},
		StyleGroup{
			Tags: []string{"pre"},
			Declarations: []string{
				"display: block;",
				"padding: 9.5px;",
				"margin: 0 0 10px;",
				"font-size: 13px;",
				"line-height: 20px;",
				"word-break: break-all;",
				"word-wrap: break-word;",
				"white-space: pre;",
				"white-space: pre-wrap;",
				"background-color: #f5f5f5;",
				"border: 1px solid #ccc;",
				"border: 1px solid rgba(0, 0, 0, 0.15);",
				"border-radius: 4px;",
			},
		},
		StyleGroup{
			Tags: []string{"label", "badge"},
			Declarations: []string{
				"display: inline-block;",
				"padding: 2px 4px;",
				"font-weight: bold;",
				"color: #ffffff;",
				"text-shadow: 0 -1px 0 rgba(0, 0, 0, 0.25);",
				"white-space: nowrap;",
				"vertical-align: baseline;",
				"background-color: #999999;",
			},
		},
		StyleGroup{
			Tags:         []string{"label"},
			Declarations: []string{"border-radius: 3px;"},
		},
		StyleGroup{
			Tags: []string{"badge"},
			Declarations: []string{
				"padding-right: 9px;",
				"padding-left: 9px;",
				"border-radius: 9px;",
			},
		},
	)
}
