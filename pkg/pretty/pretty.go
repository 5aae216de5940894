// Package pretty prints captured build metadata at runtime.
package pretty

import (
	"fmt"
	"io"
	"sort"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLabelWidth    = 16
	defaultCategoryWidth = 7
)

var (
	boldBlue  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	boldGreen = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
)

// Var is one displayable value.
type Var struct {
	Key      string
	Category string
	Label    string
	Value    string
}

// Banner is a block of lines printed before or after the values.
type Banner struct {
	Lines []string
	Style *lipgloss.Style
	Level zapcore.Level
}

func (b *Banner) render(line string, noColor bool) string {
	if b.Style == nil || noColor {
		return line
	}
	return b.Style.Render(line)
}

// Pretty formats an Env.
type Pretty struct {
	env        Env
	prefix     *Banner
	suffix     *Banner
	filter     map[string]bool
	category   bool
	keyStyle   lipgloss.Style
	valueStyle lipgloss.Style
	noColor    bool
	level      zapcore.Level
	flatten    bool
}

// Option configures a Pretty.
type Option func(*Pretty)

// WithPrefix prints b before the values.
func WithPrefix(b Banner) Option {
	return func(p *Pretty) { p.prefix = &b }
}

// WithSuffix prints b after the values.
func WithSuffix(b Banner) Option {
	return func(p *Pretty) { p.suffix = &b }
}

// WithFilter hides the named keys.
func WithFilter(keys ...string) Option {
	return func(p *Pretty) {
		for _, k := range keys {
			p.filter[k] = true
		}
	}
}

// WithoutCategory drops the "(category)" column.
func WithoutCategory() Option {
	return func(p *Pretty) { p.category = false }
}

// WithKeyStyle styles labels.
func WithKeyStyle(s lipgloss.Style) Option {
	return func(p *Pretty) { p.keyStyle = s }
}

// WithValueStyle styles values.
func WithValueStyle(s lipgloss.Style) Option {
	return func(p *Pretty) { p.valueStyle = s }
}

// WithoutColor disables every style, banners included.
func WithoutColor() Option {
	return func(p *Pretty) { p.noColor = true }
}

// WithLevel sets the level Trace logs values at.
func WithLevel(l zapcore.Level) Option {
	return func(p *Pretty) { p.level = l }
}

// WithFlatten serializes only the values when there is no banner.
func WithFlatten() Option {
	return func(p *Pretty) { p.flatten = true }
}

// New returns a Pretty for env. Options apply in order.
func New(env Env, opts ...Option) *Pretty {
	p := &Pretty{
		env:        env,
		filter:     make(map[string]bool),
		category:   true,
		keyStyle:   boldBlue,
		valueStyle: boldGreen,
		level:      zapcore.InfoLevel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Vars returns the displayable values sorted by key.
func (p *Pretty) Vars() []Var {
	keys := make([]string, 0, len(p.env))
	for k, v := range p.env {
		if v == "" || p.filter[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vars := make([]Var, 0, len(keys))
	for _, k := range keys {
		category, label := splitKey(k)
		vars = append(vars, Var{Key: k, Category: category, Label: label, Value: p.env[k]})
	}
	return vars
}

// widths returns the label and category column widths.
func widths(vars []Var) (label, category int) {
	if len(vars) == 0 {
		return defaultLabelWidth, defaultCategoryWidth
	}
	for _, v := range vars {
		label = max(label, utf8.RuneCountInString(v.Label))
		category = max(category, utf8.RuneCountInString(v.Category))
	}
	return label, category
}

func (p *Pretty) keyText(v Var, labelWidth, categoryWidth int) string {
	if !p.category {
		return fmt.Sprintf("%*s", labelWidth, v.Label)
	}
	return fmt.Sprintf("%*s (%*s)", labelWidth, v.Label, categoryWidth, v.Category)
}

func (p *Pretty) styled(s lipgloss.Style, text string) string {
	if p.noColor {
		return text
	}
	return s.Render(text)
}

// Display writes the prefix, one right-aligned line per value, then the suffix.
func (p *Pretty) Display(w io.Writer) error {
	if p.prefix != nil {
		for _, line := range p.prefix.Lines {
			if _, err := fmt.Fprintln(w, p.prefix.render(line, p.noColor)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	vars := p.Vars()
	lw, cw := widths(vars)
	for _, v := range vars {
		key := p.styled(p.keyStyle, p.keyText(v, lw, cw))
		if _, err := fmt.Fprintf(w, "%s: %s\n", key, p.styled(p.valueStyle, v.Value)); err != nil {
			return err
		}
	}

	if p.suffix != nil {
		for _, line := range p.suffix.Lines {
			if _, err := fmt.Fprintln(w, p.suffix.render(line, p.noColor)); err != nil {
				return err
			}
		}
	}
	return nil
}
