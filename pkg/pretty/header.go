package pretty

import (
	"io"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// headerColors are the ANSI colors a random header style picks from.
var headerColors = []lipgloss.Color{"2", "3", "4", "5", "6", "7", "1"}

// HeaderConfig describes an application banner.
type HeaderConfig struct {
	Env Env
	// Prefix and Suffix are multi-line text placed around the values.
	Prefix string
	Suffix string
	// Style colors the banner text. RandomStyle picks a color instead.
	Style       *lipgloss.Style
	RandomStyle bool
	NoColor     bool
}

func (c HeaderConfig) style() *lipgloss.Style {
	if c.RandomStyle {
		s := lipgloss.NewStyle().Foreground(headerColors[rand.IntN(len(headerColors))])
		return &s
	}
	return c.Style
}

func bannerLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

func (c HeaderConfig) pretty() *Pretty {
	style := c.style()
	opts := []Option{
		WithPrefix(Banner{Lines: bannerLines(c.Prefix), Style: style}),
		WithSuffix(Banner{Lines: bannerLines(c.Suffix), Style: style}),
	}
	if c.NoColor {
		opts = append(opts, WithoutColor())
	}
	return New(c.Env, opts...)
}

// Header displays the banner on w and logs it on log. Either may be nil.
func Header(cfg HeaderConfig, w io.Writer, log *zap.Logger) error {
	p := cfg.pretty()
	if w != nil {
		if err := p.Display(w); err != nil {
			return err
		}
	}
	p.Trace(log)
	return nil
}
