// Package console writes colored status lines for the operator.
package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Theme holds the styles used for each kind of status line.
type Theme struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Accent  lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultTheme builds the standard theme on r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Success: r.NewStyle().Foreground(lipgloss.Color("42")).SetString("✓"),
		Warning: r.NewStyle().Foreground(lipgloss.Color("214")).SetString("!"),
		Error:   r.NewStyle().Foreground(lipgloss.Color("196")).SetString("✗"),
		Info:    r.NewStyle().Foreground(lipgloss.Color("63")).SetString("•"),
		Accent:  r.NewStyle().Foreground(lipgloss.Color("211")).Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Printer writes status lines to one output.
type Printer struct {
	out      io.Writer
	theme    Theme
	terminal bool
}

// Options configures a Printer.
type Options struct {
	// NoColor forces plain output even on a color terminal.
	NoColor bool
	// Theme replaces DefaultTheme when set.
	Theme *Theme
}

func New(out io.Writer, opts Options) *Printer {
	terminal := false
	if f, ok := out.(interface{ Fd() uintptr }); ok {
		terminal = isatty.IsTerminal(f.Fd())
	}

	r := lipgloss.NewRenderer(out)
	if opts.NoColor || !terminal {
		r.SetColorProfile(termenv.Ascii)
	}

	theme := DefaultTheme(r)
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	return &Printer{out: out, theme: theme, terminal: terminal}
}

// Theme returns the styles in use.
func (p *Printer) Theme() Theme {
	return p.theme
}

func (p *Printer) line(mark lipgloss.Style, format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintf(p.out, "%s %s\n", mark.String(), msg)
}

func (p *Printer) Success(format string, args ...any) { p.line(p.theme.Success, format, args...) }
func (p *Printer) Warn(format string, args ...any)    { p.line(p.theme.Warning, format, args...) }
func (p *Printer) Error(format string, args ...any)   { p.line(p.theme.Error, format, args...) }
func (p *Printer) Info(format string, args ...any)    { p.line(p.theme.Info, format, args...) }

// Accent renders s in the accent style, for versions and tags.
func (p *Printer) Accent(s string) string {
	return p.theme.Accent.Render(s)
}

// Field writes an aligned "label: value" line.
func (p *Printer) Field(label, value string) {
	fmt.Fprintf(p.out, "  %s %s\n", p.theme.Muted.Render(fmt.Sprintf("%-10s", label+":")), value)
}

// Steps renders name and status pairs as a table.
func (p *Printer) Steps(rows [][2]string) {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.AppendHeader(table.Row{"Step", "Status"})
	for _, r := range rows {
		t.AppendRow(table.Row{r[0], r[1]})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// Spin shows a spinner with message until the returned stop func is called.
// Outside a terminal it writes message as an info line instead.
func (p *Printer) Spin(message string) func() {
	if !p.terminal {
		p.Info("%s", message)

		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(p.out))
	s.Suffix = " " + message
	s.Color("cyan") //nolint:errcheck

	s.Start()

	return s.Stop
}
