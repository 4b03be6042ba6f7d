// Package console prints the human-readable status lines of the updater.
//
// Lines are styled with lipgloss; the color profile is detected from the
// destination writer, so redirected output stays plain text.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes status lines to a single destination.
type Printer struct {
	out   io.Writer
	theme theme
}

type theme struct {
	header  lipgloss.Style
	step    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	hint    lipgloss.Style
}

// New returns a Printer writing to w, or to os.Stdout when w is nil.
func New(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}

	r := lipgloss.NewRenderer(w)

	return &Printer{
		out: w,
		theme: theme{
			header:  r.NewStyle().Bold(true),
			step:    r.NewStyle().Foreground(lipgloss.Color("12")),
			success: r.NewStyle().Foreground(lipgloss.Color("10")),
			warning: r.NewStyle().Foreground(lipgloss.Color("11")),
			failure: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			hint:    r.NewStyle().Faint(true),
		},
	}
}

// Header prints a bold section title surrounded by blank lines.
func (p *Printer) Header(title string) {
	p.println("")
	p.println(p.theme.header.Render(title))
	p.println("")
}

// Step announces the start of a pipeline step.
func (p *Printer) Step(format string, args ...any) {
	p.println(p.theme.step.Render("→ " + fmt.Sprintf(format, args...)))
}

// Success reports a step that completed.
func (p *Printer) Success(format string, args ...any) {
	p.println(p.theme.success.Render("✓ " + fmt.Sprintf(format, args...)))
}

// Warning reports a degraded but non-fatal outcome.
func (p *Printer) Warning(format string, args ...any) {
	p.println(p.theme.warning.Render("⚠ " + fmt.Sprintf(format, args...)))
}

// Failure reports a fatal outcome.
func (p *Printer) Failure(format string, args ...any) {
	p.println(p.theme.failure.Render("✗ " + fmt.Sprintf(format, args...)))
}

// Hint prints an indented, dimmed line such as a suggested command.
func (p *Printer) Hint(format string, args ...any) {
	p.println(p.theme.hint.Render("  " + fmt.Sprintf(format, args...)))
}

// Plain prints an unstyled line.
func (p *Printer) Plain(format string, args ...any) {
	p.println(fmt.Sprintf(format, args...))
}

func (p *Printer) println(line string) {
	_, _ = fmt.Fprintln(p.out, line)
}
