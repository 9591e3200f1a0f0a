package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const (
	cleanColorConstant    = "2"
	warningColorConstant  = "3"
	failureColorConstant  = "1"
	emphasisColorConstant = "12"
)

// OutputStyler decorates report fragments.
type OutputStyler interface {
	Clean(text string) string
	Unclean(text string) string
	Success(text string) string
	Failure(text string) string
	Emphasis(text string) string
}

// PlainOutputStyler returns text unchanged.
type PlainOutputStyler struct{}

// Clean implements OutputStyler.
func (PlainOutputStyler) Clean(text string) string { return text }

// Unclean implements OutputStyler.
func (PlainOutputStyler) Unclean(text string) string { return text }

// Success implements OutputStyler.
func (PlainOutputStyler) Success(text string) string { return text }

// Failure implements OutputStyler.
func (PlainOutputStyler) Failure(text string) string { return text }

// Emphasis implements OutputStyler.
func (PlainOutputStyler) Emphasis(text string) string { return text }

// TerminalOutputStyler colors fragments with lipgloss styles bound to one writer.
type TerminalOutputStyler struct {
	cleanStyle    lipgloss.Style
	uncleanStyle  lipgloss.Style
	successStyle  lipgloss.Style
	failureStyle  lipgloss.Style
	emphasisStyle lipgloss.Style
}

// NewTerminalOutputStyler builds styles using a renderer that inspects the writer's color support.
func NewTerminalOutputStyler(writer io.Writer) *TerminalOutputStyler {
	renderer := lipgloss.NewRenderer(writer)
	return &TerminalOutputStyler{
		cleanStyle:    renderer.NewStyle().Foreground(lipgloss.Color(cleanColorConstant)),
		uncleanStyle:  renderer.NewStyle().Foreground(lipgloss.Color(warningColorConstant)).Bold(true),
		successStyle:  renderer.NewStyle().Foreground(lipgloss.Color(cleanColorConstant)),
		failureStyle:  renderer.NewStyle().Foreground(lipgloss.Color(failureColorConstant)).Bold(true),
		emphasisStyle: renderer.NewStyle().Foreground(lipgloss.Color(emphasisColorConstant)),
	}
}

// Clean implements OutputStyler.
func (styler *TerminalOutputStyler) Clean(text string) string {
	return styler.cleanStyle.Render(text)
}

// Unclean implements OutputStyler.
func (styler *TerminalOutputStyler) Unclean(text string) string {
	return styler.uncleanStyle.Render(text)
}

// Success implements OutputStyler.
func (styler *TerminalOutputStyler) Success(text string) string {
	return styler.successStyle.Render(text)
}

// Failure implements OutputStyler.
func (styler *TerminalOutputStyler) Failure(text string) string {
	return styler.failureStyle.Render(text)
}

// Emphasis implements OutputStyler.
func (styler *TerminalOutputStyler) Emphasis(text string) string {
	return styler.emphasisStyle.Render(text)
}

// NewOutputStyler colors output only when writer is a terminal; pipes and buffers get plain text.
func NewOutputStyler(writer io.Writer) OutputStyler {
	if !IsTerminal(writer) {
		return PlainOutputStyler{}
	}
	return NewTerminalOutputStyler(writer)
}

// IsTerminal reports whether the writer is an interactive terminal.
func IsTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile || file == nil {
		return false
	}
	fileDescriptor := file.Fd()
	return isatty.IsTerminal(fileDescriptor) || isatty.IsCygwinTerminal(fileDescriptor)
}
