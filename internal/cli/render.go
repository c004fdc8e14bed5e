package cli

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Renderer turns a markdown reply into terminal output.
type Renderer func(markdown string) string

// plainRenderer prints replies unchanged.
func plainRenderer(markdown string) string {
	return strings.TrimRight(markdown, "\n") + "\n"
}

// newRenderer renders markdown with glamour, falling back to plain text
// when the renderer cannot be built or fails on a reply.
func newRenderer(plain bool) Renderer {
	if plain {
		return plainRenderer
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return plainRenderer
	}
	return func(markdown string) string {
		out, err := tr.Render(markdown)
		if err != nil {
			return plainRenderer(markdown)
		}
		return out
	}
}
