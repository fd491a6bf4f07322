package styles

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

var ActiveAccent = ColorAccent

var colorRegex = regexp.MustCompile(`^(#[0-9A-Fa-f]{6}|#[0-9A-Fa-f]{3}|[0-9]{1,3})$`)

// InitAccent switches the accent color used for titles and headers. Values
// that are neither an ANSI code nor a hex color keep the default.
func InitAccent(accent string) {
	if accent == "" || !colorRegex.MatchString(accent) {
		accent = ColorAccent
	}
	ActiveAccent = accent
	reloadAllStyles()
}

// reloadAllStyles updates all style variables based on ActiveAccent
func reloadAllStyles() {
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ActiveAccent))

	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorSuccess)).
		Bold(true)

	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorError)).
		Bold(true)

	Faint = lipgloss.NewStyle().
		Faint(true)

	Separator = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorFaint))

	Keyword = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorKeyword)).
		Bold(true)

	Literal = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorString))

	TableHeader = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ActiveAccent)).
		Bold(true)

	TableCell = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorCellNormal))

	TableBorder = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorFaint))

	TableNull = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorNull)).
		Italic(true)

	PromptFocused = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ActiveAccent)).
		Bold(true)

	PromptBlurred = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorCellNormal))
}
