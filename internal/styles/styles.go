package styles

import "github.com/charmbracelet/lipgloss"

// Color constants
const (
	ColorAccent     = "205" // Magenta - used for titles, headers, emphasis
	ColorSuccess    = "171" // Purple - used for success messages
	ColorError      = "196" // Red
	ColorKeyword    = "86"  // Cyan - used for procedure names
	ColorString     = "220" // Yellow - used for literal values
	ColorFaint      = "238" // Gray - used for borders, separators, help text
	ColorCellNormal = "252" // Light Gray - used for normal cell text
	ColorNull       = "244"
)

// Style variables used throughout the application
var (
	Title, Success, Error, Faint, Separator lipgloss.Style
	Keyword, Literal                        lipgloss.Style
	TableHeader, TableCell, TableBorder     lipgloss.Style
	TableNull                               lipgloss.Style
	PromptFocused, PromptBlurred            lipgloss.Style
)

func init() {
	reloadAllStyles()
}
