// Package editor lets the user write a procedure body for the SQLite
// catalogue, either in an inline textarea or in $EDITOR.
package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ict4events/eventsite/internal/styles"
)

const (
	placeholderText = "SELECT ... WHERE email = :p_email"
	charLimit       = 10000
	initialWidth    = 80
	minLineHeight   = 3
	maxLineHeight   = 15
	widthMargin     = 4
	maxWidth        = 120
	separatorLine   = "──────────────────────────────────────────────────────────"
	procBullet      = "\n◆ "
	helpText        = "Ctrl+D: Save procedure | Esc/Ctrl+C: Cancel"
)

type BodyModel struct {
	textArea  textarea.Model
	width     int
	name      string
	body      string
	submitted bool
}

func NewBodyEditor(name, body string) BodyModel {
	ta := textarea.New()
	ta.Placeholder = placeholderText
	ta.Focus()
	ta.CharLimit = charLimit
	ta.SetWidth(initialWidth)
	ta.SetValue(body)
	ta.SetHeight(lineHeight(body))

	return BodyModel{
		textArea: ta,
		name:     name,
		body:     body,
	}
}

func (m BodyModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m BodyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlD:
			m.body = strings.TrimSpace(m.textArea.Value())
			m.submitted = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.textArea.SetWidth(min(m.width-widthMargin, maxWidth))
	}

	m.textArea, cmd = m.textArea.Update(msg)

	if h := lineHeight(m.textArea.Value()); h != m.textArea.Height() {
		m.textArea.SetHeight(h)
	}
	return m, cmd
}

func (m BodyModel) View() string {
	title := styles.Title.Render(procBullet + m.name)
	sep := styles.Separator.Render(separatorLine)

	if m.submitted {
		return fmt.Sprintf("%s\n%s\n%s\n", title, Highlight(m.body), sep)
	}
	return fmt.Sprintf("%s\n%s\n%s\n%s\n", title, m.textArea.View(), styles.Faint.Render(helpText), sep)
}

// Body returns the edited text and whether the user saved it.
func (m BodyModel) Body() (string, bool) {
	return m.body, m.submitted
}

// EditBody runs the inline editor and reports whether the body was saved.
func EditBody(name, body string) (string, bool, error) {
	p := tea.NewProgram(NewBodyEditor(name, body))

	finalModel, err := p.Run()
	if err != nil {
		return "", false, err
	}

	edited, saved := finalModel.(BodyModel).Body()
	if saved {
		fmt.Print(finalModel.View())
	}
	return edited, saved, nil
}

func lineHeight(text string) int {
	lines := strings.Count(text, "\n") + 1
	return min(max(lines, minLineHeight), maxLineHeight)
}
