package params

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ict4events/eventsite/internal/styles"
)

var ErrAborted = errors.New("parameter input aborted")

type InputModel struct {
	call          string
	missingParams []string
	inputs        []textinput.Model
	cursorIndex   int
	aborted       bool
	submitted     bool
}

func NewInputModel(call string, missingParams []string, defaults map[string]string) InputModel {
	inputs := make([]textinput.Model, len(missingParams))
	for i, param := range missingParams {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 4000
		ti.SetValue(defaults[param])
		if i == 0 {
			ti.Focus()
		}
		inputs[i] = ti
	}

	return InputModel{
		call:          call,
		missingParams: missingParams,
		inputs:        inputs,
	}
}

func (m InputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit

		case "enter":
			if m.cursorIndex == len(m.inputs)-1 {
				m.submitted = true
				return m, tea.Quit
			}
			return m.focus(m.cursorIndex + 1), nil

		case "down", "tab":
			if m.cursorIndex < len(m.inputs)-1 {
				return m.focus(m.cursorIndex + 1), nil
			}
			return m, nil

		case "up", "shift+tab":
			if m.cursorIndex > 0 {
				return m.focus(m.cursorIndex - 1), nil
			}
			return m, nil
		}
	}

	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.cursorIndex], cmd = m.inputs[m.cursorIndex].Update(msg)
	return m, cmd
}

func (m InputModel) focus(i int) InputModel {
	m.inputs[m.cursorIndex].Blur()
	m.cursorIndex = i
	m.inputs[i].Focus()
	return m
}

func (m InputModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Enter procedure parameters"))
	b.WriteString("\n")
	b.WriteString(styles.Keyword.Render(m.call))
	b.WriteString("\n\n")

	width := 0
	for _, param := range m.missingParams {
		width = max(width, len(param))
	}

	for i, param := range m.missingParams {
		label := param + strings.Repeat(" ", width-len(param))
		if i == m.cursorIndex {
			b.WriteString(styles.PromptFocused.Render(label+" > ") + m.inputs[i].View() + "\n")
		} else {
			b.WriteString(styles.PromptBlurred.Render(label+"   ") + m.inputs[i].Value() + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Faint.Render("↑/↓: move  Enter: next/submit  Esc: cancel"))

	return b.String()
}

func (m InputModel) GetValues() map[string]string {
	values := make(map[string]string, len(m.inputs))
	for i, param := range m.missingParams {
		values[param] = m.inputs[i].Value()
	}
	return values
}

func (m InputModel) WasAborted() bool {
	return m.aborted
}

// CollectParameters runs the prompt and returns the entered values by name.
func CollectParameters(call string, missingParams []string, defaults map[string]string) (map[string]string, error) {
	if len(missingParams) == 0 {
		return map[string]string{}, nil
	}

	model := NewInputModel(call, missingParams, defaults)
	program := tea.NewProgram(model)

	finalModel, err := program.Run()
	if err != nil {
		return nil, err
	}

	inputModel := finalModel.(InputModel)
	if inputModel.WasAborted() {
		return nil, ErrAborted
	}

	return inputModel.GetValues(), nil
}
