package wizard

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"clawkit/internal/adapter/tui/theme"
)

// FieldSubmitMsg is sent when a form field value is submitted.
type FieldSubmitMsg struct {
	Value string
}

// FormFieldModel wraps a textinput for wizard forms.
type FormFieldModel struct {
	Input       textinput.Model
	Label       string
	Description string
	IsSecret    bool
	ErrMsg      string
	revealed    bool
}

// NewTextField creates a text input field.
func NewTextField(label, placeholder string) FormFieldModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.Width = 50
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder

	return FormFieldModel{
		Input: ti,
		Label: label,
	}
}

// NewSecretField creates a masked input field. Ctrl+R toggles visibility.
func NewSecretField(label, placeholder string) FormFieldModel {
	f := NewTextField(label, placeholder)
	f.Input.EchoMode = textinput.EchoPassword
	f.Input.EchoCharacter = '•'
	f.IsSecret = true
	return f
}

// SetError displays a validation error message.
func (m *FormFieldModel) SetError(msg string) {
	m.ErrMsg = msg
}

// ClearError clears the validation error.
func (m *FormFieldModel) ClearError() {
	m.ErrMsg = ""
}

// SetValue replaces the input contents and moves the cursor to the end.
func (m *FormFieldModel) SetValue(v string) {
	m.Input.SetValue(v)
	m.Input.CursorEnd()
}

// Value returns the current input value.
func (m FormFieldModel) Value() string {
	return strings.TrimSpace(m.Input.Value())
}

// Revealed reports whether a secret field is currently shown in clear text.
func (m FormFieldModel) Revealed() bool { return m.revealed }

// Update handles input events.
func (m FormFieldModel) Update(msg tea.Msg) (FormFieldModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			value := m.Value()
			return m, func() tea.Msg {
				return FieldSubmitMsg{Value: value}
			}
		case tea.KeyCtrlR:
			if m.IsSecret {
				m.revealed = !m.revealed
				if m.revealed {
					m.Input.EchoMode = textinput.EchoNormal
				} else {
					m.Input.EchoMode = textinput.EchoPassword
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// View renders the form field.
func (m FormFieldModel) View() string {
	parts := []string{theme.Bold.Render(m.Label)}

	if m.Description != "" {
		parts = append(parts, theme.TextMuted.Render(m.Description))
	}

	parts = append(parts, "", m.Input.View())

	if m.ErrMsg != "" {
		parts = append(parts, theme.TextError.Render(theme.SymbolError+" "+m.ErrMsg))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
