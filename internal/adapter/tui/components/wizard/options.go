package wizard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"clawkit/internal/adapter/tui/theme"
)

// Option is one selectable entry.
type Option struct {
	ID    string
	Label string
	Desc  string
}

// OptionToggledMsg is sent when the entry under the cursor is toggled
// (multi-select) or chosen (single-select).
type OptionToggledMsg struct {
	ID string
}

// OptionListModel is a vertical list navigated with the arrow keys. Space
// toggles the entry under the cursor. Selection state is owned by the
// caller and passed to View.
type OptionListModel struct {
	Options []Option
	Cursor  int
	Multi   bool
}

// NewOptionList creates a list. multi selects checkbox rendering.
func NewOptionList(options []Option, multi bool) OptionListModel {
	return OptionListModel{Options: options, Multi: multi}
}

// Current returns the option under the cursor.
func (m OptionListModel) Current() (Option, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Options) {
		return Option{}, false
	}
	return m.Options[m.Cursor], true
}

// Update handles navigation and toggling.
func (m OptionListModel) Update(msg tea.Msg) (OptionListModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Options) == 0 {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		m.Cursor = (m.Cursor - 1 + len(m.Options)) % len(m.Options)
	case "down", "j", "tab":
		m.Cursor = (m.Cursor + 1) % len(m.Options)
	case " ", "x":
		id := m.Options[m.Cursor].ID
		return m, func() tea.Msg { return OptionToggledMsg{ID: id} }
	}
	return m, nil
}

// View renders the list; selected reports whether an option is chosen.
func (m OptionListModel) View(selected func(id string) bool) string {
	lines := make([]string, len(m.Options))
	for i, o := range m.Options {
		cursor := "  "
		style := theme.OptionNormal
		if i == m.Cursor {
			cursor = theme.SymbolCursor + " "
			style = theme.OptionSelected
		}

		mark := theme.SymbolUnchecked
		if selected(o.ID) {
			mark = theme.SymbolChecked
		}

		line := cursor + mark + " " + style.Render(o.Label)
		if o.Desc != "" {
			line += "  " + theme.TextMuted.Render(o.Desc)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
