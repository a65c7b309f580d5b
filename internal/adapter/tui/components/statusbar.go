package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"clawkit/internal/adapter/tui/theme"
)

// KeyHint represents a single keybinding hint shown in the status bar.
type KeyHint struct {
	Key  string // e.g. "Enter"
	Desc string // e.g. "Next"
}

// StatusBarModel renders a bottom status bar with keybinding hints on the
// left and wizard context on the right.
type StatusBarModel struct {
	Hints    []KeyHint
	Provider string
	Gateway  string
	Extra    string // transient status, e.g. "Validating..."
	width    int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth updates the available width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar as a single line.
func (m StatusBarModel) View() string {
	var hints []string
	for _, h := range m.Hints {
		key := theme.StatusKey.Render(h.Key)
		hints = append(hints, key+": "+h.Desc)
	}
	left := strings.Join(hints, "  "+theme.Dim.Render("|")+"  ")

	var right string
	if m.Provider != "" || m.Gateway != "" {
		var parts []string
		if m.Provider != "" {
			parts = append(parts, m.Provider)
		}
		if m.Gateway != "" {
			parts = append(parts, m.Gateway)
		}
		right = theme.TextMuted.Render(strings.Join(parts, " "+theme.SymbolBullet+" "))
	}

	if m.Extra != "" {
		if right != "" {
			right += "  "
		}
		right += theme.TextInfo.Render(m.Extra)
	}

	leftW := lipgloss.Width(left)
	rightW := lipgloss.Width(right)
	gap := m.width - leftW - rightW
	if gap < 1 {
		gap = 1
	}

	bar := left + strings.Repeat(" ", gap) + right
	return theme.StatusBar.Width(m.width).Render(bar)
}
