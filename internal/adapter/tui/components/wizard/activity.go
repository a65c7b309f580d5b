package wizard

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"clawkit/internal/adapter/tui/theme"
)

// ActivityModel shows a spinner while a validation or save is running and
// the result once it is done.
type ActivityModel struct {
	Spinner spinner.Model
	Label   string // e.g. "Checking gateway"
	Running bool
	Success string
	ErrMsg  string
}

// NewActivity creates an idle activity indicator.
func NewActivity() ActivityModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorInfo)
	return ActivityModel{Spinner: s}
}

// Start begins the spinner with label and returns the first tick.
func (m *ActivityModel) Start(label string) tea.Cmd {
	m.Label = label
	m.Running = true
	m.Success = ""
	m.ErrMsg = ""
	return m.Spinner.Tick
}

// Finish stops the spinner and records the outcome.
func (m *ActivityModel) Finish(success, errMsg string) {
	m.Running = false
	m.Success = success
	m.ErrMsg = errMsg
}

// Reset clears all state.
func (m *ActivityModel) Reset() {
	m.Running = false
	m.Label = ""
	m.Success = ""
	m.ErrMsg = ""
}

// Update advances the spinner while running.
func (m ActivityModel) Update(msg tea.Msg) (ActivityModel, tea.Cmd) {
	if !m.Running {
		return m, nil
	}
	var cmd tea.Cmd
	m.Spinner, cmd = m.Spinner.Update(msg)
	return m, cmd
}

// View renders the current activity state.
func (m ActivityModel) View() string {
	switch {
	case m.Running:
		return m.Spinner.View() + " " + m.Label + theme.SymbolEllipsis
	case m.ErrMsg != "":
		return theme.TextError.Render(theme.SymbolError+" "+m.ErrMsg) +
			"\n" + theme.TextMuted.Render("  Fix the value and press Enter to try again")
	case m.Success != "":
		return theme.TextSuccess.Render(theme.SymbolSuccess + " " + m.Success)
	}
	return ""
}
