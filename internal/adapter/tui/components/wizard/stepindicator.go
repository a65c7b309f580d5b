// Package wizard provides TUI components for the setup wizard.
package wizard

import (
	"fmt"
	"strings"

	"clawkit/internal/adapter/tui/theme"
)

// Step represents a single wizard step.
type Step struct {
	Name string
}

// StepIndicatorModel displays progress as "Step 2/5: Network", a progress
// bar and a breadcrumb of step names.
type StepIndicatorModel struct {
	Steps   []Step
	Current int
	width   int
}

// NewStepIndicator creates a step indicator.
func NewStepIndicator(steps []Step) StepIndicatorModel {
	return StepIndicatorModel{Steps: steps}
}

// SetWidth sets the rendering width.
func (m *StepIndicatorModel) SetWidth(w int) {
	m.width = w
}

// SetCurrent sets the active step index.
func (m *StepIndicatorModel) SetCurrent(i int) {
	if i >= 0 && i < len(m.Steps) {
		m.Current = i
	}
}

// View renders the step indicator.
func (m StepIndicatorModel) View() string {
	if len(m.Steps) == 0 || m.width < 20 {
		return ""
	}

	header := theme.WizardStepActive.Render(
		fmt.Sprintf("Step %d/%d: %s", m.Current+1, len(m.Steps), m.Steps[m.Current].Name),
	)

	barWidth := m.width - 10 // leave room for percentage
	if barWidth < 10 {
		barWidth = 10
	}
	pct := float64(m.Current) / float64(len(m.Steps)-1)
	if len(m.Steps) == 1 {
		pct = 1
	}
	filled := theme.Clamp(int(pct*float64(barWidth)), 0, barWidth)

	bar := theme.ProgressFull.Render(strings.Repeat("█", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat("░", barWidth-filled))
	pctStr := theme.TextMuted.Render(fmt.Sprintf(" %d%%", int(pct*100)))

	return header + "\n" + bar + pctStr + "\n" + m.breadcrumb()
}

func (m StepIndicatorModel) breadcrumb() string {
	parts := make([]string, len(m.Steps))
	for i, s := range m.Steps {
		switch {
		case i < m.Current:
			parts[i] = theme.WizardStepDone.Render(theme.SymbolSuccess + " " + s.Name)
		case i == m.Current:
			parts[i] = theme.WizardStepActive.Render(s.Name)
		default:
			parts[i] = theme.WizardStepPending.Render(s.Name)
		}
	}
	return strings.Join(parts, theme.Dim.Render(" "+theme.SymbolArrowR+" "))
}
