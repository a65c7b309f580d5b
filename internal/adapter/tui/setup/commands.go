package setup

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"clawkit/internal/domain"
	"clawkit/internal/usecase/onboarding"
)

// awaitOutcomeCmd blocks until the controller delivers the outcome of an
// Advance call. The state has already been updated when it arrives.
func awaitOutcomeCmd(ch <-chan onboarding.Outcome) tea.Cmd {
	return func() tea.Msg {
		return OutcomeMsg{Outcome: <-ch}
	}
}

// discoverCmd browses for gateways in the background.
func discoverCmd(ctx context.Context, d domain.GatewayDiscoverer) tea.Cmd {
	if d == nil {
		return nil
	}
	return func() tea.Msg {
		gws, err := d.Discover(ctx)
		return DiscoveryMsg{Gateways: gws, Err: err}
	}
}
