// Package setup implements the Bubble Tea front end of the setup wizard.
// All wizard state lives in the onboarding controller; this package only
// renders snapshots and forwards input.
package setup

import (
	"clawkit/internal/domain"
	"clawkit/internal/usecase/onboarding"
)

// OutcomeMsg carries the result of a controller Advance call.
type OutcomeMsg struct {
	Outcome onboarding.Outcome
}

// DiscoveryMsg carries gateways found on the local network.
type DiscoveryMsg struct {
	Gateways []domain.DiscoveredGateway
	Err      error
}
