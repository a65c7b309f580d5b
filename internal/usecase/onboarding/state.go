package onboarding

import (
	"log/slog"

	"clawkit/internal/domain"
	"clawkit/internal/security"
)

// State is the wizard's mutable aggregate. Callers only ever see copies
// obtained from Controller.Snapshot.
type State struct {
	Step       domain.WizardStep
	GatewayURL string
	APIKey     string
	Provider   domain.Provider
	Channels   domain.ChannelSet

	// IsLoading is true only while a validation or save call is outstanding.
	IsLoading bool
	// ErrorMessage describes the last failed attempt. Empty means no error.
	ErrorMessage string
	// Saved is set once the configuration has been stored successfully.
	Saved bool
}

func newState() State {
	return State{
		Step:     domain.StepWelcome,
		Provider: domain.DefaultProvider,
		Channels: domain.NewChannelSet(),
	}
}

func (s State) clone() State {
	s.Channels = s.Channels.Clone()
	return s
}

// HasError reports whether the last attempt failed.
func (s State) HasError() bool { return s.ErrorMessage != "" }

// Progress returns the 1-based position of the current step and the step count.
func (s State) Progress() (int, int) {
	return int(s.Step) + 1, int(domain.StepCount)
}

// LogValue implements slog.LogValuer so that logging a State never prints the key.
func (s State) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("step", s.Step.String()),
		slog.String("gateway_url", s.GatewayURL),
		slog.String("api_key", security.Mask(s.APIKey)),
		slog.String("provider", string(s.Provider)),
		slog.Any("channels", s.Channels.Names()),
		slog.Bool("loading", s.IsLoading),
		slog.Bool("saved", s.Saved),
	)
}

// configuration builds the snapshot handed to the store.
func (s State) configuration() domain.Configuration {
	return domain.Configuration{
		GatewayURL: s.GatewayURL,
		APIKey:     s.APIKey,
		Provider:   s.Provider,
		Channels:   s.Channels.Clone(),
	}
}

// Outcome reports the result of one Advance call.
type Outcome struct {
	From domain.WizardStep
	To   domain.WizardStep
	// Saved is true when this attempt stored the configuration.
	Saved bool
	Err   error
}

// Moved reports whether the attempt changed the current step.
func (o Outcome) Moved() bool { return o.To != o.From }
