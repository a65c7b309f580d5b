package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// WizardStep is a stage of the setup wizard. Steps are ordered.
type WizardStep int

const (
	StepWelcome WizardStep = iota
	StepNetworkSetup
	StepAPIKeyConfig
	StepChannelSetup
	StepCompletion
	StepCount // sentinel
)

var stepNames = [...]string{"welcome", "networkSetup", "apiKeyConfig", "channelSetup", "completion"}

func (s WizardStep) String() string {
	if s < 0 || s >= StepCount {
		return fmt.Sprintf("WizardStep(%d)", int(s))
	}
	return stepNames[s]
}

// Title is the display name of the step.
func (s WizardStep) Title() string {
	switch s {
	case StepWelcome:
		return "Welcome"
	case StepNetworkSetup:
		return "Network"
	case StepAPIKeyConfig:
		return "AI Provider"
	case StepChannelSetup:
		return "Channels"
	case StepCompletion:
		return "Complete"
	}
	return s.String()
}

// Provider identifies the AI backend the agent talks to.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

// Providers returns every supported provider. The first is the default.
func Providers() []Provider {
	return []Provider{ProviderAnthropic, ProviderOpenAI, ProviderGoogle}
}

// DefaultProvider is selected when the wizard starts.
const DefaultProvider = ProviderAnthropic

// DisplayName returns the human-facing provider name.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderGoogle:
		return "Google"
	}
	return string(p)
}

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	for _, known := range Providers() {
		if p == known {
			return true
		}
	}
	return false
}

// ParseProvider resolves a provider by id or display name, case-insensitively.
func ParseProvider(s string) (Provider, error) {
	s = strings.TrimSpace(s)
	for _, p := range Providers() {
		if strings.EqualFold(s, string(p)) || strings.EqualFold(s, p.DisplayName()) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

// Channel identifies a messaging platform the agent can be connected to.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelDiscord  Channel = "discord"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSlack    Channel = "slack"
	ChannelSignal   Channel = "signal"
	ChannelIMessage Channel = "imessage"
)

// Channels returns every supported channel in display order.
func Channels() []Channel {
	return []Channel{ChannelTelegram, ChannelDiscord, ChannelWhatsApp, ChannelSlack, ChannelSignal, ChannelIMessage}
}

// DisplayName returns the human-facing channel name.
func (c Channel) DisplayName() string {
	switch c {
	case ChannelTelegram:
		return "Telegram"
	case ChannelDiscord:
		return "Discord"
	case ChannelWhatsApp:
		return "WhatsApp"
	case ChannelSlack:
		return "Slack"
	case ChannelSignal:
		return "Signal"
	case ChannelIMessage:
		return "iMessage"
	}
	return string(c)
}

func (c Channel) order() int {
	for i, known := range Channels() {
		if c == known {
			return i
		}
	}
	return len(Channels())
}

// ParseChannel resolves a channel by id or display name, case-insensitively.
func ParseChannel(s string) (Channel, error) {
	s = strings.TrimSpace(s)
	for _, c := range Channels() {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.DisplayName()) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown channel %q", s)
}

// ChannelSet is an unordered set of channels. The zero value is empty and
// ready to use through its pointer methods.
type ChannelSet map[Channel]struct{}

// NewChannelSet builds a set from the given channels, dropping duplicates.
func NewChannelSet(channels ...Channel) ChannelSet {
	s := make(ChannelSet, len(channels))
	for _, c := range channels {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts c. Adding a present channel is a no-op.
func (s *ChannelSet) Add(c Channel) {
	if *s == nil {
		*s = make(ChannelSet)
	}
	(*s)[c] = struct{}{}
}

// Remove deletes c. Removing an absent channel is a no-op.
func (s ChannelSet) Remove(c Channel) {
	delete(s, c)
}

// Toggle flips membership of c and reports whether it is now present.
func (s *ChannelSet) Toggle(c Channel) bool {
	if s.Contains(c) {
		s.Remove(c)
		return false
	}
	s.Add(c)
	return true
}

// Contains reports whether c is in the set.
func (s ChannelSet) Contains(c Channel) bool {
	_, ok := s[c]
	return ok
}

// Len returns the number of channels in the set.
func (s ChannelSet) Len() int { return len(s) }

// Clone returns an independent copy.
func (s ChannelSet) Clone() ChannelSet {
	out := make(ChannelSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Sorted returns the channels in declaration order, unknown ones last by id.
func (s ChannelSet) Sorted() []Channel {
	out := make([]Channel, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := out[i].order(), out[j].order()
		if oi != oj {
			return oi < oj
		}
		return out[i] < out[j]
	})
	return out
}

// Names returns the display names in declaration order.
func (s ChannelSet) Names() []string {
	sorted := s.Sorted()
	names := make([]string, len(sorted))
	for i, c := range sorted {
		names[i] = c.DisplayName()
	}
	return names
}

// Configuration is the finalized snapshot handed to a ConfigStore.
// APIKey holds the secret and must never be written anywhere in plaintext.
type Configuration struct {
	ID         string
	GatewayURL string
	APIKey     string
	Provider   Provider
	Channels   ChannelSet
	CreatedAt  time.Time
}

// LaunchConfig returns the part of the configuration a launched agent receives.
func (c Configuration) LaunchConfig() LaunchConfig {
	return LaunchConfig{
		GatewayURL: c.GatewayURL,
		Provider:   c.Provider,
		Channels:   c.Channels.Sorted(),
	}
}

// LaunchConfig is what the downstream agent starts with. It never carries the API key.
type LaunchConfig struct {
	GatewayURL string
	Provider   Provider
	Channels   []Channel
}

// DiscoveredGateway is a gateway advertised on the local network.
type DiscoveredGateway struct {
	Name string
	URL  string
	TXT  map[string]string
}

// Validator checks the user-provided gateway URL and API key.
type Validator interface {
	ValidateGatewayURL(ctx context.Context, rawURL string) error
	ValidateAPIKey(ctx context.Context, key string, provider Provider) error
}

// ConfigStore persists a finalized configuration.
type ConfigStore interface {
	Save(ctx context.Context, cfg Configuration) error
}

// Launcher starts the downstream agent with a saved configuration.
type Launcher interface {
	Launch(ctx context.Context, cfg LaunchConfig) error
}

// GatewayDiscoverer finds gateways on the local network.
type GatewayDiscoverer interface {
	Discover(ctx context.Context) ([]DiscoveredGateway, error)
}
