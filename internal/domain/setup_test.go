package domain

import (
	"reflect"
	"testing"
)

func TestWizardStepString(t *testing.T) {
	if StepWelcome.String() != "welcome" || StepCompletion.String() != "completion" {
		t.Errorf("unexpected names: %s, %s", StepWelcome, StepCompletion)
	}
	if got := WizardStep(42).String(); got != "WizardStep(42)" {
		t.Errorf("out of range String() = %q", got)
	}
	if StepAPIKeyConfig.Title() != "AI Provider" {
		t.Errorf("Title() = %q", StepAPIKeyConfig.Title())
	}
}

func TestParseProvider(t *testing.T) {
	for _, in := range []string{"openai", "OpenAI", " OPENAI "} {
		p, err := ParseProvider(in)
		if err != nil || p != ProviderOpenAI {
			t.Errorf("ParseProvider(%q) = %q, %v", in, p, err)
		}
	}
	if _, err := ParseProvider("mistral"); err == nil {
		t.Error("expected error for unknown provider")
	}
	if !DefaultProvider.Valid() || Provider("x").Valid() {
		t.Error("Valid() mismatch")
	}
}

func TestParseChannel(t *testing.T) {
	c, err := ParseChannel("imessage")
	if err != nil || c != ChannelIMessage {
		t.Errorf("ParseChannel = %q, %v", c, err)
	}
	if _, err := ParseChannel("irc"); err == nil {
		t.Error("expected error for unknown channel")
	}
}

func TestChannelSetIdempotent(t *testing.T) {
	s := NewChannelSet()
	s.Add(ChannelSlack)
	s.Add(ChannelSlack)
	if s.Len() != 1 {
		t.Errorf("Len after double add = %d", s.Len())
	}
	s.Remove(ChannelDiscord)
	if s.Len() != 1 {
		t.Errorf("Len after removing absent = %d", s.Len())
	}
	s.Remove(ChannelSlack)
	s.Remove(ChannelSlack)
	if s.Len() != 0 {
		t.Errorf("Len after double remove = %d", s.Len())
	}
}

func TestChannelSetZeroValue(t *testing.T) {
	var s ChannelSet
	if s.Contains(ChannelTelegram) {
		t.Error("zero set should be empty")
	}
	if !s.Toggle(ChannelTelegram) {
		t.Error("toggle on absent channel should select it")
	}
	if s.Toggle(ChannelTelegram) {
		t.Error("toggle on present channel should deselect it")
	}
}

func TestChannelSetSortedAndClone(t *testing.T) {
	s := NewChannelSet(ChannelSlack, ChannelTelegram, ChannelIMessage)
	want := []Channel{ChannelTelegram, ChannelSlack, ChannelIMessage}
	if got := s.Sorted(); !reflect.DeepEqual(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}
	if got := s.Names(); !reflect.DeepEqual(got, []string{"Telegram", "Slack", "iMessage"}) {
		t.Errorf("Names() = %v", got)
	}

	c := s.Clone()
	c.Remove(ChannelSlack)
	if !s.Contains(ChannelSlack) {
		t.Error("Clone shares storage with the original")
	}
}

func TestLaunchConfigOmitsKey(t *testing.T) {
	cfg := Configuration{
		GatewayURL: "wss://gw.example.com",
		APIKey:     "sk-0123456789",
		Provider:   ProviderGoogle,
		Channels:   NewChannelSet(ChannelDiscord, ChannelTelegram),
	}
	lc := cfg.LaunchConfig()
	if lc.GatewayURL != cfg.GatewayURL || lc.Provider != ProviderGoogle {
		t.Errorf("LaunchConfig = %+v", lc)
	}
	if !reflect.DeepEqual(lc.Channels, []Channel{ChannelTelegram, ChannelDiscord}) {
		t.Errorf("Channels = %v", lc.Channels)
	}
}
