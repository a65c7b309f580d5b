package store

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"clawkit/internal/domain"
)

// ConsoleStore prints the masked configuration after a fixed delay. It is
// the reference backend and only fails when the writer does.
type ConsoleStore struct {
	w     io.Writer
	delay time.Duration
}

var _ domain.ConfigStore = (*ConsoleStore)(nil)

// NewConsoleStore creates a store that writes to w.
func NewConsoleStore(w io.Writer, delay time.Duration) *ConsoleStore {
	return &ConsoleStore{w: w, delay: delay}
}

// Save implements domain.ConfigStore.
func (s *ConsoleStore) Save(ctx context.Context, cfg domain.Configuration) error {
	if err := sleepCtx(ctx, s.delay); err != nil {
		return saveError(err)
	}

	rec := NewRecord(cfg)
	channels := strings.Join(rec.Channels, ", ")
	if channels == "" {
		channels = "(none)"
	}

	_, err := fmt.Fprintf(s.w,
		"Saving configuration:\n  Gateway:  %s\n  API Key:  %s\n  Provider: %s\n  Channels: %s\n",
		rec.GatewayURL, rec.APIKey, rec.Provider, channels)
	if err != nil {
		return saveError(err)
	}
	return nil
}
