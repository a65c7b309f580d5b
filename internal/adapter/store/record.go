package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"clawkit/internal/domain"
	"clawkit/internal/security"
)

const opSave = "Store.Save"

// ErrNoRecord is returned by Latest when nothing has been saved yet.
var ErrNoRecord = errors.New("no saved configuration")

var errNoPassphrase = errors.New("no passphrase configured")

// Record is the observable form of a saved configuration. The API key is
// always the mask placeholder.
type Record struct {
	ID         string    `yaml:"id"`
	GatewayURL string    `yaml:"gateway_url"`
	APIKey     string    `yaml:"api_key"`
	Provider   string    `yaml:"provider"`
	Channels   []string  `yaml:"channels"`
	CreatedAt  time.Time `yaml:"created_at"`
}

// NewRecord builds the masked record for cfg, assigning an ID and timestamp
// when they are missing.
func NewRecord(cfg domain.Configuration) Record {
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC()
	}
	if cfg.ID == "" {
		cfg.ID = NewID(cfg.CreatedAt)
	}

	channels := make([]string, 0, cfg.Channels.Len())
	for _, c := range cfg.Channels.Sorted() {
		channels = append(channels, string(c))
	}

	return Record{
		ID:         cfg.ID,
		GatewayURL: cfg.GatewayURL,
		APIKey:     security.Mask(cfg.APIKey),
		Provider:   string(cfg.Provider),
		Channels:   channels,
		CreatedAt:  cfg.CreatedAt,
	}
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a lexically sortable snapshot identifier.
func NewID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

func saveError(err error) error {
	return domain.NewDomainError(opSave, domain.ErrSaveFailed, err.Error())
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("save cancelled: %w", ctx.Err())
	}
}
