package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"clawkit/internal/domain"
	"clawkit/internal/infra/config"
	"clawkit/internal/infra/tracer"
	"clawkit/internal/security"
)

// New builds the configured backend. console receives the output of the
// "console" backend. The returned closer releases backend resources.
func New(cfg config.StoreConfig, console io.Writer, logger *slog.Logger) (domain.ConfigStore, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() error { return nil }

	sealer, err := newSealer(cfg.Passphrase)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Backend {
	case "console":
		return &tracedStore{inner: NewConsoleStore(console, cfg.SaveDelay), backend: "console"}, noop, nil
	case "file", "":
		fs := NewFileStore(cfg.Path, cfg.SecretsPath, sealer, logger)
		return &tracedStore{inner: fs, backend: "file"}, zeroizer(sealer, noop), nil
	case "sqlite":
		ss, err := NewSQLiteStore(cfg.Path, sealer, logger)
		if err != nil {
			return nil, nil, err
		}
		return &tracedStore{inner: ss, backend: "sqlite"}, zeroizer(sealer, ss.Close), nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Reader reads back what a backend saved. OpenSecret needs the passphrase
// the record was saved with.
type Reader interface {
	Latest(ctx context.Context) (Record, error)
	OpenSecret(ctx context.Context, id string) (string, error)
}

// Open builds a Reader for the configured backend. The console backend keeps
// nothing, so it has no Reader.
func Open(cfg config.StoreConfig, logger *slog.Logger) (Reader, func() error, error) {
	sealer, err := newSealer(cfg.Passphrase)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Backend {
	case "file", "":
		return NewFileStore(cfg.Path, cfg.SecretsPath, sealer, logger), zeroizer(sealer, func() error { return nil }), nil
	case "sqlite":
		ss, err := NewSQLiteStore(cfg.Path, sealer, logger)
		if err != nil {
			return nil, nil, err
		}
		return ss, zeroizer(sealer, ss.Close), nil
	case "console":
		return nil, nil, fmt.Errorf("store backend %q keeps no saved configuration", cfg.Backend)
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func newSealer(passphrase string) (*security.SecretSealer, error) {
	if passphrase == "" {
		return nil, nil
	}
	sealer, err := security.NewSecretSealer(passphrase)
	if err != nil {
		return nil, fmt.Errorf("create sealer: %w", err)
	}
	return sealer, nil
}

func zeroizer(sealer *security.SecretSealer, next func() error) func() error {
	if sealer == nil {
		return next
	}
	return func() error {
		sealer.Zeroize()
		return next()
	}
}

// tracedStore wraps every save in a "store.save" span.
type tracedStore struct {
	inner   domain.ConfigStore
	backend string
}

func (t *tracedStore) Save(ctx context.Context, cfg domain.Configuration) error {
	return tracer.Traced(ctx, "store.save", func(ctx context.Context) error {
		return t.inner.Save(ctx, cfg)
	}, tracer.StringAttr("store.backend", t.backend), tracer.IntAttr("channels", cfg.Channels.Len()))
}
