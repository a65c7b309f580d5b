package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"clawkit/internal/domain"
	"clawkit/internal/security"
)

// SQLiteStore keeps one row per saved snapshot. The api_key column holds the
// mask placeholder; api_key_sealed holds the encrypted key when a sealer is
// configured and is empty otherwise.
type SQLiteStore struct {
	db     *sql.DB
	sealer *security.SecretSealer
	logger *slog.Logger
}

var (
	_ domain.ConfigStore = (*SQLiteStore)(nil)
	_ Reader             = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and runs the
// schema migration. sealer may be nil.
func NewSQLiteStore(dbPath string, sealer *security.SecretSealer, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open setup db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate setup db: %w", err)
	}
	return &SQLiteStore{db: db, sealer: sealer, logger: logger}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS setup_snapshots (
			id             TEXT PRIMARY KEY,
			gateway_url    TEXT NOT NULL,
			api_key        TEXT NOT NULL,
			api_key_sealed TEXT NOT NULL DEFAULT '',
			provider       TEXT NOT NULL,
			channels       TEXT NOT NULL DEFAULT '',
			created_at     TEXT NOT NULL
		)
	`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save implements domain.ConfigStore.
func (s *SQLiteStore) Save(ctx context.Context, cfg domain.Configuration) error {
	rec := NewRecord(cfg)

	var sealed string
	if s.sealer != nil && cfg.APIKey != "" {
		var err error
		if sealed, err = s.sealer.Seal(cfg.APIKey); err != nil {
			return saveError(fmt.Errorf("seal api key: %w", err))
		}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO setup_snapshots (id, gateway_url, api_key, api_key_sealed, provider, channels, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.GatewayURL, rec.APIKey, sealed, rec.Provider,
		strings.Join(rec.Channels, ","), rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return saveError(fmt.Errorf("insert snapshot: %w", err))
	}

	s.logger.Info("configuration saved", "backend", "sqlite", "id", rec.ID, "key_stored", sealed != "")
	return nil
}

// Latest returns the most recently saved record.
func (s *SQLiteStore) Latest(ctx context.Context) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, gateway_url, api_key, provider, channels, created_at FROM setup_snapshots ORDER BY id DESC LIMIT 1",
	)

	var rec Record
	var channels, createdAt string
	if err := row.Scan(&rec.ID, &rec.GatewayURL, &rec.APIKey, &rec.Provider, &channels, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, domain.WrapOp("SQLiteStore.Latest", ErrNoRecord)
		}
		return Record{}, domain.WrapOp("SQLiteStore.Latest", fmt.Errorf("scan snapshot: %w", err))
	}
	if channels != "" {
		rec.Channels = strings.Split(channels, ",")
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, domain.WrapOp("SQLiteStore.Latest", fmt.Errorf("parse created_at: %w", err))
	}
	rec.CreatedAt = t
	return rec, nil
}

// OpenSecret decrypts the sealed key stored with snapshot id.
func (s *SQLiteStore) OpenSecret(ctx context.Context, id string) (string, error) {
	if s.sealer == nil {
		return "", domain.WrapOp("SQLiteStore.OpenSecret", errNoPassphrase)
	}
	var sealed string
	err := s.db.QueryRowContext(ctx, "SELECT api_key_sealed FROM setup_snapshots WHERE id = ?", id).Scan(&sealed)
	if err != nil {
		return "", domain.WrapOp("SQLiteStore.OpenSecret", fmt.Errorf("read sealed key: %w", err))
	}
	if sealed == "" {
		return "", domain.WrapOp("SQLiteStore.OpenSecret", fmt.Errorf("snapshot %s has no stored key", id))
	}
	return s.sealer.Open(sealed)
}
