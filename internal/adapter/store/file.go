package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"clawkit/internal/domain"
	"clawkit/internal/security"
)

// FileStore writes the masked configuration as YAML. When a sealer is set,
// the API key is encrypted into a separate secrets file; otherwise the key
// is not persisted at all.
type FileStore struct {
	path        string
	secretsPath string
	sealer      *security.SecretSealer
	logger      *slog.Logger
}

var (
	_ domain.ConfigStore = (*FileStore)(nil)
	_ Reader             = (*FileStore)(nil)
)

// secretsDoc is the on-disk layout of the secrets file.
type secretsDoc struct {
	ID     string `yaml:"id"`
	APIKey string `yaml:"api_key"`
}

// NewFileStore creates a file store. sealer may be nil.
func NewFileStore(path, secretsPath string, sealer *security.SecretSealer, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, secretsPath: secretsPath, sealer: sealer, logger: logger}
}

// Save implements domain.ConfigStore.
func (s *FileStore) Save(ctx context.Context, cfg domain.Configuration) error {
	if err := ctx.Err(); err != nil {
		return saveError(err)
	}

	rec := NewRecord(cfg)
	data, err := yaml.Marshal(rec)
	if err != nil {
		return saveError(fmt.Errorf("marshal configuration: %w", err))
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return saveError(err)
	}

	if s.sealer == nil || cfg.APIKey == "" {
		s.logger.Info("configuration saved", "path", s.path, "id", rec.ID, "key_stored", false)
		return nil
	}

	sealed, err := s.sealer.Seal(cfg.APIKey)
	if err != nil {
		return saveError(fmt.Errorf("seal api key: %w", err))
	}
	secrets, err := yaml.Marshal(secretsDoc{ID: rec.ID, APIKey: sealed})
	if err != nil {
		return saveError(fmt.Errorf("marshal secrets: %w", err))
	}
	if err := writeFileAtomic(s.secretsPath, secrets); err != nil {
		return saveError(err)
	}

	s.logger.Info("configuration saved", "path", s.path, "id", rec.ID, "key_stored", true)
	return nil
}

// Latest reads back the record written by the last Save.
func (s *FileStore) Latest(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, domain.WrapOp("FileStore.Latest", ErrNoRecord)
		}
		return Record{}, domain.WrapOp("FileStore.Latest", err)
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, domain.WrapOp("FileStore.Latest", fmt.Errorf("parse %s: %w", s.path, err))
	}
	return rec, nil
}

// OpenSecret decrypts the sealed API key written by Save. id must match the
// record the secrets file was written with.
func (s *FileStore) OpenSecret(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.sealer == nil {
		return "", domain.WrapOp("FileStore.OpenSecret", errNoPassphrase)
	}
	data, err := os.ReadFile(s.secretsPath)
	if err != nil {
		return "", domain.WrapOp("FileStore.OpenSecret", fmt.Errorf("read secrets: %w", err))
	}
	var doc secretsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", domain.WrapOp("FileStore.OpenSecret", fmt.Errorf("parse secrets: %w", err))
	}
	if doc.ID != id {
		return "", domain.WrapOp("FileStore.OpenSecret", fmt.Errorf("secrets belong to %s, not %s", doc.ID, id))
	}
	return s.sealer.Open(doc.APIKey)
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place, so readers never see a partial document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
