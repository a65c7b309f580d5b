package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

const (
	sealPrefix = "enc:v1:"
	saltSize   = 16
)

// SecretSealer encrypts secrets for storage at rest using AES-256-GCM.
// Each sealed value carries its own random salt; the key is derived from the
// passphrase via Argon2id, so any sealer built from the same passphrase can
// open it.
type SecretSealer struct {
	mu         sync.RWMutex
	passphrase []byte
}

// NewSecretSealer creates a sealer from a passphrase.
// Returns error if passphrase is empty.
func NewSecretSealer(passphrase string) (*SecretSealer, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase must not be empty")
	}
	return &SecretSealer{passphrase: []byte(passphrase)}, nil
}

// Seal encrypts plaintext and returns "enc:v1:" + base64(salt + nonce + ciphertext).
func (s *SecretSealer) Seal(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := s.cipherFor(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, []byte(plaintext), nil)
	return sealPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal.
func (s *SecretSealer) Open(sealed string) (string, error) {
	if !IsSealed(sealed) {
		return "", fmt.Errorf("value is not sealed")
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, sealPrefix))
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}
	if len(data) < saltSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	salt, rest := data[:saltSize], data[saltSize:]
	gcm, err := s.cipherFor(salt)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(rest) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := rest[:nonceSize], rest[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}

// IsSealed checks if a string carries the sealed-value prefix.
func IsSealed(s string) bool {
	return strings.HasPrefix(s, sealPrefix)
}

// Zeroize clears the passphrase bytes from memory. The sealer is unusable afterwards.
func (s *SecretSealer) Zeroize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.passphrase {
		s.passphrase[i] = 0
	}
	s.passphrase = nil
}

func (s *SecretSealer) cipherFor(salt []byte) (cipher.AEAD, error) {
	s.mu.RLock()
	if len(s.passphrase) == 0 {
		s.mu.RUnlock()
		return nil, fmt.Errorf("sealer has been zeroized")
	}
	key := deriveKey(s.passphrase, salt)
	s.mu.RUnlock()

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// deriveKey uses Argon2id to derive a 32-byte key.
func deriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}
