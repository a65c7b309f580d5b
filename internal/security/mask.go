package security

import (
	"log/slog"
	"strings"
)

// MaskPlaceholder replaces every secret in observable output.
const MaskPlaceholder = "****"

// Mask returns the placeholder for a secret, including an empty one, so
// masked output never reveals whether a key was set.
func Mask(string) string {
	return MaskPlaceholder
}

var sensitiveKeys = []string{"api_key", "apikey", "secret", "token", "password", "passphrase"}

// IsSensitiveKey reports whether an attribute or field name denotes a secret.
func IsSensitiveKey(name string) bool {
	n := strings.ToLower(name)
	for _, k := range sensitiveKeys {
		if strings.Contains(n, k) {
			return true
		}
	}
	return false
}

// RedactAttr is a slog.HandlerOptions.ReplaceAttr hook that masks secrets.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString && IsSensitiveKey(a.Key) {
		return slog.String(a.Key, Mask(a.Value.String()))
	}
	return a
}
