package validation

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"clawkit/internal/domain"
	"clawkit/internal/infra/tracer"
)

const opAPIKey = "Validation.APIKey"

// ValidateAPIKey is a plausibility check only: the key must be at least
// minKeyLength characters. Accepted keys are confirmed after keyCheckDelay,
// which stands in for a round trip to the provider. The provider is recorded
// on the span but does not change the rule.
func (s *Service) ValidateAPIKey(ctx context.Context, key string, provider domain.Provider) error {
	return tracer.Traced(ctx, "validation.api_key", func(ctx context.Context) error {
		if key == "" {
			return domain.NewDomainError(opAPIKey, domain.ErrKeyValidationFailed, "API key cannot be empty")
		}
		n := utf8.RuneCountInString(key)
		if n < s.minKeyLength {
			return domain.NewDomainError(opAPIKey, domain.ErrKeyValidationFailed,
				fmt.Sprintf("API key is too short (minimum %d characters)", s.minKeyLength))
		}

		if err := sleepCtx(ctx, s.keyCheckDelay); err != nil {
			return domain.NewDomainError(opAPIKey, domain.ErrKeyValidationFailed, "validation cancelled")
		}
		s.logger.Debug("api key accepted", "provider", string(provider), "key_length", n)
		return nil
	}, tracer.StringAttr("provider", string(provider)))
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
		return ctx.Err()
	}
}
