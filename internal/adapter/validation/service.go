package validation

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"clawkit/internal/domain"
	"clawkit/internal/infra/config"
)

// Default settings used when the corresponding config field is zero.
const (
	defaultProbeTimeout  = 10 * time.Second
	defaultKeyCheckDelay = time.Second
	defaultMinKeyLength  = 10

	defaultCBMaxFailures uint32 = 5
	defaultCBTimeout            = 30 * time.Second
)

// Compile-time interface check.
var _ domain.Validator = (*Service)(nil)

// Service implements domain.Validator. Gateway probes go through a rate
// limiter and, when enabled, a circuit breaker so that a user hammering
// "Next" against a dead host fails fast.
type Service struct {
	client        *http.Client
	probeTimeout  time.Duration
	keyCheckDelay time.Duration
	minKeyLength  int
	limiter       *rate.Limiter                   // nil = unlimited
	breaker       *gobreaker.CircuitBreaker[bool] // nil = disabled
	logger        *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithHTTPClient overrides the client used for HTTP and WebSocket probes.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

// NewService creates a validation service from config.
func NewService(cfg config.ValidationConfig, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		probeTimeout:  cfg.ProbeTimeout,
		keyCheckDelay: cfg.KeyCheckDelay,
		minKeyLength:  cfg.MinKeyLength,
		logger:        logger,
	}
	if s.probeTimeout <= 0 {
		s.probeTimeout = defaultProbeTimeout
	}
	if s.keyCheckDelay < 0 {
		s.keyCheckDelay = defaultKeyCheckDelay
	}
	if s.minKeyLength <= 0 {
		s.minKeyLength = defaultMinKeyLength
	}
	s.client = &http.Client{Timeout: s.probeTimeout}

	if cfg.ProbesPerMin > 0 {
		burst := cfg.ProbeBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.ProbesPerMin)/60.0, burst)
	}

	if cfg.CircuitBreaker.Enabled {
		s.breaker = newProbeBreaker(cfg.CircuitBreaker, logger)
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newProbeBreaker(cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[bool] {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}

	return gobreaker.NewCircuitBreaker[bool](gobreaker.Settings{
		Name:        "gateway-probe",
		MaxRequests: 1, // one probe in half-open state
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}
