package validation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker/v2"
	"nhooyr.io/websocket"

	"clawkit/internal/domain"
	"clawkit/internal/infra/tracer"
)

const opGateway = "Validation.GatewayURL"

// ValidateGatewayURL checks that rawURL is an absolute http(s) or ws(s) URL
// and that something answers at it. Any response counts as reachable; the
// status code is not inspected.
func (s *Service) ValidateGatewayURL(ctx context.Context, rawURL string) error {
	u, err := ParseGatewayURL(rawURL)
	if err != nil {
		return err
	}

	return tracer.Traced(ctx, "validation.gateway", func(ctx context.Context) error {
		if s.limiter != nil && !s.limiter.Allow() {
			return domain.NewDomainError(opGateway, domain.ErrNetwork, "too many connection attempts, wait a moment and retry")
		}

		probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
		defer cancel()

		err := s.runProbe(probeCtx, u)
		if err != nil {
			s.logger.Debug("gateway probe failed", "host", u.Host, "error", err)
			return err
		}
		s.logger.Debug("gateway reachable", "host", u.Host)
		return nil
	}, tracer.StringAttr("gateway.scheme", u.Scheme), tracer.StringAttr("gateway.host", u.Host))
}

// ParseGatewayURL validates the shape of a gateway URL without touching the network.
func ParseGatewayURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, domain.NewDomainError(opGateway, domain.ErrInvalidURL, "gateway URL is empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, domain.NewDomainError(opGateway, domain.ErrInvalidURL, fmt.Sprintf("%q is not a valid URL", trimmed))
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, domain.NewDomainError(opGateway, domain.ErrInvalidURL, fmt.Sprintf("%q must include a scheme and host", trimmed))
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ws", "wss":
	default:
		return nil, domain.NewDomainError(opGateway, domain.ErrInvalidURL, fmt.Sprintf("unsupported scheme %q (use http, https, ws or wss)", u.Scheme))
	}
	return u, nil
}

func (s *Service) runProbe(ctx context.Context, u *url.URL) error {
	if s.breaker == nil {
		return s.probe(ctx, u)
	}

	_, err := s.breaker.Execute(func() (bool, error) {
		return true, s.probe(ctx, u)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.NewDomainError(opGateway, domain.ErrNetwork, "gateway unreachable after repeated failures, retry later")
	}
	return err
}

func (s *Service) probe(ctx context.Context, u *url.URL) error {
	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
		return s.probeWebSocket(ctx, u)
	default:
		return s.probeHTTP(ctx, u)
	}
}

func (s *Service) probeHTTP(ctx context.Context, u *url.URL) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.NewDomainError(opGateway, domain.ErrInvalidURL, err.Error())
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return networkError(ctx, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return nil
}

// probeWebSocket attempts a handshake. A failed upgrade that still produced
// an HTTP response means the host answered, which is enough.
func (s *Service) probeWebSocket(ctx context.Context, u *url.URL) error {
	// ctx already carries the probe deadline.
	client := *s.client
	client.Timeout = 0

	conn, resp, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{HTTPClient: &client})
	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "probe")
		return nil
	}
	if resp != nil {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil
	}
	return networkError(ctx, err)
}

func networkError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewDomainError(opGateway, domain.ErrNetwork, "connection timed out")
	}
	return domain.NewDomainError(opGateway, domain.ErrNetwork, err.Error())
}
