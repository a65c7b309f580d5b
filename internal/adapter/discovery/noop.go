//go:build !mdns

package discovery

import (
	"context"
	"log/slog"

	"clawkit/internal/domain"
	"clawkit/internal/infra/config"
)

// Available reports whether mDNS support is compiled in.
const Available = false

// NoopDiscoverer is used when mDNS support is not compiled in.
type NoopDiscoverer struct{}

var _ domain.GatewayDiscoverer = NoopDiscoverer{}

// New returns a NoopDiscoverer; build with -tags mdns for LAN discovery.
func New(_ config.DiscoveryConfig, _ *slog.Logger) domain.GatewayDiscoverer {
	return NoopDiscoverer{}
}

// Discover returns nil.
func (NoopDiscoverer) Discover(_ context.Context) ([]domain.DiscoveredGateway, error) {
	return nil, nil
}
