//go:build mdns

package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/grandcat/zeroconf"

	"clawkit/internal/domain"
	"clawkit/internal/infra/config"
)

// Available reports whether mDNS support is compiled in.
const Available = true

// MDNSDiscoverer browses for gateways via mDNS/DNS-SD.
type MDNSDiscoverer struct {
	cfg    config.DiscoveryConfig
	logger *slog.Logger
}

var _ domain.GatewayDiscoverer = (*MDNSDiscoverer)(nil)

// New creates the mDNS discoverer.
func New(cfg config.DiscoveryConfig, logger *slog.Logger) domain.GatewayDiscoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &MDNSDiscoverer{cfg: withDefaults(cfg), logger: logger}
}

// Discover browses for the configured service until the timeout elapses.
func (d *MDNSDiscoverer) Discover(ctx context.Context) ([]domain.DiscoveredGateway, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("mdns resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var mu sync.Mutex
	var found []domain.DiscoveredGateway
	var wg sync.WaitGroup

	scanCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for entry := range entries {
			gw, ok := entryToGateway(entry)
			if !ok {
				continue
			}
			mu.Lock()
			found = append(found, gw)
			mu.Unlock()
			d.logger.Debug("mdns discovered gateway", "name", gw.Name, "url", gw.URL)
		}
	}()

	if err := resolver.Browse(scanCtx, d.cfg.Service, d.cfg.Domain, entries); err != nil {
		cancel()
		wg.Wait()
		return nil, fmt.Errorf("mdns browse: %w", err)
	}

	<-scanCtx.Done()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	result := dedupe(append([]domain.DiscoveredGateway(nil), found...))
	sortGateways(result)
	return result, nil
}

func entryToGateway(entry *zeroconf.ServiceEntry) (domain.DiscoveredGateway, bool) {
	var host string
	switch {
	case len(entry.AddrIPv4) > 0:
		host = entry.AddrIPv4[0].String()
	case len(entry.AddrIPv6) > 0:
		host = entry.AddrIPv6[0].String()
	default:
		return domain.DiscoveredGateway{}, false
	}
	return gatewayFromService(entry.ServiceRecord.Instance, host, entry.Port, entry.Text), true
}
