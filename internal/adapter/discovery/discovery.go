// Package discovery finds gateways advertised on the local network so the
// wizard can suggest a gateway URL.
package discovery

import (
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"clawkit/internal/domain"
	"clawkit/internal/infra/config"
)

// Service browsed when none is configured.
const (
	DefaultService = "_openclaw-gw._tcp"
	DefaultDomain  = "local."
	defaultTimeout = 5 * time.Second
)

func withDefaults(cfg config.DiscoveryConfig) config.DiscoveryConfig {
	if cfg.Service == "" {
		cfg.Service = DefaultService
	}
	if cfg.Domain == "" {
		cfg.Domain = DefaultDomain
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

// gatewayFromService builds a DiscoveredGateway from a resolved service.
// TXT "scheme" selects the URL scheme (default ws) and "path" the URL path.
func gatewayFromService(instance string, host string, port int, txt []string) domain.DiscoveredGateway {
	meta := parseTXTRecords(txt)

	scheme := strings.ToLower(meta["scheme"])
	switch scheme {
	case "http", "https", "ws", "wss":
	default:
		scheme = "ws"
	}

	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   meta["path"],
	}

	return domain.DiscoveredGateway{
		Name: instance,
		URL:  u.String(),
		TXT:  meta,
	}
}

func parseTXTRecords(txt []string) map[string]string {
	m := make(map[string]string, len(txt))
	for _, t := range txt {
		parts := strings.SplitN(t, "=", 2)
		if len(parts) == 2 {
			m[parts[0]] = parts[1]
		}
	}
	return m
}

// sortGateways orders results by name then URL for stable output.
func sortGateways(gws []domain.DiscoveredGateway) {
	sort.Slice(gws, func(i, j int) bool {
		if gws[i].Name != gws[j].Name {
			return gws[i].Name < gws[j].Name
		}
		return gws[i].URL < gws[j].URL
	})
}

// dedupe drops repeated URLs, keeping the first occurrence.
func dedupe(gws []domain.DiscoveredGateway) []domain.DiscoveredGateway {
	seen := make(map[string]struct{}, len(gws))
	out := gws[:0]
	for _, g := range gws {
		if _, ok := seen[g.URL]; ok {
			continue
		}
		seen[g.URL] = struct{}{}
		out = append(out, g)
	}
	return out
}
