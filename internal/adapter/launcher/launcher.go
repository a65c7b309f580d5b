// Package launcher starts the downstream agent once setup is saved. A
// launched agent receives the gateway URL, provider and channels; it never
// receives the API key.
package launcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"clawkit/internal/domain"
	"clawkit/internal/infra/config"
	"clawkit/internal/infra/tracer"
)

// Environment variables handed to a launched agent.
const (
	EnvGatewayURL = "CLAWKIT_GATEWAY_URL"
	EnvProvider   = "CLAWKIT_PROVIDER"
	EnvChannels   = "CLAWKIT_CHANNELS"
)

const opLaunch = "Launcher.Launch"

// LogLauncher records the launch and returns. It is the reference backend.
type LogLauncher struct {
	logger *slog.Logger
}

var _ domain.Launcher = (*LogLauncher)(nil)

// NewLogLauncher creates a launcher that only logs.
func NewLogLauncher(logger *slog.Logger) *LogLauncher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogLauncher{logger: logger}
}

// Launch implements domain.Launcher.
func (l *LogLauncher) Launch(ctx context.Context, cfg domain.LaunchConfig) error {
	if err := ctx.Err(); err != nil {
		return domain.NewDomainError(opLaunch, domain.ErrLaunchFailed, err.Error())
	}
	l.logger.Info("launching agent",
		"gateway_url", cfg.GatewayURL,
		"provider", string(cfg.Provider),
		"channels", channelList(cfg.Channels),
	)
	return nil
}

// New builds the configured launcher. Process output goes to stdout and stderr.
func New(cfg config.LauncherConfig, stdout, stderr io.Writer, logger *slog.Logger) (domain.Launcher, error) {
	var inner domain.Launcher
	switch cfg.Backend {
	case "log", "":
		inner = NewLogLauncher(logger)
	case "process":
		if cfg.Command == "" {
			return nil, fmt.Errorf("process launcher requires a command")
		}
		inner = NewProcessLauncher(cfg.Command, cfg.Args, cfg.Env, stdout, stderr, logger)
	default:
		return nil, fmt.Errorf("unknown launcher backend %q", cfg.Backend)
	}
	return &tracedLauncher{inner: inner, backend: cfg.Backend}, nil
}

type tracedLauncher struct {
	inner   domain.Launcher
	backend string
}

func (t *tracedLauncher) Launch(ctx context.Context, cfg domain.LaunchConfig) error {
	return tracer.Traced(ctx, "launcher.launch", func(ctx context.Context) error {
		return t.inner.Launch(ctx, cfg)
	}, tracer.StringAttr("launcher.backend", t.backend), tracer.StringAttr("provider", string(cfg.Provider)))
}

func channelList(channels []domain.Channel) string {
	names := make([]string, len(channels))
	for i, c := range channels {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}
