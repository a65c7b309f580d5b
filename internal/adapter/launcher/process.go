package launcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"

	"clawkit/internal/domain"
	"clawkit/internal/security"
)

// ProcessLauncher runs the agent command in the foreground and returns when
// it exits or ctx is cancelled.
type ProcessLauncher struct {
	command string
	args    []string
	env     map[string]string
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
}

var _ domain.Launcher = (*ProcessLauncher)(nil)

// NewProcessLauncher creates a launcher for command. Variables whose name
// looks like a secret are dropped, both from env and from the inherited
// environment.
func NewProcessLauncher(command string, args []string, env map[string]string, stdout, stderr io.Writer, logger *slog.Logger) *ProcessLauncher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessLauncher{
		command: command,
		args:    args,
		env:     env,
		stdout:  stdout,
		stderr:  stderr,
		logger:  logger,
	}
}

// Launch implements domain.Launcher.
func (p *ProcessLauncher) Launch(ctx context.Context, cfg domain.LaunchConfig) error {
	cmd := exec.CommandContext(ctx, p.command, p.args...)
	cmd.Env = p.environ(cfg)
	cmd.Stdout = p.stdout
	cmd.Stderr = p.stderr

	p.logger.Info("starting agent", "command", p.command, "provider", string(cfg.Provider))
	if err := cmd.Start(); err != nil {
		return domain.NewDomainError(opLaunch, domain.ErrLaunchFailed, fmt.Sprintf("start %s: %v", p.command, err))
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			p.logger.Info("agent stopped", "reason", ctx.Err())
			return nil
		}
		return domain.NewDomainError(opLaunch, domain.ErrLaunchFailed, fmt.Sprintf("%s exited: %v", p.command, err))
	}
	p.logger.Info("agent exited")
	return nil
}

func (p *ProcessLauncher) environ(cfg domain.LaunchConfig) []string {
	inherited := os.Environ()
	env := make([]string, 0, len(inherited)+len(p.env)+3)
	for _, kv := range inherited {
		name, _, _ := strings.Cut(kv, "=")
		if security.IsSensitiveKey(name) {
			continue
		}
		env = append(env, kv)
	}

	keys := make([]string, 0, len(p.env))
	for k := range p.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if security.IsSensitiveKey(k) {
			p.logger.Warn("dropping secret-looking launcher env entry", "name", k)
			continue
		}
		env = append(env, k+"="+p.env[k])
	}

	return append(env,
		EnvGatewayURL+"="+cfg.GatewayURL,
		EnvProvider+"="+string(cfg.Provider),
		EnvChannels+"="+channelList(cfg.Channels),
	)
}

// String renders the command line for display.
func (p *ProcessLauncher) String() string {
	return strings.TrimSpace(p.command + " " + strings.Join(p.args, " "))
}
