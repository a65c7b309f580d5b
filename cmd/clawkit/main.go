package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clawkit/internal/infra/config"
	"clawkit/internal/infra/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          "clawkit",
		Short:        "Set up and launch an OpenClaw agent",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "path to the clawkit config file")

	root.AddCommand(
		setupCmd(&cfgPath),
		validateCmd(&cfgPath),
		discoverCmd(&cfgPath),
		showCmd(&cfgPath),
		initCmd(&cfgPath),
		versionCmd(),
	)
	return root
}

// defaultConfigPath honours CLAWKIT_CONFIG before falling back to ./clawkit.yaml.
func defaultConfigPath() string {
	if p := os.Getenv("CLAWKIT_CONFIG"); p != "" {
		return p
	}
	return config.DefaultPath
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the clawkit version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clawkit %s\n", version)
		},
	}
}

// loadConfig reads the config file, applying env overrides and validation.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. Interactive commands own the terminal,
// so console log output is discarded unless a log file is configured.
func newLogger(cfg config.LoggerConfig, interactive bool) (*slog.Logger, func() error, error) {
	if interactive {
		switch strings.ToLower(cfg.Output) {
		case "", "stderr", "stdout":
			return logger.NewWithWriter(io.Discard, cfg), func() error { return nil }, nil
		}
	}
	log, closer, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return log, closer, nil
}
