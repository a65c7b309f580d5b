package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"clawkit/internal/adapter/discovery"
	"clawkit/internal/adapter/launcher"
	"clawkit/internal/adapter/store"
	tuisetup "clawkit/internal/adapter/tui/setup"
	"clawkit/internal/adapter/validation"
	"clawkit/internal/infra/tracer"
	"clawkit/internal/usecase/onboarding"
)

func setupCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Run the interactive setup wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context(), *cfgPath, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runSetup(ctx context.Context, cfgPath string, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg.Logger, true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	// The console backend prints its summary here; it is flushed after the
	// wizard releases the terminal.
	var summary bytes.Buffer
	st, closeStore, err := store.New(cfg.Store, &summary, log)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer func() { _ = closeStore() }()

	launch, err := launcher.New(cfg.Launcher, stdout, stderr, log)
	if err != nil {
		return fmt.Errorf("init launcher: %w", err)
	}

	ctrl := onboarding.New(validation.NewService(cfg.Validation, log), st, launch, log)
	defer ctrl.Close()

	model := tuisetup.NewWizardModel(ctx, ctrl, discovery.New(cfg.Discovery, log))
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("setup wizard: %w", err)
	}

	_, _ = io.Copy(stdout, &summary)

	wm, ok := final.(tuisetup.WizardModel)
	if !ok || wm.Cancelled() {
		fmt.Fprintln(stdout, "Setup cancelled. Nothing was saved.")
		return nil
	}

	state := ctrl.Snapshot()
	if state.Saved {
		fmt.Fprintf(stdout, "Configuration saved (%s backend).\n", cfg.Store.Backend)
	}
	if !wm.LaunchRequested() {
		return nil
	}

	fmt.Fprintf(stdout, "Launching agent against %s...\n", state.GatewayURL)
	if err := ctrl.Launch(ctx); err != nil {
		return fmt.Errorf("launch: %w", err)
	}
	return nil
}
