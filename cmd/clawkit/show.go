package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clawkit/internal/adapter/store"
)

func showCmd(cfgPath *string) *cobra.Command {
	var verifyKey bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the last saved setup with the API key masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			log, closeLog, err := newLogger(cfg.Logger, false)
			if err != nil {
				return err
			}
			defer closeLog()

			r, closeStore, err := store.Open(cfg.Store, log)
			if err != nil {
				return err
			}
			defer closeStore()

			return runShow(cmd.Context(), cmd.OutOrStdout(), r, verifyKey)
		},
	}

	cmd.Flags().BoolVar(&verifyKey, "verify-key", false, "decrypt the stored API key with CLAWKIT_STORE_PASSPHRASE (the key is never printed)")
	return cmd
}

// runShow prints the latest record. With verifyKey it also confirms the
// sealed key opens, without writing it anywhere.
func runShow(ctx context.Context, w io.Writer, r store.Reader, verifyKey bool) error {
	rec, err := r.Latest(ctx)
	if errors.Is(err, store.ErrNoRecord) {
		fmt.Fprintln(w, "No saved setup yet. Run `clawkit setup` first.")
		return nil
	}
	if err != nil {
		return err
	}

	channels := "none"
	if len(rec.Channels) > 0 {
		channels = strings.Join(rec.Channels, ", ")
	}

	fmt.Fprintf(w, "ID:           %s\n", rec.ID)
	fmt.Fprintf(w, "Saved:        %s\n", rec.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Gateway URL:  %s\n", rec.GatewayURL)
	fmt.Fprintf(w, "Provider:     %s\n", rec.Provider)
	fmt.Fprintf(w, "API Key:      %s\n", rec.APIKey)
	fmt.Fprintf(w, "Channels:     %s\n", channels)

	if !verifyKey {
		return nil
	}
	if _, err := r.OpenSecret(ctx, rec.ID); err != nil {
		return fmt.Errorf("verify stored key: %w", err)
	}
	fmt.Fprintln(w, "Stored key:   decrypts with the configured passphrase")
	return nil
}
