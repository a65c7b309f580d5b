package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"clawkit/internal/adapter/discovery"
	"clawkit/internal/domain"
)

func discoverCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "List gateways advertised on the local network",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if !discovery.Available {
				fmt.Fprintln(cmd.OutOrStdout(), "LAN discovery is not built in; rebuild with -tags mdns.")
				return nil
			}
			log, closeLog, err := newLogger(cfg.Logger, false)
			if err != nil {
				return err
			}
			defer closeLog()

			return runDiscover(cmd.Context(), cmd.OutOrStdout(), discovery.New(cfg.Discovery, log))
		},
	}
}

func runDiscover(ctx context.Context, w io.Writer, d domain.GatewayDiscoverer) error {
	gws, err := d.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	if len(gws) == 0 {
		fmt.Fprintln(w, "No gateways found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tURL\tTXT")
	for _, gw := range gws {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", gw.Name, gw.URL, formatTXT(gw.TXT))
	}
	return tw.Flush()
}

func formatTXT(txt map[string]string) string {
	if len(txt) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(txt))
	for k := range txt {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + txt[k]
	}
	return strings.Join(pairs, ",")
}
