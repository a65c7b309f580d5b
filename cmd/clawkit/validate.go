package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clawkit/internal/adapter/validation"
	"clawkit/internal/domain"
)

// CheckStatus represents the result of a validation check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // optional fix suggestion
}

// Check is a named check function.
type Check struct {
	Name string
	Fn   func(ctx context.Context) CheckResult
}

const defaultKeyEnv = "CLAWKIT_API_KEY"

func validateCmd(cfgPath *string) *cobra.Command {
	var (
		gateway  string
		provider string
		keyEnv   string
	)

	cmd := &cobra.Command{
		Use:     "validate",
		Short:   "Check a gateway URL and API key without the wizard",
		Example: "  CLAWKIT_API_KEY=sk-... clawkit validate --gateway wss://gw.example.com --provider openai",
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

			p := domain.DefaultProvider
			if provider != "" {
				if p, err = domain.ParseProvider(provider); err != nil {
					return err
				}
			}

			v := validation.NewService(cfg.Validation, log)
			return runChecks(cmd.Context(), cmd.OutOrStdout(), validationChecks(v, gateway, p, keyEnv, os.Getenv(keyEnv)))
		},
	}

	cmd.Flags().StringVar(&gateway, "gateway", "", "gateway URL to probe (http, https, ws or wss)")
	cmd.Flags().StringVar(&provider, "provider", "", "AI provider: anthropic, openai or google")
	cmd.Flags().StringVar(&keyEnv, "key-env", defaultKeyEnv, "environment variable holding the API key")
	_ = cmd.MarkFlagRequired("gateway")
	return cmd
}

// validationChecks builds the gateway and API key checks. The key is read
// by the caller so it never appears on the command line.
func validationChecks(v domain.Validator, gateway string, provider domain.Provider, keyEnv, key string) []Check {
	return []Check{
		{Name: "Gateway URL", Fn: func(ctx context.Context) CheckResult {
			if err := v.ValidateGatewayURL(ctx, gateway); err != nil {
				return CheckResult{
					Status:  StatusFail,
					Message: domain.Describe(err),
					Fix:     gatewayFix(err),
				}
			}
			return CheckResult{Status: StatusPass, Message: gateway + " is reachable"}
		}},
		{Name: "API key", Fn: func(ctx context.Context) CheckResult {
			if key == "" {
				return CheckResult{
					Status:  StatusWarn,
					Message: "not checked, " + keyEnv + " is not set",
					Fix:     fmt.Sprintf("export %s=<your %s key>", keyEnv, provider.DisplayName()),
				}
			}
			if err := v.ValidateAPIKey(ctx, key, provider); err != nil {
				return CheckResult{Status: StatusFail, Message: domain.Describe(err)}
			}
			return CheckResult{Status: StatusPass, Message: provider.DisplayName() + " key accepted"}
		}},
	}
}

func gatewayFix(err error) string {
	switch domain.ErrorCodeOf(err) {
	case domain.CodeInvalidURL:
		return "Use a full URL such as wss://gateway.example.com or http://localhost:18789"
	case domain.CodeNetwork:
		return "Check that the gateway is running and reachable from this machine"
	}
	return ""
}

// runChecks executes checks in order and prints a report. It fails when any
// check fails.
func runChecks(ctx context.Context, w io.Writer, checks []Check) error {
	fmt.Fprintln(w, "clawkit validate")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)

	var pass, warn, fail int
	for _, check := range checks {
		result := check.Fn(ctx)
		result.Name = check.Name

		fmt.Fprintf(w, "  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Fprintf(w, "      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		return fmt.Errorf("%d check(s) failed", fail)
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}
