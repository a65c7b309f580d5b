package config

import (
	"fmt"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	validateValidation(cfg, ve)
	validateStore(cfg, ve)
	validateLauncher(cfg, ve)
	validateDiscovery(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		ve.Add("logger.level %q is invalid (want debug, info, warn, error)", cfg.Logger.Level)
	}
	switch strings.ToLower(cfg.Logger.Format) {
	case "", "text", "json":
	default:
		ve.Add("logger.format %q is invalid (want text, json)", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	switch cfg.Tracer.Exporter {
	case "", "noop", "stdout":
	default:
		ve.Add("tracer.exporter %q is invalid (want noop, stdout)", cfg.Tracer.Exporter)
	}
}

func validateValidation(cfg *Config, ve *ValidationError) {
	v := cfg.Validation
	if v.ProbeTimeout <= 0 {
		ve.Add("validation.probe_timeout must be > 0")
	}
	if v.KeyCheckDelay < 0 {
		ve.Add("validation.key_check_delay must be >= 0")
	}
	if v.MinKeyLength <= 0 {
		ve.Add("validation.min_key_length must be > 0")
	}
	if v.ProbesPerMin < 0 {
		ve.Add("validation.probes_per_minute must be >= 0")
	}
	if v.ProbesPerMin > 0 && v.ProbeBurst <= 0 {
		ve.Add("validation.probe_burst must be > 0 when probes_per_minute is set")
	}
	if v.CircuitBreaker.Enabled {
		if v.CircuitBreaker.MaxFailures == 0 {
			ve.Add("validation.circuit_breaker.max_failures must be > 0")
		}
		if v.CircuitBreaker.Timeout <= 0 {
			ve.Add("validation.circuit_breaker.timeout must be > 0")
		}
	}
}

func validateStore(cfg *Config, ve *ValidationError) {
	s := cfg.Store
	switch s.Backend {
	case "console":
	case "file":
		if s.Path == "" {
			ve.Add("store.path is required for the file backend")
		}
		if s.Passphrase != "" && s.SecretsPath == "" {
			ve.Add("store.secrets_path is required when a store passphrase is set")
		}
	case "sqlite":
		if s.Path == "" {
			ve.Add("store.path is required for the sqlite backend")
		}
	default:
		ve.Add("store.backend %q is invalid (want console, file, sqlite)", s.Backend)
	}
	if s.SaveDelay < 0 {
		ve.Add("store.save_delay must be >= 0")
	}
}

func validateLauncher(cfg *Config, ve *ValidationError) {
	switch cfg.Launcher.Backend {
	case "log":
	case "process":
		if cfg.Launcher.Command == "" {
			ve.Add("launcher.command is required for the process backend")
		}
	default:
		ve.Add("launcher.backend %q is invalid (want log, process)", cfg.Launcher.Backend)
	}
}

func validateDiscovery(cfg *Config, ve *ValidationError) {
	if cfg.Discovery.Service == "" {
		ve.Add("discovery.service must not be empty")
	}
	if cfg.Discovery.Timeout <= 0 {
		ve.Add("discovery.timeout must be > 0")
	}
}
