package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateDefaultsPass(t *testing.T) {
	cfg := Defaults()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Defaults should pass validation: %v", err)
	}
}

func TestValidateLoggerLevel(t *testing.T) {
	cfg := Defaults()
	cfg.Logger.Level = "verbose"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "logger.level")
}

func TestValidateLoggerFormat(t *testing.T) {
	cfg := Defaults()
	cfg.Logger.Format = "xml"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "logger.format")
}

func TestValidateTracerExporter(t *testing.T) {
	cfg := Defaults()
	cfg.Tracer.Enabled = true
	cfg.Tracer.Exporter = "jaeger"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "tracer.exporter")
}

func TestValidateProbeTimeoutZero(t *testing.T) {
	cfg := Defaults()
	cfg.Validation.ProbeTimeout = 0
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "validation.probe_timeout must be > 0")
}

func TestValidateMinKeyLengthZero(t *testing.T) {
	cfg := Defaults()
	cfg.Validation.MinKeyLength = 0
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "validation.min_key_length must be > 0")
}

func TestValidateProbeBurstRequiredWithRate(t *testing.T) {
	cfg := Defaults()
	cfg.Validation.ProbesPerMin = 10
	cfg.Validation.ProbeBurst = 0
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "validation.probe_burst")
}

func TestValidateCircuitBreaker(t *testing.T) {
	cfg := Defaults()
	cfg.Validation.CircuitBreaker.MaxFailures = 0
	cfg.Validation.CircuitBreaker.Timeout = 0
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("Errors = %v, want 2 entries", ve.Errors)
	}
}

func TestValidateCircuitBreakerDisabledSkipsChecks(t *testing.T) {
	cfg := Defaults()
	cfg.Validation.CircuitBreaker = CircuitBreakerConfig{}
	if err := Validate(cfg); err != nil {
		t.Fatalf("disabled breaker should not be validated: %v", err)
	}
}

func TestValidateStoreBackend(t *testing.T) {
	cfg := Defaults()
	cfg.Store.Backend = "keychain"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "store.backend")
}

func TestValidateStoreFileNeedsPath(t *testing.T) {
	cfg := Defaults()
	cfg.Store.Path = ""
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "store.path is required for the file backend")
}

func TestValidateStoreSecretsPathWithPassphrase(t *testing.T) {
	cfg := Defaults()
	cfg.Store.Passphrase = "secret"
	cfg.Store.SecretsPath = ""
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "store.secrets_path")
}

func TestValidateStoreConsoleNeedsNothing(t *testing.T) {
	cfg := Defaults()
	cfg.Store = StoreConfig{Backend: "console"}
	if err := Validate(cfg); err != nil {
		t.Fatalf("console backend should validate: %v", err)
	}
}

func TestValidateLauncherProcessNeedsCommand(t *testing.T) {
	cfg := Defaults()
	cfg.Launcher.Backend = "process"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "launcher.command")
}

func TestValidateLauncherBackend(t *testing.T) {
	cfg := Defaults()
	cfg.Launcher.Backend = "systemd"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "launcher.backend")
}

func TestValidateDiscovery(t *testing.T) {
	cfg := Defaults()
	cfg.Discovery.Service = ""
	cfg.Discovery.Timeout = 0
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "discovery.service")
	assertContains(t, err.Error(), "discovery.timeout")
}

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected %q to contain %q", s, substr)
	}
}
