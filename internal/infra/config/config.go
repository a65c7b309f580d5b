package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for its config when --config is not given.
const DefaultPath = "./clawkit.yaml"

// Config is the root configuration structure.
type Config struct {
	Logger     LoggerConfig     `yaml:"logger"`
	Tracer     TracerConfig     `yaml:"tracer"`
	Validation ValidationConfig `yaml:"validation"`
	Store      StoreConfig      `yaml:"store"`
	Launcher   LauncherConfig   `yaml:"launcher"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
}

// ValidationConfig tunes the gateway probe and the API key check.
type ValidationConfig struct {
	ProbeTimeout   time.Duration        `yaml:"probe_timeout"`
	KeyCheckDelay  time.Duration        `yaml:"key_check_delay"`
	MinKeyLength   int                  `yaml:"min_key_length"`
	ProbesPerMin   int                  `yaml:"probes_per_minute"` // 0 = unlimited
	ProbeBurst     int                  `yaml:"probe_burst"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CircuitBreakerConfig configures the breaker in front of the gateway probe.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// StoreConfig selects where the finalized configuration is written.
// Passphrase is read from CLAWKIT_STORE_PASSPHRASE and never from the file.
type StoreConfig struct {
	Backend     string        `yaml:"backend"` // "console", "file", "sqlite"
	Path        string        `yaml:"path"`
	SecretsPath string        `yaml:"secrets_path"`
	SaveDelay   time.Duration `yaml:"save_delay"`
	Passphrase  string        `yaml:"-"`
}

// LauncherConfig describes how the downstream agent is started.
type LauncherConfig struct {
	Backend string            `yaml:"backend"` // "log", "process"
	Command string            `yaml:"command,omitempty"`
	Args    []string          `yaml:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// DiscoveryConfig configures LAN gateway discovery.
type DiscoveryConfig struct {
	Service string        `yaml:"service"`
	Domain  string        `yaml:"domain"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// defaultDataDir returns the persistent data directory under $HOME/.clawkit.
// Falls back to "./data" if $HOME cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".clawkit")
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
		Validation: ValidationConfig{
			ProbeTimeout:  10 * time.Second,
			KeyCheckDelay: time.Second,
			MinKeyLength:  10,
			ProbesPerMin:  30,
			ProbeBurst:    3,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
			},
		},
		Store: StoreConfig{
			Backend:     "file",
			Path:        filepath.Join(dataDir, "setup.yaml"),
			SecretsPath: filepath.Join(dataDir, "secrets.enc"),
			SaveDelay:   time.Second,
		},
		Launcher: LauncherConfig{
			Backend: "log",
		},
		Discovery: DiscoveryConfig{
			Service: "_openclaw-gw._tcp",
			Domain:  "local.",
			Timeout: 5 * time.Second,
		},
	}
}

// Load reads a YAML config file, applies env var overrides and validates.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := validatePermissions(path); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps CLAWKIT_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CLAWKIT_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("CLAWKIT_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("CLAWKIT_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("CLAWKIT_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("CLAWKIT_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}

	if v := os.Getenv("CLAWKIT_VALIDATION_PROBE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Validation.ProbeTimeout = d
		}
	}
	if v := os.Getenv("CLAWKIT_VALIDATION_KEY_CHECK_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Validation.KeyCheckDelay = d
		}
	}
	if v := os.Getenv("CLAWKIT_VALIDATION_MIN_KEY_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Validation.MinKeyLength = n
		}
	}

	if v := os.Getenv("CLAWKIT_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("CLAWKIT_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("CLAWKIT_STORE_SECRETS_PATH"); v != "" {
		cfg.Store.SecretsPath = v
	}
	if v := os.Getenv("CLAWKIT_STORE_SAVE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Store.SaveDelay = d
		}
	}
	if v := os.Getenv("CLAWKIT_STORE_PASSPHRASE"); v != "" {
		cfg.Store.Passphrase = v
	}

	if v := os.Getenv("CLAWKIT_LAUNCHER_BACKEND"); v != "" {
		cfg.Launcher.Backend = v
	}
	if v := os.Getenv("CLAWKIT_LAUNCHER_COMMAND"); v != "" {
		cfg.Launcher.Command = v
	}
	if v := os.Getenv("CLAWKIT_LAUNCHER_ARGS"); v != "" {
		cfg.Launcher.Args = strings.Fields(v)
	}

	if v := os.Getenv("CLAWKIT_DISCOVERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Discovery.Timeout = d
		}
	}
}

// Save writes cfg as YAML to path with 0600 permissions.
func Save(cfg *Config, path string) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable or executable)
	if mode&0o033 != 0 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
