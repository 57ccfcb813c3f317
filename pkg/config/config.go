// Package config loads dapwire settings from an optional YAML file, a .env file
// and DAPWIRE_* environment variables, in increasing order of precedence.
// Command line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	TransportTCP       = "tcp"
	TransportStdio     = "stdio"
	TransportWebSocket = "websocket"

	BackendNone  = "none"
	BackendDelve = "delve"
)

// Environment variables read by Load.
const (
	EnvAddr      = "DAPWIRE_ADDR"
	EnvTransport = "DAPWIRE_TRANSPORT"
	EnvUpstream  = "DAPWIRE_UPSTREAM"
	EnvBackend   = "DAPWIRE_BACKEND"
	EnvLogFile   = "DAPWIRE_LOG_FILE"
	EnvValidate  = "DAPWIRE_VALIDATE"
)

// DelveConfig describes the program debugged by the in-process Delve backend.
type DelveConfig struct {
	Program    string   `yaml:"program"`
	Args       []string `yaml:"args"`
	BuildFlags string   `yaml:"build_flags"`
	WorkingDir string   `yaml:"working_dir"`
	Output     string   `yaml:"output"`
}

type Config struct {
	Addr          string        `yaml:"addr"`
	Transport     string        `yaml:"transport"`
	WebSocketPath string        `yaml:"websocket_path"`
	Validate      bool          `yaml:"validate"`
	LogFile       string        `yaml:"log_file"`
	SourceRoot    string        `yaml:"source_root"`
	Upstream      string        `yaml:"upstream"`
	Backend       string        `yaml:"backend"`
	DialRetries   int           `yaml:"dial_retries"`
	DialDelay     time.Duration `yaml:"dial_delay"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	Delve         DelveConfig   `yaml:"delve"`
}

// Default returns the settings used when nothing else is configured.
func Default() *Config {
	return &Config{
		Addr:          ":4711",
		Transport:     TransportTCP,
		WebSocketPath: "/dap",
		Upstream:      "localhost:2345",
		Backend:       BackendNone,
		DialRetries:   10,
		DialDelay:     500 * time.Millisecond,
		IdleTimeout:   30 * time.Minute,
		Delve:         DelveConfig{Output: "__debug_bin"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path is
// empty), a .env file in the working directory if one exists, and the
// environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	// A missing .env is not an error.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Addr = getEnv(EnvAddr, c.Addr)
	c.Transport = getEnv(EnvTransport, c.Transport)
	c.Upstream = getEnv(EnvUpstream, c.Upstream)
	c.Backend = getEnv(EnvBackend, c.Backend)
	c.LogFile = getEnv(EnvLogFile, c.LogFile)
	if v := os.Getenv(EnvValidate); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvValidate, v, err)
		}
		c.Validate = b
	}
	return nil
}

// Check reports settings that cannot work together.
func (c *Config) Check() error {
	switch c.Transport {
	case TransportTCP, TransportStdio, TransportWebSocket:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	switch c.Backend {
	case BackendNone:
	case BackendDelve:
		if c.Delve.Program == "" {
			return fmt.Errorf("backend %q needs delve.program", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Transport != TransportStdio && c.Addr == "" {
		return fmt.Errorf("transport %q needs an address", c.Transport)
	}
	if c.DialRetries < 1 {
		return fmt.Errorf("dial_retries must be at least 1, got %d", c.DialRetries)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
