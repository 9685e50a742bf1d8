// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nvraj/mandi/internal/core"
	"github.com/nvraj/mandi/internal/provider"
)

// Config represents the application configuration.
type Config struct {
	Defaults  DefaultsConfig            `yaml:"defaults"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Products  []core.Product            `yaml:"products,omitempty"`
	Server    ServerConfig              `yaml:"server,omitempty"`
}

// ServerConfig holds server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DefaultsConfig holds default negotiation settings.
type DefaultsConfig struct {
	BuyerPersona  string        `yaml:"buyer_persona"`
	SellerPersona string        `yaml:"seller_persona"`
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	MaxRounds     int           `yaml:"max_rounds"`
	MinRounds     int           `yaml:"min_rounds"`
	MaxDuration   time.Duration `yaml:"max_duration"`
}

// ProviderConfig holds provider-specific settings.
type ProviderConfig struct {
	Kind    string        `yaml:"kind"` // "ollama", "cli" or "mock"
	Host    string        `yaml:"host,omitempty"`
	Model   string        `yaml:"model,omitempty"`
	Command string        `yaml:"command,omitempty"`
	Args    []string      `yaml:"args,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	Enabled bool          `yaml:"enabled"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			BuyerPersona:  "Diplomatic",
			SellerPersona: "Analytical",
			Provider:      "ollama",
			MaxRounds:     15,
			MinRounds:     4,
			MaxDuration:   3 * time.Minute,
		},
		Server: ServerConfig{
			Port: 8193,
		},
		Providers: map[string]ProviderConfig{
			"ollama": {
				Kind:    "ollama",
				Host:    provider.DefaultOllamaHost,
				Model:   provider.DefaultOllamaModel,
				Timeout: 2 * time.Minute,
				Enabled: true,
			},
			"mock": {
				Kind:    "mock",
				Timeout: 1 * time.Minute,
				Enabled: true,
			},
		},
	}
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".mandi", "config.yaml")
}

// Load loads configuration from the default path, falling back to defaults
// when the file does not exist.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the given path. Values not present in
// the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// A .env file in the working directory supplements the process
	// environment without overriding variables that are already set.
	_ = ApplyEnvFile(".env")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides lets the environment adjust provider endpoints without
// touching the config file.
func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		if p, ok := cfg.Providers["ollama"]; ok {
			p.Host = host
			cfg.Providers["ollama"] = p
		}
	}
}

// Save writes the configuration to the given path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// CreateRegistry builds a provider registry from the configuration.
func (c *Config) CreateRegistry() (*provider.Registry, error) {
	registry := provider.NewRegistry()

	for name, pc := range c.Providers {
		if !pc.Enabled {
			continue
		}
		switch pc.Kind {
		case "ollama":
			// Defaults.Model applies when the provider entry names none.
			model := pc.Model
			if model == "" {
				model = c.Defaults.Model
			}
			registry.Register(provider.NewOllamaProvider(provider.OllamaConfig{
				Host:    pc.Host,
				Model:   model,
				Timeout: pc.Timeout,
			}))
		case "cli":
			if pc.Command == "" {
				return nil, fmt.Errorf("provider %s: cli kind requires a command", name)
			}
			registry.Register(provider.NewCLIProvider(provider.CLIConfig{
				Name:    name,
				Command: pc.Command,
				Args:    pc.Args,
				Timeout: pc.Timeout,
			}))
		case "mock":
			registry.Register(provider.NewMockProvider())
		default:
			return nil, fmt.Errorf("provider %s: unknown kind %q", name, pc.Kind)
		}
	}

	return registry, nil
}
