// Package config loads the application configuration: defaults, then an
// optional TOML file, then READINGS_-prefixed environment variables, each
// layer overriding the previous one.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration.
type Config struct {
	Model struct {
		Provider    string  `koanf:"provider"`
		Name        string  `koanf:"name"`
		APIKey      string  `koanf:"api_key"`
		Temperature float64 `koanf:"temperature"`
		MaxRetries  int     `koanf:"max_retries"`
	} `koanf:"model"`

	Generation struct {
		MaxAttempts        int    `koanf:"max_attempts"`
		MaxExpansionPasses int    `koanf:"max_expansion_passes"`
		MaxRepairPasses    int    `koanf:"max_repair_passes"`
		LogDir             string `koanf:"log_dir"`
	} `koanf:"generation"`

	Queue struct {
		DatabaseURL string `koanf:"database_url"`
		MaxWorkers  int    `koanf:"max_workers"`
		Queue       string `koanf:"queue"`
	} `koanf:"queue"`

	Server struct {
		Addr string `koanf:"addr"`
	} `koanf:"server"`
}

// LoadConfig loads the configuration from a file, or from default locations
// when configPath is empty.
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"model.provider":                  "googleai",
		"model.name":                      "gemini-2.5-pro",
		"model.temperature":               0.8,
		"model.max_retries":               3,
		"generation.max_attempts":         2,
		"generation.max_expansion_passes": 5,
		"generation.max_repair_passes":    2,
		"generation.log_dir":              "./readings-logs",
		"queue.max_workers":               4,
		"queue.queue":                     "readings",
		"server.addr":                     ":8080",
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		defaultPaths := []string{"./readings.toml", "$HOME/.readings.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix READINGS_
	k.Load(env.Provider("READINGS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "READINGS_")), "_", ".", -1)
	}), nil)

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# Readings Configuration

[model]
provider = "googleai"
name = "gemini-2.5-pro"
api_key = "your-api-key"
temperature = 0.8
max_retries = 3

[generation]
max_attempts = 2
max_expansion_passes = 5
max_repair_passes = 2
log_dir = "./readings-logs"

[queue]
database_url = "postgres://localhost:5432/readings"
max_workers = 4
queue = "readings"

[server]
addr = ":8080"
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration.
func Validate(config *Config) error {
	if config.Model.Provider == "" {
		return fmt.Errorf("model provider is required")
	}
	if config.Model.Name == "" {
		return fmt.Errorf("model name is required")
	}

	switch config.Model.Provider {
	case "googleai":
		if config.Model.APIKey == "" && os.Getenv("GOOGLE_API_KEY") == "" {
			return fmt.Errorf("googleai api_key is required (config or GOOGLE_API_KEY)")
		}
	default:
		return fmt.Errorf("unknown model provider %q", config.Model.Provider)
	}

	if config.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be at least 1")
	}
	if config.Generation.MaxExpansionPasses < 1 {
		return fmt.Errorf("generation.max_expansion_passes must be at least 1")
	}

	return nil
}
