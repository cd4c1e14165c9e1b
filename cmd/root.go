// Package cmd wires the CLI commands: generate a reading directly, preview
// a composed prompt, run the job queue worker, serve the HTTP API, and
// manage configuration.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/oneinabillion/readings/internal/config"
	"github.com/oneinabillion/readings/internal/generation"
	"github.com/oneinabillion/readings/internal/layers"
	"github.com/oneinabillion/readings/internal/llm"
)

func consoleLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// buildOrchestrator assembles the generation stack from configuration: the
// Gemini client behind the retry wrapper, the embedded layer registry, and
// the configured pass budgets.
func buildOrchestrator(ctx context.Context, cfg *config.Config) (*generation.Orchestrator, error) {
	apiKey := cfg.Model.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}

	inner, err := llm.NewGoogleAIClient(ctx, llm.GoogleAIConfig{
		APIKey: apiKey,
		Model:  cfg.Model.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	client := llm.NewResilientClientWithDefaults(inner, consoleLogger())

	genCfg := generation.DefaultConfig()
	if cfg.Generation.MaxAttempts > 0 {
		genCfg.MaxAttempts = cfg.Generation.MaxAttempts
	}
	if cfg.Generation.MaxExpansionPasses > 0 {
		genCfg.MaxExpansionPasses = cfg.Generation.MaxExpansionPasses
	}
	if cfg.Generation.MaxRepairPasses > 0 {
		genCfg.MaxRepairPasses = cfg.Generation.MaxRepairPasses
	}
	if cfg.Model.Temperature > 0 {
		genCfg.WritingTemperature = cfg.Model.Temperature
	}

	return generation.New(client, layers.DefaultRegistry(), nil, genCfg), nil
}

func loadValidatedConfig(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
