package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/oneinabillion/readings/internal/generation"
	"github.com/oneinabillion/readings/internal/layers"
	"github.com/oneinabillion/readings/internal/logging"
)

// GenerateCommand returns the generate command: one reading, straight to a
// file, no queue.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a single reading from a chart data file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "system",
				Aliases:  []string{"s"},
				Usage:    "Interpretive system (western, vedic, chinese, numerology, kabbalah)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "name",
				Aliases:  []string{"n"},
				Usage:    "Subject's name",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "name2",
				Usage: "Second subject's name (makes this a relationship reading)",
			},
			&cli.StringFlag{
				Name:  "chart2",
				Usage: "Second subject's chart data `FILE` (relationship readings)",
			},
			&cli.StringFlag{
				Name:  "style",
				Usage: "Style layer id (default: mythic)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output `FILE` (default: stdout)",
			},
		},
		ArgsUsage: "CHART_FILE",
		Action:    runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: chart data file")
	}
	system := c.String("system")
	if !layers.KnownSystem(system) {
		return fmt.Errorf("unknown system %q", system)
	}

	chartData, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("failed to read chart data: %w", err)
	}

	cfg, err := loadValidatedConfig(c.String("config"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	orch, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	opts := generation.SingleReadingOptions{
		System:       system,
		PersonName:   c.String("name"),
		StyleLayerID: c.String("style"),
		ChartData:    string(chartData),
		DocType:      "individual",
	}

	if chart2Path := c.String("chart2"); chart2Path != "" {
		chart2, err := os.ReadFile(chart2Path)
		if err != nil {
			return fmt.Errorf("failed to read second chart: %w", err)
		}
		if c.String("name2") == "" {
			return fmt.Errorf("--name2 is required with --chart2")
		}
		opts.Person2Name = c.String("name2")
		opts.ChartDataPerson1 = string(chartData)
		opts.ChartDataPerson2 = string(chart2)
		opts.ChartData = ""
		opts.DocType = "overlay"
	}

	gl, err := logging.New(fmt.Sprintf("cli_%d", time.Now().Unix()), logging.Options{
		Dir: cfg.Generation.LogDir,
	})
	if err != nil {
		return fmt.Errorf("failed to open generation log: %w", err)
	}
	defer gl.Close()
	opts.Logger = gl

	fmt.Fprintf(os.Stderr, "Generating %s %s reading for %s...\n", system, opts.DocType, opts.PersonName)

	result, err := orch.GenerateSingleReading(ctx, opts)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	rendered := result.Reading.Rendered()
	if outputPath := c.String("output"); outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("failed to write reading: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d words to %s\n", result.Reading.WordCount, outputPath)
		return nil
	}

	fmt.Println(rendered)
	return nil
}
