package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/oneinabillion/readings/internal/compose"
	"github.com/oneinabillion/readings/internal/layers"
	"github.com/oneinabillion/readings/pkg/models"
)

// ComposeCommand returns the compose command: build the layered prompt for
// a job payload and print it, no model calls.
func ComposeCommand() *cli.Command {
	return &cli.Command{
		Name:  "compose",
		Usage: "Compose the layered prompt for a job payload file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "diagnostics",
				Usage: "Print layer diagnostics as JSON instead of the prompt",
			},
		},
		ArgsUsage: "PAYLOAD_FILE",
		Action:    runCompose,
	}
}

func runCompose(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: payload file")
	}

	data, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	var payload models.JobPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	composer := compose.NewComposer(layers.DefaultRegistry())
	result, err := composer.ComposeFromJobPayload(&payload)
	if err != nil {
		return fmt.Errorf("composition failed: %w", err)
	}

	if c.Bool("diagnostics") {
		out, err := json.MarshalIndent(result.Diagnostics, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(result.Prompt)
	return nil
}
