package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/oneinabillion/readings/internal/api"
	"github.com/oneinabillion/readings/internal/jobqueue"
	"github.com/oneinabillion/readings/internal/layers"
)

// ServeCommand returns the serve command: run the HTTP API that enqueues
// reading jobs and serves finished readings.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the readings API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides config)",
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "PostgreSQL connection URL (overrides config)",
				EnvVars: []string{"READINGS_QUEUE_DATABASE_URL"},
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, err := loadValidatedConfig(c.String("config"))
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if override := c.String("addr"); override != "" {
		addr = override
	}
	databaseURL := cfg.Queue.DatabaseURL
	if override := c.String("database-url"); override != "" {
		databaseURL = override
	}
	if databaseURL == "" {
		return fmt.Errorf("queue.database_url is required to serve the API")
	}

	// The API process enqueues and reads results; generation happens in the
	// worker process, so no model client is built here.
	queue, err := jobqueue.NewJobQueue(databaseURL, nil, jobqueue.GetQueueConfig(), consoleLogger())
	if err != nil {
		return fmt.Errorf("failed to connect to job queue: %w", err)
	}
	defer queue.Stop(context.Background())

	fmt.Printf("Starting readings API server on %s...\n", addr)
	server := api.NewServer(addr, queue, layers.DefaultRegistry())
	return server.Start()
}
