package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/oneinabillion/readings/internal/jobqueue"
)

// WorkerCommand returns the worker command: consume reading jobs from the
// queue until interrupted.
func WorkerCommand() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "Run the reading generation worker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "PostgreSQL connection URL (overrides config)",
				EnvVars: []string{"READINGS_QUEUE_DATABASE_URL"},
			},
		},
		Action: runWorker,
	}
}

func runWorker(c *cli.Context) error {
	cfg, err := loadValidatedConfig(c.String("config"))
	if err != nil {
		return err
	}

	databaseURL := cfg.Queue.DatabaseURL
	if override := c.String("database-url"); override != "" {
		databaseURL = override
	}
	if databaseURL == "" {
		return fmt.Errorf("queue.database_url is required to run the worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	qcfg := jobqueue.GetQueueConfig()
	if cfg.Queue.MaxWorkers > 0 {
		qcfg.MaxWorkers = cfg.Queue.MaxWorkers
	}
	if cfg.Queue.Queue != "" {
		qcfg.QueueName = cfg.Queue.Queue
	}
	qcfg.LogDir = cfg.Generation.LogDir

	log := consoleLogger()
	queue, err := jobqueue.NewJobQueue(databaseURL, orch, qcfg, log)
	if err != nil {
		return fmt.Errorf("failed to create job queue: %w", err)
	}

	if err := queue.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	log.Info().Int("workers", qcfg.MaxWorkers).Str("queue", qcfg.QueueName).Msg("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	return queue.Stop(context.Background())
}
