/*
Package jobqueue configuration - all tunable parameters for the River job
queue.

# River Job Queue Configuration Guide

## Quick Configuration Reference:

### Performance Tuning:
- Increase MaxWorkers for higher throughput (more concurrent generations).
  Every worker holds one long-running model conversation, so size this
  against the model provider's rate limits, not CPU.
- Adjust MaxRetries for different reliability vs. cost tradeoffs. A retried
  reading job re-spends the full model budget of its failed readings.

### Reliability Tuning:
- Increase MaxRetries when the model provider is flaky.
- JobTimeout must cover a full bundle: five synastry readings plus a
  verdict. A single reading alone can take several minutes of model calls.

## Monitoring and Debugging:
- Job status can be monitored via River's built-in job tracking.
- Failed jobs retain error information in the River jobs table.
- Finished readings are stored in the readings table.
- Per-generation pass logs go to LogDir, one file per reading.

## Database Requirements:
- PostgreSQL with River schema migrations applied.
- readings table for storing generation results.
*/
package jobqueue

import (
	"os"
	"time"

	"github.com/riverqueue/river"
)

// QueueConfig holds all configurable parameters for the job queue.
type QueueConfig struct {
	// Worker Configuration
	MaxWorkers int    // Number of concurrent workers processing jobs (default: 4)
	QueueName  string // River queue readings jobs run on (default: "readings")

	// Retry Configuration
	MaxRetries  int           // Maximum attempts per job (default: 3)
	RetryPolicy RetryPolicy   // Retry timing and backoff configuration
	JobTimeout  time.Duration // Maximum time a single job can run (default: 60 minutes)

	// Logging
	LogDir string // Directory for per-generation log files; empty disables them
}

// RetryPolicy defines how failed jobs are retried.
type RetryPolicy struct {
	// InitialInterval is the time to wait before the first retry
	InitialInterval time.Duration // default: 30 seconds

	// MaxInterval is the maximum time to wait between retries
	MaxInterval time.Duration // default: 15 minutes

	// Multiplier is the factor by which the interval increases after each retry
	Multiplier float64 // default: 2.0 (exponential backoff)

	// MaxElapsedTime is the total time after which retries stop
	MaxElapsedTime time.Duration // default: 6 hours
}

// DefaultQueueConfig returns the default configuration.
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		// Worker settings - tune against model provider rate limits
		MaxWorkers: 4,
		QueueName:  "readings",

		// Retry settings - generation retries are expensive, keep them few
		MaxRetries: 3,
		RetryPolicy: RetryPolicy{
			InitialInterval: 30 * time.Second,
			MaxInterval:     15 * time.Minute,
			Multiplier:      2.0,
			MaxElapsedTime:  6 * time.Hour,
		},

		// A bundle verdict job runs six generations back to back
		JobTimeout: 60 * time.Minute,

		LogDir: "./readings-logs",
	}
}

// ProductionQueueConfig returns a configuration optimized for production use.
func ProductionQueueConfig() *QueueConfig {
	config := DefaultQueueConfig()

	config.MaxWorkers = 8
	config.JobTimeout = 90 * time.Minute
	config.RetryPolicy.MaxElapsedTime = 24 * time.Hour

	return config
}

// DevelopmentQueueConfig returns a configuration optimized for development.
func DevelopmentQueueConfig() *QueueConfig {
	config := DefaultQueueConfig()

	config.MaxWorkers = 1
	config.MaxRetries = 1 // Fail fast in development
	config.RetryPolicy.MaxElapsedTime = 30 * time.Minute
	config.JobTimeout = 20 * time.Minute

	return config
}

// GetQueueConfig returns the appropriate configuration based on environment.
func GetQueueConfig() *QueueConfig {
	switch os.Getenv("READINGS_ENV") {
	case "production":
		return ProductionQueueConfig()
	case "development":
		return DevelopmentQueueConfig()
	default:
		return DefaultQueueConfig()
	}
}

// RiverQueueConfig converts our config to River's queue configuration format.
func (c *QueueConfig) RiverQueueConfig() map[string]river.QueueConfig {
	return map[string]river.QueueConfig{
		c.QueueName: {
			MaxWorkers: c.MaxWorkers,
		},
	}
}
