/*
Package jobqueue provides a River-based job queue for reading generation.

For configuration options, retry policies, and tuning parameters, see
queue_config.go.
*/
package jobqueue

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/rs/zerolog"

	"github.com/oneinabillion/readings/internal/database"
	"github.com/oneinabillion/readings/internal/generation"
	"github.com/oneinabillion/readings/internal/layers"
	"github.com/oneinabillion/readings/internal/logging"
	"github.com/oneinabillion/readings/pkg/models"
)

// ReadingJobArgs is the envelope a reading job travels in. The payload is
// the same shape the mobile backend produces.
type ReadingJobArgs struct {
	RequestID string            `json:"request_id"`
	Payload   models.JobPayload `json:"payload"`
}

// Kind returns the job kind for River.
func (ReadingJobArgs) Kind() string {
	return "reading_generation"
}

// ReadingWorker generates every reading a job asks for and persists the
// results.
type ReadingWorker struct {
	river.WorkerDefaults[ReadingJobArgs]
	pool   *pgxpool.Pool
	orch   *generation.Orchestrator
	config *QueueConfig
	log    zerolog.Logger
}

// Work runs one reading job end to end. A returned error hands the job back
// to River for retry with the configured policy.
func (w *ReadingWorker) Work(ctx context.Context, job *river.Job[ReadingJobArgs]) error {
	args := job.Args
	payload := &args.Payload

	w.log.Info().Str("request_id", args.RequestID).Str("type", payload.Type).
		Strs("systems", payload.Systems).Msg("processing reading job")

	var err error
	switch payload.Type {
	case models.JobTypeSynastry:
		err = w.workSynastry(ctx, args)
	case models.JobTypeBundleVerdict:
		err = w.workBundleVerdict(ctx, args)
	default:
		// single_system, complete_reading, and anything unrecognized run as
		// individual readings over the requested systems.
		err = w.workIndividual(ctx, args)
	}
	if err != nil {
		w.log.Error().Err(err).Str("request_id", args.RequestID).Msg("reading job failed")
		return err
	}

	w.log.Info().Str("request_id", args.RequestID).Msg("reading job completed")
	return nil
}

func (w *ReadingWorker) systemsFor(payload *models.JobPayload) []string {
	if len(payload.Systems) > 0 {
		return payload.Systems
	}
	return layers.Systems()
}

func (w *ReadingWorker) workIndividual(ctx context.Context, args ReadingJobArgs) error {
	payload := &args.Payload
	for _, system := range w.systemsFor(payload) {
		result, err := w.orch.GenerateSingleReading(ctx, generation.SingleReadingOptions{
			System:      system,
			PersonName:  payload.Person1.Name,
			ChartData:   payload.ChartData,
			PayloadBase: payload,
			DocType:     "individual",
			Logger:      w.generationLogger(args.RequestID, system),
		})
		if err != nil {
			return fmt.Errorf("%s reading failed: %w", system, err)
		}
		if err := w.storeReading(ctx, args.RequestID, &result.Reading); err != nil {
			return err
		}
	}
	return nil
}

func (w *ReadingWorker) workSynastry(ctx context.Context, args ReadingJobArgs) error {
	payload := &args.Payload
	if payload.Person2 == nil {
		return fmt.Errorf("synastry job %s has no second person", args.RequestID)
	}
	for _, system := range w.systemsFor(payload) {
		result, err := w.orch.GenerateSingleReading(ctx, generation.SingleReadingOptions{
			System:           system,
			PersonName:       payload.Person1.Name,
			Person2Name:      payload.Person2.Name,
			ChartDataPerson1: payload.ChartData,
			ChartDataPerson2: payload.ChartData2,
			PayloadBase:      payload,
			DocType:          "overlay",
			Logger:           w.generationLogger(args.RequestID, system),
		})
		if err != nil {
			return fmt.Errorf("%s synastry reading failed: %w", system, err)
		}
		if err := w.storeReading(ctx, args.RequestID, &result.Reading); err != nil {
			return err
		}
	}
	return nil
}

// workBundleVerdict runs the per-system synastry readings first, then the
// verdict synthesized from their accumulated opening conclusions.
func (w *ReadingWorker) workBundleVerdict(ctx context.Context, args ReadingJobArgs) error {
	payload := &args.Payload
	if payload.Person2 == nil {
		return fmt.Errorf("verdict job %s has no second person", args.RequestID)
	}

	systems := w.systemsFor(payload)
	conclusions := make(map[string]string, len(systems))
	for _, system := range systems {
		result, err := w.orch.GenerateSingleReading(ctx, generation.SingleReadingOptions{
			System:           system,
			PersonName:       payload.Person1.Name,
			Person2Name:      payload.Person2.Name,
			ChartDataPerson1: payload.ChartData,
			ChartDataPerson2: payload.ChartData2,
			PayloadBase:      payload,
			DocType:          "overlay",
			Logger:           w.generationLogger(args.RequestID, system),
		})
		if err != nil {
			return fmt.Errorf("%s synastry reading failed: %w", system, err)
		}
		if err := w.storeReading(ctx, args.RequestID, &result.Reading); err != nil {
			return err
		}
		conclusions[system] = openingParagraph(result.Reading.Body)
	}

	verdict, err := w.orch.GenerateVerdict(ctx, generation.VerdictOptions{
		PersonName:  payload.Person1.Name,
		Person2Name: payload.Person2.Name,
		Systems:     systems,
		PayloadBase: payload,
		Source:      &generation.AccumulatedFromPriorTasks{Conclusions: conclusions},
		Logger:      w.generationLogger(args.RequestID, "verdict"),
	})
	if err != nil {
		return fmt.Errorf("verdict failed: %w", err)
	}
	return w.storeReading(ctx, args.RequestID, &verdict.Reading)
}

// openingParagraph condenses a reading to its first paragraph, the part a
// verdict needs as a witness statement.
func openingParagraph(body string) string {
	for _, p := range strings.Split(body, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			return p
		}
	}
	return ""
}

func (w *ReadingWorker) generationLogger(requestID, system string) *logging.GenerationLogger {
	gl, err := logging.New(requestID+"_"+system, logging.Options{Dir: w.config.LogDir})
	if err != nil {
		w.log.Warn().Err(err).Msg("generation log file unavailable, logging to console only")
		return logging.Nop()
	}
	return gl
}

// storeReading upserts one finished reading. Re-running a retried job
// overwrites its own earlier rows instead of duplicating them.
func (w *ReadingWorker) storeReading(ctx context.Context, requestID string, reading *models.FinalReading) error {
	query := `
		INSERT INTO readings (
			id,
			request_id,
			system,
			kind,
			body,
			footer,
			word_count,
			warnings,
			generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (request_id, system, kind) DO UPDATE SET
			id = EXCLUDED.id,
			body = EXCLUDED.body,
			footer = EXCLUDED.footer,
			word_count = EXCLUDED.word_count,
			warnings = EXCLUDED.warnings,
			generated_at = EXCLUDED.generated_at
	`
	_, err := w.pool.Exec(ctx, query,
		reading.ID,
		requestID,
		reading.System,
		reading.Kind,
		reading.Body,
		reading.Footer,
		reading.WordCount,
		reading.Warnings,
		reading.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store %s %s reading: %w", reading.System, reading.Kind, err)
	}
	return nil
}

// JobQueue manages the River job queue.
type JobQueue struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	config *QueueConfig
}

// NewJobQueue creates a new job queue instance wired to the given generation
// orchestrator. A nil orchestrator yields an insert-only queue for processes
// that enqueue jobs and read results without working them.
func NewJobQueue(databaseURL string, orch *generation.Orchestrator, config *QueueConfig, log zerolog.Logger) (*JobQueue, error) {
	if config == nil {
		config = GetQueueConfig()
	}

	pool, err := database.NewPool(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	riverCfg := &river.Config{}
	if orch != nil {
		workers := river.NewWorkers()
		river.AddWorker(workers, &ReadingWorker{pool: pool, orch: orch, config: config, log: log})
		riverCfg.Queues = config.RiverQueueConfig()
		riverCfg.Workers = workers
	}

	client, err := river.NewClient(riverpgxv5.New(pool), riverCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &JobQueue{
		client: client,
		pool:   pool,
		config: config,
	}, nil
}

// Start ensures the readings schema and starts the job queue workers.
func (jq *JobQueue) Start(ctx context.Context) error {
	if err := database.EnsureSchema(ctx, jq.pool); err != nil {
		return err
	}
	return jq.client.Start(ctx)
}

// Stop stops the job queue workers.
func (jq *JobQueue) Stop(ctx context.Context) error {
	jq.pool.Close()
	return jq.client.Stop(ctx)
}

// QueueReadingJob queues one reading generation job on the readings queue.
func (jq *JobQueue) QueueReadingJob(ctx context.Context, requestID string, payload models.JobPayload) error {
	args := ReadingJobArgs{
		RequestID: requestID,
		Payload:   payload,
	}

	_, err := jq.client.Insert(ctx, args, &river.InsertOpts{
		Queue:       jq.config.QueueName,
		MaxAttempts: jq.config.MaxRetries,
	})
	if err != nil {
		return fmt.Errorf("failed to queue reading job: %w", err)
	}

	return nil
}

// ReadingStatus is one stored reading row, as surfaced by the status API.
type ReadingStatus struct {
	ID          string   `json:"id"`
	System      string   `json:"system"`
	Kind        string   `json:"kind"`
	WordCount   int      `json:"word_count"`
	Warnings    []string `json:"warnings,omitempty"`
	GeneratedAt string   `json:"generated_at"`
}

// ReadingsForRequest lists the finished readings stored for one request.
func (jq *JobQueue) ReadingsForRequest(ctx context.Context, requestID string) ([]ReadingStatus, error) {
	rows, err := jq.pool.Query(ctx, `
		SELECT id, system, kind, word_count, warnings, generated_at::text
		FROM readings
		WHERE request_id = $1
		ORDER BY generated_at
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var out []ReadingStatus
	for rows.Next() {
		var rs ReadingStatus
		if err := rows.Scan(&rs.ID, &rs.System, &rs.Kind, &rs.WordCount, &rs.Warnings, &rs.GeneratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reading row: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Reading fetches one stored reading in full.
func (jq *JobQueue) Reading(ctx context.Context, id string) (*models.FinalReading, error) {
	var r models.FinalReading
	err := jq.pool.QueryRow(ctx, `
		SELECT id, system, kind, body, footer, word_count, warnings, generated_at
		FROM readings
		WHERE id = $1
	`, id).Scan(&r.ID, &r.System, &r.Kind, &r.Body, &r.Footer, &r.WordCount, &r.Warnings, &r.GeneratedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reading %s: %w", id, err)
	}
	return &r, nil
}
