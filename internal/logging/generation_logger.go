// Package logging manages the per-generation log: one file per reading
// generation plus structured zerolog events, so a failed generation can be
// reconstructed pass by pass. Loggers are created per invocation and passed
// down explicitly; there is no process-wide current logger, which keeps
// concurrent generations independent.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventSink receives structured generation events. The job system plugs in
// here to surface progress; a nil sink is always safe.
type EventSink interface {
	EmitStageStarted(generationID, stage string)
	EmitStageCompleted(generationID, stage, detail string)
	EmitStageError(generationID, stage string, err error)
	EmitPassEvent(generationID, pass string, number, wordCount int)
	EmitCompletion(generationID string, wordCount int, warnings []string)
}

// GenerationLogger tracks one reading generation from trigger to
// acceptance.
type GenerationLogger struct {
	generationID string
	log          zerolog.Logger
	logFile      *os.File
	startTime    time.Time
	sink         EventSink
	mu           sync.Mutex
}

// Options configures a generation logger.
type Options struct {
	// Dir is where per-generation log files go. Empty disables the file.
	Dir string
	// Console receives the zerolog stream; defaults to stderr.
	Console io.Writer
	// Sink receives structured events; may be nil.
	Sink EventSink
}

// New creates a logger for one generation. Close it when the generation
// finishes.
func New(generationID string, opts Options) (*GenerationLogger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{console}
	var logFile *os.File
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		name := fmt.Sprintf("generation_%s_%s.log", generationID, time.Now().Format("20060102_150405"))
		f, err := os.Create(filepath.Join(opts.Dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to create generation log file: %w", err)
		}
		logFile = f
		writers = append(writers, f)
	}

	log := zerolog.New(io.MultiWriter(writers...)).With().
		Timestamp().
		Str("generation_id", generationID).
		Logger()

	return &GenerationLogger{
		generationID: generationID,
		log:          log,
		logFile:      logFile,
		startTime:    time.Now(),
		sink:         opts.Sink,
	}, nil
}

// Nop returns a logger that records nothing; used by tests and as the
// default when the caller supplies none.
func Nop() *GenerationLogger {
	return &GenerationLogger{log: zerolog.Nop(), startTime: time.Now()}
}

// Log returns the underlying zerolog logger. Returned by pointer because
// zerolog's level methods have pointer receivers.
func (g *GenerationLogger) Log() *zerolog.Logger {
	return &g.log
}

// Section marks a major phase boundary in the log.
func (g *GenerationLogger) Section(name string) {
	g.log.Info().Dur("elapsed", time.Since(g.startTime)).Msg("==== " + name + " ====")
}

// StageStarted records and emits the start of an orchestrator stage.
func (g *GenerationLogger) StageStarted(stage string) {
	g.log.Info().Str("stage", stage).Msg("stage started")
	if g.sink != nil {
		g.sink.EmitStageStarted(g.generationID, stage)
	}
}

// StageCompleted records and emits a finished stage.
func (g *GenerationLogger) StageCompleted(stage, detail string) {
	g.log.Info().Str("stage", stage).Str("detail", detail).Msg("stage completed")
	if g.sink != nil {
		g.sink.EmitStageCompleted(g.generationID, stage, detail)
	}
}

// StageError records and emits a failed stage.
func (g *GenerationLogger) StageError(stage string, err error) {
	g.log.Error().Str("stage", stage).Err(err).Msg("stage failed")
	if g.sink != nil {
		g.sink.EmitStageError(g.generationID, stage, err)
	}
}

// Pass records one expansion or repair pass.
func (g *GenerationLogger) Pass(pass string, number, wordCount int) {
	g.log.Info().Str("pass", pass).Int("number", number).Int("words", wordCount).Msg("pass finished")
	if g.sink != nil {
		g.sink.EmitPassEvent(g.generationID, pass, number, wordCount)
	}
}

// Completion records final acceptance.
func (g *GenerationLogger) Completion(wordCount int, warnings []string) {
	g.log.Info().Int("words", wordCount).Strs("warnings", warnings).
		Dur("total", time.Since(g.startTime)).Msg("generation accepted")
	if g.sink != nil {
		g.sink.EmitCompletion(g.generationID, wordCount, warnings)
	}
}

// Close flushes and closes the per-generation log file.
func (g *GenerationLogger) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.logFile == nil {
		return nil
	}
	err := g.logFile.Close()
	g.logFile = nil
	return err
}
