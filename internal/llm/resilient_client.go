package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/oneinabillion/readings/internal/retry"
)

// ResilientClient wraps a Client with bounded retry, per-call timeout, and
// call logging. This is the implementation the orchestrator is normally
// given; the inner client stays a single-shot transport.
type ResilientClient struct {
	inner   Client
	cfg     retry.Config
	timeout time.Duration
	logger  zerolog.Logger
}

// NewResilientClient wraps the inner client. A zero timeout disables the
// per-call deadline.
func NewResilientClient(inner Client, cfg retry.Config, timeout time.Duration, logger zerolog.Logger) *ResilientClient {
	return &ResilientClient{inner: inner, cfg: cfg, timeout: timeout, logger: logger}
}

// NewResilientClientWithDefaults wraps the inner client with the standard
// model-call retry configuration and a 10 minute per-call ceiling.
func NewResilientClientWithDefaults(inner Client, logger zerolog.Logger) *ResilientClient {
	return NewResilientClient(inner, retry.ModelCallConfig(), 10*time.Minute, logger)
}

// Generate calls the inner client with retry and timeout. The request's
// MaxRetries, when positive, overrides the configured retry count.
func (rc *ResilientClient) Generate(ctx context.Context, req Request) (string, error) {
	if rc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.timeout)
		defer cancel()
	}

	cfg := rc.cfg
	if req.Options.MaxRetries > 0 {
		cfg.MaxRetries = req.Options.MaxRetries
	}

	start := time.Now()
	var response string
	result := retry.Do(ctx, cfg, rc.logger, func() (error, string) {
		text, err := rc.inner.Generate(ctx, req)
		if err != nil {
			return err, err.Error()
		}
		response = text
		return nil, "success"
	})

	if !result.Success {
		return "", fmt.Errorf("llm: call %q failed after %d attempts: %w",
			req.Label, result.Attempts, result.LastError)
	}

	rc.logger.Debug().
		Str("label", req.Label).
		Int("attempts", result.Attempts).
		Int("response_chars", len(response)).
		Dur("duration", time.Since(start)).
		Msg("model call completed")
	return response, nil
}
