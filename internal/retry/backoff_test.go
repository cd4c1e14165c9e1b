package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func fastConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2.0,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	result := Do(context.Background(), fastConfig(), zerolog.Nop(), func() (error, string) {
		return nil, "success"
	})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Empty(t, result.RetryReasons)
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	result := Do(context.Background(), fastConfig(), zerolog.Nop(), func() (error, string) {
		calls++
		if calls < 3 {
			return errors.New("503 service unavailable"), "503"
		}
		return nil, "success"
	})

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, []string{"503", "503"}, result.RetryReasons)
}

func TestDo_NonRetryableFailsImmediately(t *testing.T) {
	calls := 0
	result := Do(context.Background(), fastConfig(), zerolog.Nop(), func() (error, string) {
		calls++
		return errors.New("invalid api key"), "auth"
	})

	assert.False(t, result.Success)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	result := Do(context.Background(), fastConfig(), zerolog.Nop(), func() (error, string) {
		return errors.New("timeout"), "timeout"
	})

	assert.False(t, result.Success)
	assert.Equal(t, 4, result.Attempts) // initial + 3 retries
	assert.Error(t, result.LastError)
}

func TestDo_ContextCancellationStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	result := Do(ctx, fastConfig(), zerolog.Nop(), func() (error, string) {
		calls++
		cancel()
		return errors.New("timeout"), "timeout"
	})

	assert.False(t, result.Success)
	assert.LessOrEqual(t, calls, 2)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(errors.New("HTTP 429 Too Many Requests")))
	assert.True(t, Retryable(errors.New("connection reset by peer")))
	assert.True(t, Retryable(errors.New("context deadline exceeded")))
	assert.False(t, Retryable(errors.New("invalid request payload")))
	assert.False(t, Retryable(nil))
}

func TestBackoffDelay_CappedAtMax(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, MaxDelay: 3 * time.Second, Multiplier: 10}
	assert.Equal(t, 3*time.Second, backoffDelay(cfg, 5))
}
