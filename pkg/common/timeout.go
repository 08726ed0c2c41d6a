package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/latoulicious/holocron/pkg/logging"
)

// ErrViewTimeout is returned when a view did not finish loading in time
var ErrViewTimeout = errors.New("view load timed out")

// TimeoutManager bounds how long a view may stay in its loading state
type TimeoutManager struct {
	timeout time.Duration
	logger  logging.Logger
}

// NewTimeoutManager creates a new TimeoutManager
func NewTimeoutManager(timeout time.Duration) *TimeoutManager {
	loggerFactory := logging.GetGlobalLoggerFactory()
	logger := loggerFactory.CreateLogger("timeout")

	return &TimeoutManager{
		timeout: timeout,
		logger:  logger,
	}
}

// Timeout returns the configured bound; zero means unbounded
func (tm *TimeoutManager) Timeout() time.Duration {
	return tm.timeout
}

// Run calls fn with a context that expires after the configured timeout.
// When the deadline is what ended fn, the returned error matches ErrViewTimeout.
func (tm *TimeoutManager) Run(ctx context.Context, view string, fn func(context.Context) error) error {
	if tm == nil || tm.timeout <= 0 {
		return fn(ctx)
	}

	runCtx, cancel := context.WithTimeout(ctx, tm.timeout)
	defer cancel()

	started := time.Now()
	err := fn(runCtx)
	if err == nil {
		return nil
	}

	// Only our own deadline counts; a canceled parent is passed through
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		tm.logger.Warn("View load timed out", map[string]interface{}{
			"view":       view,
			"timeout":    tm.timeout.String(),
			"elapsed_ms": time.Since(started).Milliseconds(),
		})
		return fmt.Errorf("%w after %s: %w", ErrViewTimeout, tm.timeout, err)
	}
	return err
}
