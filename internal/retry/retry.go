// Package retry implements the retry supervisor: bounded retries with
// linear backoff and kind-based retriability, emitting retry_attempt/
// retry_exhausted log events. Uses an injected event emitter and explicit
// attempt counters; no mutex, since each withRetry call owns its own
// attempt loop and runs on the caller's goroutine.
package retry

import (
	"context"
	"time"

	"github.com/brennhill/calibrator/internal/coreerr"
)

// EventEmitter receives retry_attempt / retry_exhausted log events.
type EventEmitter func(event string, fields map[string]any)

// Options configures a withRetry call. Unset fields take the documented
// defaults.
type Options struct {
	// MaxRetries is a pointer because its valid domain includes 0 (fail
	// after a single attempt, no retries): a plain int field can't tell
	// "caller asked for 0 retries" apart from "caller left this unset".
	// Use Retries(n) to build one, or leave nil for the default of 2.
	MaxRetries *int
	Delay      time.Duration // default 1500ms, linear between attempts
	StepName   string
	// Optional inverts the "required" option (default true) so that Go's
	// zero value for Options{} matches the default: required. Set
	// Optional=true for a step whose exhaustion should skip rather than
	// fail.
	Optional    bool
	Sleep       func(d time.Duration)
	IsRetriable func(err error) bool
	Emit        EventEmitter
}

// Retries builds a *int for Options.MaxRetries, including the n=0 case
// (one attempt, no retries).
func Retries(n int) *int { return &n }

func (o Options) withDefaults() Options {
	if o.Sleep == nil {
		o.Sleep = func(d time.Duration) { time.Sleep(d) }
	}
	if o.IsRetriable == nil {
		o.IsRetriable = coreerr.Retriable
	}
	if o.Emit == nil {
		o.Emit = func(string, map[string]any) {}
	}
	return o
}

// Result is the outcome of WithRetryResult.
type Result[T any] struct {
	Success bool
	Value   T
	Skipped bool
	Error   error
}

// WithRetry attempts fn up to opts.MaxRetries+1 times (default maxRetries=2,
// so 3 attempts). A non-retriable error (per opts.IsRetriable, defaulting to
// coreerr.Retriable) is rethrown immediately without sleeping. Otherwise the
// supervisor sleeps opts.Delay between attempts (linearly, no sleep after
// the final attempt) and retries. On exhaustion it returns RetryExhausted,
// or RetrySkipped when opts.Optional is set.
func WithRetry[T any](ctx context.Context, fn func(ctx context.Context) (T, error), opts Options) (T, error) {
	opts = applyDefaults(opts)

	var zero T
	var lastErr error
	maxAttempts := *opts.MaxRetries + 1

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if !opts.IsRetriable(err) {
			return zero, err
		}

		if attempt == maxAttempts {
			break
		}

		opts.Emit("retry_attempt", map[string]any{
			"step":    opts.StepName,
			"attempt": attempt,
			"error":   err.Error(),
		})
		opts.Sleep(time.Duration(attempt) * opts.Delay)
	}

	opts.Emit("retry_exhausted", map[string]any{
		"step":     opts.StepName,
		"attempts": maxAttempts,
		"error":    lastErr.Error(),
	})

	if !opts.Optional {
		return zero, coreerr.Wrap(coreerr.KindRetryExhausted, "retries exhausted for "+opts.StepName, lastErr)
	}
	return zero, coreerr.Wrap(coreerr.KindRetrySkipped, "retries exhausted (optional) for "+opts.StepName, lastErr)
}

// WithRetryResult is WithRetry wrapped into a non-throwing Result.
func WithRetryResult[T any](ctx context.Context, fn func(ctx context.Context) (T, error), opts Options) Result[T] {
	value, err := WithRetry(ctx, fn, opts)
	if err == nil {
		return Result[T]{Success: true, Value: value}
	}
	skipped := coreerr.KindOf(err) == coreerr.KindRetrySkipped
	return Result[T]{Success: false, Skipped: skipped, Error: err}
}

func applyDefaults(o Options) Options {
	if o.MaxRetries == nil {
		o.MaxRetries = Retries(2)
	}
	if o.Delay == 0 {
		o.Delay = 1500 * time.Millisecond
	}
	return o.withDefaults()
}
