package services

import (
	"context"
	"fmt"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/cijsubs/cijsubs/internal/apperrors"
	"github.com/cijsubs/cijsubs/internal/config"
	"github.com/cijsubs/cijsubs/internal/metrics"
)

// State is the position of one fetch in its retry lifecycle
type State int

const (
	StatePending State = iota
	StateRetrying
	StateSucceeded
	StateExhausted
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// RetryOptions controls the backoff applied to every API request.
// The first retry waits BaseDelay, each further retry doubles the previous
// wait up to MaxDelay, and Jitter randomly shifts each wait by up to ±Jitter.
type RetryOptions struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      time.Duration
}

// RetryOptionsFromConfig extracts the retry settings of cfg
func RetryOptionsFromConfig(cfg *config.Config) RetryOptions {
	return RetryOptions{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		MaxDelay:    cfg.MaxDelay,
		Jitter:      cfg.Jitter,
	}
}

// Outcome records how a fetch went. Delays holds the wait scheduled before
// each retry, in order. Err is set once the fetch is exhausted.
type Outcome struct {
	ID       int
	State    State
	Attempts int
	Delays   []time.Duration
	Err      error

	lastErr error
}

func (o *Outcome) transition(to State) {
	allowed := false
	switch o.State {
	case StatePending, StateRetrying:
		allowed = to == StateRetrying || to == StateSucceeded || to == StateExhausted
	}
	if !allowed {
		panic(fmt.Sprintf("services: invalid fetch state transition %s -> %s", o.State, to))
	}
	o.State = to
}

// fetchWithBackoff runs fetch until it succeeds or opts.MaxAttempts attempts
// have failed. Every error is treated as retriable. Waits block the caller.
// request names the call in log output.
func fetchWithBackoff[R any](ctx context.Context, opts RetryOptions, id int, request string, fetch func(context.Context) (R, error)) (R, *Outcome) {
	logger := config.GetLogger()
	outcome := &Outcome{ID: id, State: StatePending}

	builder := retrypolicy.NewBuilder[R]().
		WithMaxAttempts(opts.MaxAttempts).
		WithBackoff(opts.BaseDelay, opts.MaxDelay).
		OnRetryScheduled(func(e failsafe.ExecutionScheduledEvent[R]) {
			outcome.transition(StateRetrying)
			outcome.Delays = append(outcome.Delays, e.Delay)
			metrics.FetchRetriesTotal.Inc()

			logger.Warn().
				Str("request", request).
				Int("id", id).
				Int("attempt", outcome.Attempts).
				Int("maxAttempts", opts.MaxAttempts).
				Dur("delay", e.Delay).
				Err(outcome.lastErr).
				Msg("Attempt failed, retrying")
		})
	if opts.Jitter > 0 {
		builder = builder.WithJitter(opts.Jitter)
	}

	result, err := failsafe.With[R](builder.Build()).
		WithContext(ctx).
		Get(func() (R, error) {
			outcome.Attempts++
			r, err := fetch(ctx)
			if err != nil {
				outcome.lastErr = err
			}
			return r, err
		})

	metrics.FetchAttempts.Observe(float64(outcome.Attempts))

	if err != nil {
		last := outcome.lastErr
		if ctxErr := ctx.Err(); ctxErr != nil || last == nil {
			last = err
		}
		outcome.transition(StateExhausted)
		outcome.Err = apperrors.NewExhaustedError(id, outcome.Attempts, last)
		var zero R
		return zero, outcome
	}

	outcome.transition(StateSucceeded)
	return result, outcome
}
