package retry

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned when every permitted attempt failed with a
// retryable error. The last attempt's error is joined onto it.
var ErrExhausted = errors.New("retry: attempts exhausted")

// Policy retries an operation whose failures can sometimes be cured by
// transforming per-attempt state (for example, resubmitting an order at a
// lower decimal precision). Retryable decides whether an error is worth
// another attempt; Next derives the state for the following attempt and
// reports false when no further states exist.
type Policy[S any] struct {
	MaxAttempts int
	Delay       time.Duration
	Retryable   func(error) bool
	Next        func(S) (S, bool)
}

// Do runs fn with successive states until it succeeds, fails terminally,
// or the policy runs out of attempts or states. The state that produced
// the final outcome is returned alongside the error.
func (p Policy[S]) Do(ctx context.Context, initial S, fn func(context.Context, S) error) (S, error) {
	state := initial
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && p.Delay > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return state, ctx.Err()
			}
		}

		err = fn(ctx, state)
		if err == nil {
			return state, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return state, err
		}

		if p.Next == nil {
			continue
		}
		next, ok := p.Next(state)
		if !ok {
			return state, err
		}
		state = next
	}
	return state, errors.Join(ErrExhausted, err)
}
