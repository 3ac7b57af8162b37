// Package retry runs operations again with backoff while their failure is
// transient.
package retry

import (
	"context"
	"time"

	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
)

// Mode selects how the delay grows between attempts.
type Mode string

const (
	ModeFixed       Mode = "fixed"
	ModeLinear      Mode = "linear"
	ModeExponential Mode = "exponential"
)

// Policy encapsulates backoff settings. It is immutable after construction.
type Policy struct {
	Mode       Mode
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // attempts after the first failure
}

// DefaultPolicy is exponential from 50ms, capped at 2s, with 4 retries.
func DefaultPolicy() Policy {
	return Policy{Mode: ModeExponential, Initial: 50 * time.Millisecond, Max: 2 * time.Second, MaxRetries: 4}
}

// NewPolicy builds a policy; zero or unknown values fall back to the
// defaults.
func NewPolicy(mode Mode, initial, maxDuration time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	switch mode {
	case ModeFixed, ModeLinear, ModeExponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the backoff before retry number n (1-based).
func (p Policy) Delay(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case ModeFixed:
		d = p.Initial
	case ModeExponential:
		d = p.Initial << min(n-1, 30)
	default:
		d = time.Duration(n) * p.Initial
	}
	if d > p.Max || d <= 0 {
		return p.Max
	}
	return d
}

// Do calls fn until it succeeds, fails with an error transient rejects,
// runs out of retries or ctx ends. The last error is returned.
func (p Policy) Do(ctx context.Context, transient func(error) bool, fn func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil || !transient(err) || attempt >= p.MaxRetries {
			return err
		}
		t := time.NewTimer(p.Delay(attempt + 1))
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.WrapError(ctx.Err(), errors.CategoryInternal, "retry canceled").
				WithContext("attempts", attempt+1).
				Build()
		case <-t.C:
		}
	}
}
