package retry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBusy = stderrors.New("busy")

func isBusy(err error) bool { return stderrors.Is(err, errBusy) }

func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(ModeFixed, 5*time.Second, 2*time.Second, 5)
	assert.Equal(t, Policy{Mode: ModeFixed, Initial: 2 * time.Second, Max: 2 * time.Second, MaxRetries: 5}, p)

	d := NewPolicy("bogus", 0, 0, -1)
	assert.Equal(t, DefaultPolicy(), d)
}

func TestDelayModes(t *testing.T) {
	cases := []struct {
		mode Mode
		n    int
		want time.Duration
	}{
		{ModeFixed, 1, 100 * time.Millisecond},
		{ModeFixed, 3, 100 * time.Millisecond},
		{ModeLinear, 2, 200 * time.Millisecond},
		{ModeLinear, 3, 250 * time.Millisecond},
		{ModeExponential, 2, 200 * time.Millisecond},
		{ModeExponential, 3, 250 * time.Millisecond},
		{ModeExponential, 64, 250 * time.Millisecond},
		{ModeLinear, 0, 0},
	}
	for _, c := range cases {
		p := NewPolicy(c.mode, 100*time.Millisecond, 250*time.Millisecond, 3)
		assert.Equal(t, c.want, p.Delay(c.n), "%s attempt %d", c.mode, c.n)
	}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	p := NewPolicy(ModeFixed, time.Millisecond, time.Millisecond, 3)
	calls := 0
	err := p.Do(context.Background(), isBusy, func(context.Context) error {
		calls++
		if calls < 3 {
			return errBusy
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoGivesUp(t *testing.T) {
	p := NewPolicy(ModeFixed, time.Millisecond, time.Millisecond, 2)
	calls := 0
	err := p.Do(context.Background(), isBusy, func(context.Context) error {
		calls++
		return errBusy
	})
	require.ErrorIs(t, err, errBusy)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanent := stderrors.New("permanent")
	calls := 0
	err := DefaultPolicy().Do(context.Background(), isBusy, func(context.Context) error {
		calls++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPolicy(ModeFixed, time.Hour, time.Hour, 1)
	err := p.Do(ctx, isBusy, func(context.Context) error {
		cancel()
		return errBusy
	})
	require.ErrorIs(t, err, context.Canceled)
}
