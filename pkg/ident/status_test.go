// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package ident

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingIndicator struct {
	states []bool
}

func (i *recordingIndicator) Set(on bool) { i.states = append(i.states, on) }

// cancelingClock cancels the context after a fixed number of sleeps so
// the blinker's forever-loop terminates under test.
type cancelingClock struct {
	fakeClock
	sleeps []time.Duration
	limit  int
	cancel context.CancelFunc
}

func (c *cancelingClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.fakeClock.Sleep(d)
	if len(c.sleeps) >= c.limit {
		c.cancel()
	}
}

func TestHalfPeriod(t *testing.T) {
	require.Equal(t, SuccessBlinkHalfPeriod, HalfPeriod(ResultOK))
	require.Equal(t, FailureBlinkHalfPeriod, HalfPeriod(ResultError))
}

func TestBlinkerRun(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		half   time.Duration
	}{
		{"success", ResultOK, 200 * time.Millisecond},
		{"failure", ResultError, 1000 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			clock := &cancelingClock{
				fakeClock: fakeClock{now: time.Unix(0, 0), tick: time.Millisecond},
				limit:     6,
				cancel:    cancel,
			}
			ind := &recordingIndicator{}
			b := &Blinker{Indicator: ind, Clock: clock}
			b.Run(ctx, tt.result)

			require.Len(t, clock.sleeps, 6)
			for _, d := range clock.sleeps {
				require.Equal(t, tt.half, d)
			}

			// Alternating toggles, ending with the indicator off.
			require.GreaterOrEqual(t, len(ind.states), 7)
			for i := 1; i < len(ind.states)-1; i++ {
				require.NotEqual(t, ind.states[i-1], ind.states[i], "state %d did not toggle", i)
			}
			require.True(t, ind.states[0], "first toggle should switch the indicator on")
			require.False(t, ind.states[len(ind.states)-1], "indicator left on")
		})
	}
}
