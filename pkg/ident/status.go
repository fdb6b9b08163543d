// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package ident

import (
	"context"
	"time"
)

// Indicator is a binary status output (an LED on the rig).
type Indicator interface {
	Set(on bool)
}

// Blinker toggles an indicator to report the experiment outcome:
// 200ms half-period for success, 1000ms for failure.
type Blinker struct {
	Indicator Indicator
	Clock     Clock
}

// NewBlinker creates a Blinker on the wall clock.
func NewBlinker(ind Indicator) *Blinker {
	return &Blinker{Indicator: ind, Clock: Wall}
}

// HalfPeriod returns the blink half-period for an outcome.
func HalfPeriod(r Result) time.Duration {
	if r == ResultOK {
		return SuccessBlinkHalfPeriod
	}
	return FailureBlinkHalfPeriod
}

// Run blinks forever, or until the context is canceled. The indicator
// is left off on exit.
func (b *Blinker) Run(ctx context.Context, result Result) {
	half := HalfPeriod(result)
	on := false
	for ctx.Err() == nil {
		on = !on
		b.Indicator.Set(on)
		b.Clock.Sleep(half)
	}
	b.Indicator.Set(false)
}
