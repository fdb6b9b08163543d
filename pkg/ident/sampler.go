// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package ident

import (
	"runtime"
	"time"

	"github.com/golang/glog"
)

// Motor is the actuation/measurement collaborator. The concrete driver
// (hardware or simulated) is supplied by the caller.
type Motor interface {
	// SetSpeed applies a normalized speed setpoint in [-1, 1].
	SetSpeed(value float32)
	// Brake engages or releases the brake.
	Brake(engaged bool)
	// ReadAngle returns the unwrapped shaft angle in radians,
	// monotonic within a run for a constant-sign input.
	ReadAngle() float32
}

// Clock abstracts the monotonic clock so the timing loops are testable.
type Clock interface {
	Now() time.Time
	// Sleep blocks for the given duration.
	Sleep(d time.Duration)
	// Yield cedes control inside busy-wait loops so platform
	// background tasks (and the Go scheduler) keep running.
	Yield()
}

type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }
func (wallClock) Yield()                { runtime.Gosched() }

// Wall is the real monotonic clock.
var Wall Clock = wallClock{}

// Sampler drives the motor through an excitation source and records
// both signals at a fixed nominal period.
type Sampler struct {
	Clock Clock
}

// NewSampler creates a Sampler on the wall clock.
func NewSampler() *Sampler {
	return &Sampler{Clock: Wall}
}

// Run executes the capture loop: for each of total samples it records
// the currently applied setpoint and the measured angle, advances the
// excitation entry once its dwell has elapsed, and busy-waits (with
// cooperative yields) until at least period has passed since the
// previous sample. The guarantee is "at least period between
// consecutive samples", not an exact period.
//
// The motor is always left with a neutral setpoint and the brake
// engaged when Run returns, including on a panic inside the loop.
// With total == 0 the motor is never touched at all.
func (s *Sampler) Run(src Source, period time.Duration, total int, motor Motor) *SampleBuffer {
	buf := NewSampleBuffer(total)
	if total == 0 {
		return buf
	}

	defer func() {
		motor.SetSpeed(0)
		motor.Brake(true)
	}()

	value, dwell := src.Entry(0)
	motor.Brake(false)
	motor.SetSpeed(value)

	start := s.Clock.Now()
	lastChange := start
	lastSample := start
	glog.V(1).Infof("sampling %d points at %v nominal period", total, period)

	for i := 0; i < total; i++ {
		buf.Input[i] = value
		buf.Angle[i] = motor.ReadAngle()

		now := s.Clock.Now()
		if now.Sub(lastChange) >= dwell {
			lastChange = now
			// Advance by sample index, not by a schedule cursor.
			// The index wraps inside the source, reusing earlier
			// i.i.d. draws once the capacity is exceeded.
			value, dwell = src.Entry(i)
			motor.SetSpeed(value)
		}

		for s.Clock.Now().Sub(lastSample) < period {
			s.Clock.Yield()
		}
		lastSample = s.Clock.Now()
	}

	glog.V(1).Infof("sampling done in %v", s.Clock.Now().Sub(start))
	return buf
}
