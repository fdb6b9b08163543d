// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package ident

import (
	"math/rand"
	"time"
)

// Ranges bounds the randomized excitation draws. Values are drawn
// uniformly from [ValueMin, ValueMax], dwell durations uniformly from
// [DwellMin, DwellMax], both ends inclusive.
type Ranges struct {
	ValueMin float32
	ValueMax float32
	DwellMin time.Duration
	DwellMax time.Duration
}

// DefaultRanges returns the firmware's excitation ranges.
func DefaultRanges() Ranges {
	return Ranges{
		ValueMin: DefaultValueMin,
		ValueMax: DefaultValueMax,
		DwellMin: DefaultDwellMin,
		DwellMax: DefaultDwellMax,
	}
}

func (r Ranges) drawValue(rng *rand.Rand) float32 {
	return r.ValueMin + rng.Float32()*(r.ValueMax-r.ValueMin)
}

func (r Ranges) drawDwell(rng *rand.Rand) time.Duration {
	if r.DwellMax <= r.DwellMin {
		return r.DwellMin
	}
	return r.DwellMin + time.Duration(rng.Int63n(int64(r.DwellMax-r.DwellMin)+1))
}

// Source provides excitation entries by sample index. Implementations
// wrap the index once it exceeds their capacity: entries past the end
// reuse earlier randomized draws. The draws are i.i.d., so the wrap
// only risks unwanted short-scale periodicity; callers size the
// capacity so the minimum dwell covers the planned run.
type Source interface {
	// Entry returns the setpoint and dwell duration for index i.
	Entry(i int) (value float32, dwell time.Duration)
	// Len returns the capacity before indices wrap.
	Len() int
}

// Schedule is a fully pre-generated excitation schedule: parallel
// value and duration sequences of equal capacity.
type Schedule struct {
	Values    []float32
	Durations []time.Duration
}

// Generate draws count independent values and count independent dwell
// durations from the given ranges. Running it twice with the same
// seeded source yields identical schedules.
func Generate(count int, r Ranges, rng *rand.Rand) *Schedule {
	s := &Schedule{
		Values:    make([]float32, count),
		Durations: make([]time.Duration, count),
	}
	for i := 0; i < count; i++ {
		s.Values[i] = r.drawValue(rng)
		s.Durations[i] = r.drawDwell(rng)
	}
	return s
}

// Entry implements Source, wrapping the index at capacity.
func (s *Schedule) Entry(i int) (float32, time.Duration) {
	i %= len(s.Values)
	return s.Values[i], s.Durations[i]
}

// Len implements Source.
func (s *Schedule) Len() int {
	return len(s.Values)
}

// Streaming generates entries on first access instead of up front,
// caching each drawn entry by wrapped index so that wrap-around reuse
// behaves exactly like a pre-generated schedule. Access order may be
// non-sequential (the sampling loop jumps by sample index), so the
// draw order, and therefore the schedule, differs from Generate even
// under the same seed.
type Streaming struct {
	rng       *rand.Rand
	ranges    Ranges
	values    []float32
	durations []time.Duration
	drawn     []bool
}

// NewStreaming creates an on-the-fly source with the given capacity.
func NewStreaming(capacity int, r Ranges, rng *rand.Rand) *Streaming {
	return &Streaming{
		rng:       rng,
		ranges:    r,
		values:    make([]float32, capacity),
		durations: make([]time.Duration, capacity),
		drawn:     make([]bool, capacity),
	}
}

// Entry implements Source.
func (s *Streaming) Entry(i int) (float32, time.Duration) {
	i %= len(s.values)
	if !s.drawn[i] {
		s.values[i] = s.ranges.drawValue(s.rng)
		s.durations[i] = s.ranges.drawDwell(s.rng)
		s.drawn[i] = true
	}
	return s.values[i], s.durations[i]
}

// Len implements Source.
func (s *Streaming) Len() int {
	return len(s.values)
}
