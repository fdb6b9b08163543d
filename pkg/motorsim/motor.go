// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

// Package motorsim provides a first-order DC motor model behind the
// ident.Motor interface, so the experiment controller can run
// end-to-end on a bench without the hardware rig.
package motorsim

import (
	"math"
	"time"

	"github.com/eduardo-ufmg/motorlab/pkg/ident"
)

// Motor models a brushed DC motor in the velocity domain:
//
//	dω/dt = (K·u − ω) / τ
//
// where u is the normalized input in [-1, 1], K the steady-state speed
// at full input (rad/s) and τ the mechanical time constant. The angle
// integrates ω; the brake zeroes ω immediately. State advances lazily
// on every interaction, so timing is as fine as the caller's sampling.
// Not safe for concurrent use; the sampling loop is single-threaded.
type Motor struct {
	gain float64
	tau  float64 // seconds

	clock ident.Clock
	last  time.Time

	input  float64
	omega  float64
	angle  float64
	braked bool
}

// New creates a motor with the given steady-state gain (rad/s at full
// input) and mechanical time constant, initially braked at angle zero.
func New(gain float64, tau time.Duration, clock ident.Clock) *Motor {
	return &Motor{
		gain:   gain,
		tau:    tau.Seconds(),
		clock:  clock,
		last:   clock.Now(),
		braked: true,
	}
}

// SetSpeed implements ident.Motor.
func (m *Motor) SetSpeed(value float32) {
	m.step()
	v := float64(value)
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	m.input = v
}

// Brake implements ident.Motor.
func (m *Motor) Brake(engaged bool) {
	m.step()
	m.braked = engaged
	if engaged {
		m.omega = 0
	}
}

// ReadAngle implements ident.Motor. The returned angle is unwrapped.
func (m *Motor) ReadAngle() float32 {
	m.step()
	return float32(m.angle)
}

// Velocity returns the current shaft velocity in rad/s.
func (m *Motor) Velocity() float64 {
	m.step()
	return m.omega
}

// step advances the model to the current clock time.
func (m *Motor) step() {
	now := m.clock.Now()
	dt := now.Sub(m.last).Seconds()
	m.last = now
	if dt <= 0 {
		return
	}
	if m.braked {
		m.omega = 0
		return
	}
	target := m.gain * m.input
	if m.tau <= 0 {
		m.angle += target * dt
		m.omega = target
		return
	}
	// Exact discretization of the first-order response over dt, with
	// the angle integrated in closed form under the same hold.
	decay := math.Exp(-dt / m.tau)
	omega0 := m.omega
	m.omega = target + (omega0-target)*decay
	m.angle += target*dt + (omega0-target)*m.tau*(1-decay)
}
