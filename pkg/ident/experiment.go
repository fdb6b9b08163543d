// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package ident

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/golang/glog"
)

// Config holds the experiment parameters. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// SampleCount is the number of fixed-period samples to capture.
	SampleCount int
	// SamplePeriod is the nominal time between consecutive samples.
	SamplePeriod time.Duration
	// Excitation bounds the randomized setpoint/dwell draws.
	Excitation Ranges
	// Streaming selects on-the-fly entry generation instead of
	// pre-generating the whole schedule before the run.
	Streaming bool
}

// DefaultConfig returns the firmware's experiment parameters:
// 4096 samples at 10ms, setpoints in [-0.25, 0.25], dwell in
// [50ms, 500ms].
func DefaultConfig() Config {
	return Config{
		SampleCount:  DefaultSampleCount,
		SamplePeriod: DefaultSamplePeriod,
		Excitation:   DefaultRanges(),
	}
}

// Validate rejects parameter combinations the sampling loop cannot
// honor.
func (c Config) Validate() error {
	if c.SampleCount < 0 {
		return fmt.Errorf("sample count %d is negative", c.SampleCount)
	}
	if c.SamplePeriod <= 0 {
		return fmt.Errorf("sample period %v is not positive", c.SamplePeriod)
	}
	if c.Excitation.DwellMin <= 0 {
		return fmt.Errorf("minimum dwell %v is not positive", c.Excitation.DwellMin)
	}
	if c.Excitation.DwellMax < c.Excitation.DwellMin {
		return fmt.Errorf("dwell range [%v, %v] is inverted", c.Excitation.DwellMin, c.Excitation.DwellMax)
	}
	if c.Excitation.ValueMax < c.Excitation.ValueMin {
		return fmt.Errorf("value range [%v, %v] is inverted", c.Excitation.ValueMin, c.Excitation.ValueMax)
	}
	if c.Excitation.ValueMin < -1 || c.Excitation.ValueMax > 1 {
		return fmt.Errorf("value range [%v, %v] exceeds [-1, 1]", c.Excitation.ValueMin, c.Excitation.ValueMax)
	}
	return nil
}

// ScheduleCapacity returns the number of excitation entries needed so
// that even all-minimum dwells cover the full run. Worst case the
// input changes every (DwellMin / SamplePeriod) samples.
func (c Config) ScheduleCapacity() int {
	perDwell := int(c.Excitation.DwellMin / c.SamplePeriod)
	if perDwell < 1 {
		perDwell = 1
	}
	capacity := c.SampleCount / perDwell
	if capacity < 1 {
		capacity = 1
	}
	return capacity
}

// Duration returns the nominal run duration.
func (c Config) Duration() time.Duration {
	return time.Duration(c.SampleCount) * c.SamplePeriod
}

// Controller is the device-side experiment state machine. It owns the
// excitation schedule and the sample buffer for the duration of one
// run; exactly one run is performed per Controller.
type Controller struct {
	// Clock may be replaced for tests; defaults to Wall.
	Clock Clock

	link  *Link
	motor Motor
	cfg   Config
	rng   *rand.Rand

	state  State
	result Result
	buf    *SampleBuffer
}

// NewController creates a device-side controller. The random source is
// treated as an opaque collaborator producing independent uniform
// draws; seed it for reproducible schedules.
func NewController(link *Link, motor Motor, cfg Config, rng *rand.Rand) *Controller {
	return &Controller{
		Clock:  Wall,
		link:   link,
		motor:  motor,
		cfg:    cfg,
		rng:    rng,
		state:  StateAwaitConnectionCheck,
		result: ResultError,
	}
}

// State returns the current experiment state.
func (c *Controller) State() State { return c.state }

// Result returns the experiment outcome; ResultError until the run
// reaches Done.
func (c *Controller) Result() Result { return c.result }

// Data returns the captured buffer, nil before the run completes.
func (c *Controller) Data() *SampleBuffer { return c.buf }

// Run executes the full device-side sequence. Any failing step
// terminates the run immediately with ResultError; there is no partial
// success and no retry. The context bounds the blocking waits so a
// harness can abort a hung exchange; production callers pass
// context.Background().
func (c *Controller) Run(ctx context.Context) Result {
	if err := c.run(ctx); err != nil {
		glog.Errorf("experiment aborted in state %s: %v", c.state, err)
		c.result = ResultError
		return c.result
	}
	c.setState(StateDone)
	c.result = ResultOK
	return c.result
}

func (c *Controller) run(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := c.link.WaitForCode(ctx, HostCheckConnection); err != nil {
		return err
	}
	if err := c.link.SendCode(DeviceCheckConnection); err != nil {
		return err
	}

	c.setState(StateAwaitStart)
	if err := c.link.WaitForCode(ctx, HostStartTest); err != nil {
		return err
	}

	c.setState(StateAckStart)
	if err := c.link.SendCode(DeviceAckStart); err != nil {
		return err
	}

	c.setState(StateRunning)
	src := c.buildSource()
	sampler := &Sampler{Clock: c.Clock}
	c.buf = sampler.Run(src, c.cfg.SamplePeriod, c.cfg.SampleCount, c.motor)

	c.setState(StateReportSuccess)
	if err := c.link.SendCode(DeviceTestSuccess); err != nil {
		return err
	}

	c.setState(StateAwaitDataRequest)
	if err := c.link.WaitForCode(ctx, HostRequestData); err != nil {
		return err
	}

	c.setState(StateAckDataRequest)
	if err := c.link.SendCode(DeviceDataRequestAck); err != nil {
		return err
	}

	c.setState(StateTransferringData)
	if err := c.link.SendFrame(c.buf.Payload()); err != nil {
		return err
	}
	return nil
}

func (c *Controller) buildSource() Source {
	capacity := c.cfg.ScheduleCapacity()
	if c.cfg.Streaming {
		return NewStreaming(capacity, c.cfg.Excitation, c.rng)
	}
	return Generate(capacity, c.cfg.Excitation, c.rng)
}

func (c *Controller) setState(s State) {
	glog.V(1).Infof("state %s -> %s", c.state, s)
	c.state = s
}
