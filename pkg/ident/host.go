// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package ident

import (
	"context"
	"fmt"

	"github.com/golang/glog"
)

// HostPhase is the host-side progress through the protocol sequence.
type HostPhase int

// Host session phases
const (
	HostPhaseConnect HostPhase = iota
	HostPhaseStart
	HostPhaseRunning
	HostPhaseRequestData
	HostPhaseTransfer
	HostPhaseDone
)

// String returns the phase name.
func (p HostPhase) String() string {
	switch p {
	case HostPhaseConnect:
		return "CONNECT"
	case HostPhaseStart:
		return "START"
	case HostPhaseRunning:
		return "RUNNING"
	case HostPhaseRequestData:
		return "REQUEST_DATA"
	case HostPhaseTransfer:
		return "TRANSFER"
	case HostPhaseDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// HostSession drives the experiment from the supervising side: check
// the connection, start the run, wait out the capture, then download
// and decode the sample buffer.
type HostSession struct {
	Link   *Link
	Config Config

	// OnPhase, when set, is called at each phase transition.
	OnPhase func(HostPhase)
}

// Run executes the host sequence and returns the captured buffer.
//
// The connection check tolerates stray bytes (the device may have been
// reset mid-byte); every later acknowledgement is a strict read, since
// the device's next byte is fully determined by the sequence.
func (s *HostSession) Run(ctx context.Context) (*SampleBuffer, error) {
	if err := s.Config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	s.phase(HostPhaseConnect)
	if err := s.Link.SendCode(HostCheckConnection); err != nil {
		return nil, err
	}
	if err := s.Link.WaitForCode(ctx, DeviceCheckConnection); err != nil {
		return nil, err
	}

	s.phase(HostPhaseStart)
	if err := s.Link.SendCode(HostStartTest); err != nil {
		return nil, err
	}
	if err := s.Link.ExpectCode(DeviceAckStart); err != nil {
		return nil, err
	}

	s.phase(HostPhaseRunning)
	glog.V(1).Infof("capture running, nominal duration %v", s.Config.Duration())
	if err := s.Link.ExpectCode(DeviceTestSuccess); err != nil {
		return nil, err
	}

	s.phase(HostPhaseRequestData)
	if err := s.Link.SendCode(HostRequestData); err != nil {
		return nil, err
	}
	if err := s.Link.ExpectCode(DeviceDataRequestAck); err != nil {
		return nil, err
	}

	s.phase(HostPhaseTransfer)
	payload, err := s.Link.ReadFrame(PayloadSize(s.Config.SampleCount))
	if err != nil {
		return nil, err
	}
	buf, err := DecodePayload(payload)
	if err != nil {
		return nil, err
	}

	s.phase(HostPhaseDone)
	return buf, nil
}

func (s *HostSession) phase(p HostPhase) {
	glog.V(1).Infof("host phase %s", p)
	if s.OnPhase != nil {
		s.OnPhase(p)
	}
}
