// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

// Package ident implements the motor parameter-identification experiment:
// the device/host handshake protocol, the randomized excitation schedule,
// the fixed-period sampling loop, and the framed bulk transfer of the
// captured signals.
//
// The wire protocol is a strict one-shot sequence of single-byte codes
// followed by one marker-framed binary payload. Both ends of the link are
// implemented here; see Controller for the device side and HostSession for
// the host side.
package ident

import "time"

// Protocol command codes
const (
	HostCheckConnection   = 0x01 // Host → Device: check connection
	DeviceCheckConnection = 0x02 // Device → Host: connection acknowledged
	HostStartTest         = 0x03 // Host → Device: start test
	DeviceAckStart        = 0x04 // Device → Host: start acknowledged
	DeviceTestSuccess     = 0x05 // Device → Host: test completed
	HostRequestData       = 0x06 // Host → Device: request data
	DeviceDataRequestAck  = 0x07 // Device → Host: data request acknowledged
)

// Bulk payload markers. ASCII literals long enough that a chance
// collision with the binary payload is vanishingly unlikely; a collision
// is an accepted risk of the supervised single-shot transfer, not a
// framing guarantee.
var (
	DataStreamStart = []byte("DATA_START")
	DataStreamEnd   = []byte("DATA_END")
)

// Experiment defaults, matching the original rig firmware.
const (
	DefaultSampleCount  = 4096
	DefaultSamplePeriod = 10 * time.Millisecond
	DefaultDwellMin     = 50 * time.Millisecond
	DefaultDwellMax     = 500 * time.Millisecond
	DefaultValueMin     = -0.25
	DefaultValueMax     = 0.25
)

// Status indicator half-periods by outcome.
const (
	SuccessBlinkHalfPeriod = 200 * time.Millisecond
	FailureBlinkHalfPeriod = 1000 * time.Millisecond
)

// State is the device-side experiment state. Transitions are strictly
// sequential with no retries; any failure aborts the remaining states.
type State int

// Experiment states
const (
	StateAwaitConnectionCheck State = iota
	StateAwaitStart
	StateAckStart
	StateRunning
	StateReportSuccess
	StateAwaitDataRequest
	StateAckDataRequest
	StateTransferringData
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAwaitConnectionCheck:
		return "AWAIT_CONNECTION_CHECK"
	case StateAwaitStart:
		return "AWAIT_START"
	case StateAckStart:
		return "ACK_START"
	case StateRunning:
		return "RUNNING"
	case StateReportSuccess:
		return "REPORT_SUCCESS"
	case StateAwaitDataRequest:
		return "AWAIT_DATA_REQUEST"
	case StateAckDataRequest:
		return "ACK_DATA_REQUEST"
	case StateTransferringData:
		return "TRANSFERRING_DATA"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Result is the two-valued experiment outcome. There are no sub-kinds:
// every protocol step either succeeds or the whole run is marked failed.
type Result int

// Experiment outcomes
const (
	ResultError Result = iota
	ResultOK
)

// String returns the outcome name.
func (r Result) String() string {
	if r == ResultOK {
		return "OK"
	}
	return "ERROR"
}
