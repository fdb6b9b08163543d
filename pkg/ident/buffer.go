// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package ident

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SampleBuffer holds the two captured signals of one experiment run.
// Input[i] is the speed setpoint applied at the time Angle[i] was
// sampled; indices are successive fixed-period samples. The buffer is
// owned by the sampling loop during capture and read-only afterwards.
type SampleBuffer struct {
	Input []float32 // normalized speed setpoints in [-1, 1]
	Angle []float32 // unwrapped shaft angle in radians
}

// NewSampleBuffer allocates a buffer for n samples.
func NewSampleBuffer(n int) *SampleBuffer {
	return &SampleBuffer{
		Input: make([]float32, n),
		Angle: make([]float32, n),
	}
}

// Len returns the number of samples.
func (b *SampleBuffer) Len() int {
	return len(b.Input)
}

// PayloadSize returns the bulk payload size in bytes for n samples:
// n input floats followed by n angle floats, 4 bytes each.
func PayloadSize(n int) int {
	return n * 8
}

// Payload packs the buffer into the wire layout: Input as little-endian
// IEEE-754 float32, then Angle in the same layout.
func (b *SampleBuffer) Payload() []byte {
	out := make([]byte, 0, PayloadSize(b.Len()))
	for _, v := range b.Input {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	for _, v := range b.Angle {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

// DecodePayload is the inverse of Payload.
func DecodePayload(data []byte) (*SampleBuffer, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("payload length %d is not a whole number of sample pairs", len(data))
	}
	n := len(data) / 8
	buf := NewSampleBuffer(n)
	for i := 0; i < n; i++ {
		buf.Input[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	angles := data[n*4:]
	for i := 0; i < n; i++ {
		buf.Angle[i] = math.Float32frombits(binary.LittleEndian.Uint32(angles[i*4:]))
	}
	return buf, nil
}
