// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package ident

import (
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/fxamacker/cbor/v2"
)

// Manifest is the CBOR run record saved next to the exported samples,
// so an identification script can recover the capture parameters
// without parsing the CSV. Integer keys keep the encoding compact.
type Manifest struct {
	CapturedAt     time.Time `cbor:"1,keyasint"`
	MachineID      string    `cbor:"2,keyasint,omitempty"`
	SampleCount    int       `cbor:"3,keyasint"`
	SamplePeriodMs int64     `cbor:"4,keyasint"`
	ValueMin       float32   `cbor:"5,keyasint"`
	ValueMax       float32   `cbor:"6,keyasint"`
	DwellMinMs     int64     `cbor:"7,keyasint"`
	DwellMaxMs     int64     `cbor:"8,keyasint"`
}

// NewManifest builds a manifest for a completed capture. The machine ID
// is best-effort; it stays empty where the platform cannot provide one.
func NewManifest(cfg Config, capturedAt time.Time) Manifest {
	id, err := machineid.ID()
	if err != nil {
		id = ""
	}
	return Manifest{
		CapturedAt:     capturedAt,
		MachineID:      id,
		SampleCount:    cfg.SampleCount,
		SamplePeriodMs: cfg.SamplePeriod.Milliseconds(),
		ValueMin:       cfg.Excitation.ValueMin,
		ValueMax:       cfg.Excitation.ValueMax,
		DwellMinMs:     cfg.Excitation.DwellMin.Milliseconds(),
		DwellMaxMs:     cfg.Excitation.DwellMax.Milliseconds(),
	}
}

// Encode serializes the manifest to CBOR.
func (m Manifest) Encode() ([]byte, error) {
	return cbor.Marshal(m)
}

// DecodeManifest parses a CBOR manifest.
func DecodeManifest(data []byte) (Manifest, error) {
	var m Manifest
	err := cbor.Unmarshal(data, &m)
	return m, err
}
