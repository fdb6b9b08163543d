// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package ident

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManifestRoundTrip(t *testing.T) {
	capturedAt := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)
	m := NewManifest(DefaultConfig(), capturedAt)

	require.Equal(t, DefaultSampleCount, m.SampleCount)
	require.Equal(t, int64(10), m.SamplePeriodMs)
	require.Equal(t, int64(50), m.DwellMinMs)
	require.Equal(t, int64(500), m.DwellMaxMs)

	data, err := m.Encode()
	require.NoError(t, err)

	got, err := DecodeManifest(data)
	require.NoError(t, err)
	require.Equal(t, m.SampleCount, got.SampleCount)
	require.Equal(t, m.SamplePeriodMs, got.SamplePeriodMs)
	require.Equal(t, m.ValueMin, got.ValueMin)
	require.Equal(t, m.ValueMax, got.ValueMax)
	require.Equal(t, m.MachineID, got.MachineID)
	require.True(t, m.CapturedAt.Equal(got.CapturedAt))
}
