// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package ident

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptTransport plays back a scripted inbound byte sequence and
// captures everything written.
type scriptTransport struct {
	in      *bytes.Reader
	out     bytes.Buffer
	flushes int
}

func newScriptTransport(in []byte) *scriptTransport {
	return &scriptTransport{in: bytes.NewReader(in)}
}

func (t *scriptTransport) Read(p []byte) (int, error)  { return t.in.Read(p) }
func (t *scriptTransport) Write(p []byte) (int, error) { return t.out.Write(p) }
func (t *scriptTransport) Flush() error                { t.flushes++; return nil }

func TestSendCode(t *testing.T) {
	tr := newScriptTransport(nil)
	l := NewLink(tr)
	require.NoError(t, l.SendCode(DeviceCheckConnection))
	require.Equal(t, []byte{DeviceCheckConnection}, tr.out.Bytes())
}

func TestWaitForCode_DiscardsStrayBytes(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"immediate match", []byte{HostCheckConnection}},
		{"garbage first", []byte{0xFF, 0x42, 0x00, HostCheckConnection}},
		{"other codes first", []byte{HostStartTest, HostRequestData, HostCheckConnection}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLink(newScriptTransport(tt.in))
			require.NoError(t, l.WaitForCode(context.Background(), HostCheckConnection))
		})
	}
}

func TestWaitForCode_TransportLoss(t *testing.T) {
	l := NewLink(newScriptTransport([]byte{0xAA, 0xBB}))
	err := l.WaitForCode(context.Background(), HostCheckConnection)
	require.Error(t, err)
}

func TestWaitForCode_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewLink(newScriptTransport([]byte{HostCheckConnection}))
	err := l.WaitForCode(ctx, HostCheckConnection)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExpectCode(t *testing.T) {
	l := NewLink(newScriptTransport([]byte{DeviceAckStart}))
	require.NoError(t, l.ExpectCode(DeviceAckStart))

	l = NewLink(newScriptTransport([]byte{DeviceTestSuccess}))
	err := l.ExpectCode(DeviceAckStart)
	require.Error(t, err)
	require.Contains(t, err.Error(), "DEVICE_ACK_START")
}

func TestSendFrame_Layout(t *testing.T) {
	tr := newScriptTransport(nil)
	l := NewLink(tr)
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, l.SendFrame(payload))

	var want bytes.Buffer
	want.Write(DataStreamStart)
	want.Write(payload)
	want.Write(DataStreamEnd)
	require.Equal(t, want.Bytes(), tr.out.Bytes())
	require.Equal(t, 3, tr.flushes)
}

func TestFrameRoundTrip(t *testing.T) {
	buf := NewSampleBuffer(3)
	buf.Input = []float32{-0.25, 0.0, 0.125}
	buf.Angle = []float32{0.0, 1.5707964, 3.1415927}

	tr := newScriptTransport(nil)
	require.NoError(t, NewLink(tr).SendFrame(buf.Payload()))

	reader := NewLink(newScriptTransport(tr.out.Bytes()))
	payload, err := reader.ReadFrame(PayloadSize(3))
	require.NoError(t, err)

	got, err := DecodePayload(payload)
	require.NoError(t, err)
	require.Equal(t, buf.Input, got.Input)
	require.Equal(t, buf.Angle, got.Angle)
}

func TestFrameRoundTrip_Empty(t *testing.T) {
	tr := newScriptTransport(nil)
	require.NoError(t, NewLink(tr).SendFrame(nil))
	require.Equal(t, append(append([]byte{}, DataStreamStart...), DataStreamEnd...), tr.out.Bytes())

	reader := NewLink(newScriptTransport(tr.out.Bytes()))
	payload, err := reader.ReadFrame(0)
	require.NoError(t, err)
	require.Empty(t, payload)

	got, err := DecodePayload(payload)
	require.NoError(t, err)
	require.Equal(t, 0, got.Len())
}

func TestReadFrame_BadStartMarker(t *testing.T) {
	in := append([]byte("DATA_XXXXX"), DataStreamEnd...)
	_, err := NewLink(newScriptTransport(in)).ReadFrame(0)
	require.Error(t, err)
}

func TestDecodePayload_RaggedLength(t *testing.T) {
	_, err := DecodePayload(make([]byte, 7))
	require.Error(t, err)
}
