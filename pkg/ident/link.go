// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package ident

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/golang/glog"
)

// Transport is a reliable, in-order byte-stream duplex channel.
// Read blocks until at least one byte is available; Flush blocks until
// the outbound buffer is drained (a no-op for transports that have no
// outbound buffering).
type Transport interface {
	io.Reader
	io.Writer
	Flush() error
}

// Link sends and receives protocol codes and the marker-framed bulk
// payload over a Transport. It is not safe for concurrent use; the
// protocol is single-threaded by design.
type Link struct {
	t Transport
}

// NewLink creates a Link over the given transport.
func NewLink(t Transport) *Link {
	return &Link{t: t}
}

// SendCode writes a single command or acknowledgement byte.
// No retry; the transport is assumed reliable.
func (l *Link) SendCode(code byte) error {
	if _, err := l.t.Write([]byte{code}); err != nil {
		return fmt.Errorf("send code %s: %w", FormatCode(code), err)
	}
	return nil
}

// WaitForCode blocks until the expected byte arrives, silently dropping
// every non-matching byte read while waiting. It never times out on its
// own: a supervising host is assumed to eventually send the expected
// byte, and a hung device is reset externally. The context bounds the
// wait for test harnesses; cancellation takes effect before the next
// read and on transport errors.
func (l *Link) WaitForCode(ctx context.Context, expected byte) error {
	dropped := 0
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("wait for %s: %w", FormatCode(expected), err)
		}
		b, err := l.readByte()
		if err != nil {
			return fmt.Errorf("wait for %s: %w", FormatCode(expected), err)
		}
		if b == expected {
			if dropped > 0 {
				glog.V(1).Infof("dropped %d stray bytes before %s", dropped, FormatCode(expected))
			}
			return nil
		}
		dropped++
	}
}

// ExpectCode reads exactly one byte and fails unless it matches.
// Used on the host side where the device's next byte is fully
// determined by the sequence.
func (l *Link) ExpectCode(expected byte) error {
	b, err := l.readByte()
	if err != nil {
		return fmt.Errorf("expect %s: %w", FormatCode(expected), err)
	}
	if b != expected {
		return fmt.Errorf("expect %s: got %s (0x%02X)", FormatCode(expected), FormatCode(b), b)
	}
	return nil
}

// SendFrame writes the start marker, the payload as raw bytes (no
// escaping, no checksum), and the end marker, draining the transport
// around the payload so the markers and the bulk data reach the wire in
// order even through buffered links.
func (l *Link) SendFrame(payload []byte) error {
	if _, err := l.t.Write(DataStreamStart); err != nil {
		return fmt.Errorf("send frame start: %w", err)
	}
	if err := l.t.Flush(); err != nil {
		return fmt.Errorf("send frame: flush: %w", err)
	}
	if len(payload) > 0 {
		if _, err := l.t.Write(payload); err != nil {
			return fmt.Errorf("send frame payload: %w", err)
		}
	}
	if err := l.t.Flush(); err != nil {
		return fmt.Errorf("send frame: flush: %w", err)
	}
	if _, err := l.t.Write(DataStreamEnd); err != nil {
		return fmt.Errorf("send frame end: %w", err)
	}
	if err := l.t.Flush(); err != nil {
		return fmt.Errorf("send frame: flush: %w", err)
	}
	return nil
}

// ReadFrame reads a frame of exactly payloadLen payload bytes. A wrong
// start marker fails the read; a wrong end marker is logged and
// tolerated, since the payload itself is already in hand.
func (l *Link) ReadFrame(payloadLen int) ([]byte, error) {
	marker := make([]byte, len(DataStreamStart))
	if _, err := io.ReadFull(l.t, marker); err != nil {
		return nil, fmt.Errorf("read frame start: %w", err)
	}
	if !bytes.Equal(marker, DataStreamStart) {
		return nil, fmt.Errorf("read frame: bad start marker %q", marker)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(l.t, payload); err != nil {
		return nil, fmt.Errorf("read frame payload: %w", err)
	}

	marker = make([]byte, len(DataStreamEnd))
	if _, err := io.ReadFull(l.t, marker); err != nil {
		return nil, fmt.Errorf("read frame end: %w", err)
	}
	if !bytes.Equal(marker, DataStreamEnd) {
		glog.Warningf("read frame: bad end marker %q, keeping payload", marker)
	}
	return payload, nil
}

func (l *Link) readByte() (byte, error) {
	var buf [1]byte
	for {
		n, err := l.t.Read(buf[:])
		if n > 0 {
			return buf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}
