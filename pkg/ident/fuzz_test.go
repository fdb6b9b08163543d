// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package ident

import (
	"context"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 500
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 500
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// noise returns 0..limit random bytes from 0x80..0xFF, outside the
// protocol code range so a wait target is never forged.
func noise(rng *rand.Rand, limit int) []byte {
	n := rng.Intn(limit + 1)
	out := make([]byte, n)
	for i := range out {
		out[i] = 0x80 | byte(rng.Intn(0x80))
	}
	return out
}

// TestFuzzWaitForCode_NoisyLink interleaves garbage before the expected
// code; the wait must discard all of it and still match.
func TestFuzzWaitForCode_NoisyLink(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		in := append(noise(rng, 64), HostCheckConnection)
		l := NewLink(newScriptTransport(in))
		require.NoError(t, l.WaitForCode(context.Background(), HostCheckConnection))
	}
}

// TestFuzzFrameRoundTrip sends random float payloads through the frame
// codec and verifies bit-exact recovery.
func TestFuzzFrameRoundTrip(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		n := rng.Intn(257)
		buf := NewSampleBuffer(n)
		for j := 0; j < n; j++ {
			buf.Input[j] = rng.Float32()*2 - 1
			buf.Angle[j] = rng.Float32() * 100
		}

		tr := newScriptTransport(nil)
		require.NoError(t, NewLink(tr).SendFrame(buf.Payload()))

		payload, err := NewLink(newScriptTransport(tr.out.Bytes())).ReadFrame(PayloadSize(n))
		require.NoError(t, err)
		got, err := DecodePayload(payload)
		require.NoError(t, err)
		require.Equal(t, buf.Input, got.Input)
		require.Equal(t, buf.Angle, got.Angle)
	}
}

// TestFuzzControllerRun_NoisyHost inserts garbage before every host
// command; the device sequence must still complete.
func TestFuzzControllerRun_NoisyHost(t *testing.T) {
	rounds := getFuzzRounds() / 10
	if rounds < 1 {
		rounds = 1
	}
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		var in []byte
		for _, code := range []byte{HostCheckConnection, HostStartTest, HostRequestData} {
			in = append(in, noise(rng, 32)...)
			in = append(in, code)
		}
		c, _, _ := newTestController(in, testConfig(rng.Intn(8)))
		require.Equal(t, ResultOK, c.Run(context.Background()), "round %d", i)
	}
}
