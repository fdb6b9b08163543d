// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg
//
// Motorlab - DC motor parameter-identification rig
//
// Runs either end of the identification experiment: the device-side
// controller that excites the motor and captures the response, or the
// host-side supervisor that drives the protocol and saves the data.

package main

import (
	"os"

	"github.com/eduardo-ufmg/motorlab/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
