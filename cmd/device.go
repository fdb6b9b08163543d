// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/eduardo-ufmg/motorlab/pkg/ident"
	"github.com/eduardo-ufmg/motorlab/pkg/motorsim"
)

var (
	deviceSamples  int
	devicePeriodMs int
	deviceDwellMin int
	deviceDwellMax int
	deviceValueMin float32
	deviceValueMax float32
	deviceSeed     int64
	deviceStream   bool
	deviceSimGain  float64
	deviceSimTauMs int
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Run the experiment controller (device side)",
	Long: `Run the device side of the identification experiment.

The controller waits for the host's connection check, runs the
randomized-excitation capture on start, and streams the sample buffer on
request. Afterwards it blinks the status indicator forever: a 200ms
half-period reports success, 1000ms reports failure.

The motor is a first-order simulation; a hardware rig speaks the same
protocol from its own firmware. Pass --seed to reproduce an excitation
schedule, otherwise each run draws a fresh one.`,
	RunE: runDevice,
}

func init() {
	rootCmd.AddCommand(deviceCmd)
	deviceCmd.Flags().IntVar(&deviceSamples, "samples", ident.DefaultSampleCount, "Number of samples to capture")
	deviceCmd.Flags().IntVar(&devicePeriodMs, "period-ms", 10, "Sample period in milliseconds")
	deviceCmd.Flags().IntVar(&deviceDwellMin, "dwell-min-ms", 50, "Minimum excitation dwell in milliseconds")
	deviceCmd.Flags().IntVar(&deviceDwellMax, "dwell-max-ms", 500, "Maximum excitation dwell in milliseconds")
	deviceCmd.Flags().Float32Var(&deviceValueMin, "value-min", ident.DefaultValueMin, "Minimum excitation setpoint")
	deviceCmd.Flags().Float32Var(&deviceValueMax, "value-max", ident.DefaultValueMax, "Maximum excitation setpoint")
	deviceCmd.Flags().Int64Var(&deviceSeed, "seed", 0, "Excitation seed (0 = draw from the clock)")
	deviceCmd.Flags().BoolVar(&deviceStream, "streaming", false, "Generate excitation entries on the fly instead of pre-generating")
	deviceCmd.Flags().Float64Var(&deviceSimGain, "sim-gain", 30, "Simulated motor steady-state speed at full input (rad/s)")
	deviceCmd.Flags().IntVar(&deviceSimTauMs, "sim-tau-ms", 80, "Simulated motor time constant in milliseconds")
}

func deviceConfig() ident.Config {
	return ident.Config{
		SampleCount:  deviceSamples,
		SamplePeriod: time.Duration(devicePeriodMs) * time.Millisecond,
		Excitation: ident.Ranges{
			ValueMin: deviceValueMin,
			ValueMax: deviceValueMax,
			DwellMin: time.Duration(deviceDwellMin) * time.Millisecond,
			DwellMax: time.Duration(deviceDwellMax) * time.Millisecond,
		},
		Streaming: deviceStream,
	}
}

// consoleIndicator mirrors the rig's status LED on stdout.
type consoleIndicator struct{}

func (consoleIndicator) Set(on bool) {
	if on {
		fmt.Print("\rstatus: ●")
	} else {
		fmt.Print("\rstatus: ○")
	}
}

func runDevice(cmd *cobra.Command, args []string) error {
	cfg := deviceConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection(RoleDevice)
	if err != nil {
		return err
	}
	defer conn.Close()

	seed := deviceSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	glog.V(1).Infof("excitation seed %d", seed)

	motor := motorsim.New(deviceSimGain, time.Duration(deviceSimTauMs)*time.Millisecond, ident.Wall)

	fmt.Printf("Motorlab - Experiment Controller\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Capture: %d samples @ %v (nominal %v)\n", cfg.SampleCount, cfg.SamplePeriod, cfg.Duration())
	fmt.Printf("Waiting for host...\n\n")

	controller := ident.NewController(ident.NewLink(conn), motor, cfg, rand.New(rand.NewSource(seed)))
	result := controller.Run(context.Background())

	fmt.Printf("Experiment finished: %s\n", result)

	// The rig blinks its outcome until power-off; Ctrl+C is the
	// bench equivalent.
	blinker := ident.NewBlinker(consoleIndicator{})
	blinker.Run(context.Background(), result)
	return nil
}
