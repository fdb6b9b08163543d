// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package cmd

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/eduardo-ufmg/motorlab/pkg/ident"
)

var (
	hostSamples  int
	hostPeriodMs int
	hostOutPath  string
	hostManifest string
	hostTUI      bool
	hostYes      bool
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Supervise an experiment run and download the data",
	Long: `Drive the experiment from the host side.

Checks the connection, starts the capture, waits out the run (about 41
seconds at the defaults), downloads the sample buffer, and saves it as
CSV for offline identification. A CBOR manifest with the capture
parameters is written next to the data.

The sample count and period must match the device configuration; they
size the download and the time axis of the exported data.`,
	RunE: runHost,
}

func init() {
	rootCmd.AddCommand(hostCmd)
	hostCmd.Flags().IntVar(&hostSamples, "samples", ident.DefaultSampleCount, "Number of samples the device captures")
	hostCmd.Flags().IntVar(&hostPeriodMs, "period-ms", 10, "Device sample period in milliseconds")
	hostCmd.Flags().StringVarP(&hostOutPath, "out", "o", "experiment_data.csv", "CSV output path")
	hostCmd.Flags().StringVar(&hostManifest, "manifest", "experiment_run.cbor", "Run manifest output path (empty to skip)")
	hostCmd.Flags().BoolVar(&hostTUI, "tui", false, "Show live progress UI")
	hostCmd.Flags().BoolVarP(&hostYes, "yes", "y", false, "Start without the interactive confirmation")
}

func hostConfig() ident.Config {
	cfg := ident.DefaultConfig()
	cfg.SampleCount = hostSamples
	cfg.SamplePeriod = time.Duration(hostPeriodMs) * time.Millisecond
	return cfg
}

func runHost(cmd *cobra.Command, args []string) error {
	cfg := hostConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection(RoleHost)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Mirror the lab workflow: a human arms the rig before the motor
	// starts moving. Skipped off-TTY and under --yes.
	if !hostYes && !hostTUI && term.IsTerminal(int(syscall.Stdin)) {
		fmt.Print("Press [Enter] to start the experiment...")
		bufio.NewReader(os.Stdin).ReadString('\n')
	}

	session := &ident.HostSession{
		Link:   ident.NewLink(conn),
		Config: cfg,
	}

	var buf *ident.SampleBuffer
	started := time.Now()
	if hostTUI {
		buf, err = runHostTUI(session, connInfo)
	} else {
		session.OnPhase = func(p ident.HostPhase) {
			fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05.000"), p)
		}
		fmt.Printf("Motorlab - Experiment Host\n")
		fmt.Printf("Connection: %s\n", connInfo)
		fmt.Printf("Expecting %d samples @ %v (nominal %v)\n\n", cfg.SampleCount, cfg.SamplePeriod, cfg.Duration())
		buf, err = session.Run(context.Background())
	}
	if err != nil {
		return fmt.Errorf("experiment failed: %w", err)
	}

	if err := writeCSV(hostOutPath, cfg, buf); err != nil {
		return err
	}
	fmt.Printf("Saved %d samples to %s\n", buf.Len(), hostOutPath)

	if hostManifest != "" {
		if err := writeManifest(hostManifest, cfg, started); err != nil {
			return err
		}
		fmt.Printf("Saved run manifest to %s\n", hostManifest)
	}
	return nil
}

// writeCSV exports the capture as Time(s),Input,Angle rows using the
// nominal time axis.
func writeCSV(path string, cfg ident.Config, buf *ident.SampleBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Time(s)", "Input", "Angle"}); err != nil {
		return err
	}
	period := cfg.SamplePeriod.Seconds()
	for i := 0; i < buf.Len(); i++ {
		row := []string{
			strconv.FormatFloat(float64(i)*period, 'f', -1, 64),
			strconv.FormatFloat(float64(buf.Input[i]), 'g', -1, 32),
			strconv.FormatFloat(float64(buf.Angle[i]), 'g', -1, 32),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeManifest(path string, cfg ident.Config, capturedAt time.Time) error {
	data, err := ident.NewManifest(cfg, capturedAt).Encode()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
