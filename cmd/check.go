// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eduardo-ufmg/motorlab/pkg/ident"
)

var checkTimeout int

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Test connection by exchanging the connection-check codes",
	Long: `Send the connection-check code and wait for the device's acknowledgement.

The device answers any time before its experiment has started; stray
bytes on the link are ignored while waiting.

Exit codes:
  0 - Acknowledgement received before timeout
  1 - Timeout reached without an acknowledgement
  2 - Connection error`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntVar(&checkTimeout, "timeout", 10, "Timeout in seconds to wait for the acknowledgement")
}

func runCheck(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection(RoleHost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Motorlab - Connection Check\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n\n", checkTimeout)

	link := ident.NewLink(conn)
	if err := link.SendCode(ident.HostCheckConnection); err != nil {
		fmt.Fprintf(os.Stderr, "Send error: %v\n", err)
		os.Exit(2)
	}

	ackCh := make(chan error, 1)
	go func() {
		ackCh <- link.WaitForCode(context.Background(), ident.DeviceCheckConnection)
	}()

	select {
	case err := <-ackCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
			os.Exit(2)
		}
		fmt.Printf("SUCCESS: device acknowledged the connection check\n")
		os.Exit(0)

	case <-time.After(time.Duration(checkTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: no acknowledgement within %d seconds\n", checkTimeout)
		os.Exit(1)
	}

	return nil
}
