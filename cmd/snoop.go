// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/eduardo-ufmg/motorlab/pkg/ident"
)

var snoopCmd = &cobra.Command{
	Use:   "snoop",
	Short: "Display link traffic in human-readable form",
	Long: `Continuously read the link and print each byte with its protocol name.

Useful for watching a host and device talk, or for checking what a rig
emits after a reset. Bulk payload bytes show up as UNKNOWN; this command
does not reassemble the data stream.`,
	RunE: runSnoop,
}

func init() {
	rootCmd.AddCommand(snoopCmd)
}

func runSnoop(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection(RoleHost)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Motorlab - Link Snoop\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	buf := make([]byte, 128)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			// A read error on the WebSocket bridge means the
			// connection is permanently closed
			if err == ErrConnectionClosed {
				log.Printf("Connection closed")
				return nil
			}
			log.Printf("Read error: %v", err)
			continue
		}

		timestamp := time.Now().Format("15:04:05.000")
		for i := 0; i < n; i++ {
			fmt.Printf("[%s] %s\n", timestamp, ident.FormatCodeLine(buf[i]))
		}
	}
}
