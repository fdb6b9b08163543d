// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package cmd

import (
	goflag "flag"

	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// MQTT bridge flags
	mqttBroker string
	mqttTopic  string
)

var rootCmd = &cobra.Command{
	Use:   "motorlab",
	Short: "DC motor parameter-identification rig",
	Long: `Motorlab - both ends of the DC motor identification experiment.

The device side excites the motor with a randomized speed input, samples
the shaft angle at a fixed period, and streams both signals to the host
over the link. The host side supervises the run and saves the captured
data for offline system identification.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]
  MQTT:      --broker tcp://host:1883 [--topic motorlab]

For WebSocket authentication, the password is read from the
MOTORLAB_PASSWORD environment variable, or prompted interactively if not
set. The --password flag is intentionally not provided to avoid leaking
credentials in shell history.`,
	Version: "1.0.0",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket bridge flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// MQTT bridge flags
	rootCmd.PersistentFlags().StringVar(&mqttBroker, "broker", "", "MQTT broker URL (tcp://host:port)")
	rootCmd.PersistentFlags().StringVar(&mqttTopic, "topic", "motorlab", "MQTT topic prefix")

	// glog registers its flags on the standard flag set.
	rootCmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)
}

// Execute runs the root command
func Execute() error {
	// glog wants the standard flag set parsed; cobra already consumed
	// the real arguments.
	goflag.CommandLine.Parse(nil)
	return rootCmd.Execute()
}
