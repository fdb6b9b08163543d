// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package ident

import "fmt"

// FormatCode returns the human-readable name for a protocol code.
func FormatCode(code byte) string {
	switch code {
	case HostCheckConnection:
		return "HOST_CHECK_CONNECTION"
	case DeviceCheckConnection:
		return "DEVICE_CHECK_CONNECTION"
	case HostStartTest:
		return "HOST_START_TEST"
	case DeviceAckStart:
		return "DEVICE_ACK_START"
	case DeviceTestSuccess:
		return "DEVICE_TEST_SUCCESS"
	case HostRequestData:
		return "HOST_REQUEST_DATA"
	case DeviceDataRequestAck:
		return "DEVICE_DATA_REQUEST_ACK"
	default:
		return "UNKNOWN"
	}
}

// FormatCodeLine formats a code for the byte log: name plus hex value.
func FormatCodeLine(code byte) string {
	return fmt.Sprintf("%s (0x%02X)", FormatCode(code), code)
}
