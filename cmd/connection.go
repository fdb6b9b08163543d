// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"

	"github.com/eduardo-ufmg/motorlab/pkg/ident"
)

// Connection is a byte-stream link to the other end of the experiment.
// It satisfies ident.Transport plus Close.
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
	Flush() error
}

// Role selects the link direction conventions (MQTT topic layout).
type Role int

// Link roles
const (
	RoleHost Role = iota
	RoleDevice
)

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

// Flush blocks until the outbound buffer reaches the wire.
func (s *SerialConnection) Flush() error {
	return s.port.Drain()
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = fmt.Errorf("websocket connection closed")

// WebSocketConnection wraps a WebSocket connection for byte-level reading
type WebSocketConnection struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
	closed    bool // Track if connection has failed/closed
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	// Return immediately if connection is known to be closed
	if w.closed {
		return 0, ErrConnectionClosed
	}

	// If we have buffered data, return it first
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	// Read next message from WebSocket (non-recursive loop to avoid stack overflow)
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			// Mark connection as closed to prevent further read attempts
			w.closed = true
			return 0, err
		}

		// The experiment link carries binary messages only
		if messageType != websocket.BinaryMessage {
			// Skip non-binary messages and continue loop
			continue
		}

		// Buffer the message and return what fits
		w.buf = data
		w.bufOffset = 0
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	}
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	err := w.conn.WriteMessage(websocket.BinaryMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// Flush is a no-op: each write is delivered as one complete message.
func (w *WebSocketConnection) Flush() error {
	return nil
}

func (w *WebSocketConnection) Close() error {
	return w.conn.Close()
}

// MQTTConnection bridges the experiment link over an MQTT broker. Each
// side publishes to one topic and subscribes to the other: the device
// listens on <prefix>/cmd and publishes <prefix>/msg, the host the
// reverse.
type MQTTConnection struct {
	client   paho.Client
	pubTopic string

	messages  chan []byte
	buf       []byte
	bufOffset int
}

func (m *MQTTConnection) Read(p []byte) (int, error) {
	if m.bufOffset < len(m.buf) {
		n := copy(p, m.buf[m.bufOffset:])
		m.bufOffset += n
		return n, nil
	}
	data, ok := <-m.messages
	if !ok {
		return 0, io.EOF
	}
	m.buf = data
	m.bufOffset = 0
	n := copy(p, m.buf)
	m.bufOffset = n
	return n, nil
}

func (m *MQTTConnection) Write(p []byte) (int, error) {
	// QoS 1 keeps the one-shot exchange in order through the broker.
	token := m.client.Publish(m.pubTopic, 1, false, p)
	token.Wait()
	if err := token.Error(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Flush is a no-op: Write already waits for broker acknowledgement.
func (m *MQTTConnection) Flush() error {
	return nil
}

func (m *MQTTConnection) Close() error {
	m.client.Disconnect(250)
	return nil
}

// OpenSerialConnection opens a serial port connection
func OpenSerialConnection(portName string, baudRate int) (Connection, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %v", portName, err)
	}

	return &SerialConnection{port: port}, nil
}

// OpenWebSocketConnection opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketConnection(wsURL, username, password string, skipSSLVerify bool) (Connection, error) {
	// Parse and validate URL
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	// Validate scheme
	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	// Create dialer with timeout
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	// Configure TLS for wss://
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	// Build HTTP headers with Basic auth
	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	// Connect
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %v", err)
	}

	return &WebSocketConnection{conn: conn}, nil
}

// OpenMQTTConnection connects to the broker and wires the role's topic
// pair under the given prefix.
func OpenMQTTConnection(brokerURL, topicPrefix string, role Role) (Connection, error) {
	subTopic := topicPrefix + "/msg"
	pubTopic := topicPrefix + "/cmd"
	clientID := "motorlab-host"
	if role == RoleDevice {
		subTopic, pubTopic = pubTopic, subTopic
		clientID = "motorlab-device"
	}

	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetOrderMatters(true)

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect to %s: %v", brokerURL, token.Error())
	}

	conn := &MQTTConnection{
		client:   client,
		pubTopic: pubTopic,
		messages: make(chan []byte, 16),
	}
	token := client.Subscribe(subTopic, 1, func(_ paho.Client, msg paho.Message) {
		conn.messages <- msg.Payload()
	})
	if token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("MQTT subscribe %s: %v", subTopic, token.Error())
	}

	return conn, nil
}

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv("MOTORLAB_PASSWORD"); pw != "" {
		return pw, nil
	}

	// Prompt user for password (hide input)
	fmt.Fprint(os.Stderr, "Password: ")

	// Read password without echo
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr) // newline after password
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr) // newline after password
	return string(passwordBytes), nil
}

// OpenConnection opens a serial, WebSocket, or MQTT connection based on flags
func OpenConnection(role Role) (Connection, string, error) {
	if wsURL != "" {
		// WebSocket mode
		password := ""
		if wsUsername != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := OpenWebSocketConnection(wsURL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if mqttBroker != "" {
		conn, err := OpenMQTTConnection(mqttBroker, mqttTopic, role)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("MQTT: %s (%s/*)", mqttBroker, mqttTopic), nil
	}

	if portName != "" {
		// Serial mode
		conn, err := OpenSerialConnection(portName, baudRate)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
	}

	return nil, "", fmt.Errorf("one of --port, --url, or --broker must be specified")
}

// The bridges must satisfy the protocol transport.
var (
	_ ident.Transport = (*SerialConnection)(nil)
	_ ident.Transport = (*WebSocketConnection)(nil)
	_ ident.Transport = (*MQTTConnection)(nil)
)
