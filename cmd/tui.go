// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 eduardo-ufmg

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eduardo-ufmg/motorlab/pkg/ident"
)

var (
	tuiTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tuiDimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tuiDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	tuiErrStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	tuiPendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

// Messages
type phaseMsg ident.HostPhase
type sessionDoneMsg struct {
	buf *ident.SampleBuffer
	err error
}
type tuiTickMsg time.Time

var hostPhaseOrder = []ident.HostPhase{
	ident.HostPhaseConnect,
	ident.HostPhaseStart,
	ident.HostPhaseRunning,
	ident.HostPhaseRequestData,
	ident.HostPhaseTransfer,
	ident.HostPhaseDone,
}

// hostModel renders the session's progress through the protocol and an
// elapsed-time estimate of the capture.
type hostModel struct {
	connInfo string
	cfg      ident.Config

	phases <-chan ident.HostPhase
	result <-chan sessionDoneMsg

	spinner  spinner.Model
	progress progress.Model

	phase      ident.HostPhase
	runStarted time.Time
	done       bool
	aborted    bool
	buf        *ident.SampleBuffer
	err        error
}

func newHostModel(connInfo string, cfg ident.Config, phases <-chan ident.HostPhase, result <-chan sessionDoneMsg) hostModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return hostModel{
		connInfo: connInfo,
		cfg:      cfg,
		phases:   phases,
		result:   result,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func waitPhase(ch <-chan ident.HostPhase) tea.Cmd {
	return func() tea.Msg {
		return phaseMsg(<-ch)
	}
}

func waitResult(ch <-chan sessionDoneMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tuiTickMsg(t)
	})
}

func (m hostModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitPhase(m.phases), waitResult(m.result), tuiTick())
}

func (m hostModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.aborted = true
			return m, tea.Quit
		}
		return m, nil

	case phaseMsg:
		m.phase = ident.HostPhase(msg)
		if m.phase == ident.HostPhaseRunning {
			m.runStarted = time.Now()
		}
		return m, waitPhase(m.phases)

	case sessionDoneMsg:
		m.done = true
		m.buf = msg.buf
		m.err = msg.err
		return m, tea.Quit

	case tuiTickMsg:
		return m, tuiTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m hostModel) capturePercent() float64 {
	if m.phase > ident.HostPhaseRunning {
		return 1
	}
	if m.phase < ident.HostPhaseRunning || m.cfg.Duration() <= 0 {
		return 0
	}
	pct := float64(time.Since(m.runStarted)) / float64(m.cfg.Duration())
	if pct > 1 {
		pct = 1
	}
	return pct
}

func (m hostModel) View() string {
	var b strings.Builder

	b.WriteString(tuiTitleStyle.Render("Motorlab - Experiment Host"))
	b.WriteString("\n")
	b.WriteString(tuiDimStyle.Render(fmt.Sprintf("%s | %d samples @ %v", m.connInfo, m.cfg.SampleCount, m.cfg.SamplePeriod)))
	b.WriteString("\n\n")

	for _, p := range hostPhaseOrder {
		switch {
		case p < m.phase || (m.done && m.err == nil):
			b.WriteString(tuiDoneStyle.Render("  ✓ " + p.String()))
		case p == m.phase && m.done && m.err != nil:
			b.WriteString(tuiErrStyle.Render("  ✗ " + p.String()))
		case p == m.phase:
			b.WriteString("  " + m.spinner.View() + " " + p.String())
		default:
			b.WriteString(tuiPendingStyle.Render("    " + p.String()))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(m.progress.ViewAs(m.capturePercent()))
	b.WriteString("\n\n")

	switch {
	case m.done && m.err != nil:
		b.WriteString(tuiErrStyle.Render(fmt.Sprintf("  experiment failed: %v", m.err)))
		b.WriteString("\n")
	case m.done:
		b.WriteString(tuiDoneStyle.Render(fmt.Sprintf("  captured %d samples", m.buf.Len())))
		b.WriteString("\n")
	default:
		b.WriteString(tuiDimStyle.Render("  q or ctrl+c to abort the view (the run continues)"))
		b.WriteString("\n")
	}
	return b.String()
}

// runHostTUI runs the session under a live progress view and returns
// its outcome.
func runHostTUI(session *ident.HostSession, connInfo string) (*ident.SampleBuffer, error) {
	phases := make(chan ident.HostPhase, 8)
	result := make(chan sessionDoneMsg, 1)
	session.OnPhase = func(p ident.HostPhase) { phases <- p }

	go func() {
		buf, err := session.Run(context.Background())
		result <- sessionDoneMsg{buf: buf, err: err}
	}()

	final, err := tea.NewProgram(newHostModel(connInfo, session.Config, phases, result)).Run()
	if err != nil {
		return nil, err
	}

	m := final.(hostModel)
	if m.aborted {
		return nil, fmt.Errorf("view aborted; experiment outcome unknown")
	}
	return m.buf, m.err
}
