package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/xr-bridge/xr"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const (
	framePeriod = time.Second / 30
	maxEvents   = 8
)

type modelState int

const (
	stateRunning modelState = iota
	stateInputProfile
)

type interactiveModel struct {
	err     error
	session *session
	opts    options
	input   textinput.Model
	events  []string
	frames  int
	issued  int
	state   modelState
}

type startedMsg struct {
	err     error
	session *session
}

type tickMsg time.Time

func newInteractiveModel(opts options) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "/interaction_profiles/valve/index_controller"
	ti.Prompt = "left hand profile: "
	ti.Width = 50
	return &interactiveModel{opts: opts, input: ti}
}

func (m *interactiveModel) event(line string) {
	m.events = append(m.events, line)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.start
}

func (m *interactiveModel) start() tea.Msg {
	s, err := start(context.Background(), m.opts, newCLIHost(m.event))
	return startedMsg{session: s, err: err}
}

func tick() tea.Cmd {
	return tea.Tick(framePeriod, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *interactiveModel) quit() (tea.Model, tea.Cmd) {
	if m.session != nil {
		m.session.close(context.Background())
		m.session = nil
	}
	return m, tea.Quit
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateInputProfile {
			return m.updateInput(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m.quit()
		case "p":
			if m.session != nil {
				m.state = stateInputProfile
				m.input.SetValue("")
				return m, m.input.Focus()
			}
		case "r":
			if m.session != nil {
				m.session.rt.PushEvent(&xr.EventDataReferenceSpaceChangePending{
					Session:            m.session.bridge.Session(),
					ReferenceSpaceType: xr.ReferenceSpaceTypeStage,
					PoseValid:          true,
				})
			}
		case "x":
			if m.session != nil {
				if err := m.session.bridge.RequestExit(); err != nil {
					m.event(errorStyle.Render(err.Error()))
				}
			}
		}

	case startedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		return m, tick()

	case tickMsg:
		if m.session == nil {
			return m, nil
		}
		issued, err := m.session.tick(context.Background(), m.frames)
		m.frames++
		if issued {
			m.issued++
		}
		if err != nil {
			m.event(errorStyle.Render(err.Error()))
		}
		return m, tick()
	}

	return m, nil
}

func (m *interactiveModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "esc":
		m.state = stateRunning
		m.input.Blur()
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.input.Value())
		m.session.rt.SetInteractionProfile("/user/hand/left", path)
		m.state = stateRunning
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.session == nil {
		return "Starting session..."
	}

	b := m.session.bridge
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("XR Bridge"))
	sb.WriteString(" ")
	sb.WriteString(b.RuntimeName())
	sb.WriteString("\n\n")

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label)))
		sb.WriteString(valueStyle.Render(value))
		sb.WriteString("\n")
	}
	row("state", b.State().String())
	row("frames", fmt.Sprintf("%d ticks, %d issued, %d submitted", m.frames, m.issued, len(m.session.rt.Frames())))

	head := b.HeadCenter()
	row("head", fmt.Sprintf("%.2f %.2f %.2f (%s)", head.Transform.Origin.X(), head.Transform.Origin.Y(), head.Transform.Origin.Z(), head.Confidence))
	for _, t := range b.Trackers() {
		profile := b.TrackerProfilePath(t)
		if profile == "" {
			profile = "-"
		}
		row("tracker", b.TrackerName(t)+" "+profile)
	}

	sb.WriteString("\n")
	for _, e := range m.events {
		sb.WriteString(eventStyle.Render(e))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if m.state == stateInputProfile {
		sb.WriteString(m.input.View())
		sb.WriteString("\n\n")
		sb.WriteString(helpStyle.Render("enter post • esc back"))
		return sb.String()
	}
	sb.WriteString(helpStyle.Render("p post profile • r recenter • x exit session • q quit"))
	return sb.String()
}

func runInteractive(opts options) error {
	logger, err := newLogger(opts.verbose, true)
	if err != nil {
		return err
	}
	defer logger.Sync()
	setLoggers(logger.With(zap.String("mode", "interactive")))

	p := tea.NewProgram(newInteractiveModel(opts), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
