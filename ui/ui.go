// Package ui provides the terminal front-end of the transmitter.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rtty/rtty"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	ellipsis             = "…"
)

// NewProgram returns a new Tea program driving tr.
func NewProgram(cfg Config, tr *rtty.Transmitter) *tea.Program {
	log.Debug("Starting rtty TUI", "alt_screen", cfg.AltScreen)

	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, tr), opts...)
}

type statusMessageTimeoutMsg struct{}

// event is one line of the transmission log shown under the input.
type event struct {
	text  string
	isErr bool
	isOK  bool
}

type model struct {
	cfg    Config
	tr     *rtty.Transmitter
	width  int
	height int

	input   textinput.Model
	spinner spinner.Model

	// transmitting is set from START until the completion message arrives.
	// manualStop records that the operator pressed STOP meanwhile.
	transmitting bool
	manualStop   bool
	current      *rtty.Transmission
	lastSent     string

	events   []event
	showHelp bool

	statusMessage      string
	statusMessageTimer *time.Timer
}

func newModel(cfg Config, tr *rtty.Transmitter) model {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 6
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = cfg.Placeholder
	ti.CharLimit = cfg.CharLimit
	ti.SetValue(cfg.InitialText)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(red)

	return model{
		cfg:     cfg,
		tr:      tr,
		input:   ti,
		spinner: sp,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.transmitting {
				m.tr.Stop()
			}
			return m, tea.Quit

		case "enter":
			return m.start()

		case "esc", "ctrl+s":
			return m.stop()

		case "ctrl+y":
			cmd := m.copySymbols()
			return m, cmd

		case "ctrl+l":
			m.events = nil
			return m, nil

		case "f1":
			m.showHelp = !m.showHelp
			return m, nil

		case "ctrl+z":
			return m, tea.Suspend
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(0, msg.Width-len(m.input.Prompt)-2)

	case rtty.TransmitStartedMsg:
		m.current = msg.Transmission()
		if m.manualStop {
			// STOP arrived before the transmission was registered.
			m.current.Stop()
		}
		m.addEvent(event{text: fmt.Sprintf("Transmitting %q (%s)", msg.Text, msg.Duration.Round(100*time.Millisecond))})
		return m, rtty.WaitCmd(m.current)

	case rtty.TransmitCompletedMsg:
		m.finish(msg)
		return m, nil

	case rtty.NothingToSendMsg:
		m.transmitting = false
		m.addEvent(event{text: "Nothing to send"})
		return m, nil

	case rtty.TransmitErrorMsg:
		m.transmitting = false
		log.Error("Transmission could not start", "error", msg.Err)
		m.addEvent(event{text: "Error: " + msg.Err.Error(), isErr: true})
		return m, nil

	case spinner.TickMsg:
		if !m.transmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMessageTimeoutMsg:
		m.statusMessage = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// start handles START. It is ignored while a transmission is running.
func (m model) start() (tea.Model, tea.Cmd) {
	if m.transmitting {
		log.Debug("START ignored, transmission in progress")
		return m, nil
	}

	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		log.Info("Nothing to send")
		m.addEvent(event{text: "Nothing to send"})
		return m, nil
	}

	m.transmitting = true
	m.manualStop = false
	m.lastSent = text
	return m, tea.Batch(m.spinner.Tick, rtty.TransmitCmd(m.tr, text, nil))
}

// stop handles STOP. It does nothing while idle.
func (m model) stop() (tea.Model, tea.Cmd) {
	if !m.transmitting {
		return m, nil
	}
	m.manualStop = true
	return m, rtty.StopCmd(m.tr)
}

func (m *model) finish(msg rtty.TransmitCompletedMsg) {
	elapsed := msg.Elapsed.Round(100 * time.Millisecond)
	switch {
	case msg.Err != nil:
		m.addEvent(event{text: "Transmission failed: " + msg.Err.Error(), isErr: true})
	case m.manualStop || msg.Interrupted:
		m.addEvent(event{text: fmt.Sprintf("Transmission interrupted after %s", elapsed)})
	default:
		m.addEvent(event{text: fmt.Sprintf("Transmission completed in %s", elapsed), isOK: true})
	}
	m.transmitting = false
	m.manualStop = false
	m.current = nil
}

func (m *model) addEvent(e event) {
	m.events = append(m.events, e)
	if over := len(m.events) - m.cfg.HistorySize; over > 0 {
		m.events = m.events[over:]
	}
}

// showStatusMessage shows msg in the status bar for a few seconds.
func (m *model) showStatusMessage(msg string) tea.Cmd {
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

func (m model) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n  %s  %s\n\n", titleStyle("RTTY"), m.ledView())
	fmt.Fprintf(&b, "  %s\n\n", m.input.View())

	for _, e := range m.events {
		line := truncateLine(e.text, m.width-4)
		switch {
		case e.isErr:
			line = errorStyle(line)
		case e.isOK:
			line = okStyle(line)
		default:
			line = eventStyle(line)
		}
		fmt.Fprintf(&b, "  %s\n", line)
	}

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.helpView())
	}

	// Push the status bar to the bottom.
	lines := strings.Count(b.String(), "\n")
	if pad := m.height - lines - 1; pad > 0 {
		b.WriteString(strings.Repeat("\n", pad))
	} else {
		b.WriteString("\n")
	}
	m.statusBarView(&b)

	return b.String()
}
