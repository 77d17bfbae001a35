package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rtty/internal/baudot"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
)

// ledView renders the transmit indicator.
func (m model) ledView() string {
	if m.transmitting {
		return ledOnStyle("● TX")
	}
	return ledOffStyle("○ RX")
}

func (m model) statusBarView(b *strings.Builder) {
	showStatusMessage := m.statusMessage != ""

	logo := logoStyle(" RTTY ")

	cfg := m.tr.Config()
	params := statusBarParamsStyle(fmt.Sprintf(" %g Bd %g/%g Hz ", cfg.BaudRate, cfg.MarkFreq, cfg.SpaceFreq))
	helpNote := statusBarHelpStyle(" F1 Help ")

	var note string
	switch {
	case showStatusMessage:
		note = m.statusMessage
	case m.transmitting && m.current != nil:
		note = fmt.Sprintf("%s Transmitting %s / %s",
			m.spinner.View(),
			m.current.Elapsed().Round(100*time.Millisecond),
			m.current.Duration().Round(100*time.Millisecond))
	case m.transmitting:
		note = m.spinner.View() + " Rendering"
	default:
		note = "enter send · esc stop · ctrl+y copy symbols"
	}

	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(params)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	if showStatusMessage {
		note = statusBarMessageStyle(note)
	} else {
		note = statusBarNoteStyle(note)
	}

	padding := max(0,
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(params)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := strings.Repeat(" ", padding)
	if showStatusMessage {
		emptySpace = statusBarMessageStyle(emptySpace)
	} else {
		emptySpace = statusBarNoteStyle(emptySpace)
	}

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		params,
		helpNote,
	)
}

func (m model) helpView() string {
	lines := []string{
		"enter    start transmission",
		"esc      stop transmission (also ctrl+s)",
		"ctrl+y   copy the symbol stream of the input",
		"ctrl+l   clear the event log",
		"f1       toggle this help",
		"ctrl+c   quit",
	}

	// Fill up empty cells with spaces for background coloring
	for i, l := range lines {
		l = "  " + l
		if m.width > 0 {
			l += strings.Repeat(" ", max(m.width-runewidth.StringWidth(l), 0))
		}
		lines[i] = l
	}
	return helpViewStyle(strings.Join(lines, "\n")) + "\n"
}

// copySymbols copies the framed symbol stream of the input, or of the last
// sent message when the input is empty.
func (m *model) copySymbols() tea.Cmd {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		text = m.lastSent
	}
	symbols := baudot.Encode(text)
	if len(symbols) == 0 {
		return m.showStatusMessage("Nothing to copy")
	}

	stream := baudot.Format(symbols)
	// Copy using OSC 52
	termenv.Copy(stream)
	// Copy using native system clipboard
	if err := clipboard.WriteAll(stream); err != nil {
		log.Debug("Native clipboard unavailable", "error", err)
	}
	return m.showStatusMessage(fmt.Sprintf("Copied %d symbols", len(symbols)))
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return truncate.StringWithTail(s, uint(width), ellipsis) //nolint:gosec
}
