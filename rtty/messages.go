package rtty

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages for Bubble Tea communication between the transmitter and the UI.

// TransmitStartedMsg indicates playback of a transmission has started.
type TransmitStartedMsg struct {
	ID       string
	Text     string
	Duration time.Duration // Length of the rendered signal
	tx       *Transmission
}

// Transmission returns the started transmission.
func (m TransmitStartedMsg) Transmission() *Transmission {
	return m.tx
}

// TransmitCompletedMsg indicates a transmission has ended.
type TransmitCompletedMsg struct {
	ID          string
	Interrupted bool          // Stopped before it played out
	Err         error         // Sink failure, if any
	Elapsed     time.Duration // Wall time from start to completion
}

// NothingToSendMsg indicates Transmit was called with blank text.
type NothingToSendMsg struct{}

// TransmitErrorMsg indicates a transmission could not be started.
type TransmitErrorMsg struct {
	Err       error
	Component string // Which component failed (synthesizer, sink, ...)
	Action    string // What was being done
}

// TransmitCmd starts a transmission and reports the outcome as a
// TransmitStartedMsg, NothingToSendMsg or TransmitErrorMsg.
func TransmitCmd(t *Transmitter, text string, onComplete CompletionFunc) tea.Cmd {
	return func() tea.Msg {
		tx, err := t.Transmit(text, onComplete)
		if err != nil {
			return errorMsg(err)
		}
		if tx == nil {
			return NothingToSendMsg{}
		}
		return TransmitStartedMsg{
			ID:       tx.ID(),
			Text:     tx.Text(),
			Duration: tx.Duration(),
			tx:       tx,
		}
	}
}

// WaitCmd blocks until tx ends and returns a TransmitCompletedMsg.
func WaitCmd(tx *Transmission) tea.Cmd {
	return func() tea.Msg {
		err := tx.Wait()
		return TransmitCompletedMsg{
			ID:          tx.ID(),
			Interrupted: tx.Interrupted(),
			Err:         err,
			Elapsed:     tx.Elapsed(),
		}
	}
}

// StopCmd stops every running transmission. Completion is reported by the
// pending WaitCmd.
func StopCmd(t *Transmitter) tea.Cmd {
	return func() tea.Msg {
		t.Stop()
		return nil
	}
}

func errorMsg(err error) TransmitErrorMsg {
	msg := TransmitErrorMsg{Err: err}
	var te *TransmitError
	if errors.As(err, &te) {
		msg.Component = te.Component
		msg.Action = te.Action
	}
	return msg
}
