// Package beacon repeats a transmission at a fixed interval.
package beacon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rtty/rtty"
	"golang.org/x/time/rate"
)

var (
	// ErrNothingToSend is returned when the beacon text is blank.
	ErrNothingToSend = errors.New("nothing to send")

	// ErrInterrupted is returned when a transmission was stopped by
	// something other than the beacon's context.
	ErrInterrupted = errors.New("beacon interrupted")
)

// Sender starts transmissions. *rtty.Transmitter implements it.
type Sender interface {
	Transmit(text string, onComplete rtty.CompletionFunc) (*rtty.Transmission, error)
	Stop()
}

// Beacon sends the same message repeatedly. The interval is measured
// between the starts of consecutive transmissions; a transmission longer
// than the interval is followed immediately by the next one.
type Beacon struct {
	sender   Sender
	limiter  *rate.Limiter
	interval time.Duration
}

// New returns a beacon sending through sender every interval. A zero
// interval sends back to back.
func New(sender Sender, interval time.Duration) *Beacon {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Beacon{
		sender:   sender,
		limiter:  rate.NewLimiter(limit, 1),
		interval: interval,
	}
}

// Interval returns the time between transmissions.
func (b *Beacon) Interval() time.Duration {
	return b.interval
}

// Run transmits text count times, or until ctx is cancelled when count is
// zero or negative. Each transmission is played out before the next one is
// scheduled. Cancelling ctx stops the active transmission. Run returns the
// number of transmissions that completed.
func (b *Beacon) Run(ctx context.Context, text string, count int) (int, error) {
	sent := 0
	for count <= 0 || sent < count {
		if err := b.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return sent, ctx.Err()
			}
			return sent, err
		}

		tx, err := b.sender.Transmit(text, nil)
		if err != nil {
			return sent, fmt.Errorf("beacon transmission %d: %w", sent+1, err)
		}
		if tx == nil {
			return sent, ErrNothingToSend
		}

		select {
		case <-tx.Done():
		case <-ctx.Done():
			b.sender.Stop()
			<-tx.Done()
			log.Info("Beacon cancelled", "sent", sent)
			return sent, ctx.Err()
		}

		if err := tx.Err(); err != nil {
			return sent, err
		}
		if tx.Interrupted() {
			return sent, ErrInterrupted
		}

		sent++
		if count > 0 {
			log.Info("Beacon transmission sent", "n", sent, "of", count)
		} else {
			log.Info("Beacon transmission sent", "n", sent)
		}
	}
	return sent, nil
}
