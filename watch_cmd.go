package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rtty/internal/queue"
	"github.com/dgnsrekt/rtty/internal/watch"
	"github.com/dgnsrekt/rtty/rtty"
	"github.com/spf13/cobra"
)

var (
	watchOpts    = sendOptions{Repeat: 1}
	watchInitial bool
	watchDelay   = watch.DefaultDebounce
	watchBacklog = 1

	watchCmd = &cobra.Command{
		Use:     "watch FILE",
		Short:   "Transmit a file every time it changes",
		Long:    paragraph("\n" + keyword("Watch") + " FILE and transmit its contents after every save. Changes that arrive while a transmission is running wait in a queue; when the queue is full the oldest waiting change is dropped."),
		Example: paragraph("rtty watch ~/beacon.txt\nrtty watch --initial --debounce 1s --backlog 3 notes.txt"),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tr, cleanup, err := newTransmitter(ctx, watchOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			q := queue.New(watchBacklog, queue.DropOldest)
			done := make(chan struct{})
			go func() {
				defer close(done)
				keyQueue(ctx, tr, q)
			}()
			defer func() {
				_ = q.Close()
				<-done
				if stats := q.Stats(); stats.TotalDequeued > 0 {
					log.Info("Watch finished",
						"sent", stats.TotalDequeued,
						"dropped", stats.TotalDropped,
						"avg_wait", stats.AverageWait().Round(time.Millisecond))
				}
			}()

			enqueue := func(text string) {
				if err := q.Enqueue(text, queue.PriorityNormal); err != nil {
					log.Warn("Change not queued", "file", args[0], "error", err)
					return
				}
				if tr.Active() {
					fmt.Fprintf(os.Stderr, "Busy, change queued (%d waiting)\n", q.Size())
				}
			}

			if watchInitial {
				b, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("unable to read file: %w", err)
				}
				if text := strings.TrimSpace(string(b)); text != "" {
					enqueue(text)
				}
			}

			fmt.Fprintf(os.Stderr, "Watching %s, press Ctrl-C to stop\n", args[0])
			return watch.New(watchDelay).Run(ctx, args[0], enqueue)
		},
	}
)

// keyQueue transmits queued texts one at a time until the queue is closed
// or ctx is done.
func keyQueue(ctx context.Context, tr *rtty.Transmitter, q *queue.TextQueue) {
	for {
		item, err := q.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, queue.ErrQueueClosed) && !errors.Is(err, context.Canceled) {
				log.Error("Queue failed", "error", err)
			}
			return
		}

		tx, err := tr.Transmit(item.Text, nil)
		if err != nil {
			log.Error("Transmission failed", "error", err)
			fmt.Fprintln(os.Stderr, "Error:", err)
			continue
		}
		if tx == nil {
			continue
		}
		fmt.Fprintf(os.Stderr, "Transmitting %d characters (%s)\n", len([]rune(item.Text)), tx.Duration().Round(100*time.Millisecond))

		select {
		case <-tx.Done():
			if err := tx.Err(); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
			}
		case <-ctx.Done():
			tx.Stop()
			<-tx.Done()
			return
		}
	}
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "transmit the current contents on start")
	watchCmd.Flags().DurationVar(&watchDelay, "debounce", watch.DefaultDebounce, "quiet period after the last write")
	watchCmd.Flags().IntVar(&watchBacklog, "backlog", 1, "changes to keep waiting while a transmission runs")
	watchCmd.Flags().StringVarP(&watchOpts.Output, "output", "o", "", "write a WAV file instead of playing")
}
