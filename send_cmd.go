package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	sendOpts = sendOptions{Repeat: 1}

	sendCmd = &cobra.Command{
		Use:   "send [TEXT]",
		Short: "Transmit text",
		Long: paragraph("\n" + keyword("Transmit") + " text on the audio output. " +
			"Text is read from the arguments or from stdin. With --repeat the message is sent as a beacon, --interval spaces the transmissions."),
		Example: paragraph("rtty send CQ CQ DE R1ABC\nrtty send --repeat 0 --interval 5m \"VVV DE R1ABC\"\nrtty send -o cq.wav CQ"),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(args)
			if err != nil {
				return err
			}
			if text == "" {
				return errors.New("nothing to send: pass text as arguments or on stdin")
			}
			return transmitText(cmd.Context(), text, sendOpts)
		},
	}
)

func init() {
	sendCmd.Flags().StringVarP(&sendOpts.Output, "output", "o", "", "write a WAV file instead of playing")
	sendCmd.Flags().BoolVar(&sendOpts.PCM16, "pcm16", false, "write 16-bit PCM instead of float WAV")
	sendCmd.Flags().IntVarP(&sendOpts.Repeat, "repeat", "r", 1, "number of transmissions, 0 repeats until interrupted")
	sendCmd.Flags().DurationVarP(&sendOpts.Interval, "interval", "i", 0, "time between the starts of repeated transmissions")
	sendCmd.Flags().BoolVar(&sendOpts.NoCache, "no-cache", false, "do not use the render cache")
}
