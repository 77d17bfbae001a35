package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dgnsrekt/rtty/internal/baudot"
	"github.com/dgnsrekt/rtty/internal/fsk"
	"github.com/dgnsrekt/rtty/rtty"
	"github.com/spf13/cobra"
)

var (
	encodeSymbols bool

	encodeCmd = &cobra.Command{
		Use:     "encode [TEXT]",
		Short:   "Show the Baudot encoding of text",
		Long:    paragraph("\n" + keyword("Encode") + " text and print every framed unit with its code and line symbols, followed by totals."),
		Example: paragraph("rtty encode \"CQ DE R1ABC 73\"\nrtty encode --symbols Привет"),
		RunE: func(_ *cobra.Command, args []string) error {
			text, err := readText(args)
			if err != nil {
				return err
			}
			cfg, err := rtty.LoadConfigFromViper()
			if err != nil {
				return err
			}
			return printEncoding(os.Stdout, text, cfg.Synth(), encodeSymbols)
		},
	}

	tableCmd = &cobra.Command{
		Use:   "table",
		Short: "List the supported characters",
		Long:  paragraph("\nList every character that can be sent with its " + keyword("5-bit code") + " and shift mode."),
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintln(os.Stdout, codeTable())
			return nil
		},
	}
)

func printEncoding(w io.Writer, text string, cfg fsk.Config, symbolsOnly bool) error {
	units := baudot.Units(text)
	if len(units) == 0 {
		_, err := fmt.Fprintln(w, "nothing to send")
		return err
	}

	if symbolsOnly {
		_, err := fmt.Fprintln(w, baudot.Format(baudot.Encode(text)))
		return err
	}

	for i, u := range units {
		fmt.Fprintf(w, "%3d  %-5s %-8s %s  %s\n",
			i, u.Label(), u.Kind, u.Code, baudot.Format(u.Symbols()))
	}

	synth, err := fsk.New(cfg)
	if err != nil {
		return err
	}
	stats := baudot.Analyze(text)
	symbols := baudot.Encode(text)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "units %d, characters %d, shifts %d, skipped %d\n",
		stats.Units, stats.Characters, stats.Switches, stats.Skipped)
	fmt.Fprintf(w, "symbols %d, samples %d, duration %s\n",
		len(symbols), synth.SampleCount(symbols), synth.Duration(symbols))
	return nil
}

func codeTable() string {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("CHAR", "CODE", "MODE")

	for _, m := range []baudot.Mode{baudot.Letters, baudot.Figures, baudot.Cyrillic} {
		t.Row("["+m.String()+"]", baudot.ShiftCode(m).String(), "shift")
	}

	for _, e := range baudot.Table() {
		char := e.Name()
		if e.Char == ' ' {
			char = "SPACE"
		}
		t.Row(char, e.Code.String(), strings.ToLower(e.Mode.String()))
	}
	return t.Render()
}

func init() {
	encodeCmd.Flags().BoolVarP(&encodeSymbols, "symbols", "s", false, "print only the symbol stream")
}
