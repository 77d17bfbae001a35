// Package main provides the entry point for the rtty CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rtty/rtty"
	"github.com/dgnsrekt/rtty/ui"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool
	backend    string
	tui        bool

	rootCmd = &cobra.Command{
		Use:   "rtty [TEXT]",
		Short: "Send text as RTTY audio",
		Long: paragraph(
			fmt.Sprintf("\nEncode text in %s and send it as %s through your sound card.",
				keyword("ITA2/МТК-2 Baudot"), keyword("45.45 Bd AFSK")),
		),
		Example: paragraph("rtty\nrtty \"CQ CQ DE R1ABC\"\necho 73 | rtty"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	debug = viper.GetBool("debug")
	if debug {
		log.SetLevel(log.DebugLevel)
	}

	if f := cmd.Flags().Lookup("config"); f != nil && f.Changed {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file %s: %w", configFile, err)
		}
		log.Debug("Using configuration file", "path", configFile)
	}

	cfg, err := rtty.LoadConfigFromViper()
	if err != nil {
		return err
	}
	log.Debug("Loaded configuration",
		"baud", cfg.BaudRate,
		"mark", cfg.MarkFreq,
		"space", cfg.SpaceFreq,
		"backend", cfg.Backend)
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// readText returns the message from the arguments, or from stdin when it
// is piped or the only argument is "-".
func readText(args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		return readAll(os.Stdin)
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if yes, err := stdinIsPipe(); err != nil {
		return "", err
	} else if yes {
		return readAll(os.Stdin)
	}
	return "", nil
}

func readAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("unable to read from reader: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func execute(cmd *cobra.Command, args []string) error {
	text, err := readText(args)
	if err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
	if tui || (len(args) == 0 && text == "" && isTerminal) {
		return runTUI(cmd.Context(), text)
	}
	if text == "" && !isTerminal {
		return errors.New("no text given and not running in a terminal")
	}
	return transmitText(cmd.Context(), text, sendOptions{Repeat: 1})
}

func runTUI(ctx context.Context, initial string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	cfg.InitialText = initial

	tr, cleanup, err := newTransmitter(ctx, sendOptions{Repeat: 1})
	if err != nil {
		return err
	}
	defer cleanup()

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, tr).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	_ = closer()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rtty.SetDefaults()
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.BoolVar(&debug, "debug", false, "log debug messages")
	flags.Float64("baud", 0, "baud rate")
	flags.Float64("mark", 0, "mark tone frequency in Hz")
	flags.Float64("space", 0, "space tone frequency in Hz")
	flags.Float64("amplitude", 0, "peak amplitude (0-1)")
	flags.Int("sample-rate", 0, "output sample rate in Hz")
	flags.StringVarP(&backend, "backend", "b", "", "audio backend: auto, oto, portaudio, mock or wav")
	rootCmd.Flags().BoolVarP(&tui, "tui", "t", false, "open the interactive transmitter")

	// Config bindings
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("rtty.baud_rate", flags.Lookup("baud"))
	_ = viper.BindPFlag("rtty.mark_freq", flags.Lookup("mark"))
	_ = viper.BindPFlag("rtty.space_freq", flags.Lookup("space"))
	_ = viper.BindPFlag("rtty.amplitude", flags.Lookup("amplitude"))
	_ = viper.BindPFlag("rtty.sample_rate", flags.Lookup("sample-rate"))
	_ = viper.BindPFlag("rtty.backend", flags.Lookup("backend"))

	rootCmd.AddCommand(sendCmd, encodeCmd, tableCmd, wavCmd, watchCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "rtty")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "rtty")}, dirs...)
	}

	if c := os.Getenv("RTTY_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("rtty")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("rtty")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "rtty.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
