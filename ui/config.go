package ui

// Config contains TUI-specific configuration.
type Config struct {
	// Text placed in the input when the program starts.
	InitialText string

	// Number of transmission events kept on screen.
	HistorySize int    `env:"RTTY_UI_HISTORY" envDefault:"6"`
	Placeholder string `env:"RTTY_UI_PLACEHOLDER" envDefault:"CQ CQ DE ..."`
	CharLimit   int    `env:"RTTY_UI_CHAR_LIMIT" envDefault:"1024"`

	// For debugging the UI
	AltScreen   bool `env:"RTTY_ALT_SCREEN" envDefault:"true"`
	EnableMouse bool `env:"RTTY_ENABLE_MOUSE"`
}
