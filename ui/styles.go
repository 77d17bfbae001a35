package ui

import "github.com/charmbracelet/lipgloss"

var (
	normalDim = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	green     = lipgloss.Color("#04B575")
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	fuchsia   = lipgloss.Color("#EE6FF8")

	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(lipgloss.Color("#5A56E0")).
			Bold(true).
			Render

	ledOnStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true).
			Render

	ledOffStyle = lipgloss.NewStyle().
			Foreground(gray).
			Render

	titleStyle = lipgloss.NewStyle().
			Foreground(fuchsia).
			Bold(true).
			Render

	eventStyle = lipgloss.NewStyle().
			Foreground(normalDim).
			Render

	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Render

	okStyle = lipgloss.NewStyle().
		Foreground(green).
		Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarParamsStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Render
)
