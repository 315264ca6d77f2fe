package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/letterboard/internal/glyph"
	"github.com/dgnsrekt/letterboard/internal/speech"
)

var (
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	fuchsia   = lipgloss.Color("#EE6FF8")
	green     = lipgloss.Color("#04B575")
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	dimGray   = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	cellInk   = lipgloss.Color("#1F2937")

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
)

var (
	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().Foreground(dimGray)

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(fuchsia)

	titleStyle = lipgloss.NewStyle().Bold(true)

	celebrateStyle = lipgloss.NewStyle().Bold(true).Foreground(green)

	tabStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Padding(0, 1)

	activeTabStyle = tabStyle.
			Foreground(cream).
			Background(fuchsia).
			Bold(true)

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	statusBarVoiceStyle = lipgloss.NewStyle().
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

	statusBarMessageHelpStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("#B6FFE4")).
					Background(green).
					Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render
)

// Speech state colors, shared by the status bar spinner.
var speechStateColors = map[speech.State]lipgloss.Color{
	speech.StateLoading:      lipgloss.Color("214"),
	speech.StateSynthesizing: lipgloss.Color("214"),
	speech.StateSpeaking:     lipgloss.Color("42"),
	speech.StateError:        lipgloss.Color("196"),
}

func logoView() string {
	return logoStyle.Render(" Letterboard ")
}

// cellStyle returns the style of a grid cell. Bordered cells are three lines
// tall; compact cells are a single line.
func cellStyle(sw glyph.Swatch, width int, bordered, active, celebrating, cursor bool) lipgloss.Style {
	bg := lipgloss.Color(sw.Base)
	if active {
		bg = lipgloss.Color(sw.Active)
	}
	s := lipgloss.NewStyle().
		Foreground(cellInk).
		Background(bg).
		Bold(true).
		Align(lipgloss.Center)

	if !bordered {
		if cursor {
			s = s.Underline(true)
		}
		return s.Width(width)
	}

	border := lipgloss.RoundedBorder()
	borderColor := lipgloss.TerminalColor(bg)
	switch {
	case celebrating:
		border = lipgloss.DoubleBorder()
		borderColor = cream
	case active:
		border = lipgloss.ThickBorder()
	}
	if cursor {
		borderColor = fuchsia
	}
	return s.
		Width(width - 2).
		Border(border).
		BorderForeground(borderColor)
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		b.WriteString(i + v + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
