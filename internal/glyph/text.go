package glyph

import (
	"fmt"
	"strings"
)

const (
	Header        = "🎯 Learn Your Letters! 🎯"
	Subtitle      = "Hover over each letter to hear how it sounds!"
	VoiceHint     = "🎤 You can choose between male and female voice above!"
	Encouragement = "🌟 Great job learning! 🌟"
	HowToPlay     = "🖱️ How to Play 🖱️"
)

// Title returns the board heading for a mode.
func Title(m Mode) string {
	switch m {
	case Uppercase:
		return "🔤 Capital Letters"
	case Lowercase:
		return "🔡 Small Letters"
	case NativeScript:
		return fmt.Sprintf("🇳🇵 Nepali Letters (%d Letters)", Len(NativeScript))
	case Numbers:
		return fmt.Sprintf("🔢 Numbers (1-%d)", Len(Numbers))
	default:
		return "🔤 Letters"
	}
}

// Instructions returns the How to Play text for a mode.
func Instructions(m Mode) string {
	switch m {
	case NativeScript:
		return fmt.Sprintf("Hover over any Nepali letter to hear its pronunciation! "+
			"Perfect for learning Devanagari script with all %d letters!", Len(NativeScript))
	case Numbers:
		return fmt.Sprintf("Hover over any number to hear it spoken! Learn counting from 1 to %d!", Len(Numbers))
	default:
		return fmt.Sprintf("Hover over any %s letter to hear its sound! Perfect for learning the alphabet!", m)
	}
}

// Terminal widths at which the grid gets denser.
const (
	BreakpointSmall  = 48
	BreakpointMedium = 72
	BreakpointLarge  = 100
)

var columnPolicy = map[Mode][4]int{
	Uppercase:    {3, 4, 6, 7},
	Lowercase:    {3, 4, 6, 7},
	NativeScript: {4, 5, 6, 8},
	Numbers:      {5, 6, 8, 10},
}

// Columns returns the number of grid columns for a mode at the given
// terminal width. Native script and numbers use denser grids.
func Columns(m Mode, width int) int {
	cols, ok := columnPolicy[m]
	if !ok {
		cols = columnPolicy[Uppercase]
	}
	switch {
	case width >= BreakpointLarge:
		return cols[3]
	case width >= BreakpointMedium:
		return cols[2]
	case width >= BreakpointSmall:
		return cols[1]
	default:
		return cols[0]
	}
}

// Swatch is a cell color with a brighter variant for the active state.
type Swatch struct {
	Name   string
	Base   string
	Active string
}

var palette = []Swatch{
	{"red", "#F87171", "#EF4444"},
	{"blue", "#60A5FA", "#3B82F6"},
	{"green", "#4ADE80", "#22C55E"},
	{"yellow", "#FACC15", "#EAB308"},
	{"purple", "#C084FC", "#A855F7"},
	{"pink", "#F472B6", "#EC4899"},
	{"indigo", "#818CF8", "#6366F1"},
	{"orange", "#FB923C", "#F97316"},
}

// Color returns the swatch for the cell at index i. Colors cycle every
// eight cells.
func Color(i int) Swatch {
	n := len(palette)
	return palette[((i%n)+n)%n]
}

// Markdown renders a mode as a Markdown section: its title, instructions
// and a table of symbols with their pronunciations.
func Markdown(m Mode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n%s\n\n", Title(m), Instructions(m))
	b.WriteString("| # | Symbol | Pronunciation |\n|---:|:---:|---|\n")
	for i, g := range catalog(m) {
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, g.Symbol, g.Pronunciation)
	}
	return b.String()
}
