package ui

import (
	"strings"

	"github.com/dgnsrekt/letterboard/internal/glyph"
	"github.com/dgnsrekt/letterboard/internal/speech"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

const headerIndent = 2

// zone is a clickable horizontal range [start, end) on one header line.
type zone[T any] struct {
	start, end int
	value      T
}

type headerZones struct {
	genderY int
	genders []zone[speech.Gender]
	modeY   int
	modes   []zone[glyph.Mode]
}

func (z headerZones) genderAt(x, y int) (speech.Gender, bool) {
	if y != z.genderY {
		return speech.GenderUnknown, false
	}
	return find(z.genders, x)
}

func (z headerZones) modeAt(x, y int) (glyph.Mode, bool) {
	if y != z.modeY {
		return 0, false
	}
	return find(z.modes, x)
}

func find[T any](zones []zone[T], x int) (T, bool) {
	for _, z := range zones {
		if x >= z.start && x < z.end {
			return z.value, true
		}
	}
	var zero T
	return zero, false
}

// headerView renders everything above the grid and reports where the voice
// and board selectors ended up. The compact header drops the subtitle and
// spacing so short terminals keep room for the grid.
func headerView(width int, compact bool, mode glyph.Mode, gender speech.Gender) (string, headerZones) {
	var (
		lines []string
		zones headerZones
	)
	add := func(s string) {
		if width > 0 {
			s = truncate.StringWithTail(s, uint(width), ellipsis) //nolint:gosec
		}
		lines = append(lines, s)
	}
	space := func() {
		if !compact {
			lines = append(lines, "")
		}
	}
	pad := strings.Repeat(" ", headerIndent)

	space()
	add(pad + headerStyle.Render(glyph.Header))
	if !compact {
		add(pad + subtleStyle.Render(glyph.Subtitle))
	}
	space()

	// Voice selector
	row := pad + "Voice: "
	for _, g := range []speech.Gender{speech.Female, speech.Male} {
		label := genderLabel(g, g == gender)
		start := ansi.PrintableRuneWidth(row)
		row += label
		zones.genders = append(zones.genders, zone[speech.Gender]{start, ansi.PrintableRuneWidth(row), g})
		row += "  "
	}
	zones.genderY = len(lines)
	add(strings.TrimRight(row, " "))
	space()

	// Board selector
	row = pad
	for i, m := range glyph.Modes() {
		style := tabStyle
		if m == mode {
			style = activeTabStyle
		}
		start := ansi.PrintableRuneWidth(row)
		row += style.Render(modeLabel(i, m))
		zones.modes = append(zones.modes, zone[glyph.Mode]{start, ansi.PrintableRuneWidth(row), m})
		row += " "
	}
	zones.modeY = len(lines)
	add(strings.TrimRight(row, " "))
	space()

	add(pad + titleStyle.Render(glyph.Title(mode)))
	space()

	return strings.Join(lines, "\n"), zones
}

func genderLabel(g speech.Gender, selected bool) string {
	mark := "( )"
	if selected {
		mark = "(•)"
	}
	switch g {
	case speech.Male:
		return mark + " 👨 Male"
	default:
		return mark + " 👩 Female"
	}
}

func modeLabel(i int, m glyph.Mode) string {
	names := map[glyph.Mode]string{
		glyph.Uppercase:    "ABC",
		glyph.Lowercase:    "abc",
		glyph.NativeScript: "क ख ग",
		glyph.Numbers:      "123",
	}
	return string(rune('1'+i)) + " " + names[m]
}
