package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	runewidth "github.com/mattn/go-runewidth"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Speak    key.Binding
	NextMode key.Binding
	PrevMode key.Binding
	Mode     key.Binding
	Female   key.Binding
	Male     key.Binding
	Gender   key.Binding
	Copy     key.Binding
	Export   key.Binding
	HowTo    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Left:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "left")),
		Right:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "right")),
		Speak:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "say again")),
		NextMode: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next board")),
		PrevMode: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous board")),
		Mode:     key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "pick board")),
		Female:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "female voice")),
		Male:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "male voice")),
		Gender:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "switch voice")),
		Copy:     key.NewBinding(key.WithKeys("y", "c"), key.WithHelp("y", "copy letter")),
		Export:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download source")),
		HowTo:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "how to play")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// columns groups the bindings shown in the help view.
func (k keyMap) columns() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Speak},
		{k.NextMode, k.PrevMode, k.Mode, k.Female, k.Male, k.Gender},
		{k.Copy, k.Export, k.HowTo, k.Help, k.Quit},
	}
}

func helpView(k keyMap, width int) string {
	cols := k.columns()
	rows := 0
	for _, c := range cols {
		rows = max(rows, len(c))
	}

	var s strings.Builder
	s.WriteString("\n")
	for r := range rows {
		for _, c := range cols {
			cell := ""
			if r < len(c) {
				h := c[r].Help()
				cell = runewidth.FillRight(h.Key, 10) + h.Desc
			}
			s.WriteString(runewidth.FillRight(cell, 26))
		}
		s.WriteString("\n")
	}

	out := indent(strings.TrimRight(s.String(), "\n"), 2)

	// Fill up empty cells with spaces for background coloring
	if width > 0 {
		lines := strings.Split(out, "\n")
		for i := range lines {
			lines[i] = runewidth.Truncate(lines[i], width, "")
			l := runewidth.StringWidth(lines[i])
			lines[i] += strings.Repeat(" ", max(width-l, 0))
		}
		out = strings.Join(lines, "\n")
	}

	return helpViewStyle(out)
}
