package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/letterboard/internal/glyph"
	"github.com/muesli/reflow/wordwrap"
)

type panelRenderedMsg struct {
	mode    glyph.Mode
	width   int
	content string
}

func howToPlayMarkdown(m glyph.Mode) string {
	return fmt.Sprintf("## %s\n\n%s\n\n%s\n", glyph.HowToPlay, glyph.Instructions(m), glyph.VoiceHint)
}

func panelWidth(cfg Config, width int) int {
	w := max(0, width-headerIndent*2)
	if cfg.GlamourMaxWidth > 0 {
		w = min(w, int(cfg.GlamourMaxWidth)) //nolint:gosec
	}
	return w
}

func renderPanel(cfg Config, mode glyph.Mode, width int) tea.Cmd {
	return func() tea.Msg {
		md := howToPlayMarkdown(mode)
		s, err := glamourRender(cfg, md, panelWidth(cfg, width))
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			s = wordwrap.String(md, panelWidth(cfg, width))
		}
		return panelRenderedMsg{mode: mode, width: width, content: s}
	}
}

func glamourRender(cfg Config, markdown string, width int) (string, error) {
	if !cfg.GlamourEnabled {
		return wordwrap.String(markdown, width), nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(cfg.GlamourStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}
