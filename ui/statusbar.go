package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/letterboard/internal/speech"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

func (m model) statusBarView(b *strings.Builder) {
	showStatusMessage := m.statusMessage != ""
	note, failed := m.speechNote()

	logo := logoView()

	voice := fmt.Sprintf(" %s · %s ", m.board.Mode(), m.board.Gender())
	if showStatusMessage {
		voice = statusBarMessageStyle(voice)
	} else {
		voice = statusBarVoiceStyle(voice)
	}

	var helpNote string
	if showStatusMessage {
		helpNote = statusBarMessageHelpStyle(" ? Help ")
	} else {
		helpNote = statusBarHelpStyle(" ? Help ")
	}

	noteStyle := statusBarNoteStyle
	switch {
	case showStatusMessage:
		note = m.statusMessage
		noteStyle = statusBarMessageStyle
	case failed:
		noteStyle = statusBarErrorStyle
	}

	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(voice)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	note = noteStyle(note)

	// Empty space
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(voice)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := strings.Repeat(" ", padding)
	if showStatusMessage {
		emptySpace = statusBarMessageStyle(emptySpace)
	} else {
		emptySpace = statusBarNoteStyle(emptySpace)
	}

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		voice,
		helpNote,
	)
}

// speechNote describes what the speaker is doing. It reports true when the
// note is an error.
func (m model) speechNote() (string, bool) {
	if m.speaker == nil || !m.board.Speaks() {
		return "Speech off", false
	}

	st := m.speaker.Status()
	prefix := st.Engine
	if st.Voices > 0 {
		prefix += fmt.Sprintf(" · %d voices", st.Voices)
	}

	if _, ok := m.board.Awaiting(); ok {
		return prefix + " · " + m.spinnerView(speech.StateLoading) + " waiting for voices", false
	}

	switch st.State {
	case speech.StateError:
		msg := "speech failed"
		if st.Err != nil {
			msg = st.Err.Error()
		}
		return prefix + " · " + msg, true
	case speech.StateLoading, speech.StateSynthesizing, speech.StateSpeaking:
		note := prefix + " · " + m.spinnerView(st.State) + " " + st.State.String()
		if st.Text != "" && st.State != speech.StateLoading {
			note += " " + fmt.Sprintf("%q", st.Text)
		}
		return note, false
	default:
		return prefix + " · ready", false
	}
}

func (m model) spinnerView(s speech.State) string {
	sp := m.spinner
	if c, ok := speechStateColors[s]; ok {
		sp.Style = lipgloss.NewStyle().Foreground(c).Background(statusBarBg)
	}
	return sp.View()
}
