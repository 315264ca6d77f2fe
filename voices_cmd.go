package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dgnsrekt/letterboard/internal/board"
	"github.com/dgnsrekt/letterboard/internal/glyph"
	"github.com/dgnsrekt/letterboard/internal/speech"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

const voicesTimeout = 20 * time.Second

var voicesCmd = &cobra.Command{
	Use:     "voices [FILTER]",
	Short:   "List the voices of the speech engine",
	Long:    paragraph(fmt.Sprintf("\n%s the voices the engine offers, and which one each board would use. FILTER fuzzy matches names and languages.", keyword("List"))),
	Example: paragraph("letterboard voices\nletterboard voices --engine espeak hindi"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), voicesTimeout)
		defer cancel()

		e, err := newEngine(ctx, engineName)
		if err != nil {
			return err
		}
		if e == nil {
			return errors.New("speech is turned off (engine: none)")
		}
		defer e.Close() //nolint:errcheck

		voices, err := e.Voices(ctx)
		if err != nil {
			return fmt.Errorf("unable to list voices: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, header(e.Name()), faint(fmt.Sprintf("(%d voices)", len(voices))))
		fmt.Fprintln(w)

		shown := voices
		if len(args) == 1 {
			shown = filterVoices(voices, args[0])
		}
		writeVoices(w, shown)

		fmt.Fprintln(w)
		writePicks(w, voices, boardPolicy())
		return nil
	},
}

// voiceSource lets fuzzy match over voice names and languages.
type voiceSource []speech.Voice

func (s voiceSource) String(i int) string { return s[i].Name + " " + s[i].Lang }
func (s voiceSource) Len() int            { return len(s) }

func filterVoices(voices []speech.Voice, pattern string) []speech.Voice {
	matches := fuzzy.FindFrom(pattern, voiceSource(voices))
	out := make([]speech.Voice, 0, len(matches))
	for _, m := range matches {
		out = append(out, voices[m.Index])
	}
	return out
}

func writeVoices(w io.Writer, voices []speech.Voice) {
	if len(voices) == 0 {
		fmt.Fprintln(w, faint("  no voices"))
		return
	}

	nameW, langW := len("NAME"), len("LANG")
	for _, v := range voices {
		nameW = max(nameW, runewidth.StringWidth(v.Name))
		langW = max(langW, runewidth.StringWidth(v.Lang))
	}

	row := func(name, lang, gender, uri string) string {
		return "  " + runewidth.FillRight(name, nameW+2) +
			runewidth.FillRight(lang, langW+2) +
			runewidth.FillRight(gender, 9) + uri
	}
	fmt.Fprintln(w, faint(row("NAME", "LANG", "GENDER", "ID")))
	for _, v := range voices {
		gender := ""
		if v.Gender != speech.GenderUnknown {
			gender = v.Gender.String()
		}
		fmt.Fprintln(w, strings.TrimRight(row(v.Name, v.Lang, gender, v.URI), " "))
	}
}

// writePicks shows the voice each board and gender would be spoken with.
func writePicks(w io.Writer, voices []speech.Voice, p board.Policy) {
	fmt.Fprintln(w, header("Board voices"))
	for _, m := range glyph.Modes() {
		for _, g := range []speech.Gender{speech.Female, speech.Male} {
			pick := faint("engine default")
			if v, ok := board.SelectVoice(voices, m, g, p); ok {
				pick = v.String()
			}
			fmt.Fprintf(w, "  %s %s %s\n",
				runewidth.FillRight(m.String(), 10),
				runewidth.FillRight(g.String(), 7),
				pick,
			)
		}
	}
}
