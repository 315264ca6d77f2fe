package board

import (
	"strings"
	"unicode"

	"github.com/dgnsrekt/letterboard/internal/glyph"
	"github.com/dgnsrekt/letterboard/internal/speech"
	"golang.org/x/text/language"
)

// SelectVoice picks a voice for a request in mode m with gender hint g.
//
// For the native script it returns the first voice whose language matches
// one of the native prefixes. For the Latin modes it returns the first
// English voice that looks like the requested gender, falling back to the
// first English voice of any gender. It reports false when nothing fits, in
// which case the engine default voice is used.
func SelectVoice(voices []speech.Voice, m glyph.Mode, g speech.Gender, p Policy) (speech.Voice, bool) {
	if m.Script() == glyph.Devanagari {
		for _, v := range voices {
			if langHasPrefix(v.Lang, p.NativePrefixes) {
				return v, true
			}
		}
		return speech.Voice{}, false
	}

	keywords := p.Keywords(g)
	for _, v := range voices {
		if langHasPrefix(v.Lang, p.LatinPrefixes) && looksLike(v, g, keywords) {
			return v, true
		}
	}
	for _, v := range voices {
		if langHasPrefix(v.Lang, p.LatinPrefixes) {
			return v, true
		}
	}
	return speech.Voice{}, false
}

// looksLike reports whether the voice presents as gender g, either through
// engine metadata or a keyword in its name or identifier. Keywords match
// whole words so that "male" does not match "female"; camel case counts as
// a word break, so "MicrosoftZira" contains "zira".
func looksLike(v speech.Voice, g speech.Gender, keywords []string) bool {
	if v.Gender != speech.GenderUnknown {
		return v.Gender == g
	}
	found := make(map[string]bool)
	for _, w := range words(v.Name + " " + v.URI) {
		found[w] = true
	}
	for _, k := range keywords {
		if found[k] {
			return true
		}
	}
	return false
}

// words splits s into lowercase runs of letters.
func words(s string) []string {
	var (
		out  []string
		cur  []rune
		prev rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return out
}

// langHasPrefix reports whether tag belongs to one of the base languages in
// prefixes. Tags that do not parse are compared as plain strings.
func langHasPrefix(tag string, prefixes []string) bool {
	if tag == "" {
		return false
	}
	var base string
	if t, err := language.Parse(tag); err == nil {
		b, _ := t.Base()
		base = b.String()
	}
	lower := strings.ToLower(tag)
	for _, p := range prefixes {
		p = strings.ToLower(p)
		if base == p || strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
