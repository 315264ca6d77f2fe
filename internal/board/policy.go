package board

import (
	"slices"
	"strings"

	"github.com/dgnsrekt/letterboard/internal/glyph"
	"github.com/dgnsrekt/letterboard/internal/speech"
	"golang.org/x/text/language"
)

// Policy holds the fixed parameters of every speech request.
type Policy struct {
	Rate        float64
	Volume      float64
	FemalePitch float64
	MalePitch   float64

	// LatinLang is requested for the letter and number modes.
	LatinLang string

	// NativeLang is requested for the native script. Hosts rarely ship a
	// voice for the script itself, so it defaults to a related major
	// language.
	NativeLang string

	// Language prefixes that qualify a voice for each script.
	LatinPrefixes  []string
	NativePrefixes []string

	// Words in a voice name or identifier that suggest its gender.
	FemaleKeywords []string
	MaleKeywords   []string
}

// DefaultPolicy returns the stock speech parameters: slow, slightly quiet,
// higher pitched for the female voice and lower for the male one.
func DefaultPolicy() Policy {
	return Policy{
		Rate:           0.7,
		Volume:         0.8,
		FemalePitch:    1.3,
		MalePitch:      0.8,
		LatinLang:      "en-US",
		NativeLang:     "hi-IN",
		LatinPrefixes:  []string{"en"},
		NativePrefixes: []string{"hi", "ne"},
		FemaleKeywords: []string{
			"female", "woman", "samantha", "zira", "susan", "karen",
			"hazel", "moira", "tessa", "veena", "fiona",
		},
		MaleKeywords: []string{
			"male", "man", "david", "mark", "daniel", "alex",
			"tom", "fred", "jorge", "aaron",
		},
	}
}

// WithNativeLang returns a copy of p requesting tag for the native script.
// The tag's base language is tried first when matching voices, followed by
// Nepali.
func (p Policy) WithNativeLang(tag string) Policy {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return p
	}
	p.NativeLang = tag
	prefixes := []string{baseOf(tag)}
	if !slices.Contains(prefixes, "ne") {
		prefixes = append(prefixes, "ne")
	}
	p.NativePrefixes = prefixes
	return p
}

// Pitch returns the pitch used for a voice gender.
func (p Policy) Pitch(g speech.Gender) float64 {
	if g == speech.Male {
		return p.MalePitch
	}
	return p.FemalePitch
}

// Lang returns the language tag requested in a mode.
func (p Policy) Lang(m glyph.Mode) string {
	if m.Script() == glyph.Devanagari {
		return p.NativeLang
	}
	return p.LatinLang
}

// Keywords returns the gender-indicative words for g.
func (p Policy) Keywords(g speech.Gender) []string {
	if g == speech.Male {
		return p.MaleKeywords
	}
	return p.FemaleKeywords
}

// Utterance builds the request for text without a voice.
func (p Policy) Utterance(id, text string, m glyph.Mode, g speech.Gender) speech.Utterance {
	return speech.Utterance{
		ID:     id,
		Text:   text,
		Rate:   p.Rate,
		Pitch:  p.Pitch(g),
		Volume: p.Volume,
		Lang:   p.Lang(m),
	}
}

func baseOf(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return strings.ToLower(tag)
	}
	b, _ := t.Base()
	return b.String()
}
