// Package glyph holds the static catalogs shown on the letter board along
// with the per-mode presentation text.
package glyph

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrUnknownMode is returned when a mode name cannot be parsed.
var ErrUnknownMode = errors.New("unknown mode")

// Glyph is a displayable symbol paired with the text handed to the speech
// engine.
type Glyph struct {
	Symbol        string `yaml:"symbol"`
	Pronunciation string `yaml:"pronunciation"`
}

// Mode selects which catalog is on the board.
type Mode int

const (
	Uppercase Mode = iota
	Lowercase
	NativeScript
	Numbers
)

// Script is the writing system a mode belongs to. It decides the spoken
// language of the mode.
type Script int

const (
	Latin Script = iota
	Devanagari
)

var modeNames = map[Mode]string{
	Uppercase:    "uppercase",
	Lowercase:    "lowercase",
	NativeScript: "native",
	Numbers:      "numbers",
}

var modeAliases = map[string]Mode{
	"uppercase":    Uppercase,
	"upper":        Uppercase,
	"capital":      Uppercase,
	"capitals":     Uppercase,
	"lowercase":    Lowercase,
	"lower":        Lowercase,
	"small":        Lowercase,
	"native":       NativeScript,
	"nativescript": NativeScript,
	"nepali":       NativeScript,
	"devanagari":   NativeScript,
	"numbers":      Numbers,
	"number":       Numbers,
	"digits":       Numbers,
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Valid reports whether m is one of the four board modes.
func (m Mode) Valid() bool {
	return m >= Uppercase && m <= Numbers
}

// Next returns the mode after m, wrapping around.
func (m Mode) Next() Mode {
	return Mode((int(m) + 1) % len(modeNames))
}

// Prev returns the mode before m, wrapping around.
func (m Mode) Prev() Mode {
	n := len(modeNames)
	return Mode((int(m) - 1 + n) % n)
}

// Script returns the writing system of the mode.
func (m Mode) Script() Script {
	if m == NativeScript {
		return Devanagari
	}
	return Latin
}

// ParseMode parses a mode name. It is case-insensitive and accepts a few
// aliases ("nepali", "capital", "digits", ...).
func ParseMode(s string) (Mode, error) {
	m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return Uppercase, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// Modes returns all modes in display order.
func Modes() []Mode {
	return []Mode{Uppercase, Lowercase, NativeScript, Numbers}
}

var (
	uppercase  = alphabet('A')
	lowercase  = alphabet('a')
	numbers    = count(50)
	devanagari = []Glyph{
		{"क", "ka"}, {"ख", "kha"}, {"ग", "ga"}, {"घ", "gha"}, {"ङ", "nga"},
		{"च", "cha"}, {"छ", "chha"}, {"ज", "ja"}, {"झ", "jha"}, {"ञ", "nya"},
		{"ट", "ta"}, {"ठ", "tha"}, {"ड", "da"}, {"ढ", "dha"}, {"ण", "na"},
		{"त", "ta"}, {"थ", "tha"}, {"द", "da"}, {"ध", "dha"}, {"न", "na"},
		{"प", "pa"}, {"फ", "pha"}, {"ब", "ba"}, {"भ", "bha"}, {"म", "ma"},
		{"य", "ya"}, {"र", "ra"}, {"ल", "la"}, {"व", "wa"},
		{"श", "sha"}, {"ष", "shha"}, {"स", "sa"}, {"ह", "ha"},
		{"क्ष", "ksha"}, {"त्र", "tra"}, {"ज्ञ", "gya"},
	}
)

func alphabet(first rune) []Glyph {
	gs := make([]Glyph, 0, 26)
	for r := first; r < first+26; r++ {
		s := string(r)
		gs = append(gs, Glyph{Symbol: s, Pronunciation: s})
	}
	return gs
}

func count(n int) []Glyph {
	gs := make([]Glyph, 0, n)
	for i := 1; i <= n; i++ {
		s := strconv.Itoa(i)
		gs = append(gs, Glyph{Symbol: s, Pronunciation: s})
	}
	return gs
}

func catalog(m Mode) []Glyph {
	switch m {
	case Lowercase:
		return lowercase
	case NativeScript:
		return devanagari
	case Numbers:
		return numbers
	default:
		return uppercase
	}
}

// Glyphs returns a copy of the catalog for the given mode.
func Glyphs(m Mode) []Glyph {
	return slices.Clone(catalog(m))
}

// Len returns the size of the catalog for the given mode.
func Len(m Mode) int {
	return len(catalog(m))
}

// Normalize trims s and converts it to Unicode NFC so that symbols typed or
// pasted in decomposed form compare equal to the catalog.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Find looks up a symbol in the catalog of the given mode and returns the
// glyph and its index.
func Find(m Mode, symbol string) (Glyph, int, bool) {
	symbol = Normalize(symbol)
	for i, g := range catalog(m) {
		if g.Symbol == symbol {
			return g, i, true
		}
	}
	return Glyph{}, -1, false
}
