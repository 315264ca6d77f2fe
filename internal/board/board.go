// Package board implements the letter board controller. It owns the session
// state (mode, voice gender, hover highlights) and turns hovers into speech
// requests. A Board is not safe for concurrent use: it is meant to be driven
// from a single event loop, with its deferred work delivered back to that
// loop as values.
package board

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/letterboard/internal/glyph"
	"github.com/dgnsrekt/letterboard/internal/speech"
	"github.com/google/uuid"
)

// HoverDuration is how long a hovered glyph stays highlighted.
const HoverDuration = 600 * time.Millisecond

// Synthesizer is the speech capability the board drives.
type Synthesizer interface {
	// Cancel stops any audible or pending utterance.
	Cancel()

	// Voices returns the voices known so far. It may be empty.
	Voices() []speech.Voice

	// VoicesReady is closed once the voice list has been populated.
	VoicesReady() <-chan struct{}

	// Speak starts an utterance without waiting for it to finish.
	Speak(u speech.Utterance)
}

// Settle identifies one hover. Handing it back to Settle after
// HoverDuration clears the highlight it created.
type Settle struct {
	Symbol string
	Gen    uint64
}

// Effect is the deferred work created by a hover.
type Effect struct {
	// Settle must be delivered to Board.Settle after HoverDuration.
	Settle Settle

	// Await is the ID of an utterance waiting for the voice list. When it
	// is not empty, Board.VoicesReady must be called with it once the
	// synthesizer's VoicesReady channel closes.
	Await string
}

type pendingRequest struct {
	utterance speech.Utterance
	mode      glyph.Mode
	gender    speech.Gender
}

// Board is the letter board controller.
type Board struct {
	synth  Synthesizer
	policy Policy
	newID  func() string

	mode   glyph.Mode
	gender speech.Gender
	glyphs []glyph.Glyph

	gen         uint64
	active      map[string]uint64
	celebrating Settle
	pending     *pendingRequest
}

// Option configures a Board.
type Option func(*Board)

// WithPolicy sets the speech parameters.
func WithPolicy(p Policy) Option {
	return func(b *Board) { b.policy = p }
}

// WithMode sets the starting mode.
func WithMode(m glyph.Mode) Option {
	return func(b *Board) {
		if m.Valid() {
			b.mode = m
		}
	}
}

// WithGender sets the starting voice gender.
func WithGender(g speech.Gender) Option {
	return func(b *Board) {
		if g == speech.Female || g == speech.Male {
			b.gender = g
		}
	}
}

// WithIDGenerator replaces the utterance ID source.
func WithIDGenerator(fn func() string) Option {
	return func(b *Board) { b.newID = fn }
}

// New returns a board showing capital letters with a female voice. A nil
// synthesizer gives a visual-only board.
func New(synth Synthesizer, opts ...Option) *Board {
	b := &Board{
		synth:  synth,
		policy: DefaultPolicy(),
		newID:  uuid.NewString,
		mode:   glyph.Uppercase,
		gender: speech.Female,
		active: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.glyphs = glyph.Glyphs(b.mode)
	return b
}

// Mode returns the current mode.
func (b *Board) Mode() glyph.Mode { return b.mode }

// Gender returns the current voice gender.
func (b *Board) Gender() speech.Gender { return b.gender }

// Policy returns the speech parameters in use.
func (b *Board) Policy() Policy { return b.policy }

// Glyphs returns the glyphs on the board. The slice must not be modified.
func (b *Board) Glyphs() []glyph.Glyph { return b.glyphs }

// Title returns the heading for the current mode.
func (b *Board) Title() string { return glyph.Title(b.mode) }

// Instructions returns the How to Play text for the current mode.
func (b *Board) Instructions() string { return glyph.Instructions(b.mode) }

// Speaks reports whether the board has a speech capability.
func (b *Board) Speaks() bool { return b.synth != nil }

// SetMode switches the catalog on the board. Speech in flight for the old
// mode is canceled. It reports whether the mode changed.
func (b *Board) SetMode(m glyph.Mode) bool {
	if !m.Valid() || m == b.mode {
		return false
	}
	b.cancelSpeech()
	b.mode = m
	b.glyphs = glyph.Glyphs(m)
	log.Debug("Mode changed", "mode", m, "glyphs", len(b.glyphs))
	return true
}

// SetVoiceGender changes the gender used by later requests. It reports
// whether the gender changed.
func (b *Board) SetVoiceGender(g speech.Gender) bool {
	if (g != speech.Female && g != speech.Male) || g == b.gender {
		return false
	}
	b.gender = g
	log.Debug("Voice gender changed", "gender", g)
	return true
}

// Hover highlights g and speaks its pronunciation.
func (b *Board) Hover(g glyph.Glyph) Effect {
	b.gen++
	s := Settle{Symbol: g.Symbol, Gen: b.gen}
	b.active[g.Symbol] = b.gen
	b.celebrating = s

	return Effect{Settle: s, Await: b.speak(g.Pronunciation)}
}

// Settle clears the highlight created by the hover s. Highlights refreshed
// by a later hover are left alone. It reports whether anything changed.
func (b *Board) Settle(s Settle) bool {
	changed := false
	if gen, ok := b.active[s.Symbol]; ok && gen == s.Gen {
		delete(b.active, s.Symbol)
		changed = true
	}
	if b.celebrating == s {
		b.celebrating = Settle{}
		changed = true
	}
	return changed
}

// VoicesReady completes the deferred request id now that the voice list is
// populated. Requests that were superseded or canceled are ignored. It
// reports whether an utterance was submitted.
func (b *Board) VoicesReady(id string) bool {
	if b.synth == nil || b.pending == nil || b.pending.utterance.ID != id {
		return false
	}
	p := b.pending
	b.pending = nil
	b.submit(p.utterance, b.synth.Voices(), p.mode, p.gender)
	return true
}

// IsActive reports whether the glyph with symbol is highlighted.
func (b *Board) IsActive(symbol string) bool {
	_, ok := b.active[symbol]
	return ok
}

// Active returns the highlighted symbols in sorted order.
func (b *Board) Active() []string {
	out := make([]string, 0, len(b.active))
	for s := range b.active {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// ActiveCount returns the number of highlighted glyphs.
func (b *Board) ActiveCount() int { return len(b.active) }

// Celebrating returns the most recently hovered glyph if it is still
// highlighted.
func (b *Board) Celebrating() (string, bool) {
	if b.celebrating.Symbol == "" {
		return "", false
	}
	return b.celebrating.Symbol, true
}

// Awaiting returns the ID of the request waiting for the voice list.
func (b *Board) Awaiting() (string, bool) {
	if b.pending == nil {
		return "", false
	}
	return b.pending.utterance.ID, true
}

func (b *Board) speak(text string) string {
	if b.synth == nil {
		return ""
	}
	b.cancelSpeech()

	u := b.policy.Utterance(b.newID(), text, b.mode, b.gender)
	voices := b.synth.Voices()
	if len(voices) == 0 {
		b.pending = &pendingRequest{utterance: u, mode: b.mode, gender: b.gender}
		log.Debug("Waiting for voices", "id", u.ID, "text", text)
		return u.ID
	}
	b.submit(u, voices, b.mode, b.gender)
	return ""
}

func (b *Board) submit(u speech.Utterance, voices []speech.Voice, m glyph.Mode, g speech.Gender) {
	if v, ok := SelectVoice(voices, m, g, b.policy); ok {
		u.Voice = &v
		log.Debug("Selected voice", "name", v.Name, "lang", v.Lang, "gender", g, "mode", m)
	} else {
		log.Debug("No matching voice, using engine default", "voices", len(voices), "mode", m)
	}
	b.synth.Speak(u)
}

func (b *Board) cancelSpeech() {
	b.pending = nil
	if b.synth != nil {
		b.synth.Cancel()
	}
}
