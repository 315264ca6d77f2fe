package engines

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/letterboard/internal/speech"
)

// DefaultMaxFailures is how many consecutive failures of the primary engine
// a Fallback tolerates before it switches for good.
const DefaultMaxFailures = 3

// Fallback speaks with a primary engine, usually an online one, and moves
// to a local engine once the primary keeps failing. Superseded utterances
// never count as failures.
type Fallback struct {
	primary     speech.Engine
	secondary   speech.Engine
	maxFailures int

	mu       sync.Mutex
	failures int
	switched bool
}

// NewFallback wraps primary with secondary.
func NewFallback(primary, secondary speech.Engine, maxFailures int) *Fallback {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	return &Fallback{
		primary:     primary,
		secondary:   secondary,
		maxFailures: maxFailures,
	}
}

// Name returns the name of the engine currently speaking. Cache keys use
// it, so clips from the two engines never mix.
func (f *Fallback) Name() string {
	return f.active().Name()
}

// Switched reports whether the secondary engine has taken over.
func (f *Fallback) Switched() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.switched
}

// Engines returns the wrapped engines.
func (f *Fallback) Engines() (primary, secondary speech.Engine) {
	return f.primary, f.secondary
}

func (f *Fallback) active() speech.Engine {
	if f.Switched() {
		return f.secondary
	}
	return f.primary
}

func (f *Fallback) Voices(ctx context.Context) ([]speech.Voice, error) {
	if !f.Switched() {
		voices, err := f.primary.Voices(ctx)
		if err == nil || speech.IsCanceled(err) {
			return voices, err
		}
		f.trip(err)
	}
	return f.secondary.Voices(ctx)
}

func (f *Fallback) Synthesize(ctx context.Context, u speech.Utterance) (*speech.Audio, error) {
	if !f.Switched() {
		audio, err := f.primary.Synthesize(ctx, u)
		switch {
		case err == nil:
			f.mu.Lock()
			f.failures = 0
			f.mu.Unlock()
			return audio, nil
		case speech.IsCanceled(err) || ctx.Err() != nil:
			return nil, err
		}

		f.mu.Lock()
		f.failures++
		n := f.failures
		f.mu.Unlock()
		if n < f.maxFailures {
			return nil, err
		}
		f.trip(err)
	}

	// Voices picked from the primary's list mean nothing to the secondary.
	if u.Voice != nil && !f.ownsVoice(ctx, u.Voice) {
		u.Voice = nil
	}
	return f.secondary.Synthesize(ctx, u)
}

func (f *Fallback) ownsVoice(ctx context.Context, v *speech.Voice) bool {
	voices, err := f.secondary.Voices(ctx)
	if err != nil {
		return false
	}
	for _, o := range voices {
		if o.URI == v.URI {
			return true
		}
	}
	return false
}

func (f *Fallback) trip(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.switched {
		return
	}
	f.switched = true
	log.Warn("Switching speech engine",
		"from", f.primary.Name(), "to", f.secondary.Name(), "error", err)
}

// Validate succeeds when either engine is usable. An unusable primary
// hands over to the secondary straight away.
func (f *Fallback) Validate() error {
	perr := f.primary.Validate()
	if perr == nil {
		return nil
	}
	if serr := f.secondary.Validate(); serr != nil {
		return errors.Join(perr, serr)
	}
	f.trip(perr)
	return nil
}

func (f *Fallback) Close() error {
	return errors.Join(f.primary.Close(), f.secondary.Close())
}
