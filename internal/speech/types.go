// Package speech is the synthesizer capability behind the letter board: it
// enumerates voices, turns utterances into audio through an Engine and plays
// them one at a time.
package speech

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SampleRate is the rate every engine delivers PCM at. The audio device is
// opened once with this rate.
const SampleRate = 22050

// Gender is the gender a voice presents as, or the gender requested by the
// user.
type Gender int

const (
	GenderUnknown Gender = iota
	Female
	Male
)

func (g Gender) String() string {
	switch g {
	case Female:
		return "female"
	case Male:
		return "male"
	default:
		return "unknown"
	}
}

// Opposite returns the other gender. Unknown stays unknown.
func (g Gender) Opposite() Gender {
	switch g {
	case Female:
		return Male
	case Male:
		return Female
	default:
		return GenderUnknown
	}
}

// ParseGender parses "female"/"f" and "male"/"m".
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "female", "f", "woman":
		return Female, nil
	case "male", "m", "man":
		return Male, nil
	default:
		return GenderUnknown, fmt.Errorf("%w: gender %q", ErrInvalidInput, s)
	}
}

// Voice is a named speech profile offered by an engine.
type Voice struct {
	// Name is the human readable name.
	Name string `json:"name" yaml:"name"`

	// URI identifies the voice within its engine.
	URI string `json:"uri" yaml:"uri"`

	// Lang is a BCP 47 language tag, e.g. "en-US".
	Lang string `json:"lang" yaml:"lang"`

	// Gender is GenderUnknown when the engine does not say.
	Gender Gender `json:"gender" yaml:"gender"`
}

func (v Voice) String() string {
	return fmt.Sprintf("%s (%s)", v.Name, v.Lang)
}

// Utterance is a single speech request.
type Utterance struct {
	ID     string
	Text   string
	Rate   float64 // 1.0 is the engine's normal speed
	Pitch  float64 // 1.0 is the voice's normal pitch
	Volume float64 // 0.0 to 1.0
	Lang   string
	Voice  *Voice // nil means the engine default
}

// Audio is synthesized 16-bit little-endian mono PCM.
type Audio struct {
	PCM        []byte
	SampleRate int
}

// Duration returns the playing time of the audio.
func (a Audio) Duration() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}
	samples := len(a.PCM) / 2
	return time.Duration(samples) * time.Second / time.Duration(a.SampleRate)
}

// Engine turns utterances into audio.
type Engine interface {
	// Name returns the engine identifier used in config and cache keys.
	Name() string

	// Voices lists the voices the engine can speak with. The list may be
	// empty.
	Voices(ctx context.Context) ([]Voice, error)

	// Synthesize renders the utterance to PCM at SampleRate. Engines honor
	// Rate, Pitch, Lang and Voice as far as they are able to.
	Synthesize(ctx context.Context, u Utterance) (*Audio, error)

	// Validate checks that the engine's dependencies are present.
	Validate() error

	// Close releases engine resources.
	Close() error
}

// Player plays PCM audio. Starting a new clip stops the previous one.
type Player interface {
	Play(pcm []byte, volume float64) error
	Stop() error
	IsPlaying() bool
	Close() error
}
