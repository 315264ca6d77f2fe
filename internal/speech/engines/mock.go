package engines

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dgnsrekt/letterboard/internal/speech"
)

// Mock returns silence for every utterance. Its clip length follows the
// text length and rate, so playback timing behaves like a real engine.
type Mock struct {
	mu    sync.Mutex
	calls []speech.Utterance
}

// NewMock returns a mock engine.
func NewMock() *Mock { return &Mock{} }

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Voices(context.Context) ([]speech.Voice, error) {
	return []speech.Voice{
		{Name: "Mock Female", URI: "mock/f", Lang: "en-US", Gender: speech.Female},
		{Name: "Mock Male", URI: "mock/m", Lang: "en-US", Gender: speech.Male},
		{Name: "Mock Hindi", URI: "mock/hi", Lang: "hi-IN", Gender: speech.Female},
	}, nil
}

func (m *Mock) Synthesize(ctx context.Context, u speech.Utterance) (*speech.Audio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.calls = append(m.calls, u)
	m.mu.Unlock()

	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	d := time.Duration(float64(150*time.Millisecond) * float64(utf8.RuneCountInString(u.Text)) / rate)
	samples := int(d * speech.SampleRate / time.Second)
	return &speech.Audio{PCM: make([]byte, samples*2), SampleRate: speech.SampleRate}, nil
}

// Calls returns the utterances synthesized so far.
func (m *Mock) Calls() []speech.Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]speech.Utterance(nil), m.calls...)
}

func (m *Mock) Validate() error { return nil }

func (m *Mock) Close() error { return nil }
