package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/letterboard/internal/cache"
)

// DefaultTimeout bounds a single synthesis.
const DefaultTimeout = 15 * time.Second

// State is what the speaker is doing.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSynthesizing
	StateSpeaking
	StateError
)

func (s State) String() string {
	return map[State]string{
		StateIdle:         "idle",
		StateLoading:      "loading voices",
		StateSynthesizing: "synthesizing",
		StateSpeaking:     "speaking",
		StateError:        "error",
	}[s]
}

// AudioCache stores rendered PCM by key.
type AudioCache interface {
	Get(key string) ([]byte, bool)
	Put(key string, pcm []byte) error
}

// Status is a snapshot of the speaker.
type Status struct {
	State  State
	Engine string
	Voices int
	Text   string // text of the current or last utterance
	Err    error  // last failure, cleared by the next success
}

// Speaker speaks one utterance at a time. Starting an utterance cancels the
// one before it, whether it is still being synthesized or already playing.
type Speaker struct {
	engine  Engine
	player  Player
	cache   AudioCache
	timeout time.Duration

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	ready     chan struct{}
	readyOnce sync.Once

	mu      sync.Mutex
	voices  []Voice
	gen     uint64
	cancel  context.CancelFunc
	state   State
	text    string
	lastErr error
	closed  bool
}

// SpeakerOption configures a Speaker.
type SpeakerOption func(*Speaker)

// WithCache keeps rendered audio in c.
func WithCache(c AudioCache) SpeakerOption {
	return func(s *Speaker) { s.cache = c }
}

// WithTimeout bounds each synthesis to d.
func WithTimeout(d time.Duration) SpeakerOption {
	return func(s *Speaker) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSpeaker returns a speaker using engine and player. Call Start to load
// the voice list.
func NewSpeaker(engine Engine, player Player, opts ...SpeakerOption) *Speaker {
	s := &Speaker{
		engine:  engine,
		player:  player,
		timeout: DefaultTimeout,
		ready:   make(chan struct{}),
	}
	s.base, s.stop = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the voice list in the background. VoicesReady is closed when
// loading finishes, even if it fails.
func (s *Speaker) Start(ctx context.Context) {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.markReady()
		if err := s.Refresh(ctx); err != nil {
			log.Warn("Unable to list voices", "engine", s.engine.Name(), "error", err)
		}
	}()
}

// Refresh reloads the voice list from the engine.
func (s *Speaker) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	voices, err := s.engine.Voices(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoading {
		s.state = StateIdle
	}
	if err != nil {
		s.lastErr = err
		return err
	}
	s.voices = voices
	log.Debug("Voices loaded", "engine", s.engine.Name(), "count", len(voices))
	return nil
}

// Engine returns the engine in use.
func (s *Speaker) Engine() Engine { return s.engine }

// Voices returns the voices loaded so far.
func (s *Speaker) Voices() []Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voices
}

// VoicesReady is closed once the first voice load has finished.
func (s *Speaker) VoicesReady() <-chan struct{} { return s.ready }

// Speak cancels the current utterance and starts u.
func (s *Speaker) Speak(u Utterance) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.cancelLocked()
	gen := s.gen

	ctx, cancel := context.WithTimeout(s.base, s.timeout)
	s.cancel = cancel
	s.state = StateSynthesizing
	s.text = u.Text
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(ctx, cancel, gen, u)
}

// Cancel stops the current utterance.
func (s *Speaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	if s.state != StateLoading {
		s.state = StateIdle
	}
}

// Status returns what the speaker is doing.
func (s *Speaker) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSpeaking && !s.player.IsPlaying() {
		s.state = StateIdle
	}
	return Status{
		State:  s.state,
		Engine: s.engine.Name(),
		Voices: len(s.voices),
		Text:   s.text,
		Err:    s.lastErr,
	}
}

// Close cancels everything and releases the engine and player.
func (s *Speaker) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.cancelLocked()
	s.mu.Unlock()

	s.stop()
	s.wg.Wait()
	s.markReady()

	return errors.Join(s.player.Close(), s.engine.Close())
}

func (s *Speaker) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// cancelLocked must be called with the lock held.
func (s *Speaker) cancelLocked() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.player.IsPlaying() {
		if err := s.player.Stop(); err != nil {
			log.Debug("Unable to stop playback", "error", err)
		}
	}
}

func (s *Speaker) run(ctx context.Context, cancel context.CancelFunc, gen uint64, u Utterance) {
	defer s.wg.Done()
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			s.fail(gen, NewSpeechError(ErrorCodeEngineFailure, "synthesis panicked", fmt.Errorf("%v", r)))
		}
	}()

	if err := Validate(u); err != nil {
		s.fail(gen, err)
		return
	}

	audio, err := s.render(ctx, u)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			err = NewSpeechError(ErrorCodeEngineTimeout, "synthesis timed out", ErrTimeout).
				WithContext("text", u.Text)
		case IsCanceled(err) || ctx.Err() != nil:
			return
		}
		s.fail(gen, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	if err := s.player.Play(audio.PCM, u.Volume); err != nil {
		s.state = StateError
		s.lastErr = NewSpeechError(ErrorCodeAudioFailure, "playback failed", err)
		log.Error("Playback failed", "text", u.Text, "error", err)
		return
	}
	s.state = StateSpeaking
	s.lastErr = nil
	log.Debug("Speaking", "id", u.ID, "text", u.Text, "duration", audio.Duration())
}

func (s *Speaker) render(ctx context.Context, u Utterance) (*Audio, error) {
	var key string
	if s.cache != nil {
		voice := ""
		if u.Voice != nil {
			voice = u.Voice.URI
		}
		key = cache.Key(s.engine.Name(), voice, u.Lang, u.Text, u.Rate, u.Pitch)
		if pcm, ok := s.cache.Get(key); ok {
			return &Audio{PCM: pcm, SampleRate: SampleRate}, nil
		}
	}

	audio, err := s.engine.Synthesize(ctx, u)
	if err != nil {
		return nil, err
	}
	if audio == nil || len(audio.PCM) == 0 {
		return nil, NewSpeechError(ErrorCodeEngineFailure, "engine returned no audio", ErrSynthesisFailed)
	}
	if audio.SampleRate != SampleRate {
		return nil, NewSpeechError(ErrorCodeAudioFormat,
			fmt.Sprintf("engine returned %d Hz audio, want %d Hz", audio.SampleRate, SampleRate), ErrSynthesisFailed)
	}

	if s.cache != nil {
		if err := s.cache.Put(key, audio.PCM); err != nil {
			log.Debug("Unable to cache audio", "error", err)
		}
	}
	return audio, nil
}

func (s *Speaker) fail(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.state = StateError
	s.lastErr = err
	log.Error("Speech failed", "error", err)
}
