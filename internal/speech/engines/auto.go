package engines

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/letterboard/internal/speech"
)

// Engine names accepted by New.
const (
	NameAuto   = "auto"
	NameEspeak = "espeak"
	NamePiper  = "piper"
	NameGTTS   = "gtts"
	NameOpenAI = "openai"
	NameGemini = "gemini"
	NameMock   = "mock"
	NameNone   = "none"
)

// Names lists the engine names accepted by New.
func Names() []string {
	return []string{NameAuto, NameEspeak, NamePiper, NameGTTS, NameOpenAI, NameGemini, NameMock, NameNone}
}

// Config holds the settings of every engine.
type Config struct {
	FFmpeg string

	Espeak string

	PiperBinary string
	PiperModels string

	GTTSBinary            string
	GTTSRequestsPerMinute int

	OpenAIKey   string
	OpenAIModel string

	GeminiKey   string
	GeminiModel string

	// Fallback names a local engine that takes over from an online one
	// after MaxFailures consecutive failures. Empty or "none" disables it.
	Fallback    string
	MaxFailures int
}

// New builds the engine called name. "none" returns a nil engine, meaning
// the board runs without speech.
func New(ctx context.Context, name string, cfg Config) (speech.Engine, error) {
	e, err := newEngine(ctx, name, cfg)
	if err != nil || e == nil {
		return e, err
	}
	switch e.Name() {
	case NameGTTS, NameOpenAI, NameGemini:
		return withFallback(ctx, e, cfg), nil
	}
	return e, nil
}

func withFallback(ctx context.Context, primary speech.Engine, cfg Config) speech.Engine {
	name := strings.ToLower(strings.TrimSpace(cfg.Fallback))
	if name == "" || name == NameNone || name == primary.Name() {
		return primary
	}
	secondary, err := newEngine(ctx, name, cfg)
	if err != nil || secondary == nil {
		log.Warn("Ignoring fallback engine", "engine", cfg.Fallback, "error", err)
		return primary
	}
	return NewFallback(primary, secondary, cfg.MaxFailures)
}

func newEngine(ctx context.Context, name string, cfg Config) (speech.Engine, error) {
	ffm := NewTranscoder(cfg.FFmpeg)

	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameAuto, "":
		return Auto(ctx, cfg)
	case NameEspeak:
		return NewEspeak(cfg.Espeak, ffm), nil
	case NamePiper:
		return NewPiper(cfg.PiperBinary, cfg.PiperModels, ffm), nil
	case NameGTTS:
		return NewGTTS(cfg.GTTSBinary, cfg.GTTSRequestsPerMinute, ffm), nil
	case NameOpenAI:
		e, err := NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, 0, ffm)
		if err != nil {
			return nil, err
		}
		return e, nil
	case NameGemini:
		e, err := NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel, 0, ffm)
		if err != nil {
			return nil, err
		}
		return e, nil
	case NameMock:
		return NewMock(), nil
	case NameNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", speech.ErrInvalidEngine, name, strings.Join(Names(), ", "))
	}
}

// Auto returns the first local engine that is ready to use, trying piper,
// then espeak, then gtts.
func Auto(_ context.Context, cfg Config) (speech.Engine, error) {
	ffm := NewTranscoder(cfg.FFmpeg)
	candidates := []speech.Engine{
		NewPiper(cfg.PiperBinary, cfg.PiperModels, ffm),
		NewEspeak(cfg.Espeak, ffm),
		NewGTTS(cfg.GTTSBinary, cfg.GTTSRequestsPerMinute, ffm),
	}

	var errs []error
	for _, e := range candidates {
		err := e.Validate()
		if err == nil {
			log.Debug("Selected engine", "engine", e.Name())
			return e, nil
		}
		log.Debug("Engine unavailable", "engine", e.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
	}
	return nil, fmt.Errorf("%w: no local engine found (%v)", speech.ErrEngineNotAvailable, errors.Join(errs...))
}
