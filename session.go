package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/letterboard/internal/audio"
	"github.com/dgnsrekt/letterboard/internal/cache"
	"github.com/dgnsrekt/letterboard/internal/speech"
	"github.com/dgnsrekt/letterboard/internal/speech/engines"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// session is the speech stack behind the board: an engine, the audio
// device and the rendered audio cache.
type session struct {
	speaker *speech.Speaker
	cache   *cache.Manager
}

func engineConfig() engines.Config {
	return engines.Config{
		FFmpeg:                viper.GetString("ffmpeg.binary"),
		Espeak:                viper.GetString("espeak.binary"),
		PiperBinary:           viper.GetString("piper.binary"),
		PiperModels:           expandPath(viper.GetString("piper.models")),
		GTTSBinary:            viper.GetString("gtts.binary"),
		GTTSRequestsPerMinute: viper.GetInt("gtts.requests_per_minute"),
		OpenAIKey:             os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:           viper.GetString("openai.model"),
		GeminiKey:             os.Getenv("GEMINI_API_KEY"),
		GeminiModel:           viper.GetString("gemini.model"),
		Fallback:              viper.GetString("fallback.engine"),
		MaxFailures:           viper.GetInt("fallback.max_failures"),
	}
}

func cacheConfig() (cache.Config, error) {
	cfg := cache.DefaultConfig()
	if viper.IsSet("cache.memory_mb") {
		cfg.MemoryCapacity = viper.GetInt64("cache.memory_mb") << 20
	}
	if viper.IsSet("cache.disk_mb") {
		cfg.DiskCapacity = viper.GetInt64("cache.disk_mb") << 20
	}

	dir := expandPath(viper.GetString("cache.dir"))
	if dir == "" {
		d, err := gap.NewScope(gap.User, "letterboard").CacheDir()
		if err != nil {
			return cfg, fmt.Errorf("unable to find cache directory: %w", err)
		}
		dir = filepath.Join(d, "audio")
	}
	cfg.Dir = dir
	return cfg, nil
}

func defaultPiperModels() string {
	dir, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, ".local", "share", "piper-voices")
}

// newEngine builds and validates the configured engine. A nil engine means
// speech is turned off.
func newEngine(ctx context.Context, name string) (speech.Engine, error) {
	e, err := engines.New(ctx, name, engineConfig())
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}
	if err := e.Validate(); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("%s is not ready (try 'letterboard doctor %s'): %w", e.Name(), e.Name(), err)
	}
	return e, nil
}

// newSession starts the speech stack. It returns nil without an error when
// speech is turned off.
func newSession(ctx context.Context, name string) (*session, error) {
	e, err := newEngine(ctx, name)
	if err != nil || e == nil {
		return nil, err
	}

	out, err := audio.Open(audio.DefaultConfig())
	if err != nil {
		// Open already fell back to a silent player.
		fmt.Fprintln(os.Stderr, "Audio device unavailable, letters will not be heard:", err)
	}

	var opts []speech.SpeakerOption
	s := &session{}
	if cfg, err := cacheConfig(); err != nil {
		log.Warn("Audio cache disabled", "error", err)
	} else if cm, err := cache.NewManager(cfg); err != nil {
		log.Warn("Audio cache disabled", "error", err)
	} else {
		s.cache = cm
		opts = append(opts, speech.WithCache(cm))
	}

	s.speaker = speech.NewSpeaker(e, out, opts...)
	s.speaker.Start(ctx)

	local := e
	if f, ok := e.(*engines.Fallback); ok {
		_, local = f.Engines()
	}
	if p, ok := local.(*engines.Piper); ok && p.ModelDir() != "" {
		if err := s.speaker.WatchDir(p.ModelDir(), ".onnx", ".json"); err != nil {
			log.Warn("Not watching piper models", "dir", p.ModelDir(), "error", err)
		}
	}
	return s, nil
}

// Close stops speech and flushes the cache.
func (s *session) Close() error {
	var errs []error
	if s.speaker != nil {
		errs = append(errs, s.speaker.Close())
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	return errors.Join(errs...)
}
