package audio

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrNoDevice is returned when the audio device cannot be opened.
	ErrNoDevice = errors.New("audio device unavailable")

	// ErrClosed is returned when playing on a closed player.
	ErrClosed = errors.New("player is closed")

	// ErrEmptyClip is returned for zero-length audio.
	ErrEmptyClip = errors.New("audio data is empty")
)

// Config configures the audio device.
type Config struct {
	SampleRate int
	BufferSize time.Duration
}

// DefaultConfig returns the device settings for 22.05 kHz speech.
func DefaultConfig() Config {
	return Config{
		SampleRate: 22050,
		BufferSize: 80 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.SampleRate {
	case 16000, 22050, 24000, 44100, 48000:
	default:
		return fmt.Errorf("unsupported sample rate %d Hz", c.SampleRate)
	}
	if c.BufferSize < 0 {
		return errors.New("buffer size must not be negative")
	}
	return nil
}

func checkClip(pcm []byte, volume float64) error {
	if len(pcm) == 0 {
		return ErrEmptyClip
	}
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}
	return nil
}

// clipDuration returns the length of a mono 16-bit clip.
func clipDuration(pcm []byte, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(len(pcm)/2) * time.Second / time.Duration(sampleRate)
}

// Headless reports whether audio output should be simulated: on CI, or when
// LETTERBOARD_MOCK_AUDIO is set.
func Headless() bool {
	ciVars := []string{
		"CI",
		"CONTINUOUS_INTEGRATION",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"BUILDKITE",
	}
	for _, v := range ciVars {
		if val := os.Getenv(v); val != "" && val != "false" {
			log.Debug("CI environment detected", "variable", v)
			return true
		}
	}
	return os.Getenv("LETTERBOARD_MOCK_AUDIO") == "true"
}

// Output is what Open returns: the real player or a mock.
type Output interface {
	Play(pcm []byte, volume float64) error
	Stop() error
	IsPlaying() bool
	Close() error
}

// Open returns a device player, or a MockPlayer when running headless. A
// device that fails to open also falls back to the mock so that the board
// keeps working without sound.
func Open(cfg Config) (Output, error) {
	if Headless() {
		return NewMockPlayer(cfg.SampleRate), nil
	}
	p, err := NewPlayer(cfg)
	if err != nil {
		log.Warn("Audio device unavailable, continuing without sound", "error", err)
		return NewMockPlayer(cfg.SampleRate), err
	}
	return p, nil
}
