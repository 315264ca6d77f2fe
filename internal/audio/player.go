//go:build cgo

package audio

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	sharedContext     *oto.Context
	sharedContextErr  error
	sharedContextOnce sync.Once
	sharedContextRate int
)

func otoContext(cfg Config) (*oto.Context, error) {
	sharedContextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   cfg.SampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   cfg.BufferSize,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			sharedContextErr = fmt.Errorf("%w: %v", ErrNoDevice, err)
			return
		}
		<-ready
		sharedContext = ctx
		sharedContextRate = cfg.SampleRate
		log.Debug("Audio context ready", "sample_rate", cfg.SampleRate, "buffer", cfg.BufferSize)
	})
	if sharedContextErr == nil && sharedContextRate != cfg.SampleRate {
		return nil, fmt.Errorf("audio context already open at %d Hz", sharedContextRate)
	}
	return sharedContext, sharedContextErr
}

// Player plays mono 16-bit PCM through the system audio device.
type Player struct {
	ctx *oto.Context

	mu     sync.Mutex
	player *oto.Player
	data   []byte // must outlive the oto player reading it
	closed bool
}

// NewPlayer opens the audio device.
func NewPlayer(cfg Config) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx, err := otoContext(cfg)
	if err != nil {
		return nil, err
	}
	return &Player{ctx: ctx}, nil
}

// Play starts a clip, stopping the previous one.
func (p *Player) Play(pcm []byte, volume float64) error {
	if err := checkClip(pcm, volume); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.stopLocked()

	data := bytes.Clone(pcm)
	player := p.ctx.NewPlayer(bytes.NewReader(data))
	player.SetVolume(volume)
	player.Play()

	p.player = player
	p.data = data
	return nil
}

// Stop silences the current clip.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stopLocked()
}

func (p *Player) stopLocked() error {
	if p.player == nil {
		return nil
	}
	p.player.Pause()
	err := p.player.Close()
	p.player = nil
	p.data = nil
	return err
}

// IsPlaying reports whether a clip is still audible.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.player != nil && p.player.IsPlaying()
}

// Close stops playback. The shared device stays open for the process.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.stopLocked()
	p.closed = true
	return err
}
