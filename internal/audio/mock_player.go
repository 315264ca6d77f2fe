package audio

import (
	"bytes"
	"sync"
	"time"
)

// MockPlayer simulates playback. A clip counts as playing for as long as it
// would take to play at the configured sample rate, or until Stop.
type MockPlayer struct {
	sampleRate int

	mu      sync.Mutex
	clips   [][]byte
	volumes []float64
	started time.Time
	length  time.Duration
	stops   int
	closed  bool

	now func() time.Time
}

// NewMockPlayer returns a mock for clips at sampleRate.
func NewMockPlayer(sampleRate int) *MockPlayer {
	return &MockPlayer{sampleRate: sampleRate, now: time.Now}
}

// Play records the clip.
func (m *MockPlayer) Play(pcm []byte, volume float64) error {
	if err := checkClip(pcm, volume); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.clips = append(m.clips, bytes.Clone(pcm))
	m.volumes = append(m.volumes, volume)
	m.started = m.now()
	m.length = clipDuration(pcm, m.sampleRate)
	return nil
}

// Stop ends the current clip.
func (m *MockPlayer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stops++
	m.length = 0
	return nil
}

// IsPlaying reports whether the last clip would still be audible.
func (m *MockPlayer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.length > 0 && m.now().Sub(m.started) < m.length
}

// Close closes the player.
func (m *MockPlayer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.length = 0
	return nil
}

// Plays returns the number of clips played.
func (m *MockPlayer) Plays() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clips)
}

// Stops returns the number of Stop calls.
func (m *MockPlayer) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// LastClip returns a copy of the most recent clip and its volume.
func (m *MockPlayer) LastClip() ([]byte, float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.clips) == 0 {
		return nil, 0, false
	}
	i := len(m.clips) - 1
	return bytes.Clone(m.clips[i]), m.volumes[i], true
}
