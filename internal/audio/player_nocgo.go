//go:build !cgo

package audio

// Player is unavailable in builds without cgo.
type Player struct{}

// NewPlayer always fails in builds without cgo.
func NewPlayer(Config) (*Player, error) {
	return nil, ErrNoDevice
}

func (*Player) Play([]byte, float64) error { return ErrNoDevice }
func (*Player) Stop() error                { return nil }
func (*Player) IsPlaying() bool            { return false }
func (*Player) Close() error               { return nil }
