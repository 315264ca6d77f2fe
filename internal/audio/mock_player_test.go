package audio

import (
	"errors"
	"testing"
	"time"
)

func TestMockPlayer_BasicPlayback(t *testing.T) {
	player := NewMockPlayer(22050)
	defer player.Close()

	if player.IsPlaying() {
		t.Error("Player should not be playing initially")
	}

	clip := make([]byte, 44100) // one second at 22050Hz, 16-bit mono
	if err := player.Play(clip, 0.8); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !player.IsPlaying() {
		t.Error("Player should be playing after Play()")
	}

	if err := player.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if player.IsPlaying() {
		t.Error("Player should not be playing after Stop()")
	}

	_, volume, ok := player.LastClip()
	if !ok || volume != 0.8 {
		t.Errorf("Expected last clip at volume 0.8, got %v (ok=%v)", volume, ok)
	}
}

func TestMockPlayer_ClipEnds(t *testing.T) {
	player := NewMockPlayer(22050)
	now := time.Now()
	player.now = func() time.Time { return now }

	if err := player.Play(make([]byte, 22050), 1); err != nil { // half a second
		t.Fatalf("Play failed: %v", err)
	}

	now = now.Add(400 * time.Millisecond)
	if !player.IsPlaying() {
		t.Error("Expected clip to still be playing")
	}

	now = now.Add(200 * time.Millisecond)
	if player.IsPlaying() {
		t.Error("Expected clip to have finished")
	}
}

func TestMockPlayer_RejectsBadInput(t *testing.T) {
	player := NewMockPlayer(22050)

	if err := player.Play(nil, 1); !errors.Is(err, ErrEmptyClip) {
		t.Errorf("Expected ErrEmptyClip, got %v", err)
	}
	if err := player.Play([]byte{0, 0}, 1.5); err == nil {
		t.Error("Expected volume error")
	}

	player.Close()
	if err := player.Play([]byte{0, 0}, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if player.Plays() != 0 {
		t.Errorf("Expected no recorded plays, got %d", player.Plays())
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}

	cfg := DefaultConfig()
	cfg.SampleRate = 12345
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for unsupported sample rate")
	}
}

func TestHeadless(t *testing.T) {
	for _, v := range []string{"CI", "CONTINUOUS_INTEGRATION", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"} {
		t.Setenv(v, "")
	}
	t.Setenv("LETTERBOARD_MOCK_AUDIO", "")
	if Headless() {
		t.Error("Expected not headless with a clean environment")
	}

	t.Setenv("LETTERBOARD_MOCK_AUDIO", "true")
	if !Headless() {
		t.Error("Expected headless when mock audio is requested")
	}

	t.Setenv("LETTERBOARD_MOCK_AUDIO", "")
	t.Setenv("CI", "true")
	if !Headless() {
		t.Error("Expected headless on CI")
	}
}

func TestOpenHeadlessReturnsMock(t *testing.T) {
	t.Setenv("LETTERBOARD_MOCK_AUDIO", "true")

	out, err := Open(DefaultConfig())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := out.(*MockPlayer); !ok {
		t.Errorf("Expected *MockPlayer, got %T", out)
	}
}
