package speech

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWatchDirReloadsVoices(t *testing.T) {
	dir := t.TempDir()
	e := &stubEngine{}
	s, _ := newTestSpeaker(e)
	defer s.Close() //nolint:errcheck

	s.Start(context.Background())
	<-s.VoicesReady()
	if err := s.WatchDir(dir, ".onnx"); err != nil {
		t.Fatalf("WatchDir failed: %v", err)
	}

	e.setVoices([]Voice{{Name: "en_US-amy-medium", Lang: "en-US"}})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "en_US-amy-medium.onnx"), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "voices to reload", func() bool { return len(s.Voices()) == 1 })
}

func TestWatchDirMissingDirectory(t *testing.T) {
	s, _ := newTestSpeaker(&stubEngine{})
	defer s.Close() //nolint:errcheck

	if err := s.WatchDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}

func TestMatchesExt(t *testing.T) {
	tests := []struct {
		name string
		exts []string
		want bool
	}{
		{"voice.onnx", []string{".onnx", ".json"}, true},
		{"VOICE.ONNX", []string{".onnx"}, true},
		{"voice.onnx.json", []string{".onnx", ".json"}, true},
		{"readme.md", []string{".onnx"}, false},
		{"anything", nil, true},
	}
	for _, tt := range tests {
		if got := matchesExt(tt.name, tt.exts); got != tt.want {
			t.Errorf("matchesExt(%q, %v): expected %v, got %v", tt.name, tt.exts, tt.want, got)
		}
	}
}
