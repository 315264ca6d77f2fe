package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	for _, level := range []int{0, 3} {
		dir := t.TempDir()
		dc, err := NewDiskCache(dir, 1<<20, level)
		if err != nil {
			t.Fatalf("NewDiskCache failed: %v", err)
		}

		clip := bytes.Repeat([]byte{0x01, 0x02}, 4096)
		if err := dc.Put("clip", clip); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		got, ok := dc.Get("clip")
		if !ok {
			t.Fatalf("Level %d: expected hit", level)
		}
		if !bytes.Equal(got, clip) {
			t.Errorf("Level %d: clip changed on round trip", level)
		}

		if level > 0 && dc.Stats().Size >= int64(len(clip)) {
			t.Errorf("Expected compressed size below %d, got %d", len(clip), dc.Stats().Size)
		}
		if raw := dc.RawSize(); raw != int64(len(clip)) {
			t.Errorf("Expected raw size %d, got %d", len(clip), raw)
		}
		_ = dc.Close()
	}
}

func TestDiskCachePersistsIndex(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	_ = dc.Put("k", []byte("persisted"))
	if err := dc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close() //nolint:errcheck

	got, ok := reopened.Get("k")
	if !ok || string(got) != "persisted" {
		t.Errorf("Expected persisted value, got %q (%v)", got, ok)
	}
}

func TestDiskCacheDropsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	dc, _ := NewDiskCache(dir, 1<<20, 0)
	defer dc.Close() //nolint:errcheck

	_ = dc.Put("gone", []byte("data"))
	if err := os.Remove(filepath.Join(dir, "gone.pcm")); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, ok := dc.Get("gone"); ok {
		t.Error("Expected miss after file removal")
	}
	if items := dc.Stats().Items; items != 0 {
		t.Errorf("Expected entry to be dropped, got %d items", items)
	}
}

func TestDiskCacheClear(t *testing.T) {
	dir := t.TempDir()
	dc, _ := NewDiskCache(dir, 1<<20, 0)
	defer dc.Close() //nolint:errcheck

	_ = dc.Put("a", []byte("a"))
	_ = dc.Put("b", []byte("b"))
	if err := dc.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if stats := dc.Stats(); stats.Items != 0 || stats.Size != 0 {
		t.Errorf("Expected empty cache, got %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.pcm")); !os.IsNotExist(err) {
		t.Error("Expected clip file to be removed")
	}
}

func TestDiskCacheEvicts(t *testing.T) {
	dc, _ := NewDiskCache(t.TempDir(), 8, 0)
	defer dc.Close() //nolint:errcheck

	_ = dc.Put("a", []byte("aaaa"))
	_ = dc.Put("b", []byte("bbbb"))
	_ = dc.Put("c", []byte("cccc"))

	if _, ok := dc.Get("a"); ok {
		t.Error("Expected oldest clip to be evicted")
	}
	if dc.Stats().Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", dc.Stats().Evictions)
	}
}
