package export

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"gopkg.in/yaml.v3"
)

func TestWriteDefaultBundle(t *testing.T) {
	b, err := DefaultBundle([]byte("mode: uppercase\n"))
	if err != nil {
		t.Fatalf("DefaultBundle failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), FileName)
	if err := Write(context.Background(), path, b); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer r.Close() //nolint:errcheck

	contents := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Open %s failed: %v", f.Name, err)
		}
		data, _ := io.ReadAll(rc)
		_ = rc.Close()
		contents[f.Name] = string(data)
	}

	for _, name := range []string{"README.md", "index.html", "catalog.yaml", "letterboard.yml"} {
		if _, ok := contents[name]; !ok {
			t.Errorf("Expected %s in archive", name)
		}
	}
	if contents["letterboard.yml"] != "mode: uppercase\n" {
		t.Errorf("Expected config to be stored as given, got %q", contents["letterboard.yml"])
	}
	if !strings.Contains(contents["index.html"], "<table>") {
		t.Error("Expected README tables to render as HTML")
	}
}

func TestCatalog(t *testing.T) {
	data, err := Catalog()
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}

	var c catalogFile
	if err := yaml.Unmarshal(data, &c); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(c.Modes) != 4 {
		t.Fatalf("Expected 4 modes, got %d", len(c.Modes))
	}
	sizes := map[string]int{"uppercase": 26, "lowercase": 26, "native": 36, "numbers": 50}
	for _, m := range c.Modes {
		if len(m.Glyphs) != sizes[m.Name] {
			t.Errorf("Mode %s: expected %d glyphs, got %d", m.Name, sizes[m.Name], len(m.Glyphs))
		}
	}
	if c.Modes[2].Lang != "hi-IN" {
		t.Errorf("Expected native lang hi-IN, got %s", c.Modes[2].Lang)
	}
}

func TestWriteFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing", FileName)

	err := Write(context.Background(), path, Bundle{Files: []File{{Name: "a", Data: []byte("a")}}})
	if !errors.Is(err, ErrExport) {
		t.Errorf("Expected ErrExport, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected no archive")
	}
}

func TestWriteCanceledRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Write(ctx, filepath.Join(dir, FileName), Bundle{Files: []File{{Name: "a", Data: []byte("a")}}})
	if !errors.Is(err, ErrExport) || !errors.Is(err, context.Canceled) {
		t.Errorf("Expected wrapped cancellation, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected empty directory, found %d entries", len(entries))
	}
}

func TestWriteRejectsBadBundles(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	tests := []Bundle{
		{},
		{Files: []File{{Name: "a"}, {Name: "a"}}},
		{Files: []File{{Name: ""}}},
	}
	for i, b := range tests {
		if err := Write(context.Background(), path, b); !errors.Is(err, ErrExport) {
			t.Errorf("Case %d: expected ErrExport, got %v", i, err)
		}
	}
}

func TestREADME(t *testing.T) {
	readme := README()
	for _, want := range []string{"# 🎯 Learn Your Letters! 🎯", "Capital Letters", "| 50 | 50 | 50 |", "क्ष"} {
		if !strings.Contains(readme, want) {
			t.Errorf("Expected README to contain %q", want)
		}
	}
}
