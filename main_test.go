package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgnsrekt/letterboard/internal/cache"
	"github.com/dgnsrekt/letterboard/internal/export"
	"github.com/dgnsrekt/letterboard/internal/speech"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigParses(t *testing.T) {
	var cfg map[string]any
	if err := yaml.Unmarshal([]byte(defaultConfig), &cfg); err != nil {
		t.Fatalf("Expected default config to parse: %v", err)
	}
	for _, k := range []string{"mode", "gender", "engine", "speech", "cache", "piper"} {
		if _, ok := cfg[k]; !ok {
			t.Errorf("Expected key %q in default config", k)
		}
	}
}

func TestBoardPolicyFromConfig(t *testing.T) {
	viper.Set("speech.rate", 0.9)
	viper.Set("speech.native_lang", "ne-NP")
	t.Cleanup(func() {
		viper.Set("speech.rate", 0.7)
		viper.Set("speech.native_lang", "hi-IN")
	})

	p := boardPolicy()
	if p.Rate != 0.9 {
		t.Errorf("Expected rate 0.9, got %f", p.Rate)
	}
	if p.NativeLang != "ne-NP" {
		t.Errorf("Expected ne-NP, got %s", p.NativeLang)
	}
	if p.Volume != 0.8 {
		t.Errorf("Expected default volume 0.8, got %f", p.Volume)
	}
}

func TestExportPath(t *testing.T) {
	dir := t.TempDir()
	if got := exportPath(dir); got != filepath.Join(dir, export.FileName) {
		t.Errorf("Expected bundle inside the directory, got %s", got)
	}

	file := filepath.Join(dir, "letters.zip")
	if got := exportPath(file); got != file {
		t.Errorf("Expected %s, got %s", file, got)
	}
}

func TestFilterVoices(t *testing.T) {
	voices := []speech.Voice{
		{Name: "Hindi Female", URI: "hi+f3", Lang: "hi"},
		{Name: "English (America) Male", URI: "en-us+m3", Lang: "en-us"},
		{Name: "Nepali Male", URI: "ne+m3", Lang: "ne"},
	}

	got := filterVoices(voices, "nep")
	if len(got) != 1 || got[0].URI != "ne+m3" {
		t.Errorf("Expected Nepali only, got %v", got)
	}
	if got := filterVoices(voices, "zzz"); len(got) != 0 {
		t.Errorf("Expected no matches, got %v", got)
	}
}

func TestWriteVoicesAndPicks(t *testing.T) {
	voices := []speech.Voice{
		{Name: "alloy", URI: "openai/alloy", Lang: "en", Gender: speech.Female},
		{Name: "onyx", URI: "openai/onyx", Lang: "en", Gender: speech.Male},
	}

	var b bytes.Buffer
	writeVoices(&b, voices)
	out := b.String()
	if !strings.Contains(out, "openai/onyx") || !strings.Contains(out, "male") {
		t.Errorf("Unexpected voice table:\n%s", out)
	}

	b.Reset()
	writePicks(&b, voices, boardPolicy())
	out = b.String()
	if !strings.Contains(out, "onyx") {
		t.Errorf("Expected onyx to be picked for a male voice:\n%s", out)
	}
	if !strings.Contains(out, "engine default") {
		t.Errorf("Expected the native board to fall back to the engine default:\n%s", out)
	}
}

func TestWriteCacheStats(t *testing.T) {
	var b bytes.Buffer
	writeCacheStats(&b, "", cache.ManagerStats{
		Disk:    cache.Stats{Items: 3, Size: 1000, Capacity: 128 << 20},
		DiskRaw: 4000,
	})
	out := b.String()
	for _, want := range []string{"memory only", "clips      3", "1.0 kB", "4.0x smaller"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in:\n%s", want, out)
		}
	}
}

func TestBundleConfigFallsBackToDefault(t *testing.T) {
	if viper.ConfigFileUsed() != "" {
		if _, err := os.Stat(viper.ConfigFileUsed()); err == nil {
			t.Skip("a config file is in use")
		}
	}
	if got := string(bundleConfig()); got != defaultConfig {
		t.Error("Expected the default config")
	}
}
