package engines

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dgnsrekt/letterboard/internal/speech"
	"github.com/muesli/gitcha"
	"golang.org/x/text/language"
)

const piperDefaultRate = 22050

// Piper speaks through the piper neural TTS binary. Each .onnx model found
// under the models directory is one voice.
type Piper struct {
	bin    string
	models string
	ffm    *Transcoder

	mu     sync.Mutex
	voices []speech.Voice
	rates  map[string]int // model path to sample rate
}

// NewPiper returns a piper engine using bin ("piper" when empty) and the
// models under dir.
func NewPiper(bin, dir string, ffm *Transcoder) *Piper {
	if bin == "" {
		bin = "piper"
	}
	return &Piper{bin: bin, models: dir, ffm: ffm, rates: make(map[string]int)}
}

func (p *Piper) Name() string { return "piper" }

// ModelDir returns the directory searched for models.
func (p *Piper) ModelDir() string { return p.models }

// Voices scans the models directory.
func (p *Piper) Voices(ctx context.Context) ([]speech.Voice, error) {
	if p.models == "" {
		return nil, fmt.Errorf("%w: no piper model directory configured", speech.ErrEngineNotAvailable)
	}
	ch, err := gitcha.FindAllFilesExcept(p.models, []string{"*.onnx"}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", speech.ErrEngineNotAvailable, err)
	}

	var voices []speech.Voice
	rates := make(map[string]int)
	for res := range ch {
		if ctx.Err() != nil {
			continue
		}
		voices = append(voices, piperVoice(res.Path))
		rates[res.Path] = piperSampleRate(res.Path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Slice(voices, func(i, j int) bool { return voices[i].URI < voices[j].URI })

	p.mu.Lock()
	p.voices, p.rates = voices, rates
	p.mu.Unlock()
	return voices, nil
}

// piperVoice describes a model from its file name, which piper voices
// spell as <lang>_<REGION>-<name>-<quality>.onnx.
func piperVoice(path string) speech.Voice {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.Split(stem, "-")

	v := speech.Voice{Name: stem, URI: path}
	if tag, err := language.Parse(strings.ReplaceAll(parts[0], "_", "-")); err == nil {
		v.Lang = tag.String()
	}
	switch len(parts) {
	case 2:
		v.Name = parts[1]
	case 3:
		v.Name = fmt.Sprintf("%s (%s)", parts[1], parts[2])
	}
	return v
}

// piperSampleRate reads audio.sample_rate from the model's .onnx.json.
func piperSampleRate(model string) int {
	data, err := os.ReadFile(model + ".json")
	if err != nil {
		return piperDefaultRate
	}
	var cfg struct {
		Audio struct {
			SampleRate int `json:"sample_rate"`
		} `json:"audio"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil || cfg.Audio.SampleRate <= 0 {
		return piperDefaultRate
	}
	return cfg.Audio.SampleRate
}

func (p *Piper) Synthesize(ctx context.Context, u speech.Utterance) (*speech.Audio, error) {
	bin, err := lookPath(p.bin)
	if err != nil {
		return nil, err
	}
	model, rate, err := p.model(u)
	if err != nil {
		return nil, err
	}

	raw, err := run(ctx, bin, piperArgs(model, u.Rate), []byte(u.Text))
	if err != nil {
		return nil, err
	}
	if rate == speech.SampleRate && unity(u.Pitch) {
		return &speech.Audio{PCM: raw, SampleRate: speech.SampleRate}, nil
	}
	pcm, err := p.ffm.Transcode(ctx, raw, RawInput(rate), 1, u.Pitch)
	if err != nil {
		return nil, err
	}
	return &speech.Audio{PCM: pcm, SampleRate: speech.SampleRate}, nil
}

// model picks the model for u: its voice, else the first model in its
// language, else the first model.
func (p *Piper) model(u speech.Utterance) (string, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rateOf := func(path string) int {
		if r, ok := p.rates[path]; ok {
			return r
		}
		return piperSampleRate(path)
	}

	if u.Voice != nil && u.Voice.URI != "" {
		return u.Voice.URI, rateOf(u.Voice.URI), nil
	}
	if len(p.voices) == 0 {
		return "", 0, fmt.Errorf("%w: no piper models in %s", speech.ErrEngineNotAvailable, p.models)
	}
	want := baseLang(u.Lang)
	for _, v := range p.voices {
		if baseLang(v.Lang) == want {
			return v.URI, rateOf(v.URI), nil
		}
	}
	return p.voices[0].URI, rateOf(p.voices[0].URI), nil
}

func piperArgs(model string, rate float64) []string {
	if rate <= 0 {
		rate = 1
	}
	return []string{
		"--model", model,
		"--output-raw",
		"--length-scale", fmt.Sprintf("%.2f", 1/rate),
	}
}

func (p *Piper) Validate() error {
	if _, err := lookPath(p.bin); err != nil {
		return err
	}
	if p.models == "" {
		return fmt.Errorf("%w: no piper model directory configured", speech.ErrEngineNotAvailable)
	}
	if _, err := os.Stat(p.models); err != nil {
		return fmt.Errorf("%w: %v", speech.ErrEngineNotAvailable, err)
	}
	ch, err := gitcha.FindAllFilesExcept(p.models, []string{"*.onnx"}, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", speech.ErrEngineNotAvailable, err)
	}
	found := false
	for range ch {
		found = true
	}
	if !found {
		return fmt.Errorf("%w: no piper models in %s", speech.ErrEngineNotAvailable, p.models)
	}
	return nil
}

func (p *Piper) Close() error { return nil }

func baseLang(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return strings.ToLower(tag)
	}
	b, _ := t.Base()
	return b.String()
}
