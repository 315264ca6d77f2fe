package engines

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dgnsrekt/letterboard/internal/speech"
	"golang.org/x/text/language"
)

// Espeak speaks through espeak-ng (or classic espeak). It handles rate and
// pitch itself, so ffmpeg is only needed when its output rate differs from
// speech.SampleRate.
type Espeak struct {
	bin string
	ffm *Transcoder
}

// NewEspeak returns an espeak engine using bin, "espeak-ng" when empty.
func NewEspeak(bin string, ffm *Transcoder) *Espeak {
	if bin == "" {
		bin = "espeak-ng"
	}
	return &Espeak{bin: bin, ffm: ffm}
}

func (e *Espeak) Name() string { return "espeak" }

func (e *Espeak) binary() (string, error) {
	if e.bin == "espeak-ng" {
		return lookPath(e.bin, "espeak")
	}
	return lookPath(e.bin)
}

// Voices lists each installed language twice, once per voice variant.
func (e *Espeak) Voices(ctx context.Context) ([]speech.Voice, error) {
	bin, err := e.binary()
	if err != nil {
		return nil, err
	}
	out, err := run(ctx, bin, []string{"--voices"}, nil)
	if err != nil {
		return nil, err
	}
	return parseEspeakVoices(string(out)), nil
}

// parseEspeakVoices reads the table printed by --voices:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  en-us           --/M      English_(America)  gmw/en-US     (en 10)
func parseEspeakVoices(out string) []speech.Voice {
	var voices []speech.Voice
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		lang, name := fields[1], strings.ReplaceAll(fields[3], "_", " ")
		voices = append(voices,
			speech.Voice{Name: name + " Female", URI: lang + "+f3", Lang: lang, Gender: speech.Female},
			speech.Voice{Name: name + " Male", URI: lang + "+m3", Lang: lang, Gender: speech.Male},
		)
	}
	return voices
}

func (e *Espeak) Synthesize(ctx context.Context, u speech.Utterance) (*speech.Audio, error) {
	bin, err := e.binary()
	if err != nil {
		return nil, err
	}
	out, err := run(ctx, bin, espeakArgs(u), []byte(u.Text))
	if err != nil {
		return nil, err
	}

	wav, err := parseWAV(out)
	if err != nil {
		return nil, err
	}
	if wav.isMonoS16() && wav.SampleRate == speech.SampleRate {
		return &speech.Audio{PCM: wav.Data, SampleRate: speech.SampleRate}, nil
	}
	pcm, err := e.ffm.Transcode(ctx, out, Input{}, 1, 1)
	if err != nil {
		return nil, err
	}
	return &speech.Audio{PCM: pcm, SampleRate: speech.SampleRate}, nil
}

func espeakArgs(u speech.Utterance) []string {
	wpm := clamp(math.Round(175*u.Rate), 80, 450)
	pitch := clamp(math.Round(50*u.Pitch), 0, 99)
	return []string{
		"-v", espeakVoice(u),
		"-s", fmt.Sprintf("%.0f", wpm),
		"-p", fmt.Sprintf("%.0f", pitch),
		"--stdin",
		"--stdout",
	}
}

// espeakVoice names the voice for u. Without an explicit voice, English
// keeps its region and other languages use the bare language.
func espeakVoice(u speech.Utterance) string {
	if u.Voice != nil && u.Voice.URI != "" {
		return u.Voice.URI
	}
	tag, err := language.Parse(u.Lang)
	if err != nil {
		return "en-us"
	}
	base, _ := tag.Base()
	if base.String() == "en" {
		return strings.ToLower(u.Lang)
	}
	return base.String()
}

func (e *Espeak) Validate() error {
	_, err := e.binary()
	return err
}

func (e *Espeak) Close() error { return nil }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
