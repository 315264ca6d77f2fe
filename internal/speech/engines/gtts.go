package engines

import (
	"bufio"
	"context"
	"strings"

	"github.com/dgnsrekt/letterboard/internal/speech"
)

// GTTS speaks through gtts-cli, the Google Translate TTS client. It
// returns MP3, so ffmpeg is required.
type GTTS struct {
	bin   string
	ffm   *Transcoder
	guard *guard
}

// NewGTTS returns a gtts engine using bin ("gtts-cli" when empty), limited
// to perMinute requests.
func NewGTTS(bin string, perMinute int, ffm *Transcoder) *GTTS {
	if bin == "" {
		bin = "gtts-cli"
	}
	return &GTTS{bin: bin, ffm: ffm, guard: newGuard("gtts", perMinute)}
}

func (g *GTTS) Name() string { return "gtts" }

// Voices lists the supported languages. gtts has one voice per language.
func (g *GTTS) Voices(ctx context.Context) ([]speech.Voice, error) {
	bin, err := lookPath(g.bin)
	if err != nil {
		return nil, err
	}
	out, err := run(ctx, bin, []string{"--all"}, nil)
	if err != nil {
		return nil, err
	}
	return parseGTTSLanguages(string(out)), nil
}

// parseGTTSLanguages reads "  code: Name" lines.
func parseGTTSLanguages(out string) []speech.Voice {
	var voices []speech.Voice
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		code, name, ok := strings.Cut(sc.Text(), ":")
		code, name = strings.TrimSpace(code), strings.TrimSpace(name)
		if !ok || code == "" || name == "" || strings.Contains(code, " ") {
			continue
		}
		voices = append(voices, speech.Voice{Name: name, URI: code, Lang: code})
	}
	return voices
}

func (g *GTTS) Synthesize(ctx context.Context, u speech.Utterance) (*speech.Audio, error) {
	bin, err := lookPath(g.bin)
	if err != nil {
		return nil, err
	}
	mp3, err := g.guard.do(ctx, func() ([]byte, error) {
		return run(ctx, bin, gttsArgs(u), []byte(u.Text))
	})
	if err != nil {
		return nil, err
	}
	pcm, err := g.ffm.Transcode(ctx, mp3, Input{}, u.Rate, u.Pitch)
	if err != nil {
		return nil, err
	}
	return &speech.Audio{PCM: pcm, SampleRate: speech.SampleRate}, nil
}

// gttsArgs reads the text from stdin and writes MP3 to stdout.
func gttsArgs(u speech.Utterance) []string {
	lang := baseLang(u.Lang)
	if u.Voice != nil && u.Voice.URI != "" {
		lang = u.Voice.URI
	}
	if lang == "" {
		lang = "en"
	}
	return []string{"-l", lang, "-o", "-", "-"}
}

func (g *GTTS) Validate() error {
	if _, err := lookPath(g.bin); err != nil {
		return err
	}
	if !g.ffm.Available() {
		return errNoFFmpeg
	}
	return nil
}

func (g *GTTS) Close() error { return nil }
