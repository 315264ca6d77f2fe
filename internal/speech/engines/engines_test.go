package engines

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dgnsrekt/letterboard/internal/speech"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

func wavBytes(rate, channels int, pcm []byte) []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+len(pcm)))
	b.WriteString("WAVEfmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1))
	_ = binary.Write(&b, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&b, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&b, binary.LittleEndian, uint32(rate*channels*2))
	_ = binary.Write(&b, binary.LittleEndian, uint16(channels*2))
	_ = binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}

func TestParseWAV(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0}
	info, err := parseWAV(wavBytes(22050, 1, pcm))
	if err != nil {
		t.Fatalf("parseWAV failed: %v", err)
	}
	if info.SampleRate != 22050 || !info.isMonoS16() {
		t.Errorf("Expected 22050 Hz mono s16, got %+v", info)
	}
	if !bytes.Equal(info.Data, pcm) {
		t.Errorf("Expected %v, got %v", pcm, info.Data)
	}

	// Streaming writers leave the data size unset.
	streamed := wavBytes(24000, 1, pcm)
	binary.LittleEndian.PutUint32(streamed[40:], 0xFFFFFFFF)
	info, err = parseWAV(streamed)
	if err != nil || !bytes.Equal(info.Data, pcm) {
		t.Errorf("Expected streamed data to be read to the end, got %v (%v)", info.Data, err)
	}

	if _, err := parseWAV([]byte("ID3 not a wav")); !errors.Is(err, speech.ErrSynthesisFailed) {
		t.Errorf("Expected ErrSynthesisFailed, got %v", err)
	}
}

func TestFilterChain(t *testing.T) {
	tests := []struct {
		tempo, pitch float64
		want         string
	}{
		{1, 1, ""},
		{0.7, 1, "atempo=0.7000"},
		{1, 1.3, "aresample=22050,asetrate=28665,aresample=22050,atempo=0.7692"},
		{0.7, 0.8, "aresample=22050,asetrate=17640,aresample=22050,atempo=0.8750"},
	}
	for _, tt := range tests {
		if got := filterChain(tt.tempo, tt.pitch); got != tt.want {
			t.Errorf("filterChain(%v, %v): expected %q, got %q", tt.tempo, tt.pitch, tt.want, got)
		}
	}
}

func TestAtempoSplitsOutOfRangeFactors(t *testing.T) {
	if got := atempo(0.3); !reflect.DeepEqual(got, []string{"atempo=0.5000", "atempo=0.6000"}) {
		t.Errorf("Expected two stages for 0.3, got %v", got)
	}
	if got := atempo(3); !reflect.DeepEqual(got, []string{"atempo=2.0000", "atempo=1.5000"}) {
		t.Errorf("Expected two stages for 3, got %v", got)
	}
}

func TestFFmpegArgs(t *testing.T) {
	args := strings.Join(ffmpegArgs(RawInput(24000), 1, 1), " ")
	if !strings.Contains(args, "-f s16le -ar 24000 -ac 1 -i pipe:0") {
		t.Errorf("Expected raw input flags, got %s", args)
	}
	if !strings.HasSuffix(args, "-ar 22050 -ac 1 pipe:1") {
		t.Errorf("Expected 22050 Hz mono output, got %s", args)
	}
	if strings.Contains(args, "-af") {
		t.Errorf("Expected no filter at unity, got %s", args)
	}

	args = strings.Join(ffmpegArgs(Input{}, 0.7, 1), " ")
	if !strings.HasPrefix(args, "-hide_banner -loglevel error -i pipe:0") {
		t.Errorf("Expected container input to be detected, got %s", args)
	}
	if !strings.Contains(args, "-af atempo=0.7000") {
		t.Errorf("Expected tempo filter, got %s", args)
	}
}

func TestResample(t *testing.T) {
	pcm := make([]byte, 24000*2)
	out := resample(pcm, 24000, 22050)
	if len(out) != 22050*2 {
		t.Errorf("Expected %d bytes, got %d", 22050*2, len(out))
	}
	if got := resample(pcm, 22050, 22050); len(got) != len(pcm) {
		t.Error("Expected same-rate input to pass through")
	}
}

func TestTranscodeWithoutFFmpeg(t *testing.T) {
	ffm := NewTranscoder(filepath.Join(t.TempDir(), "no-ffmpeg"))
	out, err := ffm.Transcode(context.Background(), make([]byte, 480), RawInput(24000), 0.7, 1.3)
	if err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}
	if len(out) != 220*2 {
		t.Errorf("Expected resampled output of 440 bytes, got %d", len(out))
	}

	if _, err := ffm.Transcode(context.Background(), []byte("mp3"), Input{}, 1, 1); !errors.Is(err, speech.ErrEngineNotAvailable) {
		t.Errorf("Expected ErrEngineNotAvailable for encoded input, got %v", err)
	}
}

func TestParseEspeakVoices(t *testing.T) {
	out := `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  en-us           --/M      English_(America)  gmw/en-US            (en 10)
 5  hi              --/M      Hindi              inc/hi
`
	voices := parseEspeakVoices(out)
	if len(voices) != 4 {
		t.Fatalf("Expected 4 voices, got %d", len(voices))
	}
	want := speech.Voice{Name: "English (America) Female", URI: "en-us+f3", Lang: "en-us", Gender: speech.Female}
	if voices[0] != want {
		t.Errorf("Expected %+v, got %+v", want, voices[0])
	}
	if voices[3].URI != "hi+m3" || voices[3].Gender != speech.Male {
		t.Errorf("Expected hi+m3 male, got %+v", voices[3])
	}
}

func TestEspeakArgs(t *testing.T) {
	u := speech.Utterance{Text: "A", Rate: 0.8, Pitch: 1.3, Volume: 0.8, Lang: "en-US"}
	want := []string{"-v", "en-us", "-s", "140", "-p", "65", "--stdin", "--stdout"}
	if got := espeakArgs(u); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	u.Lang = "hi-IN"
	u.Pitch = 4
	args := espeakArgs(u)
	if args[1] != "hi" {
		t.Errorf("Expected hi voice, got %s", args[1])
	}
	if args[5] != "99" {
		t.Errorf("Expected pitch clamped to 99, got %s", args[5])
	}

	u.Voice = &speech.Voice{URI: "en-gb+f3"}
	if got := espeakArgs(u)[1]; got != "en-gb+f3" {
		t.Errorf("Expected explicit voice, got %s", got)
	}
}

func TestPiperVoice(t *testing.T) {
	v := piperVoice("/models/en_US-lessac-medium.onnx")
	if v.Lang != "en-US" || v.Name != "lessac (medium)" || v.URI != "/models/en_US-lessac-medium.onnx" {
		t.Errorf("Unexpected voice %+v", v)
	}
	if v := piperVoice("/models/hi_IN-pratham-medium.onnx"); v.Lang != "hi-IN" {
		t.Errorf("Expected hi-IN, got %s", v.Lang)
	}
	if v := piperVoice("/models/custom.onnx"); v.Name != "custom" || v.Lang != "" {
		t.Errorf("Expected bare name without language, got %+v", v)
	}
}

func TestPiperArgs(t *testing.T) {
	want := []string{"--model", "m.onnx", "--output-raw", "--length-scale", "1.43"}
	if got := piperArgs("m.onnx", 0.7); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestPiperSampleRate(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "en_US-amy-low.onnx")
	if got := piperSampleRate(model); got != 22050 {
		t.Errorf("Expected default 22050, got %d", got)
	}
	if err := os.WriteFile(model+".json", []byte(`{"audio":{"sample_rate":16000}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := piperSampleRate(model); got != 16000 {
		t.Errorf("Expected 16000, got %d", got)
	}
}

func TestPiperModelSelection(t *testing.T) {
	p := NewPiper("piper", "/models", nil)
	p.voices = []speech.Voice{
		{Name: "amy", URI: "/models/en_US-amy-low.onnx", Lang: "en-US"},
		{Name: "pratham", URI: "/models/hi_IN-pratham-medium.onnx", Lang: "hi-IN"},
	}
	p.rates = map[string]int{"/models/en_US-amy-low.onnx": 16000}

	model, rate, err := p.model(speech.Utterance{Lang: "hi-IN"})
	if err != nil || model != "/models/hi_IN-pratham-medium.onnx" {
		t.Errorf("Expected Hindi model, got %s (%v)", model, err)
	}
	if rate != 22050 {
		t.Errorf("Expected default rate, got %d", rate)
	}

	model, rate, _ = p.model(speech.Utterance{Lang: "fr-FR"})
	if model != "/models/en_US-amy-low.onnx" || rate != 16000 {
		t.Errorf("Expected first model at 16000, got %s at %d", model, rate)
	}

	p.voices = nil
	if _, _, err := p.model(speech.Utterance{Lang: "en-US"}); !errors.Is(err, speech.ErrEngineNotAvailable) {
		t.Errorf("Expected ErrEngineNotAvailable, got %v", err)
	}
}

func TestParseGTTSLanguages(t *testing.T) {
	out := "  af: Afrikaans\n  en: English\n  hi: Hindi\nnot a language line\n"
	voices := parseGTTSLanguages(out)
	if len(voices) != 3 {
		t.Fatalf("Expected 3 voices, got %d", len(voices))
	}
	if voices[2] != (speech.Voice{Name: "Hindi", URI: "hi", Lang: "hi"}) {
		t.Errorf("Unexpected voice %+v", voices[2])
	}
}

func TestGTTSArgs(t *testing.T) {
	want := []string{"-l", "hi", "-o", "-", "-"}
	if got := gttsArgs(speech.Utterance{Lang: "hi-IN"}); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

type fakeSpeechClient struct {
	req  openai.CreateSpeechRequest
	body []byte
	err  error
}

func (f *fakeSpeechClient) CreateSpeech(_ context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error) {
	f.req = req
	if f.err != nil {
		return openai.RawResponse{}, f.err
	}
	return openai.RawResponse{ReadCloser: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func TestOpenAISynthesize(t *testing.T) {
	pcm := make([]byte, 100)
	client := &fakeSpeechClient{body: wavBytes(22050, 1, pcm)}
	o := &OpenAI{client: client, model: DefaultOpenAIModel, guard: newGuard("openai", 600)}

	u := speech.Utterance{Text: "A", Rate: 0.7, Pitch: 1, Volume: 0.8, Lang: "en-US",
		Voice: &speech.Voice{Name: "onyx"}}
	audio, err := o.Synthesize(context.Background(), u)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(audio.PCM) != len(pcm) || audio.SampleRate != speech.SampleRate {
		t.Errorf("Expected %d bytes at %d Hz, got %d at %d", len(pcm), speech.SampleRate, len(audio.PCM), audio.SampleRate)
	}
	if client.req.Voice != "onyx" || client.req.Speed != 0.7 || client.req.ResponseFormat != openai.SpeechResponseFormatWav {
		t.Errorf("Unexpected request %+v", client.req)
	}
}

func TestOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI("", "", 0, nil); !errors.Is(err, speech.ErrEngineNotAvailable) {
		t.Errorf("Expected ErrEngineNotAvailable, got %v", err)
	}
}

func TestOpenAIVoicesHaveGender(t *testing.T) {
	o := &OpenAI{}
	voices, _ := o.Voices(context.Background())
	for _, v := range voices {
		if v.Gender == speech.GenderUnknown || v.Lang != "en" || !strings.HasPrefix(v.URI, "openai/") {
			t.Errorf("Unexpected voice %+v", v)
		}
	}
}

func TestGuardOpensAfterFailures(t *testing.T) {
	g := newGuard("test", 6000)
	boom := errors.New("boom")
	for i := 0; i < 3; i++ {
		if _, err := g.do(context.Background(), func() ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
			t.Fatalf("Expected boom, got %v", err)
		}
	}

	called := false
	_, err := g.do(context.Background(), func() ([]byte, error) {
		called = true
		return nil, nil
	})
	if called {
		t.Error("Expected open circuit to skip the call")
	}
	if !errors.Is(err, speech.ErrEngineNotAvailable) {
		t.Errorf("Expected ErrEngineNotAvailable, got %v", err)
	}
}

func TestGuardIgnoresCancellation(t *testing.T) {
	g := newGuard("test", 6000)
	for i := 0; i < 5; i++ {
		_, _ = g.do(context.Background(), func() ([]byte, error) { return nil, speech.ErrCanceled })
	}
	if _, err := g.do(context.Background(), func() ([]byte, error) { return []byte{1}, nil }); err != nil {
		t.Errorf("Expected canceled calls not to open the circuit, got %v", err)
	}
}

func TestGeminiSynthesize(t *testing.T) {
	var gotCfg *genai.GenerateContentConfig
	g := &Gemini{
		model: DefaultGeminiModel,
		guard: newGuard("gemini", 600),
		generate: func(_ context.Context, model string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotCfg = cfg
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{{
						InlineData: &genai.Blob{MIMEType: "audio/L16;rate=24000", Data: make([]byte, 480)},
					}}},
				}},
			}, nil
		},
	}

	u := speech.Utterance{Text: "A", Rate: 1, Pitch: 1, Volume: 0.8, Voice: &speech.Voice{Name: "Puck"}}
	audio, err := g.Synthesize(context.Background(), u)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(audio.PCM) != 220*2 {
		t.Errorf("Expected 24 kHz audio resampled to 440 bytes, got %d", len(audio.PCM))
	}
	if name := gotCfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName; name != "Puck" {
		t.Errorf("Expected Puck, got %s", name)
	}
	if !reflect.DeepEqual(gotCfg.ResponseModalities, []string{"AUDIO"}) {
		t.Errorf("Expected AUDIO modality, got %v", gotCfg.ResponseModalities)
	}
}

func TestGeminiAudioWithoutData(t *testing.T) {
	if _, err := geminiAudio(&genai.GenerateContentResponse{}); !errors.Is(err, speech.ErrSynthesisFailed) {
		t.Errorf("Expected ErrSynthesisFailed, got %v", err)
	}
}

func TestMockEngine(t *testing.T) {
	m := NewMock()
	audio, err := m.Synthesize(context.Background(), speech.Utterance{Text: "ab", Rate: 1})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if got := audio.Duration().Milliseconds(); got != 300 {
		t.Errorf("Expected 300ms, got %dms", got)
	}
	if len(m.Calls()) != 1 {
		t.Errorf("Expected 1 call, got %d", len(m.Calls()))
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	e, err := New(ctx, "mock", Config{})
	if err != nil || e.Name() != "mock" {
		t.Errorf("Expected mock engine, got %v (%v)", e, err)
	}
	e, err = New(ctx, "none", Config{})
	if err != nil || e != nil {
		t.Errorf("Expected nil engine for none, got %v (%v)", e, err)
	}
	if _, err := New(ctx, "festival", Config{}); !errors.Is(err, speech.ErrInvalidEngine) {
		t.Errorf("Expected ErrInvalidEngine, got %v", err)
	}
	if _, err := New(ctx, "openai", Config{}); !errors.Is(err, speech.ErrEngineNotAvailable) {
		t.Errorf("Expected missing key error, got %v", err)
	}
	if e, _ := New(ctx, "ESPEAK", Config{}); e == nil || e.Name() != "espeak" {
		t.Errorf("Expected case-insensitive names, got %v", e)
	}
}

func TestCheck(t *testing.T) {
	r, err := Check(context.Background(), "openai", Config{})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if r.OK() {
		t.Error("Expected report without key to fail")
	}
	if !strings.Contains(r.Render(), "OPENAI_API_KEY") {
		t.Error("Expected key to be named in the report")
	}

	r, _ = Check(context.Background(), "openai", Config{OpenAIKey: "sk-test", FFmpeg: filepath.Join(t.TempDir(), "none")})
	if !r.OK() {
		t.Errorf("Expected optional ffmpeg not to fail the report: %+v", r.Deps)
	}

	if _, err := Check(context.Background(), "festival", Config{}); err == nil {
		t.Error("Expected error for unknown engine")
	}
}
