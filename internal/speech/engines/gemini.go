package engines

import (
	"context"
	"fmt"

	"github.com/dgnsrekt/letterboard/internal/speech"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash-preview-tts"

// geminiRate is the sample rate of Gemini's PCM output.
const geminiRate = 24000

var geminiVoices = []speech.Voice{
	{Name: "Kore", Gender: speech.Female},
	{Name: "Aoede", Gender: speech.Female},
	{Name: "Leda", Gender: speech.Female},
	{Name: "Zephyr", Gender: speech.Female},
	{Name: "Puck", Gender: speech.Male},
	{Name: "Charon", Gender: speech.Male},
	{Name: "Fenrir", Gender: speech.Male},
	{Name: "Orus", Gender: speech.Male},
}

type contentGenerator func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini speaks through the Gemini API's speech generation.
type Gemini struct {
	generate contentGenerator
	model    string
	ffm      *Transcoder
	guard    *guard
}

// NewGemini returns a Gemini engine. The key is required.
func NewGemini(ctx context.Context, key, model string, perMinute int, ffm *Transcoder) (*Gemini, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", speech.ErrEngineNotAvailable)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", speech.ErrEngineNotAvailable, err)
	}
	return &Gemini{
		generate: client.Models.GenerateContent,
		model:    model,
		ffm:      ffm,
		guard:    newGuard("gemini", perMinute),
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

// Voices returns the prebuilt Gemini voices.
func (g *Gemini) Voices(context.Context) ([]speech.Voice, error) {
	voices := make([]speech.Voice, len(geminiVoices))
	for i, v := range geminiVoices {
		v.URI = "gemini/" + v.Name
		v.Lang = "en"
		voices[i] = v
	}
	return voices, nil
}

func (g *Gemini) Synthesize(ctx context.Context, u speech.Utterance) (*speech.Audio, error) {
	raw, err := g.guard.do(ctx, func() ([]byte, error) {
		resp, err := g.generate(ctx, g.model, genai.Text(u.Text), geminiConfig(u))
		if err != nil {
			return nil, speech.NewSpeechError(speech.ErrorCodeEngineFailure, "Gemini request failed", err)
		}
		return geminiAudio(resp)
	})
	if err != nil {
		return nil, err
	}
	pcm, err := g.ffm.Transcode(ctx, raw, RawInput(geminiRate), u.Rate, u.Pitch)
	if err != nil {
		return nil, err
	}
	return &speech.Audio{PCM: pcm, SampleRate: speech.SampleRate}, nil
}

func geminiConfig(u speech.Utterance) *genai.GenerateContentConfig {
	voice := "Kore"
	if u.Voice != nil && u.Voice.Name != "" {
		voice = u.Voice.Name
	}
	return &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}
}

func geminiAudio(resp *genai.GenerateContentResponse) ([]byte, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, speech.NewSpeechError(speech.ErrorCodeAudioFormat, "Gemini returned no candidates", speech.ErrSynthesisFailed)
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, speech.NewSpeechError(speech.ErrorCodeAudioFormat, "Gemini returned no audio", speech.ErrSynthesisFailed)
}

func (g *Gemini) Validate() error { return nil }

func (g *Gemini) Close() error { return nil }
