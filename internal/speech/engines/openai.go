package engines

import (
	"context"
	"fmt"
	"io"

	"github.com/dgnsrekt/letterboard/internal/speech"
	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "tts-1"

var openAIVoices = []speech.Voice{
	{Name: "alloy", Gender: speech.Female},
	{Name: "ash", Gender: speech.Male},
	{Name: "ballad", Gender: speech.Male},
	{Name: "coral", Gender: speech.Female},
	{Name: "echo", Gender: speech.Male},
	{Name: "fable", Gender: speech.Male},
	{Name: "nova", Gender: speech.Female},
	{Name: "onyx", Gender: speech.Male},
	{Name: "sage", Gender: speech.Female},
	{Name: "shimmer", Gender: speech.Female},
}

type speechClient interface {
	CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// OpenAI speaks through the OpenAI speech endpoint.
type OpenAI struct {
	client speechClient
	model  string
	ffm    *Transcoder
	guard  *guard
}

// NewOpenAI returns an OpenAI engine. The key is required.
func NewOpenAI(key, model string, perMinute int, ffm *Transcoder) (*OpenAI, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", speech.ErrEngineNotAvailable)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{
		client: openai.NewClient(key),
		model:  model,
		ffm:    ffm,
		guard:  newGuard("openai", perMinute),
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

// Voices returns the fixed OpenAI voice set. The voices are multilingual
// but are listed as English.
func (o *OpenAI) Voices(context.Context) ([]speech.Voice, error) {
	voices := make([]speech.Voice, len(openAIVoices))
	for i, v := range openAIVoices {
		v.URI = "openai/" + v.Name
		v.Lang = "en"
		voices[i] = v
	}
	return voices, nil
}

func (o *OpenAI) Synthesize(ctx context.Context, u speech.Utterance) (*speech.Audio, error) {
	req := o.request(u)
	wavData, err := o.guard.do(ctx, func() ([]byte, error) {
		resp, err := o.client.CreateSpeech(ctx, req)
		if err != nil {
			return nil, speech.NewSpeechError(speech.ErrorCodeEngineFailure, "OpenAI speech request failed", err)
		}
		defer resp.Close() //nolint:errcheck
		return io.ReadAll(resp)
	})
	if err != nil {
		return nil, err
	}

	wav, err := parseWAV(wavData)
	if err != nil {
		return nil, err
	}
	if !wav.isMonoS16() {
		pcm, err := o.ffm.Transcode(ctx, wavData, Input{}, 1, u.Pitch)
		if err != nil {
			return nil, err
		}
		return &speech.Audio{PCM: pcm, SampleRate: speech.SampleRate}, nil
	}
	pcm, err := o.ffm.Transcode(ctx, wav.Data, RawInput(wav.SampleRate), 1, u.Pitch)
	if err != nil {
		return nil, err
	}
	return &speech.Audio{PCM: pcm, SampleRate: speech.SampleRate}, nil
}

func (o *OpenAI) request(u speech.Utterance) openai.CreateSpeechRequest {
	voice := "nova"
	if u.Voice != nil && u.Voice.Name != "" {
		voice = u.Voice.Name
	}
	return openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.model),
		Input:          u.Text,
		Voice:          openai.SpeechVoice(voice),
		Speed:          clamp(u.Rate, 0.25, 4),
		ResponseFormat: openai.SpeechResponseFormatWav,
	}
}

func (o *OpenAI) Validate() error { return nil }

func (o *OpenAI) Close() error { return nil }
