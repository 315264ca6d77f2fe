package engines

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/letterboard/internal/speech"
)

var errNoFFmpeg = fmt.Errorf("%w: ffmpeg not found in PATH", speech.ErrEngineNotAvailable)

// Input describes audio handed to the transcoder. An empty Format lets
// ffmpeg detect the container (MP3, WAV); "s16le" is raw mono PCM at
// SampleRate.
type Input struct {
	Format     string
	SampleRate int
}

// RawInput is mono 16-bit PCM at rate.
func RawInput(rate int) Input { return Input{Format: "s16le", SampleRate: rate} }

// Transcoder converts engine output to playable PCM with ffmpeg, applying
// tempo and pitch changes on the way.
type Transcoder struct {
	Binary string
}

// NewTranscoder returns a transcoder for bin, "ffmpeg" when empty.
func NewTranscoder(bin string) *Transcoder {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &Transcoder{Binary: bin}
}

// Available reports whether the ffmpeg binary can be found.
func (t *Transcoder) Available() bool {
	if t == nil {
		return false
	}
	_, err := lookPath(t.Binary)
	return err == nil
}

// Transcode converts data to mono s16le at speech.SampleRate. tempo scales
// speed without changing pitch; pitch scales pitch without changing speed.
//
// Without ffmpeg, raw input is resampled in process and tempo and pitch are
// left as they are. Encoded input needs ffmpeg.
func (t *Transcoder) Transcode(ctx context.Context, data []byte, in Input, tempo, pitch float64) ([]byte, error) {
	if !t.Available() {
		if in.Format != "s16le" {
			return nil, errNoFFmpeg
		}
		if !unity(tempo) || !unity(pitch) {
			log.Debug("ffmpeg not found, ignoring tempo and pitch", "tempo", tempo, "pitch", pitch)
		}
		return resample(data, in.SampleRate, speech.SampleRate), nil
	}

	out, err := run(ctx, t.Binary, ffmpegArgs(in, tempo, pitch), data)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, speech.NewSpeechError(speech.ErrorCodeAudioFormat, "ffmpeg produced no audio", speech.ErrSynthesisFailed)
	}
	return out, nil
}

func ffmpegArgs(in Input, tempo, pitch float64) []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if in.Format == "s16le" {
		args = append(args, "-f", "s16le", "-ar", strconv.Itoa(in.SampleRate), "-ac", "1")
	}
	args = append(args, "-i", "pipe:0")
	if chain := filterChain(tempo, pitch); chain != "" {
		args = append(args, "-af", chain)
	}
	return append(args,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(speech.SampleRate),
		"-ac", "1",
		"pipe:1",
	)
}

// filterChain builds the ffmpeg audio filter. Pitch is shifted by playing
// the samples at a different rate and resampling back, which also scales
// tempo by the same factor; the atempo stage compensates.
func filterChain(tempo, pitch float64) string {
	if tempo <= 0 {
		tempo = 1
	}
	if pitch <= 0 {
		pitch = 1
	}

	var filters []string
	if !unity(pitch) {
		rate := int(math.Round(float64(speech.SampleRate) * pitch))
		filters = append(filters,
			fmt.Sprintf("aresample=%d", speech.SampleRate),
			fmt.Sprintf("asetrate=%d", rate),
			fmt.Sprintf("aresample=%d", speech.SampleRate),
		)
	}
	filters = append(filters, atempo(tempo/pitch)...)
	return strings.Join(filters, ",")
}

// atempo splits f into atempo stages, each within the filter's 0.5 to 2
// range.
func atempo(f float64) []string {
	var out []string
	for !unity(f) && f > 0 {
		step := math.Min(math.Max(f, 0.5), 2)
		out = append(out, fmt.Sprintf("atempo=%.4f", step))
		f /= step
	}
	return out
}

func unity(f float64) bool {
	return math.Abs(f-1) < 0.005
}

// resample converts mono s16le PCM between rates by linear interpolation.
func resample(pcm []byte, from, to int) []byte {
	if from == to || from <= 0 || to <= 0 || len(pcm) < 4 {
		return pcm
	}

	n := len(pcm) / 2
	sample := func(i int) float64 {
		return float64(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}

	outN := int(int64(n) * int64(to) / int64(from))
	out := make([]byte, outN*2)
	ratio := float64(from) / float64(to)
	for i := range outN {
		pos := float64(i) * ratio
		j := int(pos)
		frac := pos - float64(j)
		v := sample(j)
		if j+1 < n {
			v += (sample(j+1) - v) * frac
		}
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(math.Round(v))))
	}
	return out
}
