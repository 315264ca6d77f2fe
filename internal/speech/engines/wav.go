package engines

import (
	"encoding/binary"
	"fmt"

	"github.com/dgnsrekt/letterboard/internal/speech"
)

// wavInfo describes the data chunk of a RIFF/WAVE file.
type wavInfo struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Data          []byte
}

// parseWAV extracts the PCM data of a WAV file. Engines that stream to
// stdout leave the size fields at 0 or 0xFFFFFFFF, so an oversized data
// chunk is read to the end of the buffer.
func parseWAV(b []byte) (wavInfo, error) {
	var info wavInfo
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return info, fmt.Errorf("%w: not a WAV file", speech.ErrSynthesisFailed)
	}

	p := 12
	for p+8 <= len(b) {
		id := string(b[p : p+4])
		size := int(binary.LittleEndian.Uint32(b[p+4 : p+8]))
		p += 8

		switch id {
		case "fmt ":
			if size < 16 || p+16 > len(b) {
				return info, fmt.Errorf("%w: short fmt chunk", speech.ErrSynthesisFailed)
			}
			if format := binary.LittleEndian.Uint16(b[p:]); format != 1 {
				return info, fmt.Errorf("%w: unsupported WAV format %d", speech.ErrSynthesisFailed, format)
			}
			info.Channels = int(binary.LittleEndian.Uint16(b[p+2:]))
			info.SampleRate = int(binary.LittleEndian.Uint32(b[p+4:]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(b[p+14:]))
		case "data":
			if info.SampleRate == 0 {
				return info, fmt.Errorf("%w: data before fmt chunk", speech.ErrSynthesisFailed)
			}
			end := p + size
			if size == 0 || end > len(b) || end < p {
				end = len(b)
			}
			info.Data = b[p:end]
			return info, nil
		}

		if size < 0 || p+size > len(b) {
			break
		}
		p += size + size%2
	}
	return info, fmt.Errorf("%w: WAV has no data chunk", speech.ErrSynthesisFailed)
}

// isMonoS16 reports whether the WAV data can be played without conversion
// apart from resampling.
func (w wavInfo) isMonoS16() bool {
	return w.Channels == 1 && w.BitsPerSample == 16
}
