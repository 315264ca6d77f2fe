package speech

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Limits accepted by Validate.
const (
	MaxTextLength = 200
	MinRate       = 0.25
	MaxRate       = 4.0
	MinPitch      = 0.25
	MaxPitch      = 4.0
)

// Validate checks an utterance before it is handed to an engine.
func Validate(u Utterance) error {
	text := strings.TrimSpace(u.Text)
	switch {
	case text == "":
		return fmt.Errorf("%w: empty text", ErrInvalidInput)
	case utf8.RuneCountInString(text) > MaxTextLength:
		return fmt.Errorf("%w: text longer than %d characters", ErrInvalidInput, MaxTextLength)
	case u.Rate < MinRate || u.Rate > MaxRate:
		return fmt.Errorf("%w: rate %.2f outside %.2f-%.2f", ErrInvalidInput, u.Rate, MinRate, MaxRate)
	case u.Pitch < MinPitch || u.Pitch > MaxPitch:
		return fmt.Errorf("%w: pitch %.2f outside %.2f-%.2f", ErrInvalidInput, u.Pitch, MinPitch, MaxPitch)
	case u.Volume < 0 || u.Volume > 1:
		return fmt.Errorf("%w: volume %.2f outside 0-1", ErrInvalidInput, u.Volume)
	}
	return nil
}
