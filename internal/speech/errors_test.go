package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSpeechError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := NewSpeechError(ErrorCodeEngineFailure, "espeak failed", cause).
		WithContext("engine", "espeak")

	if !errors.Is(err, cause) {
		t.Error("Expected the cause to unwrap")
	}
	if got := err.Error(); !strings.Contains(got, "ENGINE_FAILURE") || !strings.Contains(got, "exit status 1") {
		t.Errorf("Unexpected message %q", got)
	}
	if err.Context["engine"] != "espeak" {
		t.Errorf("Expected engine context, got %v", err.Context)
	}
	if err.IsRetryable() {
		t.Error("Expected engine failures not to be retryable")
	}
	if !NewSpeechError(ErrorCodeRateLimited, "slow down", nil).IsRetryable() {
		t.Error("Expected rate limiting to be retryable")
	}
}

func TestIsCanceled(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrCanceled, true},
		{fmt.Errorf("speak: %w", context.Canceled), true},
		{NewSpeechError(ErrorCodeCanceled, "superseded", nil), true},
		{context.DeadlineExceeded, false},
		{ErrSynthesisFailed, false},
	}
	for _, tt := range tests {
		if got := IsCanceled(tt.err); got != tt.want {
			t.Errorf("IsCanceled(%v): expected %v, got %v", tt.err, tt.want, got)
		}
	}
}

func TestValidate(t *testing.T) {
	ok := Utterance{Text: "A", Rate: 0.7, Pitch: 1.3, Volume: 0.8}
	if err := Validate(ok); err != nil {
		t.Fatalf("Expected a valid utterance, got %v", err)
	}

	bad := map[string]Utterance{
		"empty":  {Text: "  ", Rate: 1, Pitch: 1, Volume: 1},
		"long":   {Text: strings.Repeat("a", MaxTextLength+1), Rate: 1, Pitch: 1, Volume: 1},
		"rate":   {Text: "A", Rate: 0, Pitch: 1, Volume: 1},
		"pitch":  {Text: "A", Rate: 1, Pitch: 5, Volume: 1},
		"volume": {Text: "A", Rate: 1, Pitch: 1, Volume: 1.5},
	}
	for name, u := range bad {
		if err := Validate(u); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}
