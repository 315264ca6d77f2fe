package engines

import (
	"context"
	"errors"
	"testing"

	"github.com/dgnsrekt/letterboard/internal/speech"
)

// flaky fails every utterance with err.
type flaky struct {
	err   error
	calls int
	valid error
}

func (f *flaky) Name() string { return "flaky" }

func (f *flaky) Voices(context.Context) ([]speech.Voice, error) {
	return []speech.Voice{{Name: "Flaky", URI: "flaky/1", Lang: "en-US", Gender: speech.Female}}, nil
}

func (f *flaky) Synthesize(context.Context, speech.Utterance) (*speech.Audio, error) {
	f.calls++
	return nil, f.err
}

func (f *flaky) Validate() error { return f.valid }

func (f *flaky) Close() error { return nil }

func TestFallbackSwitchesAfterFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	primary := &flaky{err: boom}
	secondary := NewMock()
	f := NewFallback(primary, secondary, 2)

	u := speech.Utterance{Text: "A", Rate: 1, Voice: &speech.Voice{URI: "flaky/1"}}
	if _, err := f.Synthesize(ctx, u); !errors.Is(err, boom) {
		t.Fatalf("Expected boom on the first failure, got %v", err)
	}
	if f.Switched() {
		t.Fatal("Expected to stay on the primary after one failure")
	}

	if _, err := f.Synthesize(ctx, u); err != nil {
		t.Fatalf("Expected the secondary to speak, got %v", err)
	}
	if !f.Switched() || f.Name() != "mock" {
		t.Errorf("Expected mock to take over, got %s", f.Name())
	}

	calls := secondary.Calls()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 call on the secondary, got %d", len(calls))
	}
	if calls[0].Voice != nil {
		t.Errorf("Expected the primary's voice to be dropped, got %+v", calls[0].Voice)
	}

	if _, err := f.Synthesize(ctx, u); err != nil {
		t.Fatal(err)
	}
	if primary.calls != 2 {
		t.Errorf("Expected the primary to be skipped once switched, got %d calls", primary.calls)
	}
}

func TestFallbackIgnoresCancellation(t *testing.T) {
	primary := &flaky{err: speech.ErrCanceled}
	f := NewFallback(primary, NewMock(), 1)

	for i := 0; i < 3; i++ {
		if _, err := f.Synthesize(context.Background(), speech.Utterance{Text: "A"}); !speech.IsCanceled(err) {
			t.Fatalf("Expected cancellation, got %v", err)
		}
	}
	if f.Switched() {
		t.Error("Expected cancellations not to switch engines")
	}
}

func TestFallbackSuccessResetsFailures(t *testing.T) {
	boom := errors.New("boom")
	primary := &flaky{err: boom}
	f := NewFallback(primary, NewMock(), 2)

	_, _ = f.Synthesize(context.Background(), speech.Utterance{Text: "A"})
	primary.err = nil
	_, _ = f.Synthesize(context.Background(), speech.Utterance{Text: "A"})
	primary.err = boom
	_, _ = f.Synthesize(context.Background(), speech.Utterance{Text: "A"})

	if f.Switched() {
		t.Error("Expected a success in between to reset the failure count")
	}
}

func TestFallbackValidate(t *testing.T) {
	broken := errors.New("no key")
	f := NewFallback(&flaky{valid: broken}, NewMock(), 0)
	if err := f.Validate(); err != nil {
		t.Fatalf("Expected a usable secondary to validate, got %v", err)
	}
	if !f.Switched() {
		t.Error("Expected an invalid primary to hand over at once")
	}

	f = NewFallback(&flaky{valid: broken}, &flaky{valid: broken}, 0)
	if err := f.Validate(); !errors.Is(err, broken) {
		t.Errorf("Expected both errors, got %v", err)
	}
}

func TestNewWrapsOnlineEngines(t *testing.T) {
	ctx := context.Background()

	e, err := New(ctx, "gtts", Config{Fallback: "mock"})
	if err != nil {
		t.Fatal(err)
	}
	f, ok := e.(*Fallback)
	if !ok {
		t.Fatalf("Expected a fallback engine, got %T", e)
	}
	if p, s := f.Engines(); p.Name() != "gtts" || s.Name() != "mock" {
		t.Errorf("Expected gtts then mock, got %s then %s", p.Name(), s.Name())
	}

	if e, _ := New(ctx, "espeak", Config{Fallback: "mock"}); e.Name() != "espeak" {
		t.Errorf("Expected local engines to be left alone, got %T", e)
	} else if _, ok := e.(*Fallback); ok {
		t.Error("Expected no fallback for a local engine")
	}
	if e, _ := New(ctx, "gtts", Config{Fallback: "none"}); e.Name() != "gtts" {
		t.Errorf("Expected no fallback, got %s", e.Name())
	}
}
