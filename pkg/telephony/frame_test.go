package telephony

import (
	"errors"
	"testing"
)

func TestParseFrame(t *testing.T) {
	t.Run("media", func(t *testing.T) {
		f, err := ParseFrame([]byte(`{"event":"media","media":{"payload":"AAAA"}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Event != EventMedia {
			t.Errorf("expected media event, got %q", f.Event)
		}
		if f.Media == nil || f.Media.Payload != "AAAA" {
			t.Errorf("expected payload AAAA, got %+v", f.Media)
		}
	})

	t.Run("start", func(t *testing.T) {
		f, err := ParseFrame([]byte(`{"event":"start","start":{"streamId":"st-1"}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Start == nil || f.Start.StreamID != "st-1" {
			t.Errorf("expected stream id st-1, got %+v", f.Start)
		}
	})

	t.Run("hangup", func(t *testing.T) {
		f, err := ParseFrame([]byte(`{"event":"hangup"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Event != EventHangup {
			t.Errorf("expected hangup event, got %q", f.Event)
		}
	})

	t.Run("not json", func(t *testing.T) {
		if _, err := ParseFrame([]byte("not json")); !errors.Is(err, ErrMalformedFrame) {
			t.Errorf("expected ErrMalformedFrame, got %v", err)
		}
	})

	t.Run("missing event", func(t *testing.T) {
		if _, err := ParseFrame([]byte(`{"media":{"payload":"x"}}`)); !errors.Is(err, ErrMalformedFrame) {
			t.Errorf("expected ErrMalformedFrame, got %v", err)
		}
	})
}

func TestPlayAudio(t *testing.T) {
	f := PlayAudio("cGF5bG9hZA==")
	if f.Event != EventPlayAudio {
		t.Errorf("expected playAudio event, got %q", f.Event)
	}
	if f.Media.ContentType != ContentType || f.Media.SampleRate != SampleRate {
		t.Errorf("wrong audio parameters: %+v", f.Media)
	}
	if f.Media.Payload != "cGF5bG9hZA==" {
		t.Errorf("payload not carried through: %q", f.Media.Payload)
	}
}

func TestClearAudio(t *testing.T) {
	f := ClearAudio("st-9")
	if f.Event != EventClearAudio {
		t.Errorf("expected clearAudio event, got %q", f.Event)
	}
	if f.StreamID != "st-9" {
		t.Errorf("expected stream id st-9, got %q", f.StreamID)
	}
}
