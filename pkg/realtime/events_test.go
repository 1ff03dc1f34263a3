package realtime

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseEvent(t *testing.T) {
	t.Run("transcription delta", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"type":"conversation.item.input_audio_transcription.delta","item_id":"item-1","delta":"hel"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev.Type != EventTranscriptionDelta {
			t.Errorf("wrong type: %q", ev.Type)
		}
		if ev.ItemID != "item-1" || ev.Delta != "hel" {
			t.Errorf("fields not decoded: %+v", ev)
		}
	})

	t.Run("transcription completed", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"type":"conversation.item.input_audio_transcription.completed","item_id":"item-1","transcript":"hello there"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev.Transcript != "hello there" {
			t.Errorf("transcript not decoded: %+v", ev)
		}
	})

	t.Run("function call done", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"type":"response.function_call_arguments.done","item_id":"fc-1","call_id":"call-1","name":"check_availability","arguments":"{\"proposed_time\":\"2026-09-01T10:00\"}"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev.Name != "check_availability" || ev.CallID != "call-1" {
			t.Errorf("fields not decoded: %+v", ev)
		}
	})

	t.Run("error event", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"type":"error","error":{"type":"invalid_request_error","code":"bad","message":"nope"}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev.Error == nil || ev.Error.Message != "nope" {
			t.Errorf("error payload not decoded: %+v", ev.Error)
		}
	})

	t.Run("not json", func(t *testing.T) {
		if _, err := ParseEvent([]byte("garbage")); !errors.Is(err, ErrMalformedEvent) {
			t.Errorf("expected ErrMalformedEvent, got %v", err)
		}
	})

	t.Run("missing type", func(t *testing.T) {
		if _, err := ParseEvent([]byte(`{"delta":"x"}`)); !errors.Is(err, ErrMalformedEvent) {
			t.Errorf("expected ErrMalformedEvent, got %v", err)
		}
	})
}

func TestAPIErrorString(t *testing.T) {
	e := &APIError{Code: "rate_limited", Message: "slow down"}
	if e.Error() != "realtime: API error [rate_limited]: slow down" {
		t.Errorf("unexpected message: %q", e.Error())
	}
	noCode := &APIError{Message: "slow down"}
	if noCode.Error() != "realtime: API error: slow down" {
		t.Errorf("unexpected message: %q", noCode.Error())
	}
}

func TestFunctionOutput(t *testing.T) {
	msg := FunctionOutput("item-1", "call-1", map[string]any{"is_available": true})

	item, ok := msg["item"].(map[string]any)
	if !ok {
		t.Fatalf("missing item: %+v", msg)
	}
	if item["call_id"] != "call-1" || item["type"] != "function_call_output" {
		t.Errorf("wrong item shape: %+v", item)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(item["output"].(string)), &payload); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	result, ok := payload["result"].(map[string]any)
	if !ok {
		t.Fatalf("output missing result wrapper: %+v", payload)
	}
	if result["is_available"] != true {
		t.Errorf("result not carried through: %+v", result)
	}
}

func TestResponseCreate(t *testing.T) {
	msg := ResponseCreate("thank the caller")
	resp := msg["response"].(map[string]any)
	if resp["instructions"] != "thank the caller" {
		t.Errorf("instructions not carried: %+v", resp)
	}
	mods := resp["modalities"].([]string)
	if len(mods) != 2 || mods[0] != "text" || mods[1] != "audio" {
		t.Errorf("wrong modalities: %v", mods)
	}
}
