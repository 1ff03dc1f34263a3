package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Server event types the relay reacts to. Anything else decodes fine
// but is handled as an ignored event.
const (
	EventSessionUpdated         = "session.updated"
	EventError                  = "error"
	EventTextDelta              = "response.text.delta"
	EventAudioDelta             = "response.audio.delta"
	EventFunctionCallDone       = "response.function_call_arguments.done"
	EventTranscriptionDelta     = "conversation.item.input_audio_transcription.delta"
	EventTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"
	EventSpeechStarted          = "input_audio_buffer.speech_started"
)

// ErrMalformedEvent indicates an inbound event that could not be
// decoded. The pump skips such events and keeps reading.
var ErrMalformedEvent = errors.New("realtime: malformed event")

// APIError carries an error event's payload.
type APIError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("realtime: API error [%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("realtime: API error: %s", e.Message)
}

// Event is one decoded server event. The event stream is a closed set
// of shapes discriminated by Type; fields not used by a given type stay
// at their zero value.
type Event struct {
	Type string `json:"type"`

	// Utterance / call correlation
	ItemID string `json:"item_id"`
	CallID string `json:"call_id"`

	// Streaming payloads
	Delta      string `json:"delta"`
	Transcript string `json:"transcript"`

	// Function calls
	Name      string `json:"name"`
	Arguments string `json:"arguments"`

	// Error events
	Error *APIError `json:"error"`
}

// ParseEvent decodes one server event.
func ParseEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, ErrMalformedEvent
	}
	if ev.Type == "" {
		return Event{}, ErrMalformedEvent
	}
	return ev, nil
}
