package realtime

import "encoding/json"

// Audio codec used on both legs of the AI session. The telephony stream
// is mu-law at 8 kHz, which the API accepts natively, so audio passes
// through without transcoding.
const AudioFormat = "g711_ulaw"

// Defaults for session configuration.
const (
	DefaultVoice              = "alloy"
	DefaultTemperature        = 0.8
	DefaultTranscriptionModel = "gpt-4o-transcribe"
	DefaultLanguage           = "en"
)

// Tool describes one function the assistant may call.
type Tool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// TurnDetection configures server-side voice activity detection.
type TurnDetection struct {
	Type string `json:"type"`
}

// Transcription configures input audio transcription.
type Transcription struct {
	Model    string `json:"model"`
	Language string `json:"language,omitempty"`
}

// SessionOptions is the session configuration payload. Zero fields are
// omitted, so a partial update (e.g. instructions only) reuses the same
// type.
type SessionOptions struct {
	TurnDetection           *TurnDetection `json:"turn_detection,omitempty"`
	Tools                   []Tool         `json:"tools,omitempty"`
	InputAudioFormat        string         `json:"input_audio_format,omitempty"`
	OutputAudioFormat       string         `json:"output_audio_format,omitempty"`
	Voice                   string         `json:"voice,omitempty"`
	Instructions            string         `json:"instructions,omitempty"`
	Modalities              []string       `json:"modalities,omitempty"`
	Temperature             float64        `json:"temperature,omitempty"`
	InputAudioTranscription *Transcription `json:"input_audio_transcription,omitempty"`

	// Include requests extra fields on server events, e.g.
	// transcription logprobs.
	Include []string `json:"include,omitempty"`
}

// TranscriptionLogprobs is the include entry that asks for confidence
// scores alongside input transcriptions.
const TranscriptionLogprobs = "item.input_audio_transcription.logprobs"

// SessionUpdate builds a session.update message.
func SessionUpdate(opts SessionOptions) map[string]any {
	return map[string]any{
		"type":    "session.update",
		"session": opts,
	}
}

// AudioAppend builds an input_audio_buffer.append message for one
// base64 audio payload.
func AudioAppend(payload string) map[string]any {
	return map[string]any{
		"type":  "input_audio_buffer.append",
		"audio": payload,
	}
}

// FunctionOutput builds a conversation.item.create message carrying a
// function call's result. The output is the JSON encoding of
// {"result": <result>}.
func FunctionOutput(itemID, callID string, result any) map[string]any {
	output, err := json.Marshal(map[string]any{"result": result})
	if err != nil {
		output = []byte(`{"result":null}`)
	}
	return map[string]any{
		"type": "conversation.item.create",
		"item": map[string]any{
			"id":      itemID,
			"type":    "function_call_output",
			"call_id": callID,
			"output":  string(output),
		},
	}
}

// ResponseCreate builds a response.create message steering the
// assistant's next utterance with the given instructions.
func ResponseCreate(instructions string) map[string]any {
	return map[string]any{
		"type": "response.create",
		"response": map[string]any{
			"modalities":   []string{"text", "audio"},
			"temperature":  DefaultTemperature,
			"instructions": instructions,
		},
	}
}

// ResponseCancel builds a response.cancel message, interrupting any
// in-progress response.
func ResponseCancel() map[string]any {
	return map[string]any{"type": "response.cancel"}
}
