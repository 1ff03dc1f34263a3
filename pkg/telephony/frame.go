// Package telephony speaks the media-stream frame protocol of the
// telephony provider: JSON frames over a websocket, discriminated by an
// "event" field. Inbound audio arrives as base64 mu-law; outbound audio
// is sent back the same way via playAudio frames.
package telephony

import (
	"encoding/json"
	"errors"
)

// Inbound frame events.
const (
	EventMedia  = "media"
	EventStart  = "start"
	EventHangup = "hangup"
)

// Outbound frame events.
const (
	EventPlayAudio  = "playAudio"
	EventClearAudio = "clearAudio"
)

// Audio parameters of the media stream.
const (
	ContentType = "audio/x-mulaw"
	SampleRate  = 8000
)

// ErrMalformedFrame indicates an inbound frame that could not be
// decoded. The pump skips such frames and keeps reading.
var ErrMalformedFrame = errors.New("telephony: malformed frame")

// Media carries one chunk of call audio, base64 encoded.
type Media struct {
	ContentType string `json:"contentType,omitempty"`
	SampleRate  int    `json:"sampleRate,omitempty"`
	Payload     string `json:"payload"`
}

// Start announces the beginning of the audio stream.
type Start struct {
	StreamID string `json:"streamId"`
}

// Frame is one inbound message from the telephony socket.
type Frame struct {
	Event string `json:"event"`
	Media *Media `json:"media,omitempty"`
	Start *Start `json:"start,omitempty"`
}

// ParseFrame decodes one inbound frame.
func ParseFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, ErrMalformedFrame
	}
	if f.Event == "" {
		return Frame{}, ErrMalformedFrame
	}
	return f, nil
}

// PlayAudioFrame is the outbound frame that plays audio to the caller.
type PlayAudioFrame struct {
	Event string `json:"event"`
	Media Media  `json:"media"`
}

// ClearAudioFrame is the outbound frame that discards queued audio,
// used to cut the assistant off when the caller barges in.
type ClearAudioFrame struct {
	Event    string `json:"event"`
	StreamID string `json:"stream_id"`
}

// PlayAudio builds a playAudio frame for one base64 audio payload.
func PlayAudio(payload string) PlayAudioFrame {
	return PlayAudioFrame{
		Event: EventPlayAudio,
		Media: Media{
			ContentType: ContentType,
			SampleRate:  SampleRate,
			Payload:     payload,
		},
	}
}

// ClearAudio builds a clearAudio frame targeting a stream.
func ClearAudio(streamID string) ClearAudioFrame {
	return ClearAudioFrame{Event: EventClearAudio, StreamID: streamID}
}
