// Package relay owns the two socket connections of one phone call and
// drives the conversation state machine between them. Two pumps run
// concurrently: one forwards caller audio from the telephony stream to
// the AI session, the other applies AI-session events (audio, text
// deltas, transcriptions, function calls, barge-in) back onto the call.
//
// The call moves through CONNECTING, ACTIVE, CLOSING, and CLOSED.
// Closing can be triggered by a hangup frame, by either transport
// dropping, or by a pump error; whichever fires first, post-call
// processing and session deletion run exactly once.
package relay

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"

	"github.com/technvi/voicebridge/internal/log"
	"github.com/technvi/voicebridge/pkg/dispatch"
	"github.com/technvi/voicebridge/pkg/directory"
	"github.com/technvi/voicebridge/pkg/realtime"
	"github.com/technvi/voicebridge/pkg/session"
	"github.com/technvi/voicebridge/pkg/telephony"
)

// State is the call's lifecycle phase.
type State int

// Call states.
const (
	StateConnecting State = iota
	StateActive
	StateClosing
	StateClosed
)

// AIConn is the AI-session leg of the relay.
type AIConn interface {
	ReadEvent() (realtime.Event, error)
	Send(msg any) error
	Close() error
	IsOpen() bool
}

// TelephonyConn is the telephony leg of the relay.
type TelephonyConn interface {
	ReadFrame() (telephony.Frame, error)
	Send(msg any) error
	Close() error
}

// PostCallProcessor runs once when the call closes.
type PostCallProcessor interface {
	Process(ctx context.Context, callID string)
}

// Relay bridges one call between the telephony stream and the AI
// session.
type Relay struct {
	CallID     string
	Store      *session.Store
	AI         AIConn
	Tel        TelephonyConn
	Dispatcher *dispatch.Dispatcher
	Directory  directory.Service
	PostCall   PostCallProcessor

	sess *session.Session

	stateMu sync.Mutex
	state   State

	closeOnce sync.Once
}

// Run drives the call until both legs are done. It blocks for the
// lifetime of the call and returns with the session deleted.
func (r *Relay) Run(ctx context.Context) {
	r.setState(StateConnecting)

	r.sess = r.Store.GetOrCreate(r.CallID, NewCallerInstructions)
	log.Info("relay started", "call_id", r.CallID, "caller", r.sess.CallerNumber)

	if err := r.AI.Send(realtime.SessionUpdate(r.sessionOptions())); err != nil {
		log.Error("initial session configuration failed", "call_id", r.CallID, "error", err)
	}

	r.setState(StateActive)

	telDone := make(chan struct{})
	go func() {
		defer close(telDone)
		r.telephonyPump(ctx)
	}()

	r.aiPump(ctx)

	// The AI leg is gone; converge. Closing the telephony socket
	// unblocks its pump if the caller is still connected.
	r.finish(ctx)
	r.Tel.Close()
	<-telDone

	r.setState(StateClosed)
	log.Info("relay finished", "call_id", r.CallID)
}

// sessionOptions builds the initial session configuration from the
// call's active instructions and the advertised tool schemas.
func (r *Relay) sessionOptions() realtime.SessionOptions {
	return realtime.SessionOptions{
		TurnDetection:     &realtime.TurnDetection{Type: "server_vad"},
		Tools:             dispatch.Tools(),
		InputAudioFormat:  realtime.AudioFormat,
		OutputAudioFormat: realtime.AudioFormat,
		Voice:             realtime.DefaultVoice,
		Instructions:      r.sess.Instructions + bookingPolicy,
		Modalities:        []string{"text", "audio"},
		Temperature:       realtime.DefaultTemperature,
		InputAudioTranscription: &realtime.Transcription{
			Model:    realtime.DefaultTranscriptionModel,
			Language: realtime.DefaultLanguage,
		},
		Include: []string{realtime.TranscriptionLogprobs},
	}
}

// telephonyPump forwards caller audio to the AI session and watches for
// stream start and hangup.
func (r *Relay) telephonyPump(ctx context.Context) {
	for {
		frame, err := r.Tel.ReadFrame()
		if errors.Is(err, telephony.ErrMalformedFrame) {
			log.Warn("skipping malformed telephony frame", "call_id", r.CallID)
			continue
		}
		if err != nil {
			log.Info("telephony stream closed", "call_id", r.CallID, "error", err)
			r.finish(ctx)
			r.AI.Close()
			return
		}

		switch frame.Event {
		case telephony.EventMedia:
			if frame.Media == nil || !r.AI.IsOpen() {
				continue
			}
			// Fire and forget; a failed append means the AI leg is
			// about to tear the call down anyway.
			r.AI.Send(realtime.AudioAppend(frame.Media.Payload))

		case telephony.EventStart:
			if frame.Start != nil {
				r.sess.SetStreamID(frame.Start.StreamID)
			}
			log.Info("telephony audio stream started", "call_id", r.CallID)

		case telephony.EventHangup:
			log.Info("call hangup", "call_id", r.CallID)
			r.finish(ctx)
			r.AI.Close()
			return
		}
	}
}

// aiPump applies AI-session events until the connection drops.
func (r *Relay) aiPump(ctx context.Context) {
	for {
		ev, err := r.AI.ReadEvent()
		if errors.Is(err, realtime.ErrMalformedEvent) {
			log.Warn("skipping malformed AI event", "call_id", r.CallID)
			continue
		}
		if err != nil {
			log.Info("AI session closed", "call_id", r.CallID, "error", err)
			return
		}
		r.handleEvent(ctx, ev)
	}
}

// handleEvent applies one AI-session event to the call.
func (r *Relay) handleEvent(ctx context.Context, ev realtime.Event) {
	switch ev.Type {
	case realtime.EventSessionUpdated:
		log.Info("session configuration acknowledged", "call_id", r.CallID)

	case realtime.EventError:
		// Errors on the AI leg are not fatal to the call.
		if ev.Error != nil {
			log.Error("AI session error", "call_id", r.CallID, "error", ev.Error.Message, "code", ev.Error.Code)
		} else {
			log.Error("AI session error", "call_id", r.CallID)
		}

	case realtime.EventTextDelta:
		r.sess.AppendAssistantText(ev.ItemID, ev.Delta)

	case realtime.EventAudioDelta:
		raw, err := base64.StdEncoding.DecodeString(ev.Delta)
		if err != nil {
			log.Warn("dropping undecodable audio delta", "call_id", r.CallID)
			return
		}
		r.Tel.Send(telephony.PlayAudio(base64.StdEncoding.EncodeToString(raw)))

	case realtime.EventFunctionCallDone:
		r.handleFunctionCall(ctx, ev)

	case realtime.EventTranscriptionDelta:
		r.sess.AppendTranscription(ev.ItemID, ev.Delta)

	case realtime.EventTranscriptionCompleted:
		r.sess.CompleteTranscription(ev.ItemID, ev.Transcript)
		r.maybeCaptureRole(ctx, ev.Transcript)

	case realtime.EventSpeechStarted:
		// Barge-in: cut queued assistant audio and cancel the
		// in-progress response.
		r.Tel.Send(telephony.ClearAudio(r.sess.StreamID()))
		r.AI.Send(realtime.ResponseCancel())

	default:
		log.Debug("ignoring AI event", "call_id", r.CallID, "type", ev.Type)
	}
}

// handleFunctionCall dispatches a completed function call and splices
// its outcome back into the AI session.
func (r *Relay) handleFunctionCall(ctx context.Context, ev realtime.Event) {
	outcome, ok := r.Dispatcher.Dispatch(ctx, r.sess, ev.Name, ev.Arguments, ev.ItemID)
	if !ok {
		return
	}

	r.AI.Send(realtime.FunctionOutput(ev.ItemID, ev.CallID, outcome.Result))
	r.AI.Send(realtime.ResponseCreate(outcome.Instructions))
}

// maybeCaptureRole registers a first-time caller once they say whether
// they are a contractor or a customer, then switches the session to the
// standard instructions.
func (r *Relay) maybeCaptureRole(ctx context.Context, transcript string) {
	if !r.sess.NeedsRole() {
		return
	}

	lower := strings.ToLower(transcript)
	var role string
	switch {
	case strings.Contains(lower, "contractor"):
		role = "contractor"
	case strings.Contains(lower, "customer"):
		role = "customer"
	default:
		return
	}

	result, err := r.Directory.Register(ctx, r.sess.CallerNumber, role)
	if err != nil {
		log.Error("role registration failed", "call_id", r.CallID, "role", role, "error", err)
		return
	}
	if result.Status != directory.StatusCreated && result.Status != directory.StatusExists {
		log.Warn("role registration rejected", "call_id", r.CallID, "status", result.Status)
		return
	}

	r.sess.MarkRoleDeclared(StandardInstructions)
	log.Info("caller role registered", "call_id", r.CallID, "role", role, "caller", r.sess.CallerNumber)

	r.AI.Send(realtime.SessionUpdate(realtime.SessionOptions{Instructions: StandardInstructions}))
	r.AI.Send(realtime.ResponseCreate(
		"Thank the user for specifying they are a " + role +
			". Now continue with normal conversation, offering to help with product information or appointment scheduling."))
}

// finish runs post-call processing exactly once, no matter which
// trigger fired first.
func (r *Relay) finish(ctx context.Context) {
	r.closeOnce.Do(func() {
		r.setState(StateClosing)
		if r.PostCall != nil {
			r.PostCall.Process(ctx, r.CallID)
		}
	})
}

func (r *Relay) setState(s State) {
	r.stateMu.Lock()
	r.state = s
	r.stateMu.Unlock()
}

// CurrentState returns the call's lifecycle phase.
func (r *Relay) CurrentState() State {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.state
}
