// Package summary runs the post-call pipeline: linearize everything a
// call recorded into one chronological transcript, obtain an
// invoice-style summary, and deliver it to the caller over the
// notification channel. It also owns the final session cleanup, which
// happens even when every delivery step fails.
package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/technvi/voicebridge/internal/log"
	"github.com/technvi/voicebridge/pkg/dispatch"
	"github.com/technvi/voicebridge/pkg/notify"
	"github.com/technvi/voicebridge/pkg/session"
)

// Summarizer is the post-call processor.
type Summarizer struct {
	Store    *session.Store
	Notifier notify.Notifier
}

// New creates a Summarizer.
func New(store *session.Store, notifier notify.Notifier) *Summarizer {
	return &Summarizer{Store: store, Notifier: notifier}
}

// Process runs post-call processing for one call and deletes the
// session. Delivery failures are logged and never block cleanup.
func (s *Summarizer) Process(ctx context.Context, callID string) {
	sess := s.Store.Get(callID)
	if sess == nil {
		log.Warn("post-call: no session", "call_id", callID)
		return
	}
	defer func() {
		s.Store.Delete(callID)
		log.Info("post-call: session cleaned up", "call_id", callID)
	}()

	if sess.Empty() {
		log.Warn("post-call: no conversation recorded", "call_id", callID)
		return
	}

	transcript := renderTranscript(buildEvents(sess.Snapshot()))
	invoice := s.Notifier.GenerateInvoice(ctx, transcript)

	caller := sess.CallerNumber
	if caller == "" || caller == "unknown" {
		log.Warn("post-call: no valid caller number for delivery", "call_id", callID)
		return
	}

	url, err := s.Notifier.RenderAndLink(ctx, invoice)
	if err != nil || url == "" {
		log.Warn("post-call: link creation failed, sending plain text", "call_id", callID, "error", err)
		if err := s.Notifier.SendText(ctx, caller, invoice); err != nil {
			log.Error("post-call: plain text delivery failed", "call_id", callID, "error", err)
		}
		return
	}

	if err := s.Notifier.SendLink(ctx, caller, url); err != nil {
		log.Error("post-call: link delivery failed", "call_id", callID, "error", err)
	}
}

// Event kinds in the linearized sequence.
const (
	kindUserMessage      = "user_message"
	kindAssistantMessage = "assistant_message"
	kindFunctionCall     = "function_call"
	kindAppointment      = "appointment"
)

type event struct {
	kind      string
	timestamp time.Time
	itemID    string
	text      string
	toolCall  *session.ToolCall
	appt      *session.Appointment
}

// buildEvents merges a session snapshot's four logs into one
// timestamp-ordered sequence. The snapshot keeps the merge safe while
// the AI pump may still be appending. Transcription fragments carry no
// original timestamp, so they are stamped with the merge time.
func buildEvents(snap session.Snapshot) []event {
	var events []event

	now := time.Now()
	for itemID, frag := range snap.Transcriptions {
		events = append(events, event{
			kind:      kindUserMessage,
			timestamp: now,
			itemID:    itemID,
			text:      frag.Text,
		})
	}
	for _, r := range snap.AssistantResponses {
		events = append(events, event{
			kind:      kindAssistantMessage,
			timestamp: r.Timestamp,
			itemID:    r.ItemID,
			text:      r.Text,
		})
	}
	for _, tc := range snap.ToolCalls {
		events = append(events, event{
			kind:      kindFunctionCall,
			timestamp: tc.Timestamp,
			itemID:    tc.ItemID,
			toolCall:  tc,
		})
	}
	for _, a := range snap.Appointments {
		events = append(events, event{
			kind:      kindAppointment,
			timestamp: a.Timestamp,
			itemID:    a.ItemID,
			appt:      a,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].timestamp.Before(events[j].timestamp)
	})
	return events
}

// renderTranscript formats the event sequence as a human-readable
// transcript with sections for dialogue, database queries, calendar
// queries, bookings, and a trailing appointment summary.
func renderTranscript(events []event) string {
	var b strings.Builder
	b.WriteString("CALL TRANSCRIPT & CONVERSATION\n")
	b.WriteString("============================\n\n")

	type booked struct {
		time string
		link string
	}
	var bookedAppointments []booked

	for _, ev := range events {
		switch ev.kind {
		case kindUserMessage:
			fmt.Fprintf(&b, "User: %s\n\n", ev.text)

		case kindAssistantMessage:
			fmt.Fprintf(&b, "Assistant: %s\n\n", ev.text)

		case kindFunctionCall:
			tc := ev.toolCall
			switch tc.Kind {
			case session.ToolKindSearch:
				query, _ := tc.Args["query"].(string)
				fmt.Fprintf(&b, "\nDATABASE QUERY: %s\n", query)
				fmt.Fprintf(&b, "RESULT: %v\n\n", tc.Result)
			case session.ToolKindListSlots, session.ToolKindCheckSlot:
				fmt.Fprintf(&b, "\nCALENDAR QUERY: %s\n", tc.Kind)
				if tc.Kind == session.ToolKindCheckSlot {
					proposed, _ := tc.Args["proposed_time"].(string)
					fmt.Fprintf(&b, "PROPOSED TIME: %s\n", proposed)
					if check, ok := tc.Result.(dispatch.SlotCheck); ok {
						fmt.Fprintf(&b, "AVAILABLE: %v\n\n", check.IsAvailable)
					} else {
						b.WriteString("\n")
					}
				}
			}

		case kindAppointment:
			a := ev.appt
			b.WriteString("\n===== APPOINTMENT BOOKING =====\n")
			fmt.Fprintf(&b, "Time: %s\n", a.ProposedTime)
			if a.Result != nil && a.Result.Error != "" {
				fmt.Fprintf(&b, "Status: Failed - %s\n\n", a.Result.Error)
				continue
			}
			b.WriteString("Status: Successfully booked\n")
			link := ""
			if a.Result != nil {
				link = a.Result.HTMLLink
			}
			fmt.Fprintf(&b, "Calendar Link: %s\n\n", link)
			bookedAppointments = append(bookedAppointments, booked{time: a.ProposedTime, link: link})
		}
	}

	if len(bookedAppointments) > 0 {
		b.WriteString("\n===== APPOINTMENT SUMMARY =====\n")
		for i, a := range bookedAppointments {
			fmt.Fprintf(&b, "Appointment #%d: %s\n", i+1, a.time)
			fmt.Fprintf(&b, "Link: %s\n", a.link)
		}
		b.WriteString("==============================\n\n")
	}

	return b.String()
}
