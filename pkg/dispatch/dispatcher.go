// Package dispatch maps function-call events from the AI session onto
// the external collaborators and shapes their results back into the
// conversational protocol. Every recognized call produces a structured
// result plus a natural-language instruction steering the assistant's
// next utterance.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/technvi/voicebridge/internal/log"
	"github.com/technvi/voicebridge/pkg/calendar"
	"github.com/technvi/voicebridge/pkg/search"
	"github.com/technvi/voicebridge/pkg/session"
)

// Function names the dispatcher recognizes.
const (
	FnSearchProducts  = "search_product_database"
	FnAvailableSlots  = "get_available_slots"
	FnCheckSlot       = "check_slot_availability"
	FnBookAppointment = "book_appointment"
)

// now is a hook for tests that assert record ordering.
var now = time.Now

// Outcome is the dispatcher's answer to one function call: the
// structured result for the function output message and the instruction
// text for the follow-up response trigger.
type Outcome struct {
	Result       any
	Instructions string
}

// SlotCheck is the result payload of check_slot_availability. When the
// slot was available the booking happens in the same dispatch, so
// BookingResult rides along.
type SlotCheck struct {
	IsAvailable   bool              `json:"is_available"`
	ProposedTime  string            `json:"proposed_time"`
	BookingResult *calendar.Booking `json:"booking_result,omitempty"`
}

// Dispatcher routes function calls to collaborators.
type Dispatcher struct {
	Search    search.Searcher
	Scheduler calendar.Scheduler
}

// New creates a Dispatcher.
func New(searcher search.Searcher, scheduler calendar.Scheduler) *Dispatcher {
	return &Dispatcher{Search: searcher, Scheduler: scheduler}
}

// Dispatch executes one function call against the owning call's session.
// rawArgs is the JSON argument string from the AI session; itemID
// correlates records with the utterance that triggered the call. An
// unrecognized function name yields (nil, false): no result, no
// follow-up.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *session.Session, name, rawArgs, itemID string) (*Outcome, bool) {
	var args map[string]any
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			log.Error("tool call: bad arguments", "function", name, "error", err)
			return nil, false
		}
	}

	log.Info("tool call", "function", name, "call_id", sess.CallID)

	switch name {
	case FnSearchProducts:
		return d.searchProducts(ctx, sess, args, itemID), true
	case FnAvailableSlots:
		return d.availableSlots(ctx, sess, args, itemID), true
	case FnCheckSlot:
		return d.checkSlot(ctx, sess, args, itemID), true
	case FnBookAppointment:
		return d.bookAppointment(ctx, sess, args, itemID), true
	default:
		// Unknown tool names are dropped; the assistant gets no output
		// and recovers on its own.
		log.Warn("tool call: unknown function", "function", name)
		return nil, false
	}
}

func (d *Dispatcher) searchProducts(ctx context.Context, sess *session.Session, args map[string]any, itemID string) *Outcome {
	query, _ := args["query"].(string)
	answer := d.Search.Search(ctx, query)

	sess.RecordToolCall(&session.ToolCall{
		Kind:      session.ToolKindSearch,
		Timestamp: now(),
		Args:      args,
		Result:    answer,
		ItemID:    itemID,
	})

	return &Outcome{
		Result:       answer,
		Instructions: "Share the product information from the database search with the user in a helpful way.",
	}
}

func (d *Dispatcher) availableSlots(ctx context.Context, sess *session.Session, args map[string]any, itemID string) *Outcome {
	slots, err := d.Scheduler.AvailableSlots(ctx)
	if err != nil {
		log.Error("tool call: list slots failed", "error", err)
		slots = nil
	}
	if slots == nil {
		slots = []calendar.Slot{}
	}

	sess.RecordToolCall(&session.ToolCall{
		Kind:      session.ToolKindListSlots,
		Timestamp: now(),
		Args:      args,
		Result:    slots,
		ItemID:    itemID,
	})

	return &Outcome{
		Result:       slots,
		Instructions: "Share the available appointment slots with the user. Format the times in a clear, easy-to-understand way.",
	}
}

// checkSlot checks availability and, when the slot is free, books it in
// the same dispatch. From the conversation's point of view this is one
// operation; the caller never has to confirm a second time.
func (d *Dispatcher) checkSlot(ctx context.Context, sess *session.Session, args map[string]any, itemID string) *Outcome {
	proposedTime, _ := args["proposed_time"].(string)

	available, err := d.Scheduler.IsSlotAvailable(ctx, proposedTime)
	if err != nil {
		log.Error("tool call: availability check failed", "proposed_time", proposedTime, "error", err)
		available = false
	}

	sess.RecordToolCall(&session.ToolCall{
		Kind:      session.ToolKindCheckSlot,
		Timestamp: now(),
		Args:      args,
		Result:    SlotCheck{IsAvailable: available, ProposedTime: proposedTime},
		ItemID:    itemID,
	})

	if !available {
		return &Outcome{
			Result: SlotCheck{IsAvailable: false, ProposedTime: proposedTime},
			Instructions: fmt.Sprintf(
				"Inform the user that the requested time (%s) is not available. Suggest they ask for another time.",
				proposedTime),
		}
	}

	booking := d.book(ctx, sess, proposedTime, sess.BestEmail(), itemID)
	result := SlotCheck{IsAvailable: true, ProposedTime: proposedTime, BookingResult: booking}

	if booking.Error != "" {
		return &Outcome{
			Result: result,
			Instructions: fmt.Sprintf(
				"Tell the user that the time (%s) is available, but there was an error booking: %s. Suggest trying again or choosing another time.",
				proposedTime, booking.Error),
		}
	}
	return &Outcome{
		Result: result,
		Instructions: fmt.Sprintf(
			"Tell the user that the time (%s) was available and has been successfully booked. Confirm the appointment details.",
			proposedTime),
	}
}

// bookAppointment is the legacy direct-booking path, kept for
// compatibility with older tool schemas.
func (d *Dispatcher) bookAppointment(ctx context.Context, sess *session.Session, args map[string]any, itemID string) *Outcome {
	proposedTime, _ := args["proposed_time"].(string)

	email := sess.BestEmail()
	if email == session.PlaceholderEmail {
		if argEmail, _ := args["email"].(string); argEmail != "" {
			email = argEmail
		}
	}

	booking := d.book(ctx, sess, proposedTime, email, itemID)

	instructions := fmt.Sprintf("Inform the user about the appointment booking result for %s.", proposedTime)
	if booking.Error != "" {
		instructions += " Apologize and suggest trying another time slot."
	} else {
		instructions += " Confirm the appointment was successfully booked."
	}

	return &Outcome{Result: booking, Instructions: instructions}
}

// book runs the booking call and records the appointment. Booking
// failures are folded into the Booking value so the conversation can
// relay them.
func (d *Dispatcher) book(ctx context.Context, sess *session.Session, proposedTime, email, itemID string) *calendar.Booking {
	booking, err := d.Scheduler.BookSlot(ctx, proposedTime, email)
	if err != nil {
		log.Error("tool call: booking failed", "proposed_time", proposedTime, "error", err)
		booking = &calendar.Booking{Start: proposedTime, Email: email, Error: err.Error()}
	}

	sess.RecordAppointment(&session.Appointment{
		Timestamp:    now(),
		ProposedTime: proposedTime,
		Email:        email,
		Result:       booking,
		ItemID:       itemID,
	})

	return booking
}
