// Package calendar provides appointment scheduling against an external
// calendar backend. Times cross the package boundary as ISO-8601 strings
// because they originate from the AI session's tool arguments.
package calendar

import (
	"context"
	"errors"
)

// Sentinel errors for the calendar package.
var (
	// ErrBadTime indicates the proposed time could not be parsed.
	ErrBadTime = errors.New("calendar: invalid proposed time")

	// ErrNotConfigured indicates no calendar backend was provided.
	ErrNotConfigured = errors.New("calendar: not configured")
)

// SlotDurationMinutes is the length of one bookable appointment.
const SlotDurationMinutes = 60

// Slot is one bookable time interval.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Booking is the outcome of a booking attempt. Error is populated instead
// of failing the call so the conversation can relay the failure verbatim.
type Booking struct {
	EventID  string `json:"event_id,omitempty"`
	HTMLLink string `json:"htmlLink,omitempty"`
	Start    string `json:"start,omitempty"`
	Email    string `json:"email,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Unconfigured is a Scheduler used when no calendar backend is set up.
// Every operation fails with ErrNotConfigured, which callers degrade
// into "not available" answers.
type Unconfigured struct{}

// AvailableSlots implements Scheduler.
func (Unconfigured) AvailableSlots(ctx context.Context) ([]Slot, error) {
	return nil, ErrNotConfigured
}

// IsSlotAvailable implements Scheduler.
func (Unconfigured) IsSlotAvailable(ctx context.Context, proposedTime string) (bool, error) {
	return false, ErrNotConfigured
}

// BookSlot implements Scheduler.
func (Unconfigured) BookSlot(ctx context.Context, proposedTime, email string) (*Booking, error) {
	return nil, ErrNotConfigured
}

// Scheduler is the scheduling collaborator.
type Scheduler interface {
	// AvailableSlots lists open slots over the coming days.
	AvailableSlots(ctx context.Context) ([]Slot, error)

	// IsSlotAvailable reports whether the proposed time is free.
	IsSlotAvailable(ctx context.Context, proposedTime string) (bool, error)

	// BookSlot books the proposed time for the given email.
	BookSlot(ctx context.Context, proposedTime, email string) (*Booking, error)
}
