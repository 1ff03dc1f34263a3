package calendar

import (
	"context"
	"sync"
)

// Mock is a mock implementation of Scheduler for testing.
type Mock struct {
	mu sync.Mutex

	// Configurable behavior
	AvailableSlotsFunc  func(ctx context.Context) ([]Slot, error)
	IsSlotAvailableFunc func(ctx context.Context, proposedTime string) (bool, error)
	BookSlotFunc        func(ctx context.Context, proposedTime, email string) (*Booking, error)

	// Default behavior when no funcs are set
	Slots     []Slot
	Available bool

	// Captured calls for assertions
	Checked []string
	Booked  []BookedCall
}

// BookedCall records one BookSlot invocation.
type BookedCall struct {
	ProposedTime string
	Email        string
}

// NewMock creates a new Mock scheduler.
func NewMock() *Mock {
	return &Mock{Available: true}
}

// AvailableSlots implements Scheduler.
func (m *Mock) AvailableSlots(ctx context.Context) ([]Slot, error) {
	if m.AvailableSlotsFunc != nil {
		return m.AvailableSlotsFunc(ctx)
	}
	return m.Slots, nil
}

// IsSlotAvailable implements Scheduler.
func (m *Mock) IsSlotAvailable(ctx context.Context, proposedTime string) (bool, error) {
	m.mu.Lock()
	m.Checked = append(m.Checked, proposedTime)
	m.mu.Unlock()

	if m.IsSlotAvailableFunc != nil {
		return m.IsSlotAvailableFunc(ctx, proposedTime)
	}
	return m.Available, nil
}

// BookSlot implements Scheduler.
func (m *Mock) BookSlot(ctx context.Context, proposedTime, email string) (*Booking, error) {
	m.mu.Lock()
	m.Booked = append(m.Booked, BookedCall{ProposedTime: proposedTime, Email: email})
	m.mu.Unlock()

	if m.BookSlotFunc != nil {
		return m.BookSlotFunc(ctx, proposedTime, email)
	}
	return &Booking{
		EventID:  "mock-event",
		HTMLLink: "https://calendar.example.com/event/mock-event",
		Start:    proposedTime,
		Email:    email,
	}, nil
}
