// Package session holds the per-call conversation state. One Session
// exists per live call, created by the inbound-call webhook and deleted
// once post-call processing has run. The session's two relay pumps and
// the tool dispatcher they invoke are the only writers for a given call,
// but they run concurrently, so mutation goes through locked helpers.
package session

import (
	"sync"
	"time"

	"github.com/technvi/voicebridge/pkg/calendar"
	"github.com/technvi/voicebridge/pkg/directory"
)

// PlaceholderEmail is used for bookings when the caller has no complete
// registration on file.
const PlaceholderEmail = "customer@example.com"

// Tool-call record kinds.
const (
	ToolKindSearch    = "search_product_database"
	ToolKindListSlots = "get_available_slots"
	ToolKindCheckSlot = "check_availability"
	ToolKindBook      = "book_appointment"
)

// Fragment accumulates streamed partial text for one utterance.
type Fragment struct {
	Text     string `json:"text"`
	Complete bool   `json:"complete"`
}

// AssistantResponse accumulates the assistant's text for one utterance.
type AssistantResponse struct {
	ItemID    string    `json:"item_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ToolCall records one dispatched function call.
type ToolCall struct {
	Kind      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Args      map[string]any `json:"args"`
	Result    any            `json:"result"`
	ItemID    string         `json:"item_id"`
}

// Appointment records one booking attempt.
type Appointment struct {
	Timestamp    time.Time         `json:"timestamp"`
	ProposedTime string            `json:"proposed_time"`
	Email        string            `json:"email"`
	Result       *calendar.Booking `json:"result"`
	ItemID       string            `json:"item_id"`
}

// Session is the mutable record for one phone call.
type Session struct {
	mu sync.Mutex

	CallID       string
	CallerNumber string
	CalledNumber string
	CreatedAt    time.Time

	UserExists   bool
	UserDetails  *directory.Details
	RoleDeclared bool
	Instructions string

	// streamID arrives on the telephony "start" frame and is needed to
	// target clearAudio on barge-in.
	streamID string

	Transcriptions     map[string]*Fragment
	AssistantResponses []*AssistantResponse
	ToolCalls          []*ToolCall
	Appointments       []*Appointment
}

// New creates a session for a call.
func New(callID, caller, called string) *Session {
	return &Session{
		CallID:         callID,
		CallerNumber:   caller,
		CalledNumber:   called,
		CreatedAt:      time.Now(),
		Transcriptions: make(map[string]*Fragment),
	}
}

// SetStreamID records the telephony stream identifier.
func (s *Session) SetStreamID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streamID = id
}

// StreamID returns the recorded telephony stream identifier.
func (s *Session) StreamID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamID
}

// AppendTranscription appends a user transcription delta for an
// utterance, creating the fragment if needed.
func (s *Session) AppendTranscription(itemID, delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.Transcriptions[itemID]; ok {
		f.Text += delta
		return
	}
	s.Transcriptions[itemID] = &Fragment{Text: delta}
}

// CompleteTranscription marks an utterance complete with its final text.
// The final text replaces whatever was accumulated.
func (s *Session) CompleteTranscription(itemID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Transcriptions[itemID] = &Fragment{Text: text, Complete: true}
}

// AppendAssistantText appends an assistant text delta for an utterance,
// creating the response entry if needed.
func (s *Session) AppendAssistantText(itemID, delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.AssistantResponses {
		if r.ItemID == itemID {
			r.Text += delta
			return
		}
	}
	s.AssistantResponses = append(s.AssistantResponses, &AssistantResponse{
		ItemID:    itemID,
		Text:      delta,
		Timestamp: time.Now(),
	})
}

// RecordToolCall appends a tool-call record.
func (s *Session) RecordToolCall(tc *ToolCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ToolCalls = append(s.ToolCalls, tc)
}

// RecordAppointment appends an appointment record.
func (s *Session) RecordAppointment(a *Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Appointments = append(s.Appointments, a)
}

// MarkRoleDeclared flags that the caller has declared a role and swaps
// the active instructions.
func (s *Session) MarkRoleDeclared(instructions string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RoleDeclared = true
	s.Instructions = instructions
}

// NeedsRole reports whether this call is still waiting for a first-time
// caller to declare a role.
func (s *Session) NeedsRole() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.UserExists && !s.RoleDeclared
}

// BestEmail resolves the booking email: the profile email for a fully
// registered caller, a placeholder otherwise.
func (s *Session) BestEmail() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UserExists && s.UserDetails != nil &&
		s.UserDetails.Status == directory.StatusSuccess &&
		s.UserDetails.Data != nil && s.UserDetails.Data.Email != "" {
		return s.UserDetails.Data.Email
	}
	return PlaceholderEmail
}

// Snapshot is a consistent copy of the session's conversation logs,
// taken under the session lock. Post-call processing reads from a
// snapshot because the AI pump may still be appending while the
// telephony side tears the call down.
type Snapshot struct {
	Transcriptions     map[string]Fragment
	AssistantResponses []AssistantResponse
	ToolCalls          []*ToolCall
	Appointments       []*Appointment
}

// Snapshot copies the four conversation logs. Fragments and assistant
// responses are copied by value since the pumps mutate them in place;
// tool-call and appointment records are immutable once appended.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Transcriptions:     make(map[string]Fragment, len(s.Transcriptions)),
		AssistantResponses: make([]AssistantResponse, 0, len(s.AssistantResponses)),
		ToolCalls:          append([]*ToolCall(nil), s.ToolCalls...),
		Appointments:       append([]*Appointment(nil), s.Appointments...),
	}
	for id, f := range s.Transcriptions {
		snap.Transcriptions[id] = *f
	}
	for _, r := range s.AssistantResponses {
		snap.AssistantResponses = append(snap.AssistantResponses, *r)
	}
	return snap
}

// Empty reports whether nothing worth summarizing was recorded.
func (s *Session) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Transcriptions) == 0 && len(s.AssistantResponses) == 0 && len(s.ToolCalls) == 0
}
