package calendar

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/technvi/voicebridge/internal/log"
)

// Business hours used when generating open slots.
const (
	openHour  = 9
	closeHour = 17
	slotDays  = 5
)

// Google implements Scheduler against the Google Calendar API.
type Google struct {
	svc        *calendar.Service
	calendarID string
}

// NewGoogle creates a Google Calendar scheduler using a service-account
// credentials file. The credentials are validated up front so a broken
// key file fails at startup, not on the first booking.
func NewGoogle(ctx context.Context, credentialsFile, calendarID string) (*Google, error) {
	if credentialsFile == "" {
		return nil, ErrNotConfigured
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	ts, err := serviceAccountTokenSource(ctx, credentialsFile)
	if err != nil {
		return nil, err
	}

	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("calendar: create service: %w", err)
	}

	return &Google{svc: svc, calendarID: calendarID}, nil
}

// serviceAccountTokenSource builds an OAuth2 token source from a
// service-account JSON key, scoped to calendar access.
func serviceAccountTokenSource(ctx context.Context, credentialsFile string) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("calendar: read credentials: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("calendar: parse credentials: %w", err)
	}
	return conf.TokenSource(ctx), nil
}

// AvailableSlots implements Scheduler. It walks business hours over the
// next few days and drops every slot that overlaps a busy period.
func (g *Google) AvailableSlots(ctx context.Context) ([]Slot, error) {
	now := time.Now()
	end := now.AddDate(0, 0, slotDays)

	busy, err := g.busyPeriods(ctx, now, end)
	if err != nil {
		return nil, err
	}

	var slots []Slot
	for day := 0; day < slotDays; day++ {
		date := now.AddDate(0, 0, day)
		for hour := openHour; hour < closeHour; hour++ {
			start := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.Local)
			if start.Before(now) {
				continue
			}
			finish := start.Add(SlotDurationMinutes * time.Minute)
			if overlapsBusy(busy, start, finish) {
				continue
			}
			slots = append(slots, Slot{
				Start: start.Format(time.RFC3339),
				End:   finish.Format(time.RFC3339),
			})
		}
	}
	return slots, nil
}

// IsSlotAvailable implements Scheduler.
func (g *Google) IsSlotAvailable(ctx context.Context, proposedTime string) (bool, error) {
	start, err := parseProposedTime(proposedTime)
	if err != nil {
		return false, err
	}
	finish := start.Add(SlotDurationMinutes * time.Minute)

	busy, err := g.busyPeriods(ctx, start, finish)
	if err != nil {
		return false, err
	}
	return !overlapsBusy(busy, start, finish), nil
}

// BookSlot implements Scheduler.
func (g *Google) BookSlot(ctx context.Context, proposedTime, email string) (*Booking, error) {
	start, err := parseProposedTime(proposedTime)
	if err != nil {
		return nil, err
	}
	finish := start.Add(SlotDurationMinutes * time.Minute)

	event := &calendar.Event{
		Summary:     "Technvi appointment",
		Description: fmt.Sprintf("Appointment booked by phone for %s", email),
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: finish.Format(time.RFC3339)},
		Attendees:   []*calendar.EventAttendee{{Email: email}},
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: insert event: %w", err)
	}

	log.Info("appointment booked", "start", proposedTime, "email", email, "event_id", created.Id)
	return &Booking{
		EventID:  created.Id,
		HTMLLink: created.HtmlLink,
		Start:    proposedTime,
		Email:    email,
	}, nil
}

func (g *Google) busyPeriods(ctx context.Context, from, to time.Time) ([]*calendar.TimePeriod, error) {
	req := &calendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: g.calendarID}},
	}
	resp, err := g.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: freebusy query: %w", err)
	}
	cal, ok := resp.Calendars[g.calendarID]
	if !ok {
		return nil, nil
	}
	return cal.Busy, nil
}

func overlapsBusy(busy []*calendar.TimePeriod, start, end time.Time) bool {
	for _, p := range busy {
		bs, err1 := time.Parse(time.RFC3339, p.Start)
		be, err2 := time.Parse(time.RFC3339, p.End)
		if err1 != nil || err2 != nil {
			continue
		}
		if start.Before(be) && bs.Before(end) {
			return true
		}
	}
	return false
}

// parseProposedTime accepts the formats the AI session produces for
// appointment times: RFC 3339 and the bare ISO form without a zone.
func parseProposedTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTime, s)
}
