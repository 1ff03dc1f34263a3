package calendar

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

func TestNewGoogleCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("no credentials file configured", func(t *testing.T) {
		if _, err := NewGoogle(ctx, "", "primary"); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("missing credentials file", func(t *testing.T) {
		if _, err := NewGoogle(ctx, filepath.Join(t.TempDir(), "nope.json"), "primary"); err == nil {
			t.Error("expected an error for a missing key file")
		}
	})

	t.Run("malformed credentials file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "key.json")
		if err := os.WriteFile(path, []byte("not a service account key"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := NewGoogle(ctx, path, "primary"); err == nil {
			t.Error("expected an error for a malformed key file")
		}
	})
}

func TestParseProposedTime(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		got, err := parseProposedTime("2026-09-01T10:00:00+05:30")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Hour() != 10 {
			t.Errorf("wrong hour: %v", got)
		}
	})

	t.Run("iso without zone", func(t *testing.T) {
		got, err := parseProposedTime("2026-09-01T14:30:00")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Location() != time.Local {
			t.Errorf("zoneless time should be local: %v", got.Location())
		}
		if got.Hour() != 14 || got.Minute() != 30 {
			t.Errorf("wrong time: %v", got)
		}
	})

	t.Run("iso without seconds", func(t *testing.T) {
		got, err := parseProposedTime("2026-09-01T14:30")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Minute() != 30 {
			t.Errorf("wrong time: %v", got)
		}
	})

	t.Run("unparseable", func(t *testing.T) {
		_, err := parseProposedTime("tomorrow at noon")
		if !errors.Is(err, ErrBadTime) {
			t.Errorf("expected ErrBadTime, got %v", err)
		}
	})
}

func TestOverlapsBusy(t *testing.T) {
	busy := []*gcal.TimePeriod{
		{Start: "2026-09-01T10:00:00Z", End: "2026-09-01T11:00:00Z"},
	}
	at := func(s string) time.Time {
		tm, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t.Fatalf("bad test time %q: %v", s, err)
		}
		return tm
	}

	cases := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"entirely inside", "2026-09-01T10:15:00Z", "2026-09-01T10:45:00Z", true},
		{"straddles start", "2026-09-01T09:30:00Z", "2026-09-01T10:30:00Z", true},
		{"straddles end", "2026-09-01T10:30:00Z", "2026-09-01T11:30:00Z", true},
		{"before", "2026-09-01T08:00:00Z", "2026-09-01T09:00:00Z", false},
		{"after", "2026-09-01T12:00:00Z", "2026-09-01T13:00:00Z", false},
		{"touching end", "2026-09-01T11:00:00Z", "2026-09-01T12:00:00Z", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := overlapsBusy(busy, at(tc.start), at(tc.end)); got != tc.want {
				t.Errorf("overlapsBusy(%s, %s) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}

	t.Run("unparseable busy period ignored", func(t *testing.T) {
		broken := []*gcal.TimePeriod{{Start: "not a time", End: "also not"}}
		if overlapsBusy(broken, at("2026-09-01T10:00:00Z"), at("2026-09-01T11:00:00Z")) {
			t.Error("broken busy periods must be skipped")
		}
	})
}
