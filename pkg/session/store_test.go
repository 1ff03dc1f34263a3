package session

import (
	"testing"
)

func TestStoreLifecycle(t *testing.T) {
	t.Run("create get delete", func(t *testing.T) {
		st := NewStore()

		s := New("call-1", "+15551234567", "+15557654321")
		st.Create(s)

		if got := st.Get("call-1"); got != s {
			t.Error("expected stored session back")
		}
		if st.Len() != 1 {
			t.Errorf("expected 1 session, got %d", st.Len())
		}

		if !st.Delete("call-1") {
			t.Error("first delete should report true")
		}
		if st.Delete("call-1") {
			t.Error("second delete should report false")
		}
		if st.Get("call-1") != nil {
			t.Error("session should be gone after delete")
		}
	})

	t.Run("get missing", func(t *testing.T) {
		st := NewStore()
		if st.Get("nope") != nil {
			t.Error("expected nil for unknown call")
		}
	})

	t.Run("get or create synthesizes anonymous session", func(t *testing.T) {
		st := NewStore()

		s := st.GetOrCreate("call-2", "be helpful")
		if s == nil {
			t.Fatal("expected synthesized session")
		}
		if s.CallerNumber != "unknown" {
			t.Errorf("expected unknown caller, got %q", s.CallerNumber)
		}
		if s.Instructions != "be helpful" {
			t.Errorf("expected default instructions, got %q", s.Instructions)
		}
		if s.UserExists {
			t.Error("anonymous session should not be a known user")
		}

		// A second call returns the same record.
		if st.GetOrCreate("call-2", "other") != s {
			t.Error("expected same session on second GetOrCreate")
		}
	})

	t.Run("get or create returns existing session", func(t *testing.T) {
		st := NewStore()
		s := New("call-3", "+15550001111", "+15552223333")
		st.Create(s)

		if st.GetOrCreate("call-3", "ignored") != s {
			t.Error("expected webhook-created session back")
		}
	})
}
