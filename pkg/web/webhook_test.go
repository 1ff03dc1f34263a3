package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/technvi/voicebridge/pkg/directory"
	"github.com/technvi/voicebridge/pkg/relay"
	"github.com/technvi/voicebridge/pkg/session"
)

func newTestServer(dir directory.Service) (*Server, *session.Store) {
	st := session.NewStore()
	return NewServer(Options{
		Port:      "8080",
		Store:     st,
		Directory: dir,
		DialAI:    func() (relay.AIConn, error) { return nil, errors.New("not dialed in tests") },
	}), st
}

func postWebhook(t *testing.T, s *Server, form url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("webhook request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestWebhookKnownCaller(t *testing.T) {
	dir := directory.NewMock()
	dir.Users["+15550001111"] = &directory.User{
		PhoneNumber: "+15550001111",
		Name:        "Pat",
		Email:       "pat@example.com",
	}
	s, st := newTestServer(dir)

	resp, body := postWebhook(t, s, url.Values{
		"From":     {"+15550001111"},
		"To":       {"+15550002222"},
		"CallUUID": {"uuid-1"},
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/xml") {
		t.Errorf("expected XML content type, got %q", ct)
	}
	if !strings.Contains(body, "Hey Pat!") {
		t.Errorf("expected a personalized greeting:\n%s", body)
	}
	if !strings.Contains(body, "/media-stream/uuid-1") {
		t.Errorf("expected the media stream URL:\n%s", body)
	}

	sess := st.Get("uuid-1")
	if sess == nil {
		t.Fatal("session not created")
	}
	if !sess.UserExists || sess.Instructions != relay.StandardInstructions {
		t.Errorf("known caller should get the standard instructions: %+v", sess)
	}
	if sess.CallerNumber != "+15550001111" {
		t.Errorf("caller number not captured: %q", sess.CallerNumber)
	}
}

func TestWebhookNewCaller(t *testing.T) {
	s, st := newTestServer(directory.NewMock())

	_, body := postWebhook(t, s, url.Values{
		"From":     {"+15559998888"},
		"To":       {"+15550002222"},
		"CallUUID": {"uuid-2"},
	})

	if !strings.Contains(body, "contractor or a customer") {
		t.Errorf("new caller should be asked for a role:\n%s", body)
	}

	sess := st.Get("uuid-2")
	if sess == nil {
		t.Fatal("session not created")
	}
	if sess.UserExists || sess.Instructions != relay.NewCallerInstructions {
		t.Error("new caller should get the new-caller instructions")
	}
}

func TestWebhookIncompleteProfile(t *testing.T) {
	dir := directory.NewMock()
	dir.Users["+15550001111"] = &directory.User{PhoneNumber: "+15550001111"}
	s, _ := newTestServer(dir)

	_, body := postWebhook(t, s, url.Values{
		"From":     {"+15550001111"},
		"CallUUID": {"uuid-3"},
	})

	// Known number without a usable profile gets the plain greeting.
	if strings.Contains(body, "Hey ") {
		t.Errorf("no personalized greeting without a name:\n%s", body)
	}
	if !strings.Contains(body, "Welcome to Technvi AI!") {
		t.Errorf("expected the default greeting:\n%s", body)
	}
}

func TestWebhookMissingCallUUID(t *testing.T) {
	s, st := newTestServer(directory.NewMock())

	resp, body := postWebhook(t, s, url.Values{"From": {"+15550001111"}})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "<Hangup/>") {
		t.Errorf("expected a hangup response:\n%s", body)
	}
	if st.Len() != 0 {
		t.Error("no session without a call UUID")
	}
}

func TestWebhookDirectoryFailure(t *testing.T) {
	dir := directory.NewMock()
	dir.ExistsFunc = func(ctx context.Context, phone string) (bool, error) {
		return false, errors.New("database down")
	}
	s, st := newTestServer(dir)

	resp, _ := postWebhook(t, s, url.Values{
		"From":     {"+15550001111"},
		"CallUUID": {"uuid-4"},
	})

	// A directory outage degrades to the new-caller flow, never a 500.
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	sess := st.Get("uuid-4")
	if sess == nil || sess.UserExists {
		t.Error("caller should be treated as new when the lookup fails")
	}
}

func TestWebhookQueryParameters(t *testing.T) {
	s, st := newTestServer(directory.NewMock())

	req := httptest.NewRequest(http.MethodGet, "/webhook?From=%2B15550001111&CallUUID=uuid-5", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("webhook request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if st.Get("uuid-5") == nil {
		t.Error("query-parameter webhook should create a session")
	}
}
