package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"courtwatch/internal/logging"
	"courtwatch/internal/store"
)

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st, err := store.NewJSONStore(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := logging.NewWithWriter(io.Discard, "error")
	return New(":0", st, "adam-harvey", logger), st
}

func seedState(t *testing.T, st store.Store) {
	t.Helper()
	now := time.Now().UTC()
	state := store.NewState()
	state.Matches["aaaa"] = &store.Match{
		ID:        "aaaa",
		Status:    store.StatusFuture,
		FirstSeen: now.Add(-2 * time.Hour),
		LastSeen:  now,
	}
	state.Matches["bbbb"] = &store.Match{
		ID:        "bbbb",
		Status:    store.StatusAssigned,
		Court:     "CC",
		Notified:  true,
		FirstSeen: now.Add(-1 * time.Hour),
		LastSeen:  now,
	}
	state.History = append(state.History, store.RunRecord{
		RunID:     "run-1",
		Timestamp: now,
		Observed:  2,
	})
	if err := st.Save(state); err != nil {
		t.Fatalf("failed to seed state: %v", err)
	}
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if resp.Version == "" {
		t.Error("expected a version")
	}
}

func TestHandleStatus(t *testing.T) {
	s, st := newTestServer(t)
	seedState(t, st)

	rec := doRequest(t, s, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Player != "adam-harvey" {
		t.Errorf("expected player adam-harvey, got %q", resp.Player)
	}
	if resp.Total != 2 || resp.Future != 1 || resp.Assigned != 1 || resp.Notified != 1 {
		t.Errorf("unexpected counts: %+v", resp)
	}
	if resp.Runs != 1 {
		t.Errorf("expected 1 run record, got %d", resp.Runs)
	}
}

func TestHandleStatus_EmptyStore(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 0 {
		t.Errorf("expected 0 matches, got %d", resp.Total)
	}
}

func TestHandleMatches_SortedByFirstSeen(t *testing.T) {
	s, st := newTestServer(t)
	seedState(t, st)

	rec := doRequest(t, s, "/api/matches")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var matches []*store.Match
	if err := json.NewDecoder(rec.Body).Decode(&matches); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "aaaa" || matches[1].ID != "bbbb" {
		t.Errorf("expected matches sorted by first_seen, got %s, %s", matches[0].ID, matches[1].ID)
	}
}

func TestHandleHistory(t *testing.T) {
	s, st := newTestServer(t)
	seedState(t, st)

	rec := doRequest(t, s, "/api/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var history []store.RunRecord
	if err := json.NewDecoder(rec.Body).Decode(&history); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(history) != 1 || history[0].RunID != "run-1" {
		t.Errorf("unexpected history: %+v", history)
	}
}

func TestHandleHistory_EmptyIsJSONArray(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, "/api/history")
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", got)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, "/api/nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
