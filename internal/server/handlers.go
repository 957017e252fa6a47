package server

import (
	"encoding/json"
	"net/http"
	"sort"

	"courtwatch/internal/store"
)

const version = "v1.0.0"

// HealthResponse is the /api/health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// StatusResponse is the /api/status payload.
type StatusResponse struct {
	Player   string `json:"player"`
	Total    int    `json:"total_matches"`
	Future   int    `json:"future_matches"`
	Assigned int    `json:"assigned_matches"`
	Notified int    `json:"notified_matches"`
	Runs     int    `json:"run_records"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: version,
		Uptime:  s.Uptime(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state, err := s.store.Load()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load state")
		return
	}

	counts := state.Count()
	s.writeJSON(w, http.StatusOK, StatusResponse{
		Player:   s.player,
		Total:    counts.Total,
		Future:   counts.Future,
		Assigned: counts.Assigned,
		Notified: counts.Notified,
		Runs:     len(state.History),
	})
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	state, err := s.store.Load()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load state")
		return
	}

	matches := make([]*store.Match, 0, len(state.Matches))
	for _, m := range state.Matches {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].FirstSeen.Before(matches[j].FirstSeen)
	})

	s.writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	state, err := s.store.Load()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load state")
		return
	}

	history := state.History
	if history == nil {
		history = []store.RunRecord{}
	}
	s.writeJSON(w, http.StatusOK, history)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}
