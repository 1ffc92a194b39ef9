package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/conveyor-ci/conveyor/internal/trigger"
)

type eventPayload struct {
	Kind string `json:"kind"`
	Ref  string `json:"ref"`
}

type eventAccepted struct {
	Accepted bool `json:"accepted"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleEvent validates the incoming event at the boundary, evaluates
// it against the pipeline's trigger rules, and launches a run for a
// match. A non-matching event is a normal no-op, answered with 204.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var payload eventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event payload")
		return
	}
	kind, err := trigger.ParseKind(payload.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev := trigger.Event{Kind: kind, Ref: payload.Ref}

	if !s.launcher.Matches(ev) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// The run outlives the request; it is cancelled only by server
	// process shutdown, not by the client hanging up.
	go func() {
		if _, err := s.launcher.Launch(context.Background(), ev); err != nil {
			s.log.Error("run launch failed", "event_kind", ev.Kind, "event_ref", ev.Ref, "err", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, eventAccepted{Accepted: true})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.store.List("")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	result, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStepLog(w http.ResponseWriter, r *http.Request) {
	log, err := s.store.ReadStepLog(chi.URLParam(r, "id"), chi.URLParam(r, "step"))
	if err != nil {
		writeError(w, http.StatusNotFound, "step log not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(log))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
