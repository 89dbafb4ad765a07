package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"care-companion/pkg"

	"github.com/go-chi/chi/v5"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 500
	streamKeepAlive   = 30 * time.Second
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"model":          s.Model,
		"active_session": s.Companion.ActiveSession(),
		"alerts":         s.Alerts != nil,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pkg.Profile{Name: s.Companion.ProfileName()})
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var req pkg.Profile
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	s.Companion.SetProfileName(req.Name)
	writeJSON(w, http.StatusOK, pkg.Profile{Name: s.Companion.ProfileName()})
}

func (s *Server) handleListMedications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Companion.Medications())
}

func (s *Server) handleAddMedication(w http.ResponseWriter, r *http.Request) {
	var req pkg.MedicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	rec, err := s.Companion.AddMedication(req)
	if err != nil {
		s.fail(w, r, "add medication", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleRemoveMedication(w http.ResponseWriter, r *http.Request) {
	if err := s.Companion.RemoveMedication(chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, "remove medication", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveMedicationsByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}
	n, err := s.Companion.RemoveMedicationsByName(name)
	if err != nil {
		s.fail(w, r, "remove medications", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Companion.Sessions())
}

func (s *Server) handleNewChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	// An empty body asks for a generated name.
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}
	if _, err := s.Companion.NewChat(req.Name); err != nil {
		s.fail(w, r, "new chat", err)
		return
	}
	writeJSON(w, http.StatusCreated, s.Companion.Sessions())
}

func (s *Server) handleSwitchSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.Companion.SwitchSession(req.Name); err != nil {
		s.fail(w, r, "switch session", err)
		return
	}
	writeJSON(w, http.StatusOK, s.Companion.Sessions())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := s.Companion.History(chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, "history", err)
		return
	}
	writeJSON(w, http.StatusOK, turns)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Companion.DeleteSession(chi.URLParam(r, "name")); err != nil {
		s.fail(w, r, "delete session", err)
		return
	}
	writeJSON(w, http.StatusOK, s.Companion.Sessions())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.Companion.Summarize(r.Context(), chi.URLParam(r, "name"))
	if summary == nil {
		s.fail(w, r, "summary", err)
		return
	}
	if err != nil {
		s.Logger.Warn("summary fell back", "session", summary.Session, "error", err)
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req pkg.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	reply, err := s.Companion.HandleMessage(r.Context(), req.Content)
	if err != nil {
		s.fail(w, r, "handle message", err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAlertLimit)
	}
	alerts, err := s.Alerts.ListAlerts(r.Context(), limit)
	if err != nil {
		s.fail(w, r, "list alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// handleAlertStream relays caregiver alerts as server-sent events until the
// client disconnects.
func (s *Server) handleAlertStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	ctx := r.Context()
	alerts, err := s.Stream.Listen(ctx)
	if err != nil {
		s.fail(w, r, "listen for alerts", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case a, ok := <-alerts:
			if !ok {
				return
			}
			data, err := json.Marshal(a)
			if err != nil {
				s.Logger.Error("encode alert event", "error", err)
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: alert\ndata: %s\n\n", a.ID, data)
			flusher.Flush()
		}
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "request_id", GetRequestID(r), "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
