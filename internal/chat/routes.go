package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the chat API and its WebSocket.
func (c *Controller) RegisterRoutes(r chi.Router) {
	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/", c.handleSend)
		r.Get("/ws", c.handleWebSocket)
		r.Get("/sessions", c.handleSessions)
		r.Get("/{session}/history", c.handleHistory)
	})
}

type sendRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (c *Controller) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	turn, err := c.Send(r.Context(), req.SessionID, req.Message)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, ErrEmptyMessage):
			status = http.StatusBadRequest
		case errors.Is(err, ErrBusy):
			status = http.StatusConflict
		case errors.Is(err, ErrSessionNotFound):
			status = http.StatusNotFound
		}
		resp := map[string]any{"error": userMessage(err)}
		if turn != nil {
			resp["session_id"] = turn.SessionID
		}
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (c *Controller) handleHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := c.History(r.Context(), chi.URLParam(r, "session"))
	if errors.Is(err, ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": userMessage(err)})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if msgs == nil {
		msgs = []Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (c *Controller) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sessions, err := c.Sessions(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if sessions == nil {
		sessions = []Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
