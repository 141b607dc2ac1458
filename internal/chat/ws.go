package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string `json:"type"` // "message"
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string `json:"type"` // "pending", "response" or "error"
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

func (c *Controller) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("websocket read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			c.send(conn, wsResponse{Type: "error", Content: "invalid message format"})
			continue
		}
		if req.Type != "message" {
			c.send(conn, wsResponse{Type: "error", SessionID: req.SessionID, Content: "unknown message type: " + req.Type})
			continue
		}
		c.handleMessage(conn, r, req)
	}
}

func (c *Controller) handleMessage(conn *websocket.Conn, r *http.Request, req wsRequest) {
	if c.Busy() {
		c.send(conn, wsResponse{Type: "error", SessionID: req.SessionID, Content: ErrBusy.Error()})
		return
	}
	c.send(conn, wsResponse{Type: "pending", SessionID: req.SessionID, Content: PendingText})

	turn, err := c.Send(r.Context(), req.SessionID, req.Content)
	sessionID := req.SessionID
	if turn != nil {
		sessionID = turn.SessionID
	}
	if err != nil {
		c.send(conn, wsResponse{Type: "error", SessionID: sessionID, Content: userMessage(err)})
		return
	}
	c.send(conn, wsResponse{Type: "response", SessionID: sessionID, Content: turn.Assistant.Content})
}

func (c *Controller) send(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Warnf("websocket write: %v", err)
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyMessage):
		return "Please enter a message"
	case errors.Is(err, ErrBusy):
		return ErrBusy.Error()
	case errors.Is(err, ErrSessionNotFound):
		return "Chat session not found"
	}
	return "Sorry, the assistant could not answer. Please try again."
}
