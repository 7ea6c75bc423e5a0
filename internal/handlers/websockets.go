package handlers

import (
	"net/http"
	"strings"
	"time"

	"collab_notes/internal/hub"
	"collab_notes/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	// snapshotEvent is the single event type on the live channel: the full
	// ordered note list, pushed on connect and after every mutation.
	snapshotEvent = "notes_updated"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Upgrader for HTTP -> WebSocket. Consider tightening CheckOrigin in production.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins for production
}

// @Summary      Live note snapshots
// @Description  WebSocket upgrade. Pushes a notes_updated snapshot on connect and after every mutation. An optional token (query ?token= or Bearer header) attaches an identity; absent or invalid tokens downgrade to anonymous under the permissive policy.
// @Tags         notes
// @Param        token  query  string  false  "Optional bearer token"
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	identity := h.connIdentity(c)
	if identity.State == hub.Rejected {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Register with the hub before taking the initial snapshot so no
	// mutation can fall between the two.
	sub := h.hub.Subscribe(identity)
	defer h.hub.Unsubscribe(sub.ID())

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	// Push the current state to this subscriber only.
	if err := h.sendSnapshotNow(conn, c); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	// Writer/select loop.
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case snapshot, ok := <-sub.Snapshots():
			if !ok {
				return
			}
			if err := h.writeSnapshot(conn, snapshot); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// connIdentity resolves the optional connect-time token into a tri-state
// identity. Under the permissive policy a missing or invalid token yields
// an anonymous, read-only connection rather than a rejection.
func (h *Handler) connIdentity(c *gin.Context) hub.Identity {
	token := c.Query("token")
	if token == "" {
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		return hub.Identity{State: hub.Anonymous}
	}

	userID, err := h.services.ParseToken(token)
	if err != nil {
		if h.strictWSAuth {
			return hub.Identity{State: hub.Rejected}
		}
		if h.log != nil {
			h.log.Infow("ws_token_invalid_downgrading", "err", err)
		}
		return hub.Identity{State: hub.Anonymous}
	}
	return hub.Identity{State: hub.Authenticated, UserID: userID}
}

// Helper: startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// Helper: sendSnapshotNow fetches the current list and writes it immediately.
func (h *Handler) sendSnapshotNow(conn *websocket.Conn, c *gin.Context) error {
	notes, err := h.services.Notes.List(c.Request.Context())
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_list_failed", "err", err)
		}
		return err
	}
	return h.writeSnapshot(conn, notes)
}

// Helper: writeSnapshot writes one snapshot envelope with a write deadline.
func (h *Handler) writeSnapshot(conn *websocket.Conn, notes []models.Note) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: snapshotEvent, Data: notes})
}
