package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"collab_notes/internal/hub"
	"collab_notes/internal/models"
	"collab_notes/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type wsTestEnv struct {
	srv *httptest.Server
	hub *hub.Hub
}

func newWSEnv(t *testing.T, s *service.Service, strict bool) *wsTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	broadcastHub := hub.NewHub(nil)
	h := NewHandler(s, broadcastHub, nil)
	h.SetStrictWSAuth(strict)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &wsTestEnv{srv: srv, hub: broadcastHub}
}

func (e *wsTestEnv) wsURL(query string) string {
	u, _ := url.Parse(e.srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query
	return u.String()
}

type testEnvelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func readSnapshotEnvelope(t *testing.T, conn *websocket.Conn) []models.Note {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env testEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	if env.Type != "notes_updated" {
		t.Fatalf("expected notes_updated envelope, got %+v", env)
	}
	var notes []models.Note
	if err := json.Unmarshal(env.Data, &notes); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	return notes
}

func TestWebSocket_InitialSnapshotOnConnect(t *testing.T) {
	notes := &mockNotes{listResp: []models.Note{
		{ID: "n-1", Content: "hello", AuthorID: "u-1"},
	}}
	env := newWSEnv(t, &service.Service{Notes: notes}, false)

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(env.wsURL(""), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	got := readSnapshotEnvelope(t, conn)
	if len(got) != 1 || got[0].Content != "hello" {
		t.Fatalf("unexpected initial snapshot: %+v", got)
	}
}

func TestWebSocket_InitialSnapshotWithZeroNotes(t *testing.T) {
	notes := &mockNotes{listResp: []models.Note{}}
	env := newWSEnv(t, &service.Service{Notes: notes}, false)

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(env.wsURL(""), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	got := readSnapshotEnvelope(t, conn)
	if len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", got)
	}
}

func TestWebSocket_PublishedSnapshotsReachSubscriber(t *testing.T) {
	notes := &mockNotes{listResp: []models.Note{}}
	env := newWSEnv(t, &service.Service{Notes: notes}, false)

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(env.wsURL(""), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	// Initial snapshot first.
	_ = readSnapshotEnvelope(t, conn)

	// Wait for the handler to register its subscriber, then publish.
	waitFor(t, func() bool { return env.hub.Count() == 1 })
	env.hub.Publish([]models.Note{{ID: "n-9", Content: "pushed", AuthorID: "u-2"}})

	got := readSnapshotEnvelope(t, conn)
	if len(got) != 1 || got[0].Content != "pushed" {
		t.Fatalf("unexpected pushed snapshot: %+v", got)
	}
}

func TestWebSocket_DisconnectRemovesSubscriber(t *testing.T) {
	notes := &mockNotes{listResp: []models.Note{}}
	env := newWSEnv(t, &service.Service{Notes: notes}, false)

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(env.wsURL(""), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	_ = readSnapshotEnvelope(t, conn)
	waitFor(t, func() bool { return env.hub.Count() == 1 })

	_ = conn.Close()
	waitFor(t, func() bool { return env.hub.Count() == 0 })

	// Publishing into an empty registry is a no-op, not an error.
	env.hub.Publish([]models.Note{})
}

func TestWebSocket_AuthPolicy(t *testing.T) {
	t.Run("permissive downgrades invalid token to anonymous", func(t *testing.T) {
		notes := &mockNotes{listResp: []models.Note{}}
		auth := &mockAuth{parseErr: service.ErrUnauthenticated}
		env := newWSEnv(t, &service.Service{Notes: notes, Authorization: auth}, false)

		dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
		conn, _, err := dialer.Dial(env.wsURL("token=bogus"), nil)
		if err != nil {
			t.Fatalf("permissive policy should accept the connection: %v", err)
		}
		defer conn.Close()
		_ = readSnapshotEnvelope(t, conn)
	})

	t.Run("strict rejects invalid token before upgrade", func(t *testing.T) {
		notes := &mockNotes{listResp: []models.Note{}}
		auth := &mockAuth{parseErr: service.ErrUnauthenticated}
		env := newWSEnv(t, &service.Service{Notes: notes, Authorization: auth}, true)

		dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
		conn, resp, err := dialer.Dial(env.wsURL("token=bogus"), nil)
		if err == nil {
			conn.Close()
			t.Fatal("strict policy should reject the connection")
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 response, got %+v", resp)
		}
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		notes := &mockNotes{listResp: []models.Note{}}
		auth := &mockAuth{parseID: "u-1"}
		env := newWSEnv(t, &service.Service{Notes: notes, Authorization: auth}, true)

		dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
		conn, _, err := dialer.Dial(env.wsURL("token=good"), nil)
		if err != nil {
			t.Fatalf("dial error: %v", err)
		}
		defer conn.Close()
		_ = readSnapshotEnvelope(t, conn)
		if auth.lastParseToken != "good" {
			t.Fatalf("ParseToken received %q", auth.lastParseToken)
		}
	})
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
