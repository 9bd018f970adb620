package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, server *httptest.Server, h *Handler) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	before := h.Hub.Len()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	waitFor(t, func() bool { return h.Hub.Len() == before+1 })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt Event
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return evt
}

func TestWebSocket_BroadcastsTaskEvents(t *testing.T) {
	h, srv := setupHTTP(t)
	server := httptest.NewServer(srv)
	defer server.Close()

	conn := dialWS(t, server, h)
	defer conn.Close()

	created := createTask(t, srv, `{"title":"Watched"}`)
	evt := readEvent(t, conn)
	if evt.Event != EventTaskCreated || evt.TaskID != created.ID || evt.Task == nil || evt.Task.Title != "Watched" {
		t.Errorf("unexpected create event: %+v", evt)
	}

	if rec := do(t, srv, http.MethodPut, taskPath(created.ID), `{"status":"COMPLETED"}`); rec.Code != http.StatusOK {
		t.Fatalf("PUT status=%d", rec.Code)
	}
	evt = readEvent(t, conn)
	if evt.Event != EventTaskUpdated || evt.Task == nil || evt.Task.Status != "COMPLETED" {
		t.Errorf("unexpected update event: %+v", evt)
	}

	if rec := do(t, srv, http.MethodDelete, taskPath(created.ID), ""); rec.Code != http.StatusOK {
		t.Fatalf("DELETE status=%d", rec.Code)
	}
	evt = readEvent(t, conn)
	if evt.Event != EventTaskDeleted || evt.TaskID != created.ID || evt.Task != nil {
		t.Errorf("unexpected delete event: %+v", evt)
	}
}

func TestWebSocket_DisconnectUnregisters(t *testing.T) {
	h, srv := setupHTTP(t)
	server := httptest.NewServer(srv)
	defer server.Close()

	conn := dialWS(t, server, h)
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	conn.Close()

	waitFor(t, func() bool { return h.Hub.Len() == 0 })
}

func TestWebSocket_RateLimited(t *testing.T) {
	h, srv := setupHTTP(t)
	h.RateLimiter.Stop()
	h.RateLimiter = NewRateLimiter(1, time.Minute)
	defer h.RateLimiter.Stop()
	server := httptest.NewServer(srv)
	defer server.Close()

	conn := dialWS(t, server, h)
	defer conn.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected second connection to be rejected")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %+v", resp)
	}
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	h, srv := setupHTTP(t)
	h.CORSOrigins = []string{"http://allowed.test"}
	server := httptest.NewServer(srv)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"http://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("expected handshake to fail for a foreign origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %+v", resp)
	}
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewHub(nil)
	hub.Broadcast(Event{Event: EventTaskDeleted, TaskID: 1})

	var nilHub *Hub
	nilHub.Broadcast(Event{Event: EventTaskCreated})
}
