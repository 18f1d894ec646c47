package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// startEchoServer 启动回显WebSocket服务端
func startEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			mt, data, err := c.ReadMessage()
			if err != nil {
				return
			}
			if err := c.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketDialRoundTrip(t *testing.T) {
	srv := startEchoServer(t)

	dialer := NewWebSocketDialer(time.Second)
	conn, err := dialer.Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	msg := []byte(`{"command_id":"c1","type":"ping"}`)
	if err := conn.WriteMessage(msg); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}

	data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if string(data) != string(msg) {
		t.Errorf("Expected echo %s, got %s", msg, data)
	}
}

func TestWebSocketDialFailure(t *testing.T) {
	dialer := NewWebSocketDialer(100 * time.Millisecond)
	if _, err := dialer.Dial(context.Background(), "ws://127.0.0.1:1/browser"); err == nil {
		t.Fatal("Expected dial failure")
	}
}

func TestWebSocketCloseUnblocksRead(t *testing.T) {
	srv := startEchoServer(t)

	dialer := NewWebSocketDialer(time.Second)
	conn, err := dialer.Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	readErr := make(chan error, 1)
	go func() {
		_, err := conn.ReadMessage()
		readErr <- err
	}()

	conn.Close()

	select {
	case err := <-readErr:
		if err == nil {
			t.Error("Expected read error after close")
		}
	case <-time.After(time.Second):
		t.Fatal("ReadMessage did not return after close")
	}
}
