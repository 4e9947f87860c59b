package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// echoServer upgrades the request and echoes every message back.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSDialerSendReceive(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	dialer := NewWSDialer("")
	conn, err := dialer.Connect(context.Background(), wsURL(srv), time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	payload := map[string]string{"op": "subscribe"}
	if err := conn.Send(context.Background(), payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	msg, err := conn.Receive(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(msg) != `{"op":"subscribe"}` {
		t.Fatalf("unexpected echo: %s", msg)
	}
}

func TestWSReceiveIdleTimeout(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	dialer := NewWSDialer("")
	conn, err := dialer.Connect(context.Background(), wsURL(srv), time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	_, err = conn.Receive(context.Background(), 20*time.Millisecond)
	if !errors.Is(err, ErrIdleTimeout) {
		t.Fatalf("expected ErrIdleTimeout, got %v", err)
	}

	// the connection must survive an idle window
	if err := conn.Send(context.Background(), "ping"); err != nil {
		t.Fatalf("Send after idle timeout: %v", err)
	}
	if _, err := conn.Receive(context.Background(), time.Second); err != nil {
		t.Fatalf("Receive after idle timeout: %v", err)
	}
}

func TestWSReceiveAfterDisconnect(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	dialer := NewWSDialer("")
	conn, err := dialer.Connect(context.Background(), wsURL(srv), time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	conn.Disconnect()

	_, err = conn.Receive(context.Background(), time.Second)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TransportError after disconnect, got %v", err)
	}
}

func TestWSConnectFailure(t *testing.T) {
	dialer := NewWSDialer("")
	_, err := dialer.Connect(context.Background(), "ws://127.0.0.1:1/ws", 100*time.Millisecond)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
}
