package transport

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// StreamConn is an established websocket stream. Receive surfaces an idle
// window via ErrIdleTimeout without tearing the connection down; every other
// failure is a *TransportError and the connection must be discarded.
type StreamConn interface {
	Send(ctx context.Context, payload any) error
	Receive(ctx context.Context, timeout time.Duration) ([]byte, error)
	Disconnect() error
}

// StreamDialer establishes websocket streams.
type StreamDialer interface {
	Connect(ctx context.Context, url string, timeout time.Duration) (StreamConn, error)
}

// WSDialer is the default StreamDialer backed by gorilla/websocket.
type WSDialer struct {
	localIP string
}

// NewWSDialer builds a dialer. localIP optionally pins the outbound
// interface.
func NewWSDialer(localIP string) *WSDialer {
	return &WSDialer{localIP: localIP}
}

// Connect dials the url and starts the background read pump.
func (d *WSDialer) Connect(ctx context.Context, url string, timeout time.Duration) (StreamConn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	if d.localIP != "" {
		if ip := net.ParseIP(d.localIP); ip != nil {
			dialer.NetDialContext = (&net.Dialer{LocalAddr: &net.TCPAddr{IP: ip}}).DialContext
		}
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}
	return newWSStream(conn), nil
}

// wsStream reads messages on a dedicated goroutine so an idle Receive window
// can expire without poisoning the underlying gorilla connection.
type wsStream struct {
	conn     *websocket.Conn
	writeMu  sync.Mutex
	messages chan []byte
	readErr  chan error
	done     chan struct{}
	closed   sync.Once
}

func newWSStream(conn *websocket.Conn) *wsStream {
	s := &wsStream{
		conn:     conn,
		messages: make(chan []byte, 64),
		readErr:  make(chan error, 1),
		done:     make(chan struct{}),
	}
	go s.readPump()
	return s
}

func (s *wsStream) readPump() {
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case s.readErr <- err:
			default:
			}
			return
		}
		select {
		case s.messages <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *wsStream) Send(ctx context.Context, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(payload); err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}

func (s *wsStream) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-s.messages:
		return msg, nil
	case err := <-s.readErr:
		return nil, &TransportError{Op: "receive", Err: err}
	case <-timer.C:
		return nil, ErrIdleTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *wsStream) Disconnect() error {
	var err error
	s.closed.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}
