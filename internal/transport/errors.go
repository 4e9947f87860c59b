package transport

import (
	"errors"
	"fmt"
)

// ErrIdleTimeout reports that no message arrived within the receive window.
// It is not a failure; callers respond with a liveness probe.
var ErrIdleTimeout = errors.New("idle timeout waiting for message")

// TransportError wraps a connection, send or receive failure of the
// underlying REST or websocket facility.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
