package wsocket

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrConnectionClosed   = errors.New("connection has been closed")
	ErrCannotConnect      = errors.New("connection cannot be established")
	ErrTerminated         = errors.New("program exit")
	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrMalformedMessage   = errors.New("malformed message")
	ErrUnknownMessageType = errors.New("unknown message type")
)

// ErrUnrecoverableConnection is returned when a socket cannot even attempt a connection,
// e.g. because the address cannot be parsed.
type ErrUnrecoverableConnection struct {
	err     error
	address string
}

func (e ErrUnrecoverableConnection) Error() string {
	return fmt.Sprintf("Unrecoverable connection error: %s to %s", e.err, e.address)
}

func (e ErrUnrecoverableConnection) Unwrap() error { return e.err }

func WrapErrorUnrecoverableConnection(err error, address string) error {
	if err == nil {
		return nil
	}
	return &ErrUnrecoverableConnection{
		err:     err,
		address: address,
	}
}
