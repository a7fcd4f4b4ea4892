package wsocket

import "fmt"

type (
	// ReadyState mirrors the state of the underlying transport.
	ReadyState int32

	// EventType identifies a lifecycle notification emitted by a Connection.
	EventType int

	// ConnectionEvent is the payload of every Connection notification. Message is set for
	// EventMessage, Err carries the close reason for EventClose (nil on a clean close).
	ConnectionEvent struct {
		Type    EventType
		Message Message
		Err     error
	}

	CloseChan chan struct{}

	// Connection is the transport contract a Socket is built on.
	//
	// Implementations must emit EventOpen at most once, followed by any number of
	// EventMessage, followed by exactly one EventClose, all from a single goroutine so
	// listeners observe them in order.
	Connection interface {
		// URL returns the address the connection targets.
		URL() string
		// ReadyState returns the current state synchronously.
		ReadyState() ReadyState
		// On registers a listener for the given lifecycle event.
		On(event EventType, listener func(ConnectionEvent)) Unsubscriber
		// Write transmits a message. It is only valid while the connection is open.
		Write(m Message) error
		// Close requests shutdown. Completion is signalled through EventClose and CloseChan.
		Close()
		// CloseErr returns an error that explains why the connection was closed.
		CloseErr() error
		// CloseChan returns a channel that is closed once the connection is closed.
		CloseChan() CloseChan
	}
)

const (
	Connecting ReadyState = iota
	Open
	Closing
	Closed
)

const (
	EventOpen EventType = iota + 1
	EventMessage
	EventClose
)

func (s ReadyState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("ReadyState(%d)", int32(s))
	}
}

func (e EventType) String() string {
	switch e {
	case EventOpen:
		return "open"
	case EventMessage:
		return "message"
	case EventClose:
		return "close"
	default:
		return fmt.Sprintf("EventType(%d)", int(e))
	}
}
