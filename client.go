package wsocket

import (
	"context"
)

type (
	// Client is the behavior of a typed socket: sending outbound messages, subscribing to
	// inbound ones and closing the connection. Socket implements it; depend on Client to
	// swap in fakes.
	Client[IM, OM Msg] interface {
		// Send transmits a message, queueing it while the connection is still connecting.
		Send(m OM)
		// On subscribes to every inbound message of the given type.
		On(msgType string, listener Listener[IM]) Unsubscriber
		// Once subscribes to the next inbound message of the given type only.
		Once(msgType string, listener Listener[IM]) Unsubscriber
		// Await blocks until the next inbound message of the given type.
		Await(ctx context.Context, msgType string) (IM, error)
		// Close closes the connection with the server
		Close()
		// CloseChan returns a channel that signals when the connection is closed
		CloseChan() CloseChan
	}
)
