package wsocket

import "sync"

type sendOutcome int

const (
	sendQueued sendOutcome = iota
	sendWritten
	sendDropped
)

// outbox is the state-tagged outbound buffer of a Socket: messages are queued while
// connecting, written through once open and dropped once closing or closed.
//
// The lock is held while writing, so a send racing with the open flush can never overtake
// queued messages.
type outbox[M any] struct {
	mu    sync.Mutex
	state ReadyState
	queue []M
}

func newOutbox[M any]() *outbox[M] {
	return &outbox[M]{state: Connecting}
}

// attach runs fn under the lock and adopts the state it returns. It lets the owner register
// transport handlers and sample the transport state without an open flush slipping between.
func (o *outbox[M]) attach(fn func() ReadyState) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = fn()
}

func (o *outbox[M]) send(m M, write func(M)) sendOutcome {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case Connecting:
		o.queue = append(o.queue, m)
		return sendQueued
	case Open:
		write(m)
		return sendWritten
	default:
		return sendDropped
	}
}

// open transitions Connecting to Open and writes every queued message in order. It returns
// how many messages were flushed. Any other state is left untouched.
func (o *outbox[M]) open(write func(M)) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Connecting {
		return 0
	}

	o.state = Open

	queue := o.queue
	o.queue = nil
	for _, m := range queue {
		write(m)
	}

	return len(queue)
}

// closing stops accepting messages. Queued messages are kept until closed.
func (o *outbox[M]) closing() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == Connecting || o.state == Open {
		o.state = Closing
	}
}

// closed transitions to Closed and discards anything still queued, returning how many
// messages were never written.
func (o *outbox[M]) closed() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = Closed
	discarded := len(o.queue)
	o.queue = nil

	return discarded
}

func (o *outbox[M]) State() ReadyState {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

func (o *outbox[M]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.queue)
}
