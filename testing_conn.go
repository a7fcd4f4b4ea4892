package wsocket

import (
	"sync"
)

// fakeConnection is an in-memory Connection driven by the test: it records writes and lets
// the test emit open, message and close events at will.
type fakeConnection struct {
	mu         sync.Mutex
	url        string
	state      ReadyState
	written    []Message
	writeErr   error
	closeErr   error
	closeCalls int

	events    *EventEmitterCallback[EventType, ConnectionEvent]
	closeC    CloseChan
	closeOnce sync.Once
}

func newFakeConnection(state ReadyState) *fakeConnection {
	return &fakeConnection{
		url:    "ws://fake.local/socket",
		state:  state,
		events: NewEventEmitter[EventType, ConnectionEvent](),
		closeC: make(CloseChan),
	}
}

func (f *fakeConnection) URL() string { return f.url }

func (f *fakeConnection) ReadyState() ReadyState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeConnection) On(event EventType, listener func(ConnectionEvent)) Unsubscriber {
	return f.events.On(event, listener)
}

func (f *fakeConnection) Write(m Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Open {
		return ErrConnectionClosed
	}
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, m)
	return nil
}

// Close only flags the request, as a real transport would; call finish to complete it.
func (f *fakeConnection) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closeCalls++
	if f.state == Connecting || f.state == Open {
		f.state = Closing
	}
}

func (f *fakeConnection) CloseErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeErr
}

func (f *fakeConnection) CloseChan() CloseChan { return f.closeC }

func (f *fakeConnection) open() {
	f.mu.Lock()
	f.state = Open
	f.mu.Unlock()

	f.events.Emit(EventOpen, ConnectionEvent{Type: EventOpen})
}

func (f *fakeConnection) receive(payload string) {
	f.events.Emit(EventMessage, ConnectionEvent{
		Type:    EventMessage,
		Message: NewDataMessage([]byte(payload)),
	})
}

func (f *fakeConnection) finish(err error) {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.state = Closed
		f.closeErr = err
		f.mu.Unlock()

		close(f.closeC)
		f.events.Emit(EventClose, ConnectionEvent{Type: EventClose, Err: err})
		f.events.Close()
	})
}

func (f *fakeConnection) writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.written))
	for _, m := range f.written {
		out = append(out, string(m.Data()))
	}
	return out
}
