package wsocket

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Listener receives decoded inbound messages.
type Listener[IM any] func(IM)

// Socket is a typed, message-oriented wrapper around a single Connection.
//
// Messages sent while the connection is still connecting are queued and flushed, in order,
// once it opens. Inbound payloads are decoded with a Codec and dispatched to the listeners
// registered for their MsgType. All listeners run on the connection's event goroutine.
type Socket[IM, OM Msg] struct {
	id     string
	conn   Connection
	codec  Codec[IM, OM]
	logger Logger

	outbox *outbox[OM]
	events *EventEmitterCallback[string, IM]

	handlers  []Unsubscriber
	done      CloseChan
	closeOnce sync.Once
}

var _ Client[Msg, Msg] = (*Socket[Msg, Msg])(nil)

// Dial creates a Socket owning a new websocket connection to address and starts connecting
// in the background. It returns right away; messages sent meanwhile are queued.
// An http:// or https:// address is rewritten into ws:// or wss://.
// ctx bounds the lifetime of the connection. A nil codec selects NewJSONCodec[IM, OM](nil).
func Dial[IM, OM Msg](
	ctx context.Context,
	address string,
	codec Codec[IM, OM],
	opts ...Option,
) (*Socket[IM, OM], error) {
	cfg := newConfig(opts)

	u, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}

	getter := cfg.paramsGetter
	if getter == nil {
		getter = StaticOpenConnectionParams(u, cfg.header)
	}

	conn := NewWebsocketConnection(
		cfg.logger,
		cfg.dialer,
		u.String(),
		NewOpenConnectionParamsRepo(cfg.logger, getter),
		cfg.errAdapters,
	)

	s := newSocket(conn, codec, cfg)

	go func() {
		if err := conn.Open(ctx); err != nil {
			s.logger.Debugf("connection could not be opened: %s", err)
		}
	}()

	return s, nil
}

// New wraps an already initiated connection. An already open connection is written to
// directly; one still connecting gets its queue flushed when it opens.
// A nil codec selects NewJSONCodec[IM, OM](nil).
func New[IM, OM Msg](conn Connection, codec Codec[IM, OM], opts ...Option) *Socket[IM, OM] {
	return newSocket(conn, codec, newConfig(opts))
}

func newSocket[IM, OM Msg](conn Connection, codec Codec[IM, OM], cfg config) *Socket[IM, OM] {
	if codec == nil {
		codec = NewJSONCodec[IM, OM](nil)
	}

	id := uuid.NewString()

	s := &Socket[IM, OM]{
		id:     id,
		conn:   conn,
		codec:  codec,
		logger: cfg.logger.WithField("socket_id", id).WithField("url", conn.URL()),
		outbox: newOutbox[OM](),
		events: NewEventEmitter[string, IM](),
		done:   make(CloseChan),
	}

	s.logger.Infof("socket targeting %s", conn.URL())

	s.outbox.attach(func() ReadyState {
		s.handlers = []Unsubscriber{
			conn.On(EventOpen, s.onOpen),
			conn.On(EventMessage, s.onMessage),
			conn.On(EventClose, s.onClose),
		}
		return conn.ReadyState()
	})

	if s.outbox.State() == Closed {
		s.shutdown()
	}

	return s
}

func (s *Socket[IM, OM]) onOpen(ConnectionEvent) {
	flushed := s.outbox.open(s.write)
	s.logger.Infof("socket opened, flushed %d queued messages", flushed)
}

func (s *Socket[IM, OM]) onMessage(ev ConnectionEvent) {
	if ev.Message == nil {
		return
	}

	m, err := s.codec.Decode(ev.Message.Data())
	if err != nil {
		s.logger.Errorf("cannot decode inbound message %s: %s", ev.Message, err)
		return
	}

	s.events.Emit(m.MsgType(), m)
}

func (s *Socket[IM, OM]) onClose(ev ConnectionEvent) {
	if discarded := s.outbox.closed(); discarded > 0 {
		s.logger.Warnf("socket closed with %d queued messages never sent", discarded)
	}

	if ev.Err != nil && !errors.Is(ev.Err, ErrTerminated) {
		s.logger.Infof("socket closed: %s", ev.Err)
	} else {
		s.logger.Infoln("socket closed")
	}

	s.shutdown()
}

func (s *Socket[IM, OM]) shutdown() {
	s.closeOnce.Do(func() {
		s.events.Close()
		for _, unsubscribe := range s.handlers {
			unsubscribe()
		}
		close(s.done)
	})
}

func (s *Socket[IM, OM]) write(m OM) {
	data, err := s.codec.Encode(m)
	if err != nil {
		s.logger.Errorf("cannot encode outbound %s message: %s", m.MsgType(), err)
		return
	}

	if err := s.conn.Write(NewDataMessage(data)); err != nil {
		s.logger.Warnf("cannot write outbound %s message: %s", m.MsgType(), err)
	}
}

// Send transmits m if the connection is open, queues it if the connection is still
// connecting, and drops it otherwise.
func (s *Socket[IM, OM]) Send(m OM) {
	switch s.outbox.send(m, s.write) {
	case sendQueued:
		s.logger.Debugf("queued %s message until the socket opens", m.MsgType())
	case sendDropped:
		s.logger.Debugf("dropped %s message, socket is %s", m.MsgType(), s.outbox.State())
	}
}

// On registers listener for every inbound message of the given type. Listeners of one
// type run in registration order.
func (s *Socket[IM, OM]) On(msgType string, listener Listener[IM]) Unsubscriber {
	return s.events.On(msgType, callback[IM](listener))
}

// Once is like On, but the listener runs at most one time and is then removed.
func (s *Socket[IM, OM]) Once(msgType string, listener Listener[IM]) Unsubscriber {
	var (
		fired       atomic.Bool
		mu          sync.Mutex
		unsubscribe Unsubscriber
	)

	remove := func() {
		mu.Lock()
		u := unsubscribe
		mu.Unlock()
		if u != nil {
			u()
		}
	}

	u := s.events.On(msgType, func(m IM) {
		if !fired.CompareAndSwap(false, true) {
			return
		}
		remove()
		listener(m)
	})

	mu.Lock()
	unsubscribe = u
	mu.Unlock()

	// fired before the handle was stored
	if fired.Load() {
		u()
	}

	return func() {
		fired.Store(true)
		u()
	}
}

// Await blocks until the next inbound message of the given type arrives. It fails with
// ErrConnectionClosed if the connection closes first, or with ctx.Err() if ctx is done.
// Do not call it from a listener: it would block the goroutine that delivers the message.
func (s *Socket[IM, OM]) Await(ctx context.Context, msgType string) (IM, error) {
	var zero IM

	select {
	case <-s.done:
		return zero, errors.Wrap(ErrConnectionClosed, "awaiting "+msgType)
	default:
	}

	result := make(chan IM, 1)
	unsubscribe := s.Once(msgType, func(m IM) { result <- m })
	defer unsubscribe()

	select {
	case m := <-result:
		return m, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.done:
		select {
		case m := <-result:
			return m, nil
		default:
			return zero, errors.Wrap(ErrConnectionClosed, "awaiting "+msgType)
		}
	}
}

// Close requests the connection to shut down. It does not wait; use CloseChan to observe
// completion. Messages sent afterwards are dropped.
func (s *Socket[IM, OM]) Close() {
	s.outbox.closing()
	s.conn.Close()
}

// CloseChan is closed once the connection has closed and dispatch has stopped.
func (s *Socket[IM, OM]) CloseChan() CloseChan {
	return s.done
}

// CloseErr reports why the connection closed. It is nil while the connection is alive.
func (s *Socket[IM, OM]) CloseErr() error {
	return s.conn.CloseErr()
}

// ReadyState is the socket's view of the connection state.
func (s *Socket[IM, OM]) ReadyState() ReadyState {
	return s.outbox.State()
}

func (s *Socket[IM, OM]) URL() string {
	return s.conn.URL()
}

// ID identifies the socket in log lines.
func (s *Socket[IM, OM]) ID() string {
	return s.id
}
