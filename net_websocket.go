package wsocket

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/pkg/errors"
)

const writeTimeout = time.Second

type (
	ErrAdapter func(*websocket.Conn, *http.Response, error) error

	ErrorAdapters struct {
		OnDial ErrAdapter
	}

	// WsConnection is a Connection over a websocket dialed with github.com/fasthttp/websocket.
	//
	// EventOpen is emitted from the goroutine calling Open; EventMessage and EventClose are
	// emitted from the read goroutine, except for a failed or aborted dial where EventClose
	// is emitted from Open itself.
	WsConnection struct {
		errAdapters              ErrorAdapters
		openConnectionParamsRepo OpenConnectionParamsRepo
		logger                   Logger
		dialer                   *websocket.Dialer
		address                  string
		events                   *EventEmitterCallback[EventType, ConnectionEvent]

		mu          sync.Mutex
		conn        *websocket.Conn
		state       ReadyState
		started     bool
		closeReason error

		send       chan Message // send messages to be sent over the wire
		writerDone chan struct{}
		stop       chan struct{}
		stopOnce   sync.Once
		closeChan  CloseChan
		closeOnce  sync.Once
	}
)

func NewWebsocketConnection(
	logger Logger,
	dialer *websocket.Dialer,
	address string,
	openParamsRepo OpenConnectionParamsRepo,
	errorAdapters ErrorAdapters,
) *WsConnection {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	return &WsConnection{
		errAdapters:              errorAdapters,
		dialer:                   dialer,
		address:                  address,
		openConnectionParamsRepo: openParamsRepo,
		events:                   NewEventEmitter[EventType, ConnectionEvent](),
		state:                    Connecting,
		send:                     make(chan Message, 32),
		writerDone:               make(chan struct{}),
		stop:                     make(chan struct{}),
		closeChan:                make(CloseChan),
		logger:                   logger.WithField("net", "ws_connection"),
	}
}

func (w *WsConnection) URL() string {
	return w.address
}

func (w *WsConnection) ReadyState() ReadyState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *WsConnection) On(event EventType, listener func(ConnectionEvent)) Unsubscriber {
	return w.events.On(event, listener)
}

// Write queues a message to be sent over the WebSocket connection.
func (w *WsConnection) Write(m Message) error {
	if w.ReadyState() != Open {
		return ErrConnectionClosed
	}

	select {
	case w.send <- m:
		return nil
	case <-w.stop:
		return ErrConnectionClosed
	case <-w.writerDone:
		return ErrConnectionClosed
	case <-w.closeChan:
		return ErrConnectionClosed
	}
}

// Close terminates the WebSocket connection. A close frame is sent when the connection is
// open; a pending dial is aborted. It returns immediately, completion is reported through
// EventClose and CloseChan.
func (w *WsConnection) Close() {
	w.mu.Lock()
	started := w.started
	if w.state == Connecting || w.state == Open {
		w.state = Closing
	}
	w.mu.Unlock()

	w.stopOnce.Do(func() { close(w.stop) })

	if !started {
		w.finish(ErrTerminated)
	}
}

// CloseChan returns a channel that will be closed when the WebSocket connection is closed.
func (w *WsConnection) CloseChan() CloseChan {
	return w.closeChan
}

// CloseErr returns an error that explains why the WebSocket connection was closed.
func (w *WsConnection) CloseErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeReason
}

// Open dials the server and starts the read and write routines.
// It blocks until the connection is established or the dial fails. ctx bounds the whole
// lifetime of the connection, not only the dial.
func (w *WsConnection) Open(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("connection already opened")
	}
	if w.state != Connecting {
		w.mu.Unlock()
		return ErrConnectionClosed
	}
	w.started = true
	w.mu.Unlock()

	dialCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-w.stop:
			cancel()
		case <-dialCtx.Done():
		}
	}()

	conn, err := w.dial(dialCtx)
	if err != nil {
		select {
		case <-w.stop:
			err = ErrTerminated
		default:
		}
		w.finish(err)
		return err
	}

	w.mu.Lock()
	if w.state != Connecting {
		w.mu.Unlock()
		_ = conn.Close()
		w.finish(ErrTerminated)
		return ErrTerminated
	}
	w.conn = conn
	w.state = Open
	w.mu.Unlock()

	// the writer must be running before open listeners flush their queues
	go w.write(ctx, conn)

	w.events.Emit(EventOpen, ConnectionEvent{Type: EventOpen})

	go w.read(conn)

	return nil
}

func (w *WsConnection) dial(ctx context.Context) (*websocket.Conn, error) {
	p, err := w.openConnectionParamsRepo.Get(ctx)
	if err != nil {
		w.logger.Errorf("cannot get connection params due to %s", err)
		return nil, errors.Wrap(ErrCannotConnect, err.Error())
	}

	conn, resp, err := w.dialer.DialContext(ctx, p.URL.String(), p.Header)

	if err = w.handleDialError(conn, resp, err); err != nil {
		w.logger.Errorf("connection err to %s: %s", p.URL.String(), err)
		if conn != nil {
			_ = conn.Close()
		}
		return nil, err
	}

	w.logger.Debugf("success opening connection to %s", p.URL.String())

	return conn, nil
}

func (w *WsConnection) read(conn *websocket.Conn) {
	defer w.finish(nil)

	for {
		messageType, bts, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				w.logger.Debugln("<= [CLOSE]")
				w.setCloseReason(errors.Wrap(
					ErrConnectionClosed,
					NewCloseMessage(closeErr.Code, []byte(closeErr.Text)).Error(),
				))
				return
			}

			w.logger.Debugf("websocket read finished: %s", err)
			w.setCloseReason(errors.Wrap(
				ErrConnectionClosed,
				"error occurred on websocket read: "+err.Error(),
			))
			return
		}

		// message types from ReadMessage are either binary or text
		var m Message
		switch messageType {
		case websocket.BinaryMessage:
			w.logger.Debugln("<= [BIN]")
			m = NewBinaryMessage(bts)
		default:
			w.logger.Debugf("<= [DATA] %s", bts)
			m = NewDataMessage(bts)
		}

		w.events.Emit(EventMessage, ConnectionEvent{Type: EventMessage, Message: m})
	}
}

// write owns the outbound side of conn. On exit it closes conn, which unblocks the read
// routine, and writerDone, which unblocks pending Write calls.
func (w *WsConnection) write(ctx context.Context, conn *websocket.Conn) {
	defer close(w.writerDone)

	for {
		select {
		case <-w.closeChan:
			return
		case <-ctx.Done():
			w.setCloseReason(ErrTerminated)
			_ = conn.Close()
			return
		case <-w.stop:
			w.logger.Infoln("closing connection from our side")
			w.setCloseReason(ErrTerminated)
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout),
			)
			// unblocks the read routine, which emits the close event
			_ = conn.Close()
			return
		case msg := <-w.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))

			var err error
			if msg.Type().IsBinary() {
				w.logger.Debugln("=> [BIN]")
				err = conn.WriteMessage(websocket.BinaryMessage, msg.Data())
			} else {
				w.logger.Debugf("=> [DATA] %s", msg.Data())
				err = conn.WriteMessage(websocket.TextMessage, msg.Data())
			}

			if err != nil {
				w.logger.Errorf("error occurred on websocket write: %s", err)
				if websocket.IsCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					w.setCloseReason(ErrConnectionClosed)
				} else {
					w.setCloseReason(errors.Wrap(ErrConnectionClosed, err.Error()))
				}
				_ = conn.Close()
				return
			}
		}
	}
}

// finish moves the connection to Closed and emits EventClose exactly once.
func (w *WsConnection) finish(reason error) {
	w.setCloseReason(reason)

	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.state = Closed
		conn := w.conn
		closeReason := w.closeReason
		w.mu.Unlock()

		if conn != nil {
			_ = conn.Close()
		}
		close(w.closeChan)

		w.events.Emit(EventClose, ConnectionEvent{Type: EventClose, Err: closeReason})
		w.events.Close()
	})
}

func (w *WsConnection) setCloseReason(err error) {
	if err == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeReason == nil {
		w.closeReason = err
	}
}

func (w *WsConnection) handleDialError(conn *websocket.Conn, resp *http.Response, err error) error {
	if w.errAdapters.OnDial != nil {
		return w.errAdapters.OnDial(conn, resp, err)
	}

	// 1. Check HTTP errors first
	var msg string

	if resp != nil {
		if resp.Body != nil {
			bts, err := io.ReadAll(resp.Body)
			if err == nil {
				msg = string(bts)
			}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return errors.Wrap(ErrRateLimit, msg)
		}
	}

	// 2. Network errors
	if err != nil {
		return errors.Wrap(ErrCannotConnect, err.Error())
	}

	return nil
}
