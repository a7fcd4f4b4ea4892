package wsocket

import "fmt"

// MessageType is the websocket frame type of a raw Message. Values match RFC 6455 opcodes.
type MessageType byte

const (
	DataMessage   MessageType = 1
	BinaryMessage MessageType = 2
	CloseError    MessageType = 8
)

func (t MessageType) IsData() bool { return t == DataMessage }

func (t MessageType) IsBinary() bool { return t == BinaryMessage }

func (t MessageType) IsClose() bool { return t == CloseError }

func (t MessageType) String() string {
	switch t {
	case DataMessage:
		return "data"
	case BinaryMessage:
		return "binary"
	case CloseError:
		return "close"
	default:
		return fmt.Sprintf("MessageType(%d)", byte(t))
	}
}

// Message is a raw frame as exchanged with a Connection, before decoding into a typed
// message.
type Message interface {
	Type() MessageType
	Data() []byte
	String() string
}

// ErrorMessage is a close frame received from the peer; it doubles as the close reason.
type ErrorMessage interface {
	Message
	Error() string
	Code() int
}

type frame struct {
	kind    MessageType
	payload []byte
}

func (m frame) Type() MessageType { return m.kind }

func (m frame) Data() []byte { return m.payload }

func (m frame) String() string {
	return fmt.Sprintf("Message{type=%s,data=%s}", m.kind, m.payload)
}

type closeFrame struct {
	frame
	code int
}

func (m closeFrame) Code() int { return m.code }

func (m closeFrame) String() string {
	return fmt.Sprintf("Message{type=%s,code=%d,data=%s}", m.kind, m.code, m.payload)
}

func (m closeFrame) Error() string {
	return m.String()
}

func NewMessage(mt MessageType, data []byte) Message {
	return frame{kind: mt, payload: data}
}

func NewDataMessage(data []byte) Message {
	return NewMessage(DataMessage, data)
}

func NewBinaryMessage(data []byte) Message {
	return NewMessage(BinaryMessage, data)
}

func NewCloseMessage(code int, data []byte) ErrorMessage {
	return closeFrame{
		frame: frame{kind: CloseError, payload: data},
		code:  code,
	}
}
