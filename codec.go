package wsocket

type (
	// Msg is implemented by every typed message exchanged over a Socket. MsgType returns the
	// discriminant, serialized as the "type" field on the wire.
	Msg interface {
		MsgType() string
	}

	// Codec converts typed messages to and from wire payloads. IM is the inbound variant
	// universe, OM the outbound one.
	Codec[IM, OM any] interface {
		Encode(m OM) ([]byte, error)
		Decode(data []byte) (IM, error)
	}
)
