package wsocket

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

// TypeRegistry maps discriminants to factories of inbound variants. It lets a JSONCodec
// decode into an interface type, picking the concrete variant from the "type" field.
// Factories should return pointers so the payload can be unmarshalled into them.
type TypeRegistry[IM any] struct {
	mu        sync.RWMutex
	factories map[string]func() IM
}

func NewTypeRegistry[IM any]() *TypeRegistry[IM] {
	return &TypeRegistry[IM]{factories: make(map[string]func() IM)}
}

// Register binds msgType to factory, replacing any previous binding.
func (r *TypeRegistry[IM]) Register(msgType string, factory func() IM) *TypeRegistry[IM] {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[msgType] = factory
	return r
}

func (r *TypeRegistry[IM]) lookup(msgType string) (func() IM, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[msgType]
	return factory, ok
}

// JSONCodec encodes messages as flat JSON records carrying a string "type" field.
type JSONCodec[IM, OM Msg] struct {
	registry *TypeRegistry[IM]
}

// NewJSONCodec returns a JSON codec. With a nil registry inbound payloads are unmarshalled
// straight into IM, which must then be a concrete type.
func NewJSONCodec[IM, OM Msg](registry *TypeRegistry[IM]) *JSONCodec[IM, OM] {
	return &JSONCodec[IM, OM]{registry: registry}
}

func (c *JSONCodec[IM, OM]) Encode(m OM) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot encode %s message", m.MsgType())
	}
	return data, nil
}

func (c *JSONCodec[IM, OM]) Decode(data []byte) (IM, error) {
	var (
		zero IM
		head struct {
			Type *string `json:"type"`
		}
	)

	if err := json.Unmarshal(data, &head); err != nil {
		return zero, errors.Wrap(ErrMalformedMessage, err.Error())
	}

	if head.Type == nil {
		return zero, errors.Wrap(ErrMalformedMessage, "missing type field")
	}

	if c.registry == nil {
		var m IM
		if err := json.Unmarshal(data, &m); err != nil {
			return zero, errors.Wrap(ErrMalformedMessage, err.Error())
		}
		return m, nil
	}

	factory, ok := c.registry.lookup(*head.Type)
	if !ok {
		return zero, errors.Wrap(ErrUnknownMessageType, *head.Type)
	}

	m := factory()
	if err := json.Unmarshal(data, any(m)); err != nil {
		return zero, errors.Wrap(ErrMalformedMessage, err.Error())
	}
	return m, nil
}
