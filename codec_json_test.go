package wsocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inbound interface {
	Msg
}

type helloMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

func (helloMsg) MsgType() string { return "HELLO" }

type byeMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (*byeMsg) MsgType() string { return "BYE" }

func newInboundRegistry() *TypeRegistry[inbound] {
	return NewTypeRegistry[inbound]().
		Register("HELLO", func() inbound { return &helloMsg{} }).
		Register("BYE", func() inbound { return &byeMsg{} })
}

func TestJSONCodec_Encode(t *testing.T) {
	codec := NewJSONCodec[testMsg, testMsg](nil)

	data, err := codec.Encode(testMsg{Type: "TEST", Test: "hi"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"TEST","test":"hi"}`, string(data))
}

func TestJSONCodec_DecodeConcrete(t *testing.T) {
	codec := NewJSONCodec[testMsg, testMsg](nil)

	m, err := codec.Decode([]byte(`{"type":"TEST_2","test2":"hi","extra":1}`))

	require.NoError(t, err)
	assert.Equal(t, testMsg{Type: "TEST_2", Test2: "hi"}, m)
}

func TestJSONCodec_DecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{name: "not json", payload: `hello`, want: ErrMalformedMessage},
		{name: "missing type", payload: `{"test":"hi"}`, want: ErrMalformedMessage},
		{name: "non string type", payload: `{"type":42}`, want: ErrMalformedMessage},
		{name: "not an object", payload: `["TEST"]`, want: ErrMalformedMessage},
	}

	codec := NewJSONCodec[testMsg, testMsg](nil)

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := codec.Decode([]byte(test.payload))
			assert.ErrorIs(t, err, test.want)
		})
	}
}

func TestJSONCodec_DecodeWithRegistry(t *testing.T) {
	codec := NewJSONCodec[inbound, testMsg](newInboundRegistry())

	m, err := codec.Decode([]byte(`{"type":"HELLO","name":"ada"}`))
	require.NoError(t, err)
	assert.Equal(t, &helloMsg{Type: "HELLO", Name: "ada"}, m)
	assert.Equal(t, "HELLO", m.MsgType())

	m, err = codec.Decode([]byte(`{"type":"BYE","reason":"done"}`))
	require.NoError(t, err)
	assert.Equal(t, &byeMsg{Type: "BYE", Reason: "done"}, m)
}

func TestJSONCodec_DecodeUnknownType(t *testing.T) {
	codec := NewJSONCodec[inbound, testMsg](newInboundRegistry())

	_, err := codec.Decode([]byte(`{"type":"NOPE"}`))

	assert.ErrorIs(t, err, ErrUnknownMessageType)
	assert.Contains(t, err.Error(), "NOPE")
}

func TestJSONCodec_DecodeVariantMismatch(t *testing.T) {
	codec := NewJSONCodec[inbound, testMsg](newInboundRegistry())

	_, err := codec.Decode([]byte(`{"type":"HELLO","name":3}`))

	assert.ErrorIs(t, err, ErrMalformedMessage)
}
