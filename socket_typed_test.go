package wsocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTypedSocket(t *testing.T) (*Socket[inbound, testMsg], *fakeConnection) {
	t.Helper()

	conn := newFakeConnection(Open)
	s := New[inbound, testMsg](conn, NewJSONCodec[inbound, testMsg](newInboundRegistry()), WithLogger(NoopLogger()))

	return s, conn
}

func TestMsgTypeOf(t *testing.T) {
	assert.Equal(t, "HELLO", msgTypeOf[helloMsg]())
	assert.Equal(t, "HELLO", msgTypeOf[*helloMsg]())
	assert.Equal(t, "BYE", msgTypeOf[*byeMsg]())
	assert.Panics(t, func() { msgTypeOf[inbound]() })
}

func TestOnType(t *testing.T) {
	s, conn := newTypedSocket(t)
	var hellos []*helloMsg
	var byes []*byeMsg

	OnType(s, func(m *helloMsg) { hellos = append(hellos, m) })
	OnType(s, func(m *byeMsg) { byes = append(byes, m) })

	conn.receive(`{"type":"HELLO","name":"ada"}`)
	conn.receive(`{"type":"HELLO","name":"grace"}`)

	require.Len(t, hellos, 2)
	assert.Equal(t, "ada", hellos[0].Name)
	assert.Equal(t, "grace", hellos[1].Name)
	assert.Empty(t, byes)
}

func TestOnTypeIgnoresOtherGoTypes(t *testing.T) {
	s, conn := newTypedSocket(t)
	calls := 0

	// registry yields *helloMsg, never helloMsg
	OnType(s, func(helloMsg) { calls++ })

	conn.receive(`{"type":"HELLO","name":"ada"}`)

	assert.Equal(t, 0, calls)
}

func TestOnceType(t *testing.T) {
	s, conn := newTypedSocket(t)
	var byes []*byeMsg

	unsubscribe := OnceType(s, func(m *byeMsg) { byes = append(byes, m) })

	conn.receive(`{"type":"BYE","reason":"first"}`)
	conn.receive(`{"type":"BYE","reason":"second"}`)
	unsubscribe()

	require.Len(t, byes, 1)
	assert.Equal(t, "first", byes[0].Reason)
}

func TestAwaitType(t *testing.T) {
	s, conn := newTypedSocket(t)

	type result struct {
		msg *byeMsg
		err error
	}
	done := make(chan result, 1)

	go func() {
		m, err := AwaitType[*byeMsg](context.Background(), s)
		done <- result{msg: m, err: err}
	}()

	require.Eventually(t, func() bool { return s.events.Len("BYE") == 1 }, time.Second, time.Millisecond)

	conn.receive(`{"type":"HELLO","name":"ada"}`)
	conn.receive(`{"type":"BYE","reason":"done"}`)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, "done", r.msg.Reason)
	case <-time.After(time.Second):
		t.Fatal("await did not resolve")
	}
}

func TestAwaitTypeClosed(t *testing.T) {
	s, conn := newTypedSocket(t)
	conn.finish(nil)

	_, err := AwaitType[*helloMsg](context.Background(), s)

	assert.ErrorIs(t, err, ErrConnectionClosed)
}
