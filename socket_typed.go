package wsocket

import (
	"context"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// msgTypeOf returns the discriminant of variant T. Pointer variants are probed through a
// fresh value so their MsgType may use either receiver kind.
func msgTypeOf[T Msg]() string {
	var zero T

	rt := reflect.TypeOf(zero)
	if rt == nil {
		panic(fmt.Sprintf("wsocket: %T is not a concrete message variant", zero))
	}
	if rt.Kind() == reflect.Pointer {
		return reflect.New(rt.Elem()).Interface().(T).MsgType()
	}
	return zero.MsgType()
}

func narrow[T Msg, IM Msg](listener func(T)) Listener[IM] {
	return func(m IM) {
		if v, ok := any(m).(T); ok {
			listener(v)
		}
	}
}

// OnType subscribes listener to inbound messages of variant T, using T's MsgType as the
// discriminant. Messages carrying that discriminant but decoded into another Go type are
// ignored.
func OnType[T Msg, IM Msg, OM Msg](s *Socket[IM, OM], listener func(T)) Unsubscriber {
	return s.On(msgTypeOf[T](), narrow[T, IM](listener))
}

// OnceType is the Once counterpart of OnType.
func OnceType[T Msg, IM Msg, OM Msg](s *Socket[IM, OM], listener func(T)) Unsubscriber {
	return s.Once(msgTypeOf[T](), narrow[T, IM](listener))
}

// AwaitType waits for the next inbound message of variant T.
func AwaitType[T Msg, IM Msg, OM Msg](ctx context.Context, s *Socket[IM, OM]) (T, error) {
	var zero T

	m, err := s.Await(ctx, msgTypeOf[T]())
	if err != nil {
		return zero, err
	}

	v, ok := any(m).(T)
	if !ok {
		return zero, errors.Wrapf(ErrUnknownMessageType, "%s decoded as %T", m.MsgType(), m)
	}
	return v, nil
}
