package wsocket

import (
	"github.com/stretchr/testify/mock"
)

type mockCodec[IM, OM any] struct {
	mock.Mock
}

func (m *mockCodec[IM, OM]) Encode(msg OM) ([]byte, error) {
	args := m.Called(msg)
	bts, _ := args.Get(0).([]byte)
	return bts, args.Error(1)
}

func (m *mockCodec[IM, OM]) Decode(data []byte) (IM, error) {
	args := m.Called(data)
	msg, _ := args.Get(0).(IM)
	return msg, args.Error(1)
}
