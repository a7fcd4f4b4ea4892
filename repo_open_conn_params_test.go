package wsocket

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		address string
		want    string
		wantErr bool
	}{
		{address: "http://localhost:5000", want: "ws://localhost:5000"},
		{address: "https://example.com/feed?x=1", want: "wss://example.com/feed?x=1"},
		{address: "ws://localhost:5000/socket", want: "ws://localhost:5000/socket"},
		{address: "wss://example.com", want: "wss://example.com"},
		{address: "ftp://example.com", wantErr: true},
		{address: "localhost:5000", wantErr: true},
		{address: "ws://", wantErr: true},
		{address: "ws://bad host", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.address, func(t *testing.T) {
			u, err := ParseAddress(test.address)
			if test.wantErr {
				var unrecoverable *ErrUnrecoverableConnection
				assert.ErrorAs(t, err, &unrecoverable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, u.String())
		})
	}
}

func TestStaticOpenConnectionParams(t *testing.T) {
	u, err := ParseAddress("ws://localhost:5000")
	require.NoError(t, err)

	header := http.Header{"X-Token": []string{"abc"}}
	getter := StaticOpenConnectionParams(u, header)

	p, err := getter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, u, p.URL)
	assert.Equal(t, "abc", p.Header.Get("X-Token"))

	p.Header.Set("X-Token", "changed")
	p, _ = getter(context.Background())
	assert.Equal(t, "abc", p.Header.Get("X-Token"))
}

func TestOpenConnectionParamsRepo_LogsFailures(t *testing.T) {
	logs := &strings.Builder{}
	repo := NewOpenConnectionParamsRepo(newTestLogger(logs), func(context.Context) (OpenConnectionParams, error) {
		return OpenConnectionParams{}, errors.New("vault sealed")
	})

	_, err := repo.Get(context.Background())

	assert.EqualError(t, err, "vault sealed")
	assert.Equal(t, "ERROR: cannot fetch open connection params: vault sealed\n", logs.String())
}
