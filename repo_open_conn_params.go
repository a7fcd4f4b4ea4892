package wsocket

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

type (
	OpenConnectionParams struct {
		URL    url.URL
		Header http.Header
	}

	// OpenConnectionParamsGetter resolves where and how to connect right before dialing.
	// It is the hook to mint short-lived tokens or pick an endpoint at connection time.
	OpenConnectionParamsGetter func(ctx context.Context) (OpenConnectionParams, error)

	OpenConnectionParamsRepo struct {
		logger Logger
		getter OpenConnectionParamsGetter
	}
)

func (r OpenConnectionParamsRepo) Get(
	ctx context.Context,
) (params OpenConnectionParams, err error) {
	params, err = r.getter(ctx)
	if err != nil {
		r.logger.Errorf("cannot fetch open connection params: %s", err)
	}
	return
}

func NewOpenConnectionParamsRepo(
	logger Logger,
	getter OpenConnectionParamsGetter,
) OpenConnectionParamsRepo {
	return OpenConnectionParamsRepo{getter: getter, logger: logger}
}

// StaticOpenConnectionParams always resolves to the same URL and header.
func StaticOpenConnectionParams(u url.URL, header http.Header) OpenConnectionParamsGetter {
	return func(context.Context) (OpenConnectionParams, error) {
		return OpenConnectionParams{URL: u, Header: header.Clone()}, nil
	}
}

// ParseAddress turns an http(s) or ws(s) address into a websocket URL. An http scheme is
// rewritten into ws and https into wss; ws and wss are kept as is.
func ParseAddress(address string) (url.URL, error) {
	if strings.HasPrefix(address, "http") {
		address = "ws" + strings.TrimPrefix(address, "http")
	}

	u, err := url.Parse(address)
	if err != nil {
		return url.URL{}, WrapErrorUnrecoverableConnection(err, address)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return url.URL{}, WrapErrorUnrecoverableConnection(
			errors.Errorf("unsupported scheme %q", u.Scheme),
			address,
		)
	}

	if u.Host == "" {
		return url.URL{}, WrapErrorUnrecoverableConnection(errors.New("missing host"), address)
	}

	return *u, nil
}
