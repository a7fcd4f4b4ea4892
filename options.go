package wsocket

import (
	"net/http"

	"github.com/fasthttp/websocket"
)

type (
	// Option configures a Socket during construction.
	Option func(*config)

	config struct {
		logger       Logger
		dialer       *websocket.Dialer
		header       http.Header
		errAdapters  ErrorAdapters
		paramsGetter OpenConnectionParamsGetter
	}
)

// WithLogger overrides the default console logger.
func WithLogger(logger Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithDialer overrides websocket.DefaultDialer. Only used by Dial.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *config) {
		c.dialer = dialer
	}
}

// WithHeader sets the HTTP headers sent with the handshake. Only used by Dial.
func WithHeader(header http.Header) Option {
	return func(c *config) {
		c.header = header
	}
}

// WithErrorAdapters customizes how dial failures are translated into errors. Only used by
// Dial.
func WithErrorAdapters(adapters ErrorAdapters) Option {
	return func(c *config) {
		c.errAdapters = adapters
	}
}

// WithConnectionParams resolves the URL and headers right before dialing instead of using
// the address given to Dial. Only used by Dial.
func WithConnectionParams(getter OpenConnectionParamsGetter) Option {
	return func(c *config) {
		c.paramsGetter = getter
	}
}

func newConfig(opts []Option) config {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = defaultLogger()
	}
	if c.dialer == nil {
		c.dialer = websocket.DefaultDialer
	}
	return c
}
