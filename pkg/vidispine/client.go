// Package vidispine is a client for the Vidispine media asset management
// HTTP/XML API. It handles authentication, retries transient failures and
// exposes paginated listings through Cursor.
package vidispine

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tonimelisma/vidispine-client/internal/logger"
)

// Option customizes a Client.
type Option func(*options)

type options struct {
	clock     Clock
	transport func() http.RoundTripper
}

func newOptions(opts []Option) options {
	o := options{clock: realClock{}, transport: defaultTransport}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces the clock used for retry sleeps.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithTransport sets the factory for the HTTP transport. It is called again
// every time the connection is reset.
func WithTransport(f func() http.RoundTripper) Option {
	return func(o *options) { o.transport = f }
}

// Endpoint describes a single API call. Path is relative to the API root,
// e.g. "/item/VX-1/metadata".
type Endpoint struct {
	Path        string
	Method      string // defaults to GET
	Matrix      Params
	Query       Params
	Body        []byte
	Accept      string // defaults to application/xml
	ContentType string // defaults to application/xml when Body is set
	Raw         bool   // send Body byte-for-byte
	Headers     http.Header
}

func (e Endpoint) method() string {
	if e.Method == "" {
		return http.MethodGet
	}
	return e.Method
}

func (e Endpoint) accept() string {
	if e.Accept == "" {
		return ContentTypeXML
	}
	return e.Accept
}

func (e Endpoint) contentType() string {
	if e.ContentType == "" {
		return ContentTypeXML
	}
	return e.ContentType
}

// raw reports whether the body must not be re-encoded.
func (e Endpoint) raw() bool {
	return e.Raw || e.ContentType == ContentTypeOctetStream
}

// URL returns the request URI: API root, path, matrix and query parameters.
func (e Endpoint) URL() string {
	return BuildURL(apiPath(e.Path), e.Matrix, e.Query)
}

// Requester performs a request and returns the parsed document.
type Requester interface {
	Request(ctx context.Context, ep Endpoint) (*Document, error)
}

// Client talks to one Vidispine server. It is not safe for concurrent use.
type Client struct {
	cfg    Config
	conn   *Connection
	clock  Clock
	logger logger.Logger
}

// NewClient creates a client for cfg. Zero-valued tuning fields take their
// defaults from DefaultConfig. A nil logger discards output.
func NewClient(cfg Config, l logger.Logger, opts ...Option) *Client {
	cfg = cfg.withDefaults()
	if l == nil {
		l = logger.NoopLogger{}
	}
	o := newOptions(opts)
	return &Client{
		cfg:    cfg,
		conn:   NewConnection(cfg, l, opts...),
		clock:  o.clock,
		logger: l,
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Connection returns the underlying connection.
func (c *Client) Connection() *Connection {
	return c.conn
}

// Close releases idle connections.
func (c *Client) Close() {
	c.conn.Close()
}

// Get is Request with a GET of path and no parameters.
func (c *Client) Get(ctx context.Context, path string) (*Document, error) {
	return c.Request(ctx, Endpoint{Path: path})
}

// Request sends ep and returns the parsed response. A 503 response or a
// malformed status line is retried RetryDelay apart, for at most RetryAttempts
// attempts in total. Any other error status is returned as an *Error without
// retrying. An empty body yields NoContent.
func (c *Client) Request(ctx context.Context, ep Endpoint) (*Document, error) {
	c.logger.Debugf("Request called with method: %s, path: %s", ep.method(), ep.Path)

	method, target, body, hdr := c.prepare(ep)

	var doc *Document
	attempts := 0
	op := func() error {
		attempts++
		res, err := c.conn.Send(ctx, method, target, body, hdr)
		if err != nil {
			if errors.Is(err, ErrMalformedResponse) {
				return err
			}
			return backoff.Permanent(err)
		}

		if res.StatusCode == StatusServiceUnavailable {
			return Classify(res.StatusCode, res.Reason, method, target, body, res.Body)
		}
		if res.StatusCode < 200 || res.StatusCode > 299 {
			return backoff.Permanent(Classify(res.StatusCode, res.Reason, method, target, body, res.Body))
		}

		d, err := c.decode(ep, res.Body)
		if err != nil {
			c.logger.Errorf("could not parse response to %s %s: %v\n%s", method, target, err, res.Body)
			return backoff.Permanent(err)
		}
		doc = d
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryDelay), uint64(c.cfg.RetryAttempts-1)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		c.logger.Warnf("server unavailable on %s %s (attempt %d of %d), retrying in %s: %v",
			method, target, attempts, c.cfg.RetryAttempts, wait, err)
	}

	if err := backoff.RetryNotifyWithTimer(op, policy, notify, newClockTimer(ctx, c.clock)); err != nil {
		if isUnavailable(err) {
			c.logger.Errorf("giving up on %s %s after %d attempts: %v", method, target, attempts, err)
		}
		return nil, err
	}
	return doc, nil
}

// RawRequest sends ep once, without the 503 retry loop, and returns the body.
func (c *Client) RawRequest(ctx context.Context, ep Endpoint) ([]byte, error) {
	c.logger.Debugf("RawRequest called with method: %s, path: %s", ep.method(), ep.Path)

	method, target, body, hdr := c.prepare(ep)
	res, err := c.conn.Send(ctx, method, target, body, hdr)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, Classify(res.StatusCode, res.Reason, method, target, body, res.Body)
	}
	return res.Body, nil
}

func (c *Client) prepare(ep Endpoint) (method, target string, body []byte, hdr http.Header) {
	method = ep.method()
	target = ep.URL()

	hdr = ep.Headers.Clone()
	if hdr == nil {
		hdr = http.Header{}
	}
	hdr.Set("Accept", ep.accept())

	body = ep.Body
	if body != nil {
		hdr.Set("Content-Type", ep.contentType())
		if !ep.raw() {
			body = decodeText(body)
		}
	} else if method == http.MethodPost {
		body = []byte{}
	}
	return method, target, body, hdr
}

func (c *Client) decode(ep Endpoint, body []byte) (*Document, error) {
	if len(body) == 0 {
		return NoContent, nil
	}
	if strings.Contains(ep.accept(), "xml") {
		return ParseDocument(body)
	}
	return TextDocument(body), nil
}

func isUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrMalformedResponse)
}

// clockTimer adapts a Clock to backoff.Timer. Start blocks for the duration.
type clockTimer struct {
	ctx   context.Context
	clock Clock
	c     chan time.Time
}

func newClockTimer(ctx context.Context, clock Clock) *clockTimer {
	return &clockTimer{ctx: ctx, clock: clock, c: make(chan time.Time, 1)}
}

func (t *clockTimer) Start(d time.Duration) {
	_ = t.clock.Sleep(t.ctx, d)
	select {
	case t.c <- time.Now():
	default:
	}
}

func (t *clockTimer) Stop() {
	select {
	case <-t.c:
	default:
	}
}

func (t *clockTimer) C() <-chan time.Time {
	return t.c
}
