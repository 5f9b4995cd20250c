package vidispine

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tonimelisma/vidispine-client/internal/logger"
)

// Credentials authenticate every request. RunAs, when set, asks the server to
// act on behalf of another user.
type Credentials struct {
	User     string
	Password string
	RunAs    string
}

// String never includes the password.
func (c Credentials) String() string {
	s := "user=" + c.User + " password=[redacted]"
	if c.RunAs != "" {
		s += " runAs=" + c.RunAs
	}
	return s
}

func (c Credentials) authorization() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.User+":"+c.Password))
}

// Clock sleeps. Tests substitute one that records delays instead of waiting.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// BackoffState tracks the adaptive delay applied after 504 responses.
// Delay doubles on each 504 and drops back to one second once it would exceed
// gatewayMaxDelay. After more than ten clean responses per delayed one the
// state resets to zero.
type BackoffState struct {
	Delay   time.Duration
	Delayed int
	Clean   int
}

// gatewayTimeout records a 504 and returns the delay to wait before resending.
func (b *BackoffState) gatewayTimeout() time.Duration {
	switch {
	case b.Delay == 0:
		b.Delay = gatewayInitialDelay
	case b.Delay*2 > gatewayMaxDelay:
		b.Delay = gatewayInitialDelay
	default:
		b.Delay *= 2
	}
	b.Delayed++
	b.Clean = 0
	return b.Delay
}

// success records a non-504 response and reports whether the delay was cleared.
func (b *BackoffState) success() bool {
	b.Clean++
	if b.Delay > 0 && b.Clean > gatewayCleanFactor*b.Delayed {
		*b = BackoffState{}
		return true
	}
	return false
}

// RawResponse is a final HTTP response with its body fully read.
type RawResponse struct {
	StatusCode int
	Reason     string
	Header     http.Header
	Body       []byte
}

// Connection sends authenticated requests to one Vidispine host. It recovers
// from dropped connections, follows 303 redirects and waits out 504 responses.
type Connection struct {
	base              *url.URL
	creds             Credentials
	timeout           time.Duration
	maxGatewayRetries int
	clock             Clock
	logger            logger.Logger
	newTransport      func() http.RoundTripper

	mu      sync.Mutex
	client  *http.Client
	backoff BackoffState
}

func defaultTransport() http.RoundTripper {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        1,
		MaxIdleConnsPerHost: 1,
		IdleConnTimeout:     90 * time.Second,
	}
}

// NewConnection builds a Connection for cfg.
func NewConnection(cfg Config, l logger.Logger, opts ...Option) *Connection {
	cfg = cfg.withDefaults()
	o := newOptions(opts)
	if l == nil {
		l = logger.NoopLogger{}
	}
	c := &Connection{
		base:              cfg.BaseURL(),
		creds:             cfg.Credentials(),
		timeout:           cfg.Timeout,
		maxGatewayRetries: cfg.MaxGatewayRetries,
		clock:             o.clock,
		logger:            l,
		newTransport:      o.transport,
	}
	c.client = c.httpClient()
	return c
}

func (c *Connection) httpClient() *http.Client {
	return &http.Client{
		Transport: c.newTransport(),
		Timeout:   c.timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// BaseURL returns scheme://host:port of the server.
func (c *Connection) BaseURL() string {
	return c.base.String()
}

// Backoff returns a snapshot of the 504 backoff state.
func (c *Connection) Backoff() BackoffState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backoff
}

// Reset drops the current connection and opens a fresh one on the next send.
func (c *Connection) Reset() {
	c.mu.Lock()
	old := c.client
	c.client = c.httpClient()
	c.mu.Unlock()
	old.CloseIdleConnections()
}

// Close releases idle connections.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.client.CloseIdleConnections()
}

func (c *Connection) current() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

// Send issues method on path (which must start with "/") and returns the
// first response that is neither a 303 nor a 504. Authorization, and RunAs when
// configured, are added to headers.
func (c *Connection) Send(ctx context.Context, method, path string, body []byte, headers http.Header) (*RawResponse, error) {
	c.logger.Debugf("Send called with method: %s, path: %s, body bytes: %d", method, path, len(body))

	hdr := headers.Clone()
	if hdr == nil {
		hdr = http.Header{}
	}
	hdr.Set("Authorization", c.creds.authorization())
	if c.creds.RunAs != "" {
		hdr.Set("RunAs", c.creds.RunAs)
	}

	target := c.base.String() + path
	client := c.current()
	var redirectClients []*http.Client
	defer func() {
		for _, rc := range redirectClients {
			rc.CloseIdleConnections()
		}
	}()

	reconnects := 0
	gatewayRetries := 0
	for {
		res, err := c.roundTrip(ctx, client, method, target, body, hdr)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if isMalformedResponse(err) {
				return nil, fmt.Errorf("%w: %s %s: %w", ErrMalformedResponse, method, target, err)
			}
			var reqErr *requestError
			if errors.As(err, &reqErr) {
				return nil, err
			}
			reconnects++
			if reconnects > maxReconnectAttempts {
				c.logger.Errorf("giving up on %s %s after %d reconnects: %v", method, target, maxReconnectAttempts, err)
				return nil, fmt.Errorf("%w: %s %s after %d reconnects: %w", ErrTransport, method, target, maxReconnectAttempts, err)
			}
			c.logger.Warnf("connection error on %s %s, reconnecting (attempt %d): %v", method, target, reconnects, err)
			c.Reset()
			client = c.current()
			if err := c.clock.Sleep(ctx, reconnectPause); err != nil {
				return nil, err
			}
			continue
		}

		switch res.StatusCode {
		case StatusSeeOther:
			loc := res.Header.Get("Location")
			if loc == "" {
				return res, nil
			}
			next, err := c.resolveLocation(target, loc)
			if err != nil {
				return nil, err
			}
			c.logger.Debugf("redirected from %s to %s", target, next)
			target = next
			client = c.httpClient()
			redirectClients = append(redirectClients, client)

		case StatusGatewayTimeout:
			gatewayRetries++
			c.mu.Lock()
			delay := c.backoff.gatewayTimeout()
			c.mu.Unlock()
			if c.maxGatewayRetries > 0 && gatewayRetries > c.maxGatewayRetries {
				c.logger.Errorf("giving up on %s %s after %d gateway timeouts", method, target, c.maxGatewayRetries)
				return nil, fmt.Errorf("%w: %s %s after %d retries", ErrGatewayTimeout, method, target, c.maxGatewayRetries)
			}
			c.logger.Warnf("gateway timeout on %s %s, waiting %s before retrying", method, target, delay)
			if err := c.clock.Sleep(ctx, delay); err != nil {
				return nil, err
			}

		default:
			c.mu.Lock()
			cleared := c.backoff.success()
			c.mu.Unlock()
			if cleared {
				c.logger.Infof("requests succeeding without delay, gateway backoff cleared")
			}
			return res, nil
		}
	}
}

type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func (c *Connection) roundTrip(ctx context.Context, client *http.Client, method, target string, body []byte, hdr http.Header) (*RawResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &requestError{fmt.Errorf("%w: creating request: %w", ErrInvalidData, err)}
	}
	req.Header = hdr.Clone()
	c.logger.Debug("sending request", "method", method, "url", target, "headers", logger.RedactHeaders(req.Header))

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBodySafely(res.Body, c.logger)

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	c.logger.Debug("received response", "status", res.StatusCode, "bytes", len(data))

	return &RawResponse{
		StatusCode: res.StatusCode,
		Reason:     reasonPhrase(res),
		Header:     res.Header,
		Body:       data,
	}, nil
}

// resolveLocation resolves a redirect target against the current request URL.
// The configured scheme, host and port are kept whatever the Location says.
func (c *Connection) resolveLocation(current, loc string) (string, error) {
	u, err := url.Parse(loc)
	if err != nil {
		return "", fmt.Errorf("%w: parsing redirect location %q: %w", ErrMalformedResponse, loc, err)
	}
	cur, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("%w: parsing request url %q: %w", ErrInvalidData, current, err)
	}
	next := cur.ResolveReference(u)
	next.Scheme = c.base.Scheme
	next.Host = c.base.Host
	next.User = nil
	next.Fragment = ""
	return next.String(), nil
}

func reasonPhrase(res *http.Response) string {
	reason := strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode))
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = http.StatusText(res.StatusCode)
	}
	return reason
}

// isMalformedResponse reports a response the server framed badly. net/http
// exposes no error type for a bad status line, so that case is matched on the
// "malformed HTTP" wording its transport uses.
func isMalformedResponse(err error) bool {
	var protoErr textproto.ProtocolError
	if errors.As(err, &protoErr) {
		return true
	}
	return strings.Contains(err.Error(), "malformed HTTP")
}

func closeBodySafely(body io.Closer, l logger.Logger) {
	if err := body.Close(); err != nil {
		l.Debugf("closing response body: %v", err)
	}
}
