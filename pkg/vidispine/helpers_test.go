package vidispine

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tonimelisma/vidispine-client/internal/logger"
)

// fakeClock records requested sleeps and returns immediately.
type fakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.sleeps = append(f.sleeps, d)
	f.mu.Unlock()
	return ctx.Err()
}

func (f *fakeClock) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}

// hitCounter counts requests reaching a handler.
type hitCounter struct {
	mu   sync.Mutex
	n    int
	uris []string
}

func (h *hitCounter) hit(r *http.Request) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.n++
	h.uris = append(h.uris, r.RequestURI)
	return h.n
}

func (h *hitCounter) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}

func (h *hitCounter) URIs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.uris...)
}

func testConfig(t *testing.T, serverURL string) Config {
	t.Helper()
	u, err := url.Parse(serverURL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return Config{
		Host:          host,
		Port:          port,
		User:          "admin",
		Password:      "secret",
		RetryAttempts: 5,
		RetryDelay:    time.Second,
		PageSize:      100,
	}
}

// newTestClient starts an httptest server for handler and returns a client
// pointed at it with a fake clock.
func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) (*Client, *fakeClock) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testConfig(t, srv.URL)
	for _, m := range mutate {
		m(&cfg)
	}
	clock := &fakeClock{}
	client := NewClient(cfg, logger.NoopLogger{}, WithClock(clock))
	t.Cleanup(client.Close)
	return client, clock
}

// dropConnection closes the connection without writing a response.
func dropConnection(t *testing.T, w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		t.Error("response writer does not support hijacking")
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		t.Errorf("hijack: %v", err)
		return
	}
	conn.Close()
}

// writeGarbage answers with an invalid status line.
func writeGarbage(t *testing.T, w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		t.Error("response writer does not support hijacking")
		return
	}
	conn, buf, err := hj.Hijack()
	if err != nil {
		t.Errorf("hijack: %v", err)
		return
	}
	_, _ = buf.WriteString("garbage\r\n\r\n")
	_ = buf.Flush()
	conn.Close()
}

func writeXML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", ContentTypeXML)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

const exceptionNotFound = `<?xml version="1.0" encoding="UTF-8"?>
<ExceptionDocument xmlns="http://xml.vidispine.com/schema/vidispine">
  <notFound><id>SD-46362</id><context>shape</context></notFound>
</ExceptionDocument>`
