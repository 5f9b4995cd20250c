package vidispine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chunkRecord struct {
	method     string
	transferID string
	priority   string
	throttle   string
	filename   string
	size       string
	index      int64
	body       []byte
	ctype      string
}

type chunkRecorder struct {
	mu     sync.Mutex
	chunks []chunkRecord
}

func (c *chunkRecorder) record(t *testing.T, r *http.Request) chunkRecord {
	body, err := io.ReadAll(r.Body)
	assert.NoError(t, err)
	index, err := strconv.ParseInt(r.Header.Get("index"), 10, 64)
	assert.NoError(t, err)

	q := r.URL.Query()
	rec := chunkRecord{
		method:     r.Method,
		transferID: q.Get("transferId"),
		priority:   q.Get("transferPriority"),
		throttle:   q.Get("throttle"),
		filename:   q.Get("filename"),
		size:       r.Header.Get("size"),
		index:      index,
		body:       body,
		ctype:      r.Header.Get("Content-Type"),
	}
	c.mu.Lock()
	c.chunks = append(c.chunks, rec)
	c.mu.Unlock()
	return rec
}

func (c *chunkRecorder) Chunks() []chunkRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chunkRecord(nil), c.chunks...)
}

func testPayload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestChunkedUpload(t *testing.T) {
	const total, chunk = 100000, 1000
	payload := testPayload(total)

	var rec chunkRecorder
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got := rec.record(t, r)
		assert.Equal(t, "/API/import/raw", r.URL.Path)
		if got.index+int64(len(got.body)) == total {
			writeXML(w, http.StatusOK, `<JobDocument><jobId>VX-42</jobId></JobDocument>`)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	var progress [][2]int64
	doc, err := client.ChunkedUpload(context.Background(), bytes.NewReader(payload), total, chunk, "/import/raw", UploadOptions{
		Progress: func(sent, total int64) { progress = append(progress, [2]int64{sent, total}) },
	})
	require.NoError(t, err)

	id, ok := doc.ChildText("jobId")
	assert.True(t, ok)
	assert.Equal(t, "VX-42", id)

	chunks := rec.Chunks()
	require.Len(t, chunks, 100)
	transferID := chunks[0].transferID
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), transferID)

	var reassembled []byte
	for i, c := range chunks {
		assert.Equal(t, "POST", c.method)
		assert.Equal(t, transferID, c.transferID)
		assert.Equal(t, "500", c.priority)
		assert.Equal(t, "true", c.throttle)
		assert.Empty(t, c.filename)
		assert.Equal(t, "100000", c.size)
		assert.Equal(t, int64(i*chunk), c.index)
		assert.Equal(t, "application/octet-stream", c.ctype)
		assert.Len(t, c.body, chunk)
		reassembled = append(reassembled, c.body...)
	}
	assert.Equal(t, payload, reassembled)

	require.Len(t, progress, 100)
	assert.Equal(t, [2]int64{1000, total}, progress[0])
	assert.Equal(t, [2]int64{total, total}, progress[99])
}

func TestChunkedUploadShortLastChunk(t *testing.T) {
	var rec chunkRecorder
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(t, r)
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.ChunkedUpload(context.Background(), bytes.NewReader(testPayload(2500)), 2500, 1000, "/import/raw", UploadOptions{
		Method:     "PUT",
		Priority:   100,
		NoThrottle: true,
		Filename:   "clip.mxf",
		Query:      Params{}.Set("tag", Scalar("original")),
	})
	require.NoError(t, err)

	chunks := rec.Chunks()
	require.Len(t, chunks, 3)
	assert.Equal(t, []int{1000, 1000, 500}, []int{len(chunks[0].body), len(chunks[1].body), len(chunks[2].body)})
	assert.Equal(t, int64(2000), chunks[2].index)
	for _, c := range chunks {
		assert.Equal(t, "PUT", c.method)
		assert.Equal(t, "100", c.priority)
		assert.Equal(t, "false", c.throttle)
		assert.Equal(t, "clip.mxf", c.filename)
		assert.Equal(t, "2500", c.size)
	}
}

func TestChunkedUploadAbortsOnFailingChunk(t *testing.T) {
	var rec chunkRecorder
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got := rec.record(t, r)
		if got.index == 2000 {
			writeXML(w, http.StatusBadRequest, `<ExceptionDocument><invalidInput><explanation>bad chunk</explanation></invalidInput></ExceptionDocument>`)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.ChunkedUpload(context.Background(), bytes.NewReader(testPayload(5000)), 5000, 1000, "/import/raw", UploadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadRequest))
	assert.Len(t, rec.Chunks(), 3)
}

func TestChunkedUploadRejectsInvalidArguments(t *testing.T) {
	var hits hitCounter
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.hit(r)
	})

	tests := []struct {
		name      string
		r         io.ReadSeeker
		total     int64
		chunkSize int64
	}{
		{"nil reader", nil, 10, 5},
		{"zero total", bytes.NewReader(nil), 0, 5},
		{"zero chunk size", bytes.NewReader([]byte("abc")), 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ChunkedUpload(context.Background(), tt.r, tt.total, tt.chunkSize, "/import/raw", UploadOptions{})
			assert.True(t, errors.Is(err, ErrInvalidData))
		})
	}
	assert.Equal(t, 0, hits.Count())
}

func TestChunkedUploadStreamShorterThanTotal(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.ChunkedUpload(context.Background(), bytes.NewReader(testPayload(1000)), 3000, 1000, "/import/raw", UploadOptions{})
	assert.True(t, errors.Is(err, ErrInvalidData))
}
