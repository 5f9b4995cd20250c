package vidispine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// UploadOptions controls a chunked upload.
type UploadOptions struct {
	Method      string // defaults to POST
	Priority    int    // transferPriority, defaults to DefaultTransferPriority
	NoThrottle  bool   // sends throttle=false
	Filename    string
	ContentType string // defaults to application/octet-stream
	Matrix      Params
	Query       Params
	Headers     http.Header

	// Progress, if set, is called after every chunk with the bytes sent so far.
	Progress func(sent, total int64)
}

// ChunkedUpload sends totalSize bytes from r to path in chunkSize pieces. All
// chunks share one transfer id; each carries "size" (the total) and "index"
// (the chunk's byte offset) headers. Only the final chunk's response is
// returned, and the first failing chunk aborts the upload.
func (c *Client) ChunkedUpload(ctx context.Context, r io.ReadSeeker, totalSize, chunkSize int64, path string, opts UploadOptions) (*Document, error) {
	c.logger.Debugf("ChunkedUpload called with path: %s, totalSize: %d, chunkSize: %d", path, totalSize, chunkSize)

	if r == nil {
		return nil, fmt.Errorf("%w: upload stream is nil", ErrInvalidData)
	}
	if totalSize <= 0 {
		return nil, fmt.Errorf("%w: total size must be positive, got %d", ErrInvalidData, totalSize)
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidData, chunkSize)
	}

	method := opts.Method
	if method == "" {
		method = http.MethodPost
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = ContentTypeOctetStream
	}
	priority := opts.Priority
	if priority == 0 {
		priority = DefaultTransferPriority
	}

	transferID := strings.ReplaceAll(uuid.New().String(), "-", "")
	query := Params{}.
		Set("transferId", Scalar(transferID)).
		Set("transferPriority", Int(int64(priority))).
		Set("throttle", Bool(!opts.NoThrottle))
	if opts.Filename != "" {
		query = query.Set("filename", Scalar(opts.Filename))
	}
	query = query.Merge(opts.Query)

	buf := make([]byte, chunkSize)
	var doc *Document
	for offset := int64(0); offset < totalSize; offset += chunkSize {
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w: seeking to %d: %w", ErrInvalidData, offset, err)
		}
		n, err := io.ReadFull(r, buf[:min(chunkSize, totalSize-offset)])
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading chunk at %d: %w", offset, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: stream ended at offset %d of %d", ErrInvalidData, offset, totalSize)
		}

		hdr := opts.Headers.Clone()
		if hdr == nil {
			hdr = http.Header{}
		}
		hdr.Set("size", strconv.FormatInt(totalSize, 10))
		hdr.Set("index", strconv.FormatInt(offset, 10))

		c.logger.Debugf("uploading chunk of transfer %s: offset %d, %d bytes", transferID, offset, n)
		doc, err = c.Request(ctx, Endpoint{
			Path:        path,
			Method:      method,
			Matrix:      opts.Matrix,
			Query:       query,
			Body:        buf[:n:n],
			ContentType: contentType,
			Raw:         contentType == ContentTypeOctetStream,
			Headers:     hdr,
		})
		if err != nil {
			return nil, fmt.Errorf("uploading chunk at offset %d of transfer %s: %w", offset, transferID, err)
		}

		if opts.Progress != nil {
			opts.Progress(offset+int64(n), totalSize)
		}
	}
	return doc, nil
}
