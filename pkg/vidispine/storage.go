package vidispine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// FileQuery filters storage file listings. Each file carries the item it
// belongs to unless OmitItem is set.
type FileQuery struct {
	Path     string // defaults to "/"
	State    string // OPEN, CLOSED, LOST, ...
	OmitItem bool
	PageSize int
}

func (q FileQuery) params() (matrix, query Params) {
	if !q.OmitItem {
		matrix = matrix.Set("includeItem", Bool(true))
	}
	path := q.Path
	if path == "" {
		path = "/"
	}
	query = Params{}.Set("path", Scalar(path))
	if q.State != "" {
		query = query.Set("state", Scalar(q.State))
	}
	return matrix, query
}

// FileRef is one file on a storage.
type FileRef struct {
	ID        string
	Path      string
	URI       string
	State     string
	Size      int64
	Hash      string
	Timestamp string
	Storage   string
	ItemID    string // set when the file belongs to an item and OmitItem is false
}

// ListStorageFiles lists files on storageID. Offsets start at zero.
func (c *Client) ListStorageFiles(storageID string, q FileQuery) *Cursor[FileRef] {
	c.logger.Debugf("ListStorageFiles called with storage: %s, path: %s", storageID, q.Path)

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = c.cfg.PageSize
	}
	matrix, query := q.params()
	return NewCursor(c, CursorOptions{
		Path:      "/storage/" + storageID + "/file",
		Matrix:    matrix,
		Query:     query,
		PageSize:  pageSize,
		OffsetKey: "start",
		ZeroBased: true,
	}, materializeFile)
}

// StorageFileCount returns how many files on storageID match q without
// listing them.
func (c *Client) StorageFileCount(ctx context.Context, storageID string, q FileQuery) (int, error) {
	c.logger.Debugf("StorageFileCount called with storage: %s, path: %s", storageID, q.Path)

	matrix, query := q.params()
	matrix = Params{}.Set("start", Int(0)).Set("number", Int(0)).Merge(matrix)
	doc, err := c.Request(ctx, Endpoint{
		Path:   "/storage/" + storageID + "/file",
		Matrix: matrix,
		Query:  query,
	})
	if err != nil {
		return 0, err
	}
	root := doc.Root()
	if root == nil {
		return 0, fmt.Errorf("%w: empty file count response", ErrUnexpectedShape)
	}
	return parseHits(root)
}

func materializeFile(el *etree.Element) (FileRef, bool, error) {
	if el.Tag != "file" {
		return FileRef{}, false, nil
	}
	f := FileRef{
		ID:        childText(el, "id", ""),
		Path:      childText(el, "path", ""),
		URI:       childText(el, "uri", ""),
		State:     childText(el, "state", ""),
		Hash:      childText(el, "hash", ""),
		Timestamp: childText(el, "timestamp", ""),
		Storage:   childText(el, "storage", ""),
	}
	if f.ID == "" {
		return FileRef{}, false, fmt.Errorf("%w: <file> without id", ErrUnexpectedShape)
	}
	if s := strings.TrimSpace(childText(el, "size", "")); s != "" {
		size, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return FileRef{}, false, fmt.Errorf("%w: file %s has size %q", ErrUnexpectedShape, f.ID, s)
		}
		f.Size = size
	}
	if item := el.SelectElement("item"); item != nil {
		f.ItemID = childText(item, "id", "")
	}
	return f, true, nil
}
