package app

import (
	"context"
	"io"

	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

// SDK defines the Vidispine operations used by the commands.
// This allows for mocking in tests.
type SDK interface {
	Get(ctx context.Context, path string) (*vidispine.Document, error)
	Request(ctx context.Context, ep vidispine.Endpoint) (*vidispine.Document, error)

	SearchItems(s *vidispine.SearchDocument, pageSize int) (*vidispine.Cursor[vidispine.SearchHit], error)
	SearchCollections(s *vidispine.SearchDocument, pageSize int) (*vidispine.Cursor[vidispine.SearchHit], error)
	FindJobs(q vidispine.JobQuery) *vidispine.Cursor[vidispine.JobRef]
	ListUsers(pageSize int) *vidispine.Cursor[vidispine.UserRef]
	ListStorageFiles(storageID string, q vidispine.FileQuery) *vidispine.Cursor[vidispine.FileRef]
	StorageFileCount(ctx context.Context, storageID string, q vidispine.FileQuery) (int, error)

	ChunkedUpload(ctx context.Context, r io.ReadSeeker, totalSize, chunkSize int64, path string, opts vidispine.UploadOptions) (*vidispine.Document, error)

	GetSimpleMetadata(ctx context.Context, entityPath string) (map[string]string, error)
	SetSimpleMetadata(ctx context.Context, entityPath string, md map[string]string, mode vidispine.MetadataMode) (*vidispine.Document, error)
	ThumbnailURIs(ctx context.Context, itemID string) ([]string, error)
}

// The live SDK is the client itself.
var _ SDK = (*vidispine.Client)(nil)
