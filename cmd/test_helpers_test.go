package cmd

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"github.com/tonimelisma/vidispine-client/internal/app"
	"github.com/tonimelisma/vidispine-client/internal/config"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

var errNotMocked = errors.New("not mocked")

// MockSDK is a mock implementation of the SDK interface for testing.
// Listing functions return real cursors, usually from a client pointed at
// an httptest server.
type MockSDK struct {
	GetFunc               func(path string) (*vidispine.Document, error)
	RequestFunc           func(ep vidispine.Endpoint) (*vidispine.Document, error)
	SearchItemsFunc       func(s *vidispine.SearchDocument, pageSize int) (*vidispine.Cursor[vidispine.SearchHit], error)
	SearchCollectionsFunc func(s *vidispine.SearchDocument, pageSize int) (*vidispine.Cursor[vidispine.SearchHit], error)
	FindJobsFunc          func(q vidispine.JobQuery) *vidispine.Cursor[vidispine.JobRef]
	ListUsersFunc         func(pageSize int) *vidispine.Cursor[vidispine.UserRef]
	ListStorageFilesFunc  func(storageID string, q vidispine.FileQuery) *vidispine.Cursor[vidispine.FileRef]
	StorageFileCountFunc  func(storageID string, q vidispine.FileQuery) (int, error)
	ChunkedUploadFunc     func(r io.ReadSeeker, totalSize, chunkSize int64, path string, opts vidispine.UploadOptions) (*vidispine.Document, error)
	GetSimpleMetadataFunc func(entityPath string) (map[string]string, error)
	SetSimpleMetadataFunc func(entityPath string, md map[string]string, mode vidispine.MetadataMode) (*vidispine.Document, error)
	ThumbnailURIsFunc     func(itemID string) ([]string, error)
}

func (m *MockSDK) Get(ctx context.Context, path string) (*vidispine.Document, error) {
	if m.GetFunc != nil {
		return m.GetFunc(path)
	}
	return nil, errNotMocked
}

func (m *MockSDK) Request(ctx context.Context, ep vidispine.Endpoint) (*vidispine.Document, error) {
	if m.RequestFunc != nil {
		return m.RequestFunc(ep)
	}
	return nil, errNotMocked
}

func (m *MockSDK) SearchItems(s *vidispine.SearchDocument, pageSize int) (*vidispine.Cursor[vidispine.SearchHit], error) {
	if m.SearchItemsFunc != nil {
		return m.SearchItemsFunc(s, pageSize)
	}
	return nil, errNotMocked
}

func (m *MockSDK) SearchCollections(s *vidispine.SearchDocument, pageSize int) (*vidispine.Cursor[vidispine.SearchHit], error) {
	if m.SearchCollectionsFunc != nil {
		return m.SearchCollectionsFunc(s, pageSize)
	}
	return nil, errNotMocked
}

func (m *MockSDK) FindJobs(q vidispine.JobQuery) *vidispine.Cursor[vidispine.JobRef] {
	return m.FindJobsFunc(q)
}

func (m *MockSDK) ListUsers(pageSize int) *vidispine.Cursor[vidispine.UserRef] {
	return m.ListUsersFunc(pageSize)
}

func (m *MockSDK) ListStorageFiles(storageID string, q vidispine.FileQuery) *vidispine.Cursor[vidispine.FileRef] {
	return m.ListStorageFilesFunc(storageID, q)
}

func (m *MockSDK) StorageFileCount(ctx context.Context, storageID string, q vidispine.FileQuery) (int, error) {
	if m.StorageFileCountFunc != nil {
		return m.StorageFileCountFunc(storageID, q)
	}
	return 0, errNotMocked
}

func (m *MockSDK) ChunkedUpload(ctx context.Context, r io.ReadSeeker, totalSize, chunkSize int64, path string, opts vidispine.UploadOptions) (*vidispine.Document, error) {
	if m.ChunkedUploadFunc != nil {
		return m.ChunkedUploadFunc(r, totalSize, chunkSize, path, opts)
	}
	return nil, errNotMocked
}

func (m *MockSDK) GetSimpleMetadata(ctx context.Context, entityPath string) (map[string]string, error) {
	if m.GetSimpleMetadataFunc != nil {
		return m.GetSimpleMetadataFunc(entityPath)
	}
	return nil, errNotMocked
}

func (m *MockSDK) SetSimpleMetadata(ctx context.Context, entityPath string, md map[string]string, mode vidispine.MetadataMode) (*vidispine.Document, error) {
	if m.SetSimpleMetadataFunc != nil {
		return m.SetSimpleMetadataFunc(entityPath, md, mode)
	}
	return nil, errNotMocked
}

func (m *MockSDK) ThumbnailURIs(ctx context.Context, itemID string) ([]string, error) {
	if m.ThumbnailURIsFunc != nil {
		return m.ThumbnailURIsFunc(itemID)
	}
	return nil, errNotMocked
}

// newTestApp creates a new app instance with a mock SDK for testing.
func newTestApp(sdk app.SDK) *app.App {
	return &app.App{
		Config: config.New(),
		SDK:    sdk,
	}
}

// newTestCommand returns a command with the flags registered by addFlags,
// parsed from args, and a background context.
func newTestCommand(t *testing.T, addFlags func(*cobra.Command), args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	if addFlags != nil {
		addFlags(c)
	}
	require.NoError(t, c.Flags().Parse(args))
	c.SetContext(context.Background())
	return c
}

// fakeServer starts an httptest server and returns a client talking to it.
func fakeServer(t *testing.T, handler http.HandlerFunc) *vidispine.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := vidispine.DefaultConfig()
	require.NoError(t, cfg.ParseServerURL(srv.URL))
	cfg.User = "admin"
	cfg.Password = "secret"
	cfg.RetryAttempts = 1
	client := vidispine.NewClient(cfg, nil)
	t.Cleanup(client.Close)
	return client
}

func writeXML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/xml")
	_, _ = io.WriteString(w, body)
}

// captureOutput captures what f writes to stdout.
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		out, _ := io.ReadAll(r)
		done <- out
	}()

	f()

	w.Close()
	os.Stdout = oldStdout
	return string(<-done)
}
