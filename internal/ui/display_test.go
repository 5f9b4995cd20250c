package ui

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestDisplayDocument(t *testing.T) {
	doc, err := vidispine.ParseDocument([]byte(`<ItemDocument id="VX-1"><metadata><revision>VX-2</revision></metadata></ItemDocument>`))
	require.NoError(t, err)

	out := captureStdout(t, func() { DisplayDocument(doc) })
	assert.Contains(t, out, "<ItemDocument id=\"VX-1\">\n  <metadata>\n    <revision>VX-2</revision>")
	assert.NotContains(t, string(doc.Bytes()), "\n  ", "the response is not modified")

	out = captureStdout(t, func() { DisplayDocument(vidispine.TextDocument([]byte("VX-99"))) })
	assert.Equal(t, "VX-99\n", out)

	out = captureStdout(t, func() { DisplayDocument(vidispine.NoContent) })
	assert.Equal(t, "(no content)\n", out)
}

func TestDisplaySearchHits(t *testing.T) {
	hits := []vidispine.SearchHit{
		{Kind: vidispine.HitItem, ID: "VX-1", Start: "-INF", End: "+INF"},
		{Kind: vidispine.HitCollection, ID: "VX-7"},
	}

	out := captureStdout(t, func() { DisplaySearchHits(hits, 250) })
	assert.Contains(t, out, "VX-1")
	assert.Contains(t, out, "-INF")
	assert.Contains(t, out, "Collection")
	assert.Contains(t, out, "Showing 2 of 250")

	out = captureStdout(t, func() { DisplaySearchHits(nil, 0) })
	assert.Equal(t, "No hits found.\n", out)
}

func TestDisplayListings(t *testing.T) {
	tests := []struct {
		name     string
		display  func()
		expected []string
	}{
		{
			name: "jobs",
			display: func() {
				DisplayJobs([]vidispine.JobRef{{ID: "VX-10", Type: "IMPORT", User: "admin", Status: "FAILED_TOTAL", Start: "bogus"}}, 1)
			},
			expected: []string{"VX-10", "IMPORT", "FAILED_TOTAL", "bogus", "1 result(s)."},
		},
		{
			name: "users",
			display: func() {
				DisplayUsers([]vidispine.UserRef{{UserName: "admin", RealName: "Administrator", Disabled: true}}, 1)
			},
			expected: []string{"admin", "Administrator", "true"},
		},
		{
			name: "files",
			display: func() {
				DisplayFiles([]vidispine.FileRef{{ID: "VX-3", Path: "media/a.mov", State: "CLOSED", Size: 5 * 1024 * 1024, ItemID: "VX-4"}}, 3)
			},
			expected: []string{"VX-3", "media/a.mov", "5.0 MiB", "VX-4", "Showing 1 of 3"},
		},
		{
			name:     "empty jobs",
			display:  func() { DisplayJobs(nil, 0) },
			expected: []string{"No jobs found."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureStdout(t, tt.display)
			for _, want := range tt.expected {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestDisplayMetadataSorted(t *testing.T) {
	out := captureStdout(t, func() {
		DisplayMetadata(map[string]string{"title": "Demo", "originalFilename": "a.mov"})
	})
	assert.Equal(t, "originalFilename  a.mov\ntitle             Demo\n", out)
}

func TestDisplayFacets(t *testing.T) {
	out := captureStdout(t, func() {
		DisplayFacets([]vidispine.Facet{{Field: "mediaType", Counts: []vidispine.FacetCount{{Value: "video", Count: 12}}}})
	})
	assert.Contains(t, out, "Facet mediaType:")
	assert.Contains(t, out, "video")
	assert.Contains(t, out, "12")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1024 * 1024 * 1024, "1.0 GiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in))
	}
}

func TestParsePagingFlags(t *testing.T) {
	newCmd := func(args ...string) *cobra.Command {
		cmd := &cobra.Command{Use: "list"}
		AddPagingFlags(cmd)
		require.NoError(t, cmd.Flags().Parse(args))
		return cmd
	}

	p, err := ParsePagingFlags(newCmd())
	require.NoError(t, err)
	assert.Equal(t, Paging{PageSize: 0, Page: -1}, p)

	p, err = ParsePagingFlags(newCmd("--page-size", "25", "--page", "3"))
	require.NoError(t, err)
	assert.Equal(t, Paging{PageSize: 25, Page: 3}, p)

	_, err = ParsePagingFlags(newCmd("--all", "--page", "1"))
	assert.Error(t, err)

	_, err = ParsePagingFlags(newCmd("--page-size", "-5"))
	assert.Error(t, err)
}

func TestUploadProgress(t *testing.T) {
	bar := NewProgressBar(1000, "")
	progress := UploadProgress(bar)
	progress(400, 1000)
	assert.EqualValues(t, 400, bar.State().CurrentNum)
}

func TestFormatStarted(t *testing.T) {
	want := time.Date(2024, 3, 1, 10, 20, 30, 123e6, time.UTC).Local().Format(time.DateTime)
	assert.Equal(t, want, formatStarted("2024-03-01T10:20:30.123+0000"))
	assert.Equal(t, "-", formatStarted(""))
	assert.Equal(t, "bogus", formatStarted("bogus"))
}
