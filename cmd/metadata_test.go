package cmd

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

func TestMetadataGetLogic(t *testing.T) {
	var gotPath string
	mockSDK := &MockSDK{
		GetSimpleMetadataFunc: func(entityPath string) (map[string]string, error) {
			gotPath = entityPath
			return map[string]string{"title": "Demo", "originalFilename": "a.mov"}, nil
		},
	}

	output := captureOutput(t, func() {
		require.NoError(t, metadataGetLogic(newTestApp(mockSDK), newTestCommand(t, nil), []string{"item/VX-1/"}))
	})

	assert.Equal(t, "/item/VX-1", gotPath)
	assert.Contains(t, output, "title")
	assert.Contains(t, output, "Demo")
}

func TestMetadataSetLogic(t *testing.T) {
	var (
		gotMD   map[string]string
		gotMode vidispine.MetadataMode
	)
	mockSDK := &MockSDK{
		SetSimpleMetadataFunc: func(entityPath string, md map[string]string, mode vidispine.MetadataMode) (*vidispine.Document, error) {
			gotMD, gotMode = md, mode
			return vidispine.NoContent, nil
		},
	}
	addFlags := func(c *cobra.Command) { c.Flags().Bool("add", false, "") }

	output := captureOutput(t, func() {
		cmd := newTestCommand(t, addFlags, "--add")
		require.NoError(t, metadataSetLogic(newTestApp(mockSDK), cmd, []string{"collection/VX-2", "title=New", "note="}))
	})

	assert.Equal(t, map[string]string{"title": "New", "note": ""}, gotMD)
	assert.Equal(t, vidispine.MetadataAdd, gotMode)
	assert.Contains(t, output, "Updated 2 field(s)")

	err := metadataSetLogic(newTestApp(mockSDK), newTestCommand(t, addFlags), []string{"item/VX-1", "broken"})
	assert.Error(t, err)
}

func TestThumbnailsLogic(t *testing.T) {
	mockSDK := &MockSDK{
		ThumbnailURIsFunc: func(itemID string) ([]string, error) {
			if itemID != "VX-1" {
				return nil, errors.New("unexpected item")
			}
			return []string{"/thumbnail/VX-3/VX-1;version=0/0@PAL"}, nil
		},
	}

	output := captureOutput(t, func() {
		require.NoError(t, thumbnailsLogic(newTestApp(mockSDK), newTestCommand(t, nil), []string{"VX-1"}))
	})
	assert.Equal(t, "/thumbnail/VX-3/VX-1;version=0/0@PAL\n", output)

	assert.Error(t, thumbnailsLogic(newTestApp(mockSDK), newTestCommand(t, nil), []string{"VX-2"}))
}
