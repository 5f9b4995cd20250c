package cmd

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

func TestRequestLogic(t *testing.T) {
	var got vidispine.Endpoint
	mockSDK := &MockSDK{
		RequestFunc: func(ep vidispine.Endpoint) (*vidispine.Document, error) {
			got = ep
			return vidispine.ParseDocument([]byte(`<ItemDocument id="VX-1"/>`))
		},
	}
	a := newTestApp(mockSDK)
	cmd := newTestCommand(t, addRequestFlags,
		"-m", "field=title", "-m", "field=duration", "-q", "p=1")

	output := captureOutput(t, func() {
		require.NoError(t, requestLogic(a, cmd, []string{"item/VX-1/metadata"}))
	})

	assert.Contains(t, output, `<ItemDocument id="VX-1"/>`)
	assert.Equal(t, "/item/VX-1/metadata", got.Path)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, vidispine.ContentTypeXML, got.Accept)

	field, ok := got.Matrix.Get("field")
	require.True(t, ok)
	assert.Equal(t, []string{"title", "duration"}, field.Values())
	assert.True(t, field.IsList())
	p, _ := got.Query.Get("p")
	assert.Equal(t, "1", p.String())
}

func TestRequestLogicWithBody(t *testing.T) {
	body := filepath.Join(t.TempDir(), "doc.xml")
	require.NoError(t, os.WriteFile(body, []byte("<MetadataDocument/>"), 0600))

	var got vidispine.Endpoint
	mockSDK := &MockSDK{
		RequestFunc: func(ep vidispine.Endpoint) (*vidispine.Document, error) {
			got = ep
			return vidispine.NoContent, nil
		},
	}
	cmd := newTestCommand(t, addRequestFlags, "-X", "put", "--body-file", body)

	output := captureOutput(t, func() {
		require.NoError(t, requestLogic(newTestApp(mockSDK), cmd, []string{"/item/VX-1/metadata"}))
	})

	assert.Equal(t, "(no content)\n", output)
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "<MetadataDocument/>", string(got.Body))
}

func TestRequestLogicErrors(t *testing.T) {
	mockSDK := &MockSDK{
		RequestFunc: func(ep vidispine.Endpoint) (*vidispine.Document, error) {
			return nil, &vidispine.Error{Kind: vidispine.KindNotFound, StatusCode: http.StatusNotFound}
		},
	}

	err := requestLogic(newTestApp(mockSDK), newTestCommand(t, addRequestFlags), []string{"item/VX-404"})
	assert.ErrorIs(t, err, vidispine.ErrNotFound)

	err = requestLogic(newTestApp(mockSDK), newTestCommand(t, addRequestFlags, "-m", "novalue"), []string{"item"})
	assert.ErrorContains(t, err, "key=value")

	err = requestLogic(newTestApp(mockSDK), newTestCommand(t, addRequestFlags, "--body-file", "/does/not/exist"), []string{"item"})
	assert.ErrorContains(t, err, "reading request body")
}

func TestParamsFromFlags(t *testing.T) {
	p, err := paramsFromFlags([]string{"a=1", "b=", "a=2", "c=x=y"})
	require.NoError(t, err)
	require.Len(t, p, 3)

	a, _ := p.Get("a")
	assert.Equal(t, []string{"1", "2"}, a.Values())
	b, _ := p.Get("b")
	assert.Equal(t, "", b.String())
	c, _ := p.Get("c")
	assert.Equal(t, "x=y", c.String())

	_, err = paramsFromFlags([]string{"=1"})
	assert.Error(t, err)
}
