package vidispine

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// MetadataMode selects how SetSimpleMetadata applies values.
type MetadataMode string

const (
	MetadataReplace MetadataMode = ""
	MetadataAdd     MetadataMode = "add"
)

// GetSimpleMetadata reads the key/value metadata of an entity such as
// "/library/VX-3" or "/collection/VX-9". Fields inside timespans are
// included; a key repeated in several places keeps its last value.
func (c *Client) GetSimpleMetadata(ctx context.Context, entityPath string) (map[string]string, error) {
	c.logger.Debugf("GetSimpleMetadata called with path: %s", entityPath)

	doc, err := c.Request(ctx, Endpoint{Path: strings.TrimSuffix(entityPath, "/") + "/metadata"})
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	root := doc.Root()
	if root == nil {
		return out, nil
	}

	fields := root.SelectElements("field")
	for _, ts := range root.SelectElements("timespan") {
		fields = append(fields, ts.SelectElements("field")...)
	}
	for _, f := range fields {
		key := fieldKey(f)
		val := f.SelectElement("value")
		if key == "" || val == nil {
			c.logger.Warnf("skipping metadata field without key or value in %s", entityPath)
			continue
		}
		out[key] = val.Text()
	}
	return out, nil
}

// fieldKey accepts both the <name> and <key> spellings of a field key.
func fieldKey(f *etree.Element) string {
	if n := f.SelectElement("name"); n != nil {
		return n.Text()
	}
	if n := f.SelectElement("key"); n != nil {
		return n.Text()
	}
	return ""
}

// SetSimpleMetadata writes md to an entity with a SimpleMetadataDocument.
// Keys are written in sorted order.
func (c *Client) SetSimpleMetadata(ctx context.Context, entityPath string, md map[string]string, mode MetadataMode) (*Document, error) {
	c.logger.Debugf("SetSimpleMetadata called with path: %s, %d fields", entityPath, len(md))

	if len(md) == 0 {
		return nil, fmt.Errorf("%w: no metadata to set", ErrInvalidData)
	}
	body, err := SimpleMetadataDocument(md, mode)
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, Endpoint{
		Path:   strings.TrimSuffix(entityPath, "/") + "/metadata",
		Method: http.MethodPut,
		Body:   body,
	})
}

// SimpleMetadataDocument renders md as a request body.
func SimpleMetadataDocument(md map[string]string, mode MetadataMode) ([]byte, error) {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc, root := NewXMLDocument("SimpleMetadataDocument")
	for _, k := range keys {
		field := root.CreateElement("field")
		field.CreateElement("key").SetText(k)
		val := field.CreateElement("value")
		if mode != MetadataReplace {
			val.CreateAttr("mode", string(mode))
		}
		val.SetText(md[k])
	}
	return doc.WriteToBytes()
}
