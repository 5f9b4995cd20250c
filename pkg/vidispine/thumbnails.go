package vidispine

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	absoluteAPIURL  = regexp.MustCompile(`^\w+://[\w\-.:]+/API`)
	absoluteHostURL = regexp.MustCompile(`^\w+://[\w\-.:]+`)
)

// relativeAPIPath strips scheme, host and the API root from an absolute URL
// returned by the server.
func relativeAPIPath(u string) (string, error) {
	for _, re := range []*regexp.Regexp{absoluteAPIURL, absoluteHostURL} {
		if rel := re.ReplaceAllString(u, ""); rel != u {
			return rel, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not an absolute API URL", ErrUnexpectedShape, u)
}

// ThumbnailURIs returns the API paths of every thumbnail of itemID, across
// all of its thumbnail resources.
func (c *Client) ThumbnailURIs(ctx context.Context, itemID string) ([]string, error) {
	c.logger.Debugf("ThumbnailURIs called with item: %s", itemID)

	resources, err := c.Request(ctx, Endpoint{Path: "/item/" + itemID + "/thumbnailresource"})
	if err != nil {
		return nil, err
	}
	root := resources.Root()
	if root == nil {
		return nil, nil
	}

	var out []string
	for _, uri := range root.SelectElements("uri") {
		base, err := relativeAPIPath(strings.TrimSpace(uri.Text()))
		if err != nil {
			return nil, err
		}
		list, err := c.Request(ctx, Endpoint{Path: base})
		if err != nil {
			return nil, fmt.Errorf("listing thumbnails of %s: %w", base, err)
		}
		if list.Root() == nil {
			continue
		}
		for _, thumb := range list.Root().SelectElements("uri") {
			out = append(out, base+"/"+strings.TrimSpace(thumb.Text()))
		}
	}
	return out, nil
}
