package ranker

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
)

// ErrFilenameRequired is returned without a request when the filename is blank.
var ErrFilenameRequired = errors.New("filename is required")

// DownloadOptimized returns the optimized artifact for filename. The caller
// must close the returned reader.
func (c *Client) DownloadOptimized(ctx context.Context, filename string) (io.ReadCloser, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrFilenameRequired
	}

	return c.getStream(ctx, c.downloadEndpoint(filename))
}

func (c *Client) downloadEndpoint(filename string) string {
	path := c.DownloadPath
	if path == "" {
		path = DefaultDownloadPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	return path + url.PathEscape(filename)
}
