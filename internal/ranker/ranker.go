// Package ranker is a client for the remote resume evaluation service.
package ranker

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultAPIURL       = "http://127.0.0.1:8000"
	DefaultDownloadPath = "/download_optimized/"
	userAgent           = "spigell/resume-ranker"

	UploadPath = "/upload_resumes/"
	RankedPath = "/get_ranked_resumes/"
)

type Client struct {
	logger       *zap.Logger
	HTTPClient   *http.Client
	UserAgent    string
	APIURL       string
	DownloadPath string
}

// New returns a client for the service at apiURL. The HTTP client has no
// timeout unless one is set by the caller.
func New(logger *zap.Logger, apiURL string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	return &Client{
		logger:       logger,
		APIURL:       apiURL,
		DownloadPath: DefaultDownloadPath,
		HTTPClient:   &http.Client{},
		UserAgent:    userAgent,
	}
}

// WithTimeout sets the transport timeout used for every request.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.HTTPClient.Timeout = d
	}
	return c
}
