package ranker

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	requestIDHeader = "X-Request-ID"
	defaultFileType = "application/octet-stream"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// File is a single resume to upload.
type File struct {
	Name   string
	Reader io.Reader
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL+endpoint, nil)
	if err != nil {
		return remoteErr(endpoint, 0, err)
	}

	req = c.setHeaders(req)
	req.Header.Set("Accept", contentType)

	resp, err := c.request(req)
	if err != nil {
		return remoteErr(endpoint, 0, err)
	}
	defer resp.Body.Close()

	return c.decodeResponse(endpoint, resp, target)
}

// postMultipart sends every file as a repeated part named fileField plus the
// given form fields in one request.
func (c *Client) postMultipart(ctx context.Context, endpoint, fileField string, files []File, fields map[string]string, target interface{}) error {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	for _, f := range files {
		part, err := w.CreatePart(filePartHeader(fileField, f.Name))
		if err != nil {
			return fmt.Errorf("creating part for %s: %w", f.Name, err)
		}

		if _, err = io.Copy(part, f.Reader); err != nil {
			return fmt.Errorf("reading %s: %w", f.Name, err)
		}
	}

	for key, val := range fields {
		if err := w.WriteField(key, val); err != nil {
			return fmt.Errorf("writing field %s: %w", key, err)
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+endpoint, &b)
	if err != nil {
		return remoteErr(endpoint, 0, err)
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.request(req)
	if err != nil {
		return remoteErr(endpoint, 0, err)
	}
	defer resp.Body.Close()

	return c.decodeResponse(endpoint, resp, target)
}

// getStream returns the body of a successful GET. The caller owns the body.
func (c *Client) getStream(ctx context.Context, endpoint string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL+endpoint, nil)
	if err != nil {
		return nil, remoteErr(endpoint, 0, err)
	}

	req = c.setHeaders(req)

	resp, err := c.request(req)
	if err != nil {
		return nil, remoteErr(endpoint, 0, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drain(resp.Body)
		return nil, remoteErr(endpoint, resp.StatusCode, fmt.Errorf("bad status: %s", resp.Status))
	}

	body, err := bodyReader(resp)
	if err != nil {
		drain(resp.Body)
		return nil, remoteErr(endpoint, resp.StatusCode, err)
	}

	return body, nil
}

func (c *Client) decodeResponse(endpoint string, resp *http.Response, target interface{}) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drain(resp.Body)
		return remoteErr(endpoint, resp.StatusCode, fmt.Errorf("bad status: %s", resp.Status))
	}

	body, err := bodyReader(resp)
	if err != nil {
		return remoteErr(endpoint, resp.StatusCode, err)
	}
	defer body.Close()

	if target == nil {
		return nil
	}

	if err := json.NewDecoder(body).Decode(target); err != nil {
		return remoteErr(endpoint, resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}

	return nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", req.Header.Get(requestIDHeader)),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got response",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
	)

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set(requestIDHeader, uuid.NewString())

	return req
}

// bodyReader unwraps gzip bodies. Closing the returned reader closes the
// response body too.
func bodyReader(resp *http.Response) (io.ReadCloser, error) {
	if resp.Header.Get("Content-Encoding") != "gzip" {
		return resp.Body, nil
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, err
	}

	return &gzipBody{Reader: gz, body: resp.Body}, nil
}

type gzipBody struct {
	*gzip.Reader
	body io.ReadCloser
}

func (g *gzipBody) Close() error {
	gzErr := g.Reader.Close()
	if err := g.body.Close(); err != nil {
		return err
	}
	return gzErr
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

func filePartHeader(field, name string) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filepath.Base(name))))

	fileType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if fileType == "" {
		fileType = defaultFileType
	}
	h.Set("Content-Type", fileType)

	return h
}
