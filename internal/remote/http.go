package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rpull/rpull/internal/utils"
	"github.com/rs/zerolog/log"
)

var filenameRegex = regexp.MustCompile(`[^a-zA-Z0-9_\-\. ]+`)

type HTTPTarget struct {
	url           string
	client        utils.HTTPDoer
	suggestedName string
}

func NewHTTPTarget(rawURL string, cfg utils.HTTPClientConfig) (*HTTPTarget, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s", parsedURL.Scheme)
	}
	return &HTTPTarget{
		url:    rawURL,
		client: utils.NewRpullHTTPClient(cfg),
	}, nil
}

func (t *HTTPTarget) Length(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, "HEAD", t.url, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating request: %v", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error checking URL: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return 0, fmt.Errorf("%s (status %d): %w", t.url, resp.StatusCode, ErrNotFound)
	case resp.StatusCode >= 400:
		return 0, fmt.Errorf("server returned error: %d", resp.StatusCode)
	}

	t.suggestedName = filenameFromHeader(resp.Header.Get("Content-Disposition"))
	if resp.Header.Get("Accept-Ranges") != "bytes" {
		return 0, utils.ErrRangeRequestsNotSupported
	}
	contentLength := resp.Header.Get("Content-Length")
	if contentLength == "" {
		return 0, errors.New("server didn't provide Content-Length header")
	}
	size, err := strconv.ParseInt(contentLength, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid Content-Length header: %v", err)
	}
	if size < 0 {
		return 0, errors.New("invalid file size reported by server")
	}
	log.Debug().Str("op", "remote/http").Msgf("Resolved length %d for %s", size, t.url)
	return size, nil
}

func (t *HTTPTarget) FetchRange(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", t.url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating GET request: %v", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))
	req.Header.Set("Connection", "keep-alive")
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing GET request: %v", err)
	}
	if resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code %d: %w", resp.StatusCode, ErrRangeUnavailable)
	}
	if resp.Header.Get("Content-Range") == "" {
		resp.Body.Close()
		return nil, fmt.Errorf("missing Content-Range header: %w", ErrRangeUnavailable)
	}
	return resp.Body, nil
}

// SuggestedName returns the server-provided filename, if any. Only
// populated after a successful Length call.
func (t *HTTPTarget) SuggestedName() string {
	if t.suggestedName != "" {
		return t.suggestedName
	}
	parsedURL, err := url.Parse(t.url)
	if err != nil {
		return ""
	}
	pathParts := strings.Split(parsedURL.Path, "/")
	return pathParts[len(pathParts)-1]
}

func filenameFromHeader(contentDisposition string) string {
	if contentDisposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentDisposition)
	if err != nil {
		return ""
	}
	if fn, ok := params["filename"]; ok && fn != "" {
		return filenameRegex.ReplaceAllString(fn, "_")
	}
	if fn, ok := params["filename*"]; ok && strings.HasPrefix(fn, "UTF-8''") {
		unescaped, _ := url.PathUnescape(strings.TrimPrefix(fn, "UTF-8''"))
		return filenameRegex.ReplaceAllString(unescaped, "_")
	}
	return ""
}
