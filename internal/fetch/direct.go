package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	// DefaultDirectURL is the public download endpoint for shared Drive files.
	DefaultDirectURL = "https://drive.google.com/uc"

	// minDirectPayload rejects the tiny bodies the endpoint returns for
	// missing or quota-limited files.
	minDirectPayload = 100

	// maxDirectPayload is the largest file accepted.
	maxDirectPayload = 64 << 20
)

// DirectDownloader fetches publicly shared files without credentials.
type DirectDownloader struct {
	client   *http.Client
	baseURL  string
	maxBytes int64
}

// NewDirectDownloader creates a downloader against baseURL (DefaultDirectURL
// when empty). The client should carry its own timeout.
func NewDirectDownloader(client *http.Client, baseURL string) *DirectDownloader {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if baseURL == "" {
		baseURL = DefaultDirectURL
	}
	return &DirectDownloader{client: client, baseURL: baseURL, maxBytes: maxDirectPayload}
}

// Download implements Downloader.
func (d *DirectDownloader) Download(ctx context.Context, fileID string) ([]byte, error) {
	q := url.Values{}
	q.Set("export", "download")
	q.Set("id", fileID)
	reqURL := d.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status=%d, size=%d", resp.StatusCode, len(body))
	}
	if int64(len(body)) > d.maxBytes {
		return nil, fmt.Errorf("file too large (over %d bytes)", d.maxBytes)
	}
	if len(body) <= minDirectPayload {
		return nil, fmt.Errorf("payload too small (%d bytes)", len(body))
	}
	if looksLikeHTML(body) {
		return nil, fmt.Errorf("received HTML page instead of file")
	}
	return body, nil
}

// looksLikeHTML sniffs for the leading markup of an error or consent page.
func looksLikeHTML(b []byte) bool {
	head := bytes.TrimLeft(b, " \t\r\n\ufeff")
	if len(head) > 20 {
		head = head[:20]
	}
	head = bytes.ToLower(head)
	return bytes.HasPrefix(head, []byte("<!")) || bytes.HasPrefix(head, []byte("<html"))
}
