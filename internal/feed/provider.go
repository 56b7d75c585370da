package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultURL is NASA's public ISS trajectory in OEM XML.
const DefaultURL = "https://nasa-public-data.s3.amazonaws.com/iss-coords/current/ISS_OEM/ISS.OEM_J2K_EPH.xml"

// DefaultMaxBytes caps a feed response.
const DefaultMaxBytes int64 = 50 << 20

// Provider returns the raw feed document.
type Provider interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPProvider fetches the document with a plain GET.
type HTTPProvider struct {
	url        string
	httpClient *http.Client
	maxBytes   int64
	logger     *slog.Logger
}

// NewHTTPProvider creates an HTTPProvider. An empty url selects DefaultURL and
// a non-positive maxBytes selects DefaultMaxBytes.
func NewHTTPProvider(url string, timeout time.Duration, maxBytes int64, logger *slog.Logger) *HTTPProvider {
	if url == "" {
		url = DefaultURL
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &HTTPProvider{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Fetch performs the GET and returns the body.
func (p *HTTPProvider) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept-Encoding", "gzip")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, body)
	}

	data, err := readLimited(resp.Body, p.maxBytes)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("feed fetched", "url", p.url, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}

// String names the source for logs.
func (p *HTTPProvider) String() string {
	return p.url
}
