// Package streaming provides a buffered HTTP reader for playing remote audio
// without downloading it first.
package streaming

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Reader wraps an HTTP response body in a read-ahead buffer sized for audio
// decoding. It implements io.ReadCloser.
type Reader struct {
	reader *bufio.Reader
	resp   *http.Response
}

// newStreamClient builds an HTTP client tuned for long-lived streaming reads:
// connection-level timeouts only, no overall request deadline.
func newStreamClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       5 * time.Minute,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// NewReader opens a streaming GET to the given URL and returns a buffered
// reader over the response body. The context bounds the whole stream: cancel
// it to abort playback mid-track.
func NewReader(ctx context.Context, url string, bufferSize int) (*Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}

	// Compressed bodies defeat range reads and decoder read-ahead.
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Range", "bytes=0-")
	req.Header.Set("User-Agent", "aural/1.0")

	resp, err := newStreamClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("stream request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("stream request failed: %s", resp.Status)
	}

	return &Reader{
		reader: bufio.NewReaderSize(resp.Body, bufferSize),
		resp:   resp,
	}, nil
}

func (r *Reader) Read(p []byte) (n int, err error) {
	return r.reader.Read(p)
}

func (r *Reader) Close() error {
	return r.resp.Body.Close()
}
