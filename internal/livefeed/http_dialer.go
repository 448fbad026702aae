package livefeed

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPDialer opens the relay's text/event-stream endpoint.
type HTTPDialer struct {
	url    string
	client *http.Client
	header http.Header
}

func NewHTTPDialer(url string, header http.Header) *HTTPDialer {
	return &HTTPDialer{
		url: strings.TrimSpace(url),
		// No client timeout: the response body is the long-lived channel.
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		header: header.Clone(),
	}
}

func (d *HTTPDialer) Dial(ctx context.Context) (Stream, error) {
	if d.url == "" {
		return nil, fmt.Errorf("live feed url is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range d.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("live feed status=%d", resp.StatusCode)
	}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "text/event-stream" {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("live feed content type %q is not an event stream", mediaType)
	}

	return &httpStream{body: resp.Body, decoder: NewDecoder(resp.Body)}, nil
}

type httpStream struct {
	body    io.ReadCloser
	decoder *Decoder
}

func (s *httpStream) Next() (Event, error) {
	return s.decoder.Next()
}

func (s *httpStream) Close() error {
	return s.body.Close()
}
