// Package httpclient provides the outbound HTTP client behind webhook
// delivery. The screening-finished trigger fires one JSON POST per finished
// conversation and never reads anything back, so that is the whole surface.
package httpclient

import (
	"io"
	"net/http"
	"time"
)

// Client posts a payload to a webhook URL. Defined as an interface so tests
// can substitute a recording client.
type Client interface {
	Post(url, contentType string, body io.Reader) (*http.Response, error)
}

// StandardHTTPClient wraps the standard http.Client with a bounded timeout so
// a stalled trigger endpoint cannot pin delivery goroutines.
type StandardHTTPClient struct {
	client *http.Client
}

var _ Client = (*StandardHTTPClient)(nil)

// NewStandardClient creates the client used for trigger delivery
func NewStandardClient() Client {
	return &StandardHTTPClient{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *StandardHTTPClient) Post(url, contentType string, body io.Reader) (*http.Response, error) {
	return c.client.Post(url, contentType, body)
}
