package backend

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client implements ports.GraphBackend against the delivery backend's REST API.
//
// It coordinates:
//   - JSON encoding of the request/response contract
//   - Retry with backoff for reads
//   - Uniform error kinds (domain.Kind) for every failure
//
// The client is safe for concurrent use.
type Client struct {
	session *http.Client
	baseURL string
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend base url is empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend base url %q: scheme must be http or https", baseURL)
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		session: &http.Client{
			Timeout:   timeout,
			Transport: &loggingTransport{next: http.DefaultTransport},
		},
		baseURL: baseURL,
	}

	return client, nil
}

func (c *Client) BaseURL() string { return c.baseURL }
