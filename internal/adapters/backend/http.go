package backend

import (
	"bytes"
	"context"
	"delivery-map-client/internal/api/dto"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type httpStatusError struct {
	Code int
	Body string
}

func (c *Client) newRequest(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body io.Reader,
) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if id := obs.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx responses)
// using exponential backoff while respecting context cancellation.
func (c *Client) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	const maxAttempts = 3
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// getJSON issues an idempotent GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) (err error) {
	defer obs.Time(ctx, "backend."+op)(&err)

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, path, query, nil)
	})
	if err != nil {
		return classify(op, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewError(domain.KindDecode, op, fmt.Errorf("decode %s response: %w", path, err))
	}

	return nil
}

// postJSON sends a single attempt; mutations are never replayed because the
// backend does not deduplicate them (block-edge toggles).
func (c *Client) postJSON(ctx context.Context, op, path string, in any, out any) (err error) {
	defer obs.Time(ctx, "backend."+op)(&err)

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return domain.NewError(domain.KindValidation, op, fmt.Errorf("marshal %s request: %w", path, err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return classify(op, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return classify(op, err)
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewError(domain.KindDecode, op, fmt.Errorf("decode %s response: %w", path, err))
	}

	return nil
}

// mutate posts a mutation and checks the acknowledgement for an in-band error.
func (c *Client) mutate(ctx context.Context, op, path string, in any) error {
	var ack dto.AckResponse
	if err := c.postJSON(ctx, op, path, in, &ack); err != nil {
		return err
	}

	if ack.Status == "error" {
		reason := ack.Reason
		if reason == "" {
			reason = "backend rejected the request"
		}
		return domain.NewError(domain.KindBackend, op, errors.New(reason))
	}

	return nil
}

// classify attaches a domain.Kind to a transport-level failure.
func classify(op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	var he *httpStatusError
	if errors.As(err, &he) {
		return domain.NewError(domain.KindBackend, op, err)
	}

	return domain.NewError(domain.KindNetwork, op, err)
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}
