package backend

import (
	"delivery-map-client/internal/platform/obs"
	"io"
	"log"
	"net/http"
	"time"
)

// loggingTransport logs every backend round trip once its body is fully consumed:
// method, path, status, bytes read and end-to-end duration.
type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	reqID := obs.RequestID(req.Context())

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		log.Printf(
			"req_id=%s method=%s path=%s err=%v dur=%dms",
			reqID, req.Method, req.URL.RequestURI(), err, time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	resp.Body = &countingBody{
		ReadCloser: resp.Body,
		done: func(n int) {
			log.Printf(
				"req_id=%s method=%s path=%s status=%d bytes=%d dur=%dms",
				reqID, req.Method, req.URL.RequestURI(), resp.StatusCode, n, time.Since(start).Milliseconds(),
			)
		},
	}

	return resp, nil
}

// countingBody records the number of bytes read and reports them on Close.
type countingBody struct {
	io.ReadCloser
	bytes  int
	done   func(n int)
	closed bool
}

func (b *countingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.bytes += n
	return n, err
}

func (b *countingBody) Close() error {
	if !b.closed {
		b.closed = true
		b.done(b.bytes)
	}
	return b.ReadCloser.Close()
}
