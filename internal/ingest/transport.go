package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ParseRequest mirrors the remote contract: the file as a base64 data URL
// plus its MIME type.
type ParseRequest struct {
	Image    string `json:"image"`
	FileType string `json:"fileType"`
}

// Transport performs one call against the remote parsing service and
// returns the raw response body. Implementations differ by media type:
// images go to a single endpoint, PDFs to deployment-specific endpoints
// under a deadline.
type Transport interface {
	Name() string
	Parse(ctx context.Context, req ParseRequest) ([]byte, error)
}

type httpTransport struct {
	name      string
	endpoints []string
	timeout   time.Duration
	client    *http.Client
}

// NewImageTransport builds the transport for image uploads: one endpoint,
// no deadline beyond the request context.
func NewImageTransport(endpoint string, client *http.Client) Transport {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpTransport{name: "image", endpoints: []string{endpoint}, client: client}
}

// NewPDFTransport builds the transport for PDF uploads. The endpoint list
// covers alternate deployment targets; the deadline converts a hung parse
// into an explicit timeout instead of blocking the caller indefinitely.
func NewPDFTransport(endpoints []string, timeout time.Duration, client *http.Client) Transport {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpTransport{name: "pdf", endpoints: endpoints, timeout: timeout, client: client}
}

func (t *httpTransport) Name() string { return t.name }

// Parse posts the request to the first reachable endpoint. Endpoints are
// alternates, not retries: an unreachable endpoint moves the attempt to
// the next one, while any delivered HTTP response, success or failure,
// ends the sequence.
func (t *httpTransport) Parse(ctx context.Context, req ParseRequest) ([]byte, error) {
	if len(t.endpoints) == 0 {
		return nil, fmt.Errorf("no %s parsing endpoint configured", t.name)
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parse request: %w", err)
	}

	var lastErr error
	for _, endpoint := range t.endpoints {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build parse request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := t.client.Do(httpReq)
		if err != nil {
			if t.timeout > 0 && errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w after %s", ErrParseTimeout, t.timeout)
			}
			if ctx.Err() != nil {
				return nil, fmt.Errorf("parse request canceled: %w", ctx.Err())
			}
			lastErr = fmt.Errorf("%w at %s: %v", ErrServiceUnreachable, endpoint, err)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			if t.timeout > 0 && errors.Is(readErr, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w after %s", ErrParseTimeout, t.timeout)
			}
			return nil, fmt.Errorf("failed to read parse response: %w", readErr)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("%w: %d", ErrRemoteStatus, resp.StatusCode)
		}
		return respBody, nil
	}
	return nil, lastErr
}
