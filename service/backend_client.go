package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autoparts-storefront/logging"
	"autoparts-storefront/quickorder"
)

// maxErrorBody bounds how much of a failed response is read for its message
const maxErrorBody = 64 << 10

// LatencyObserver receives the duration of every backend call
type LatencyObserver interface {
	ObserveBackend(endpoint string, d time.Duration)
}

// backendClient is the shared JSON transport for the storefront REST backend
type backendClient struct {
	baseURL  string
	http     *http.Client
	observer LatencyObserver
}

func newBackendClient(baseURL string, timeout time.Duration, observer LatencyObserver) *backendClient {
	return &backendClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		observer: observer,
	}
}

// errorBody is the backend's error envelope
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doJSON sends body (if any) as JSON and decodes a 2xx response into out (if any).
// Failures come back as *quickorder.BackendError; Status is 0 when no response arrived.
func (c *backendClient) doJSON(ctx context.Context, method, path, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.observer != nil {
		c.observer.ObserveBackend(endpoint, time.Since(start))
	}
	if err != nil {
		return &quickorder.BackendError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Error
		if msg == "" {
			msg = eb.Message
		}
		logging.S().Warnf("⚠️ Backend %s %s returned %d: %s", method, path, resp.StatusCode, msg)
		return &quickorder.BackendError{Endpoint: endpoint, Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &quickorder.BackendError{Endpoint: endpoint, Status: resp.StatusCode, Message: "empty response body"}
		}
		return &quickorder.BackendError{Endpoint: endpoint, Status: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	return nil
}
