// Package gateway holds the JSON-over-HTTP client shared by the service gateways.
package gateway

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

	"fulfillment-platform/internal/apperr"
)

// RemoteError is a non-2xx answer from a remote service.
type RemoteError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Unwrap maps the status onto the error taxonomy.
func (e *RemoteError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusConflict:
		return apperr.ErrConflict
	case http.StatusBadRequest:
		return apperr.ErrInvalid
	case http.StatusUnprocessableEntity:
		return apperr.ErrInsufficientStock
	default:
		return apperr.ErrRemoteCall
	}
}

// Client calls one remote service.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Do sends in as JSON (if not nil) and decodes the response into out (if not nil).
// Transport failures wrap apperr.ErrRemoteCall.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, apperr.ErrRemoteCall, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{Method: method, Path: path, Status: resp.StatusCode, Message: readMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w: %w", method, path, apperr.ErrRemoteCall, err)
	}
	return nil
}

func readMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(b))
}

// IsRetryable reports whether a failed call may succeed if repeated:
// transport failures, 5xx and 429.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status >= 500 || re.Status == http.StatusTooManyRequests
	}
	return errors.Is(err, apperr.ErrRemoteCall)
}
