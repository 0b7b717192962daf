package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Error is the single failure shape for everything the wrapper sends.
// Status is the upstream HTTP status, or 0 when the network itself failed.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// AuthFailure reports whether the upstream rejected our credentials, the
// signal that the session expired mid-use.
func (e *Error) AuthFailure() bool {
	return e.Status == http.StatusUnauthorized
}

// TokenSource supplies the current bearer credential. An empty token means
// the request goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
	}
}

// Get performs an authenticated GET with one automatic retry on network
// errors and 5xx responses. Reads are idempotent against the backend
// contract, so the retry is safe.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out, 1)
}

// Post performs an authenticated POST. Mutations are never retried.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out, 0)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, retries int) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &Error{Message: fmt.Sprintf("encode request: %v", err)}
		}
	}

	for attempt := 0; ; attempt++ {
		err := c.send(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		if attempt >= retries || !retryable(err) {
			return err
		}
	}
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: errorMessage(resp)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

func retryable(err error) bool {
	te, ok := err.(*Error)
	if !ok {
		return false
	}
	return te.Status == 0 || te.Status >= 500
}

func errorMessage(resp *http.Response) string {
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return fmt.Sprintf("upstream returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
