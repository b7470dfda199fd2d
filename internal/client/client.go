// Package client talks to the mockview HTTP API. It decodes the JSON
// envelopes the server writes and maps error codes back onto the sentinel
// errors of the store and interview packages.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kiranshivaraju/mockview/internal/api/response"
	"github.com/kiranshivaraju/mockview/internal/session"
	"github.com/kiranshivaraju/mockview/internal/store"
)

// Sentinel errors for transport and API failures.
var (
	ErrUnreachable  = errors.New("api unreachable")
	ErrTimeout      = errors.New("api request timeout")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrValidation   = errors.New("validation failed")
	ErrBadRequest   = errors.New("bad request")
	ErrServer       = errors.New("server error")

	ErrNotFound          = store.ErrNotFound
	ErrInvalidTransition = store.ErrInvalidTransition
	ErrIndexOutOfRange   = store.ErrIndexOutOfRange
	ErrDuplicateKey      = store.ErrDuplicateKey
)

// APIError is a decoded {"error": {...}} envelope.
type APIError struct {
	Status     int
	Code       string
	Message    string
	Details    map[string]string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error %s (status %d): %s", e.Code, e.Status, e.Message)
}

// Unwrap lets callers match an APIError with errors.Is against the package
// sentinels.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "NOT_FOUND":
		return ErrNotFound
	case "INVALID_TRANSITION":
		return ErrInvalidTransition
	case "INDEX_OUT_OF_RANGE":
		return ErrIndexOutOfRange
	case "DUPLICATE_KEY":
		return ErrDuplicateKey
	case "VALIDATION_ERROR":
		return ErrValidation
	case "UNAUTHORIZED":
		return ErrUnauthorized
	case "RATE_LIMIT_EXCEEDED":
		return ErrRateLimited
	}
	switch {
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Status >= 500:
		return ErrServer
	default:
		return ErrBadRequest
	}
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ session.Recorder = (*Client)(nil)

// New creates a client for the API at baseURL. apiKey may be empty for the
// public endpoints.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithAPIKey returns a copy of c that authenticates with key.
func (c *Client) WithAPIKey(key string) *Client {
	cp := *c
	cp.apiKey = key
	return &cp
}

type envelope struct {
	Data json.RawMessage          `json:"data"`
	Meta *response.PaginationMeta `json:"meta"`
}

type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// do sends the request and decodes the data field of the envelope into out.
// The pagination meta, if any, is returned.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (*response.PaginationMeta, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(req, body != nil)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp)
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil, nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return nil, fmt.Errorf("decoding response data: %w", err)
	}
	return env.Meta, nil
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}

	var env errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Details = env.Error.Details
	}
	return apiErr
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %w", ErrUnreachable, err)
}
