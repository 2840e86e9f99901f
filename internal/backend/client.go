package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode"

	"sunrisestay/internal/logger"
	"sunrisestay/internal/metrics"
)

// TokenSource returns the bearer token of the caller bound to ctx, or "" when
// the caller is not signed in.
type TokenSource func(ctx context.Context) string

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	token   TokenSource
}

func NewClient(baseURL string, timeout time.Duration, token TokenSource) *Client {
	if token == nil {
		token = func(context.Context) string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
		token:   token,
	}
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		logger.Debug("backend request without token", "path", path)
	}

	endpoint := endpointLabel(path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		kind := KindNetwork
		if isTimeout(ctx, err) {
			kind = KindTimeout
		}
		metrics.RecordBackendRequest(method, endpoint, string(kind), time.Since(start).Seconds())
		logger.Error("backend request failed", "method", method, "path", path, "kind", kind, "error", err)
		return &Error{Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		kind := KindNetwork
		if isTimeout(ctx, err) {
			kind = KindTimeout
		}
		metrics.RecordBackendRequest(method, endpoint, string(kind), time.Since(start).Seconds())
		return &Error{Kind: kind, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := kindForStatus(resp.StatusCode)
		metrics.RecordBackendRequest(method, endpoint, string(kind), time.Since(start).Seconds())

		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		logger.Error("backend request rejected",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"message", msg,
		)
		return &Error{Kind: kind, Status: resp.StatusCode, Message: msg}
	}

	metrics.RecordBackendRequest(method, endpoint, "ok", time.Since(start).Seconds())
	logger.Debug("backend response", "method", method, "path", path, "status", resp.StatusCode)

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// endpointLabel collapses identifiers so metric labels stay bounded.
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if strings.IndexFunc(p, unicode.IsDigit) >= 0 {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
