// Package client talks to the remote annotation API over HTTP and JSON.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/lewtec/parelha/internal/domain"
	"github.com/lewtec/parelha/internal/session"
)

const (
	DefaultTimeout  = 15 * time.Second
	DefaultCacheTTL = 30 * time.Second

	maxErrorBody = 4096
)

// Config holds the connection settings of a Client
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client implements the domain services against the remote API. Listings
// that only change when the user submits (tasks, history, class sets) are
// cached for CacheTTL; task positions are always fetched.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions session.Provider
	cache    *cache.Cache
}

// New creates a Client. Every request carries the bearer token that
// sessions holds at the time of the call.
func New(config Config, sessions session.Provider) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	return &Client{
		baseURL:  strings.TrimRight(config.BaseURL, "/"),
		http:     &http.Client{Timeout: config.Timeout},
		sessions: sessions,
		cache:    cache.New(config.CacheTTL, 2*config.CacheTTL),
	}
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do sends one request and returns the raw response body of a 2xx answer.
// Failures come back as *domain.APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("while encoding request for %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("while building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.sessions.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("client: %s %s failed after %dms: %s", method, path, time.Since(start).Milliseconds(), err)
		return nil, &domain.APIError{Message: err.Error(), Err: domain.ErrNetwork}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	log.Printf("client: %s %s -> %d (%dms)", method, path, resp.StatusCode, time.Since(start).Milliseconds())
	if err != nil {
		return nil, &domain.APIError{Status: resp.StatusCode, Message: "while reading response: " + err.Error(), Err: domain.ErrNetwork}
	}

	if classified := domain.ClassifyStatus(resp.StatusCode); classified != nil {
		return nil, &domain.APIError{Status: resp.StatusCode, Message: errorMessage(data), Err: classified}
	}
	return data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	data, err := c.do(ctx, method, path, query, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.APIError{Status: http.StatusOK, Message: "invalid response body: " + err.Error(), Err: domain.ErrNetwork}
	}
	return nil
}

func errorMessage(data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if len(data) > maxErrorBody {
		data = data[:maxErrorBody]
	}
	return strings.TrimSpace(string(data))
}

func cached[T any](c *Client, key string) (T, bool) {
	var zero T
	v, ok := c.cache.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// IsUnauthenticated reports whether err means the session must be renewed
func IsUnauthenticated(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated)
}
