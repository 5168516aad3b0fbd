// Package upstash implements domain.CacheStore over the Upstash REST protocol:
// every command is a JSON array POSTed to the database URL with a bearer token.
package upstash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

// ErrCommandFailed wraps errors reported by the store itself rather than the transport.
var ErrCommandFailed = errors.New("upstash command failed")

type commandResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// RESTStore is a domain.CacheStore backed by an Upstash database.
type RESTStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     domain.Logger
}

// NewRESTStore creates a RESTStore. A zero timeout leaves cancellation to the request context.
func NewRESTStore(baseURL, token string, timeout time.Duration, logger domain.Logger) *RESTStore {
	if logger == nil {
		panic("logger cannot be nil in NewRESTStore")
	}
	return &RESTStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (s *RESTStore) do(ctx context.Context, args ...string) (json.RawMessage, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s command: %w", args[0], err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", args[0], err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstash %s request failed: %w", args[0], err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read upstash %s response: %w", args[0], err)
	}

	var out commandResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("upstash %s returned HTTP %d with undecodable body: %w", args[0], resp.StatusCode, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s: %s", ErrCommandFailed, args[0], out.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: HTTP %d", ErrCommandFailed, args[0], resp.StatusCode)
	}
	return out.Result, nil
}

// Get retrieves the raw value stored under key.
func (s *RESTStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := s.do(ctx, "GET", key)
	if err != nil {
		s.logger.Error(ctx, "Upstash GET failed", "key", key, "error", err.Error())
		return nil, false, err
	}
	var val *string
	if err := json.Unmarshal(res, &val); err != nil {
		return nil, false, fmt.Errorf("unexpected upstash GET result for key '%s': %w", key, err)
	}
	if val == nil {
		s.logger.Debug(ctx, "Upstash GET miss", "key", key)
		return nil, false, nil
	}
	return []byte(*val), true, nil
}

// SetEx stores value under key with the given expiry.
func (s *RESTStore) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	if _, err := s.do(ctx, "SETEX", key, strconv.FormatInt(seconds, 10), string(value)); err != nil {
		s.logger.Error(ctx, "Upstash SETEX failed", "key", key, "ttl", ttl.String(), "error", err.Error())
		return err
	}
	return nil
}

// Keys returns every key matching pattern.
func (s *RESTStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	res, err := s.do(ctx, "KEYS", pattern)
	if err != nil {
		s.logger.Error(ctx, "Upstash KEYS failed", "pattern", pattern, "error", err.Error())
		return nil, err
	}
	keys := make([]string, 0)
	if err := json.Unmarshal(res, &keys); err != nil {
		return nil, fmt.Errorf("unexpected upstash KEYS result for pattern '%s': %w", pattern, err)
	}
	return keys, nil
}

// Del removes key and reports whether it existed.
func (s *RESTStore) Del(ctx context.Context, key string) (bool, error) {
	res, err := s.do(ctx, "DEL", key)
	if err != nil {
		s.logger.Error(ctx, "Upstash DEL failed", "key", key, "error", err.Error())
		return false, err
	}
	var n int64
	if err := json.Unmarshal(res, &n); err != nil {
		return false, fmt.Errorf("unexpected upstash DEL result for key '%s': %w", key, err)
	}
	return n == 1, nil
}

// Ping checks connectivity and credentials.
func (s *RESTStore) Ping(ctx context.Context) error {
	_, err := s.do(ctx, "PING")
	return err
}
