// Package clients implements the collaborator service clients the saga
// orchestrator calls: REST lookups for users and products, and in-process
// simulations of the inventory and payment services.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopsphere/order-saga/internal/coordinator"
	"github.com/shopsphere/order-saga/internal/pkg/cache"
)

// UserServiceClient looks up users over the user service REST API.
type UserServiceClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	cache   cache.Cache // nil disables caching
	ttl     time.Duration
}

// NewUserServiceClient builds a client against baseURL. Every lookup carries
// the given timeout. c may be nil to disable the read-through cache.
func NewUserServiceClient(baseURL string, timeout time.Duration, c cache.Cache, ttl time.Duration) *UserServiceClient {
	return &UserServiceClient{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: timeout,
		cache:   c,
		ttl:     ttl,
	}
}

// GetUser fetches a user by id. A 404 maps to coordinator.ErrNotFound; an
// exceeded deadline surfaces wrapped so callers can classify it as a timeout.
func (c *UserServiceClient) GetUser(ctx context.Context, id string) (coordinator.User, error) {
	var u coordinator.User
	key := ""
	if c.cache != nil {
		key = c.cache.GenerateKey("user", id)
		if hit, err := c.cache.Get(ctx, key); err == nil && hit != "" {
			if err := json.Unmarshal([]byte(hit), &u); err == nil {
				return u, nil
			}
		}
	}

	url := fmt.Sprintf("%s/api/v1/users/%s", c.baseURL, id)
	body, err := getJSON(ctx, c.http, url, c.timeout, &u)
	if err != nil {
		return coordinator.User{}, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, string(body), c.ttl); err != nil {
			slog.DebugContext(ctx, "user cache set failed", "error", err)
		}
	}
	return u, nil
}

// getJSON performs a GET with a per-call deadline and decodes a 200 response
// into out, returning the raw body for caching. 404 maps to
// coordinator.ErrNotFound; other non-200 statuses map to a status error.
func getJSON(ctx context.Context, client *http.Client, url string, timeout time.Duration, out any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", url, coordinator.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", url, err)
	}
	return buf, nil
}
