package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsphere/order-saga/internal/coordinator"
)

type fakeCache struct {
	mu    sync.Mutex
	items map[string]string
	sets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]string)}
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value.(string)
	f.sets++
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[key], nil
}

func (f *fakeCache) GenerateKey(operation, key string) string {
	return "test:" + operation + ":" + key
}

func TestUserServiceClient_GetUser(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		require.Equal(t, "/api/v1/users/user-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"user-1","email":"ada@example.com","is_active":true}`))
	}))
	defer srv.Close()

	c := NewUserServiceClient(srv.URL, time.Second, nil, 0)
	u, err := c.GetUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.Equal(t, 1, hits)
}

func TestUserServiceClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewUserServiceClient(srv.URL, time.Second, nil, 0)
	_, err := c.GetUser(context.Background(), "user-404")
	assert.ErrorIs(t, err, coordinator.ErrNotFound)
}

func TestUserServiceClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewUserServiceClient(srv.URL, time.Second, nil, 0)
	_, err := c.GetUser(context.Background(), "user-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, coordinator.ErrNotFound)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
}

func TestUserServiceClient_Timeout(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewUserServiceClient(srv.URL, 20*time.Millisecond, nil, 0)
	_, err := c.GetUser(context.Background(), "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	<-started
}

func TestUserServiceClient_CacheHitSkipsHTTP(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"id":"user-1","email":"ada@example.com","is_active":true}`))
	}))
	defer srv.Close()

	fc := newFakeCache()
	c := NewUserServiceClient(srv.URL, time.Second, fc, time.Minute)

	u1, err := c.GetUser(context.Background(), "user-1")
	require.NoError(t, err)
	u2, err := c.GetUser(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, u1, u2)
	assert.Equal(t, 1, hits, "second lookup should be served from cache")
	assert.Equal(t, 1, fc.sets)
}
