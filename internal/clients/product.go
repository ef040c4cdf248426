package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopsphere/order-saga/internal/coordinator"
)

// ProductServiceClient looks up products over the product service REST API.
//
// Product lookups are never cached: the stock figure gates the saga's
// availability check, and serving it from a TTL cache would let a sold-out
// product pass. User lookups, whose payload goes stale far more slowly, keep
// the redis read-through cache.
type ProductServiceClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewProductServiceClient builds a client against baseURL. Every lookup
// carries the given timeout.
func NewProductServiceClient(baseURL string, timeout time.Duration) *ProductServiceClient {
	return &ProductServiceClient{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: timeout,
	}
}

// GetProduct fetches a product by id. A 404 maps to coordinator.ErrNotFound.
func (c *ProductServiceClient) GetProduct(ctx context.Context, id string) (coordinator.Product, error) {
	var p coordinator.Product
	url := fmt.Sprintf("%s/api/v1/products/%s", c.baseURL, id)
	if _, err := getJSON(ctx, c.http, url, c.timeout, &p); err != nil {
		return coordinator.Product{}, err
	}
	return p, nil
}
