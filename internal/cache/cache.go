// Package cache holds the read-through cache used by the product price and
// stock lookup endpoints. Entries are dropped whenever a product's price or
// stock changes, so a hit is never staler than the configured TTL.
package cache

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductLookup is the cached projection of a product.
type ProductLookup struct {
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type ProductCache interface {
	Get(ctx context.Context, productID uint) (*ProductLookup, bool, error)
	Set(ctx context.Context, productID uint, value *ProductLookup) error
	Invalidate(ctx context.Context, productIDs ...uint) error
}

// Key returns the cache key of a product lookup.
func Key(productID uint) string {
	return fmt.Sprintf("product:%d:lookup", productID)
}

// NoopProductCache always misses. Used when no Redis URL is configured.
type NoopProductCache struct{}

func (NoopProductCache) Get(_ context.Context, _ uint) (*ProductLookup, bool, error) {
	return nil, false, nil
}

func (NoopProductCache) Set(_ context.Context, _ uint, _ *ProductLookup) error { return nil }

func (NoopProductCache) Invalidate(_ context.Context, _ ...uint) error { return nil }
