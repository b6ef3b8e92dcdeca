package cache

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "product:42:lookup", Key(42))
}

func TestNoopProductCacheAlwaysMisses(t *testing.T) {
	var c ProductCache = NoopProductCache{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, &ProductLookup{Price: decimal.NewFromInt(10), Stock: 3}))
	v, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.NoError(t, c.Invalidate(ctx, 1, 2))
}

func TestRedisProductCacheInvalidateNoKeys(t *testing.T) {
	// No ids means no round trip, so a nil client is never touched.
	c := NewRedisProductCache(nil, 0)
	assert.NoError(t, c.Invalidate(context.Background()))
	assert.NoError(t, c.Set(context.Background(), 1, nil))
}
