package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)
	defer c.Close()

	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", 1, 10))
	v, ok := c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(11 * time.Second)
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.sweep()
	assert.Zero(t, c.Len())

	require.NoError(t, c.Set(ctx, "b", "x", 10))
	require.NoError(t, c.Delete(ctx, "b"))
	_, ok = c.Get(ctx, "b")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "c", "x", 10))
	require.NoError(t, c.Clear(ctx))
	assert.Zero(t, c.Len())

	c.Close()
}
