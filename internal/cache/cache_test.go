package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyAddrDisablesCache(t *testing.T) {
	assert.Nil(t, New("", "", 0))
}

func TestClient_NilIsAlwaysMiss(t *testing.T) {
	var c *Client
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	data, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, data)

	c.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute)
	var dst map[string]string
	assert.False(t, c.GetJSON(ctx, "k", &dst))

	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestClient_UnreachableRedisFailsSafe(t *testing.T) {
	// Nothing listens on port 1.
	c := New("127.0.0.1:1", "", 0)
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.Error(t, c.Ping(ctx))

	assert.NoError(t, c.Set(ctx, "user:1", []byte("{}"), time.Minute))
	data, err := c.Get(ctx, "user:1")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Delete(ctx, "user:1", "user:2"))

	var dst struct{}
	assert.False(t, c.GetJSON(ctx, "user:1", &dst))
}
