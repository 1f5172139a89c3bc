package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := New(mr.Addr(), "", 0)
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func TestClient_GetSet(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	data, err := client.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, client.Set(ctx, "k", []byte("v"), time.Minute))
	data, err = client.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), data)

	mr.FastForward(2 * time.Minute)
	data, _ = client.Get(ctx, "k")
	assert.Nil(t, data)
}

func TestClient_IncrWindow(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := client.IncrWindow(ctx, "ratelimit:1.2.3.4:0", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	mr.FastForward(2 * time.Minute)
	got, err := client.IncrWindow(ctx, "ratelimit:1.2.3.4:0", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestClient_SetReportsOutage(t *testing.T) {
	mr, client := setupTestRedis(t)
	mr.Close()

	assert.Error(t, client.Set(context.Background(), "k", []byte("v"), time.Minute))

	var unset *Client
	assert.Error(t, unset.Set(context.Background(), "k", []byte("v"), time.Minute))
}

func TestClient_FailSafeWhenDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()
	mr.Close()

	data, err := client.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.Error(t, client.Ping(ctx))

	_, err = client.IncrWindow(ctx, "k", time.Minute)
	assert.Error(t, err)
}
