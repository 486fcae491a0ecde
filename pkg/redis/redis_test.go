package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/radar/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	client, err := New(context.Background(), &config.Config{})
	require.NoError(t, err)

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestCache_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(Disabled(), "radar")

	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))

	var got string
	found, err := cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, "k"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "snapshots:postgres:2025-01-15:ab12", Key("snapshots", "postgres", "2025-01-15", "ab12"))
	assert.Equal(t, "single", Key("single"))
}

func TestCache_RoundTrip(t *testing.T) {
	if testing.Short() || os.Getenv("REDIS_ENABLED") != "true" {
		t.Skip("REDIS_ENABLED not set, skipping integration test")
	}

	ctx := context.Background()
	cfg, err := config.Load()
	require.NoError(t, err)

	client, err := New(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	cache := NewCache(client, "radar_test")
	type payload struct {
		Symbol string  `json:"symbol"`
		Close  float64 `json:"close"`
	}

	require.NoError(t, cache.Set(ctx, "roundtrip", payload{"005930", 72300}, time.Minute))
	defer cache.Delete(ctx, "roundtrip")

	var got payload
	found, err := cache.Get(ctx, "roundtrip", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{"005930", 72300}, got)

	err = cache.Set(ctx, "bad", payload{}, 0)
	assert.Error(t, err)
}
