package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trufnetwork/orderbook-go/core/types"
)

func newTestCache(t *testing.T, opts ...Option) (*MarketCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewMarketCache(rdb, opts...), mr
}

func testMarket(id int, settled bool) *types.MarketInfo {
	m := &types.MarketInfo{
		ID:           id,
		Hash:         []byte{0xde, 0xad, 0xbe, 0xef, byte(id)},
		Bridge:       "hoodi_tt2",
		SettleTime:   1_700_003_600,
		Settled:      settled,
		MaxSpread:    5,
		MinOrderSize: 1,
		CreatedAt:    1_700_000_000,
		Creator:      []byte{0x47, 0x10},
	}
	if settled {
		yes := true
		at := int64(1_700_003_700)
		m.WinningOutcome, m.SettledAt = &yes, &at
	}
	return m
}

func TestMarketCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	miss, err := c.GetMarket(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, miss)

	missByHash, err := c.GetMarketByHash(ctx, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Nil(t, missByHash)

	want := testMarket(1, true)
	require.NoError(t, c.PutMarket(ctx, want))

	got, err := c.GetMarket(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	byHash, err := c.GetMarketByHash(ctx, want.Hash)
	require.NoError(t, err)
	assert.Equal(t, want, byHash)

	require.NoError(t, c.PutMarket(ctx, nil))
}

func TestMarketCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, WithUnsettledTTL(10*time.Second), WithPrefix("test:"))

	require.NoError(t, c.PutMarket(ctx, testMarket(1, false)))
	require.NoError(t, c.PutMarket(ctx, testMarket(2, true)))

	assert.Equal(t, 10*time.Second, mr.TTL("test:market:1"))
	assert.Zero(t, mr.TTL("test:market:2"), "settled markets never expire")

	mr.FastForward(11 * time.Second)

	open, err := c.GetMarket(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, open)

	settled, err := c.GetMarket(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, settled)
	assert.True(t, settled.Settled)
}

func TestMarketCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	m := testMarket(3, false)
	require.NoError(t, c.PutMarket(ctx, m))
	require.NoError(t, c.Invalidate(ctx, 3))

	assert.False(t, mr.Exists("orderbook:market:3"))
	byHash, err := c.GetMarketByHash(ctx, m.Hash)
	require.NoError(t, err)
	assert.Nil(t, byHash)

	require.NoError(t, c.Invalidate(ctx, 99))
}

func TestMarketCacheErrors(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, mr.Set("orderbook:market:4", "{not json"))
	_, err := c.GetMarket(ctx, 4)
	assert.ErrorContains(t, err, "unmarshal market 4")

	mr.Close()
	_, err = c.GetMarket(ctx, 5)
	assert.Error(t, err)
}
