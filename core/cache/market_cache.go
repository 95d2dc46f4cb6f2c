// Package cache keeps market metadata in Redis so repeated market lookups do
// not round trip to the node.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trufnetwork/orderbook-go/core/types"
)

// DefaultUnsettledTTL bounds how stale an open market's cached settled flag can be.
const DefaultUnsettledTTL = 30 * time.Second

// MarketCache implements types.MarketCache on Redis with JSON-serialized
// MarketInfo and a hash-to-id index.
//
// Key schema:
//
//	{prefix}market:{id}          - JSON MarketInfo
//	{prefix}market:hash:{hex}    - market id
//
// Settled markets are immutable and stored without expiry.
type MarketCache struct {
	rdb          redis.UniversalClient
	prefix       string
	unsettledTTL time.Duration
}

var _ types.MarketCache = (*MarketCache)(nil)

// Option configures a MarketCache.
type Option func(*MarketCache)

// WithPrefix namespaces every key, for sharing a Redis database.
func WithPrefix(prefix string) Option {
	return func(c *MarketCache) { c.prefix = prefix }
}

// WithUnsettledTTL sets the expiry applied to markets that are still open.
func WithUnsettledTTL(ttl time.Duration) Option {
	return func(c *MarketCache) { c.unsettledTTL = ttl }
}

// NewMarketCache wraps an existing Redis client.
func NewMarketCache(rdb redis.UniversalClient, opts ...Option) *MarketCache {
	c := &MarketCache{rdb: rdb, prefix: "orderbook:", unsettledTTL: DefaultUnsettledTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MarketCache) idKey(id int) string { return c.prefix + "market:" + strconv.Itoa(id) }
func (c *MarketCache) hashKey(hash []byte) string {
	return c.prefix + "market:hash:" + hex.EncodeToString(hash)
}

// GetMarket returns the cached market, or (nil, nil) on a miss.
func (c *MarketCache) GetMarket(ctx context.Context, queryID int) (*types.MarketInfo, error) {
	data, err := c.rdb.Get(ctx, c.idKey(queryID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "redis: get market %d", queryID)
	}

	var market types.MarketInfo
	if err := json.Unmarshal(data, &market); err != nil {
		return nil, errors.Wrapf(err, "redis: unmarshal market %d", queryID)
	}
	return &market, nil
}

// GetMarketByHash resolves the hash index, then the market itself.
func (c *MarketCache) GetMarketByHash(ctx context.Context, hash []byte) (*types.MarketInfo, error) {
	id, err := c.rdb.Get(ctx, c.hashKey(hash)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "redis: get market by hash %x", hash)
	}
	return c.GetMarket(ctx, id)
}

// PutMarket stores a market and its hash index in one transaction.
func (c *MarketCache) PutMarket(ctx context.Context, market *types.MarketInfo) error {
	if market == nil {
		return nil
	}
	data, err := json.Marshal(market)
	if err != nil {
		return errors.Wrapf(err, "redis: marshal market %d", market.ID)
	}

	ttl := c.unsettledTTL
	if market.Settled {
		ttl = 0
	}

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, c.idKey(market.ID), data, ttl)
	if len(market.Hash) > 0 {
		pipe.Set(ctx, c.hashKey(market.Hash), market.ID, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "redis: set market %d", market.ID)
	}
	return nil
}

// Invalidate drops a market and its hash index.
func (c *MarketCache) Invalidate(ctx context.Context, queryID int) error {
	market, err := c.GetMarket(ctx, queryID)
	if err != nil {
		return err
	}

	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, c.idKey(queryID))
	if market != nil && len(market.Hash) > 0 {
		pipe.Del(ctx, c.hashKey(market.Hash))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "redis: invalidate market %d", queryID)
	}
	return nil
}
