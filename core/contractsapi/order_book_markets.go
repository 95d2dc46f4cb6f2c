package contractsapi

import (
	"context"
	"encoding/hex"
	"strconv"

	"github.com/pkg/errors"
	kwilClientType "github.com/trufnetwork/kwil-db/core/client/types"
	kwiltypes "github.com/trufnetwork/kwil-db/core/types"
	"go.uber.org/zap"

	"github.com/trufnetwork/orderbook-go/core/metrics"
	"github.com/trufnetwork/orderbook-go/core/types"
	"github.com/trufnetwork/orderbook-go/core/util"
)

// ═══════════════════════════════════════════════════════════════
// MARKETS
// ═══════════════════════════════════════════════════════════════

// CreateMarket submits a market over pre-encoded query components. The
// condition helpers in order_book_binary.go build the components for you.
func (o *OrderBook) CreateMarket(ctx context.Context, input types.CreateMarketInput,
	opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	if err := input.ValidateAt(o.now()); err != nil {
		return kwiltypes.Hash{}, o.invalid("create_market", err)
	}

	return o.execute(ctx, "create_market", [][]any{{
		input.Bridge,
		input.QueryComponents,
		input.SettleTime,
		input.MaxSpread,
		input.MinOrderSize,
	}}, opts...)
}

// GetMarketInfo reads one market by id, consulting the client cache first.
func (o *OrderBook) GetMarketInfo(ctx context.Context, input types.GetMarketInfoInput) (types.QueryResponse[*types.MarketInfo], error) {
	const action = "get_market_info"
	if err := input.Validate(); err != nil {
		return types.QueryResponse[*types.MarketInfo]{}, errors.WithStack(err)
	}

	if market := o.cachedMarket(action, func(c types.MarketCache) (*types.MarketInfo, error) {
		return c.GetMarket(ctx, input.QueryID)
	}); market != nil {
		return respond(market, clientCacheHit(action)), nil
	}

	result, md, err := o.call(ctx, action, []any{input.QueryID})
	if err != nil {
		return types.QueryResponse[*types.MarketInfo]{}, errors.WithStack(err)
	}
	if len(result.Values) == 0 {
		return types.QueryResponse[*types.MarketInfo]{}, errors.WithStack(
			&types.NotFoundError{Resource: "market", Key: "query_id=" + strconv.Itoa(input.QueryID)})
	}

	market, err := parseMarketInfoRow(result.Values[0], input.QueryID)
	if err != nil {
		return types.QueryResponse[*types.MarketInfo]{}, errors.WithStack(err)
	}
	o.storeMarket(ctx, market)
	return respond(market, md), nil
}

// GetMarketByHash reads one market by the SHA-256 of its query components.
func (o *OrderBook) GetMarketByHash(ctx context.Context, input types.GetMarketByHashInput) (types.QueryResponse[*types.MarketInfo], error) {
	const action = "get_market_by_hash"
	if err := input.Validate(); err != nil {
		return types.QueryResponse[*types.MarketInfo]{}, errors.WithStack(err)
	}

	if market := o.cachedMarket(action, func(c types.MarketCache) (*types.MarketInfo, error) {
		return c.GetMarketByHash(ctx, input.QueryHash)
	}); market != nil {
		return respond(market, clientCacheHit(action)), nil
	}

	result, md, err := o.call(ctx, action, []any{input.QueryHash})
	if err != nil {
		return types.QueryResponse[*types.MarketInfo]{}, errors.WithStack(err)
	}
	if len(result.Values) == 0 {
		return types.QueryResponse[*types.MarketInfo]{}, errors.WithStack(
			&types.NotFoundError{Resource: "market", Key: "hash=0x" + hex.EncodeToString(input.QueryHash)})
	}

	// the id leads, then the get_market_info columns
	row := result.Values[0]
	var marketID int
	idScan := newRowScanner(row, 1, action)
	idScan.intCol("id", &marketID)
	if err := idScan.Err(); err != nil {
		return types.QueryResponse[*types.MarketInfo]{}, errors.WithStack(err)
	}

	market, err := parseMarketInfoRow(row[1:], marketID)
	if err != nil {
		return types.QueryResponse[*types.MarketInfo]{}, errors.WithStack(err)
	}
	o.storeMarket(ctx, market)
	return respond(market, md), nil
}

// ListMarkets pages through markets in creation order. Nil filters use the
// node defaults.
func (o *OrderBook) ListMarkets(ctx context.Context, input types.ListMarketsInput) (types.QueryResponse[[]types.MarketSummary], error) {
	if err := input.Validate(); err != nil {
		return types.QueryResponse[[]types.MarketSummary]{}, errors.WithStack(err)
	}

	args := []any{
		util.TransformOrNil(input.SettledFilter, func(v bool) any { return v }),
		util.TransformOrNil(input.Limit, func(v int) any { return v }),
		util.TransformOrNil(input.Offset, func(v int) any { return v }),
	}
	return collectRows(ctx, &o.actionRunner, "list_markets", args, parseMarketSummaryRow)
}

// MarketExists reports whether a market was created for hash.
func (o *OrderBook) MarketExists(ctx context.Context, input types.MarketExistsInput) (types.QueryResponse[bool], error) {
	if err := input.Validate(); err != nil {
		return types.QueryResponse[bool]{}, errors.WithStack(err)
	}

	result, md, err := o.call(ctx, "market_exists", []any{input.QueryHash})
	if err != nil {
		return types.QueryResponse[bool]{}, errors.WithStack(err)
	}
	if len(result.Values) == 0 {
		return respond(false, md), nil
	}

	var exists bool
	s := newRowScanner(result.Values[0], 1, "market_exists")
	s.boolCol("market_exists", &exists)
	if err := s.Err(); err != nil {
		return types.QueryResponse[bool]{}, errors.WithStack(err)
	}
	return respond(exists, md), nil
}

// ValidateMarketCollateral asks the node to check YES/NO share parity and
// that the vault covers every share and open bid.
func (o *OrderBook) ValidateMarketCollateral(ctx context.Context, input types.ValidateMarketCollateralInput) (types.QueryResponse[*types.MarketValidation], error) {
	if err := input.Validate(); err != nil {
		return types.QueryResponse[*types.MarketValidation]{}, errors.WithStack(err)
	}

	result, md, err := o.call(ctx, "validate_market_collateral", []any{input.QueryID})
	if err != nil {
		return types.QueryResponse[*types.MarketValidation]{}, errors.WithStack(err)
	}
	if len(result.Values) == 0 {
		return types.QueryResponse[*types.MarketValidation]{}, errors.WithStack(
			&types.NotFoundError{Resource: "collateral validation", Key: "query_id=" + strconv.Itoa(input.QueryID)})
	}

	validation, err := parseMarketValidationRow(result.Values[0])
	if err != nil {
		return types.QueryResponse[*types.MarketValidation]{}, errors.WithStack(err)
	}
	return respond(validation, md), nil
}

// ═══════════════════════════════════════════════════════════════
// CLIENT-SIDE MARKET CACHE
// ═══════════════════════════════════════════════════════════════

// cachedMarket returns the cached market or nil. Cache failures degrade to a miss.
func (o *OrderBook) cachedMarket(action string,
	get func(types.MarketCache) (*types.MarketInfo, error)) *types.MarketInfo {
	if o.cache == nil {
		return nil
	}
	market, err := get(o.cache)
	if err != nil {
		o.logger.Warn("market cache lookup failed", zap.String("action", action), zap.Error(err))
		market = nil
	}
	result := metrics.ResultMiss
	if market != nil {
		result = metrics.ResultHit
	}
	metrics.CacheLookups.WithLabelValues(types.CacheSourceClient, result).Inc()
	return market
}

func (o *OrderBook) storeMarket(ctx context.Context, market *types.MarketInfo) {
	if o.cache == nil {
		return
	}
	if err := o.cache.PutMarket(ctx, market); err != nil {
		o.logger.Warn("market cache store failed", zap.Int("query_id", market.ID), zap.Error(err))
	}
}

func clientCacheHit(action string) types.CacheMetadata {
	return types.CacheMetadata{
		CacheHit:   true,
		Source:     types.CacheSourceClient,
		Action:     action,
		RowsServed: 1,
	}
}

// ═══════════════════════════════════════════════════════════════
// ROW PARSERS
// ═══════════════════════════════════════════════════════════════

// parseMarketInfoRow reads hash, query_components, bridge, settle_time, settled,
// winning_outcome, settled_at, max_spread, min_order_size, created_at and
// creator. Rows from older nodes lack query_components and bridge.
func parseMarketInfoRow(row []any, marketID int) (*types.MarketInfo, error) {
	market := &types.MarketInfo{ID: marketID}
	s := newRowScanner(row, 9, "market info")
	s.bytesCol("hash", &market.Hash)
	if len(row) >= 11 {
		s.bytesCol("query_components", &market.QueryComponents)
		s.optString("bridge", &market.Bridge)
	}
	s.int64Col("settle_time", &market.SettleTime)
	s.boolCol("settled", &market.Settled)
	s.optBool("winning_outcome", &market.WinningOutcome)
	s.optInt64("settled_at", &market.SettledAt)
	s.intCol("max_spread", &market.MaxSpread)
	s.int64Col("min_order_size", &market.MinOrderSize)
	s.int64Col("created_at", &market.CreatedAt)
	s.bytesCol("creator", &market.Creator)
	if err := s.Err(); err != nil {
		return nil, err
	}
	return market, nil
}

// id, hash, settle_time, settled, winning_outcome, max_spread, min_order_size, created_at
func parseMarketSummaryRow(row []any) (types.MarketSummary, error) {
	var summary types.MarketSummary
	s := newRowScanner(row, 8, "list_markets")
	s.intCol("id", &summary.ID)
	s.bytesCol("hash", &summary.Hash)
	s.int64Col("settle_time", &summary.SettleTime)
	s.boolCol("settled", &summary.Settled)
	s.optBool("winning_outcome", &summary.WinningOutcome)
	s.intCol("max_spread", &summary.MaxSpread)
	s.int64Col("min_order_size", &summary.MinOrderSize)
	s.int64Col("created_at", &summary.CreatedAt)
	return summary, s.Err()
}

// valid_token_binaries, valid_collateral, total_true, total_false,
// vault_balance, expected_collateral, open_buys_value
func parseMarketValidationRow(row []any) (*types.MarketValidation, error) {
	v := &types.MarketValidation{}
	s := newRowScanner(row, 7, "validate_market_collateral")
	s.boolCol("valid_token_binaries", &v.ValidTokenBinaries)
	s.boolCol("valid_collateral", &v.ValidCollateral)
	s.int64Col("total_true", &v.TotalTrue)
	s.int64Col("total_false", &v.TotalFalse)
	s.stringCol("vault_balance", &v.VaultBalance)
	s.stringCol("expected_collateral", &v.ExpectedCollateral)
	s.int64Col("open_buys_value", &v.OpenBuysValue)
	if err := s.Err(); err != nil {
		return nil, err
	}
	return v, nil
}
