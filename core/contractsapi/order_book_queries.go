package contractsapi

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trufnetwork/orderbook-go/core/types"
)

// ═══════════════════════════════════════════════════════════════
// BOOK AND PORTFOLIO READS
// ═══════════════════════════════════════════════════════════════

// GetOrderBook lists the resting orders of one outcome, best price first and
// oldest first within a price. Holdings are not part of the book.
func (o *OrderBook) GetOrderBook(ctx context.Context,
	input types.GetOrderBookInput) (types.QueryResponse[[]types.OrderBookEntry], error) {
	if err := input.Validate(); err != nil {
		return types.QueryResponse[[]types.OrderBookEntry]{}, errors.WithStack(err)
	}
	return collectRows(ctx, &o.actionRunner, "get_order_book",
		[]any{input.QueryID, input.Outcome}, parseOrderBookEntryRow)
}

// GetUserPositions lists the signer's holdings and open orders in every market.
func (o *OrderBook) GetUserPositions(ctx context.Context) (types.QueryResponse[[]types.UserPosition], error) {
	return collectRows(ctx, &o.actionRunner, "get_user_positions", []any{}, parseUserPositionRow)
}

// GetMarketDepth sums the resting amount at each price of one outcome.
func (o *OrderBook) GetMarketDepth(ctx context.Context,
	input types.GetMarketDepthInput) (types.QueryResponse[[]types.DepthLevel], error) {
	if err := input.Validate(); err != nil {
		return types.QueryResponse[[]types.DepthLevel]{}, errors.WithStack(err)
	}
	return collectRows(ctx, &o.actionRunner, "get_market_depth",
		[]any{input.QueryID, input.Outcome}, parseDepthLevelRow)
}

// GetBestPrices reports the top of one outcome's book as magnitudes in cents.
// A side with no orders is nil and so is the spread.
func (o *OrderBook) GetBestPrices(ctx context.Context,
	input types.GetBestPricesInput) (types.QueryResponse[*types.BestPrices], error) {
	if err := input.Validate(); err != nil {
		return types.QueryResponse[*types.BestPrices]{}, errors.WithStack(err)
	}

	result, md, err := o.call(ctx, "get_best_prices", []any{input.QueryID, input.Outcome})
	if err != nil {
		return types.QueryResponse[*types.BestPrices]{}, errors.WithStack(err)
	}
	// an empty book may come back without a row
	if len(result.Values) == 0 {
		return respond(&types.BestPrices{}, md), nil
	}

	prices, err := parseBestPricesRow(result.Values[0])
	if err != nil {
		return types.QueryResponse[*types.BestPrices]{}, errors.WithStack(err)
	}
	return respond(prices, md), nil
}

// GetUserCollateral reports the wei the signer has locked in bids and shares.
// A wallet with no positions gets zeros.
func (o *OrderBook) GetUserCollateral(ctx context.Context) (types.QueryResponse[*types.UserCollateral], error) {
	result, md, err := o.call(ctx, "get_user_collateral", []any{})
	if err != nil {
		return types.QueryResponse[*types.UserCollateral]{}, errors.WithStack(err)
	}
	if len(result.Values) == 0 {
		return respond(&types.UserCollateral{TotalLocked: "0", BuyOrdersLocked: "0", SharesValue: "0"}, md), nil
	}

	collateral, err := parseUserCollateralRow(result.Values[0])
	if err != nil {
		return types.QueryResponse[*types.UserCollateral]{}, errors.WithStack(err)
	}
	return respond(collateral, md), nil
}

// GetMarketSnapshot reads a market and both outcome books concurrently.
// The first failing read cancels the rest.
func (o *OrderBook) GetMarketSnapshot(ctx context.Context, input types.GetMarketInfoInput) (*types.MarketSnapshot, error) {
	if err := input.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	snapshot := &types.MarketSnapshot{
		Yes: types.OutcomeBook{Outcome: types.OutcomeYes},
		No:  types.OutcomeBook{Outcome: types.OutcomeNo},
	}
	// one slot per read, so goroutines never share a write target
	cache := make([]types.CacheMetadata, 5)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := o.GetMarketInfo(gctx, input)
		if err != nil {
			return err
		}
		snapshot.Market, cache[0] = resp.Data, resp.Cache
		return nil
	})
	for i, side := range []*types.OutcomeBook{&snapshot.Yes, &snapshot.No} {
		book := types.OutcomeBookInput{QueryID: input.QueryID, Outcome: side.Outcome}
		g.Go(func() error {
			resp, err := o.GetOrderBook(gctx, book)
			if err != nil {
				return err
			}
			side.Entries, cache[1+2*i] = resp.Data, resp.Cache
			return nil
		})
		g.Go(func() error {
			resp, err := o.GetBestPrices(gctx, book)
			if err != nil {
				return err
			}
			side.Best, cache[2+2*i] = resp.Data, resp.Cache
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot.Cache = cache
	return snapshot, nil
}

// ═══════════════════════════════════════════════════════════════
// ROW PARSERS
// ═══════════════════════════════════════════════════════════════

// wallet_address, price, amount, last_updated
func parseOrderBookEntryRow(row []any) (types.OrderBookEntry, error) {
	var entry types.OrderBookEntry
	s := newRowScanner(row, 4, "get_order_book")
	s.bytesCol("wallet_address", &entry.WalletAddress)
	s.intCol("price", &entry.Price)
	s.int64Col("amount", &entry.Amount)
	s.int64Col("last_updated", &entry.LastUpdated)
	return entry, s.Err()
}

// query_id, outcome, price, amount, last_updated
func parseUserPositionRow(row []any) (types.UserPosition, error) {
	var position types.UserPosition
	s := newRowScanner(row, 5, "get_user_positions")
	s.intCol("query_id", &position.QueryID)
	s.boolCol("outcome", &position.Outcome)
	s.intCol("price", &position.Price)
	s.int64Col("amount", &position.Amount)
	s.int64Col("last_updated", &position.LastUpdated)
	return position, s.Err()
}

// price, total_amount
func parseDepthLevelRow(row []any) (types.DepthLevel, error) {
	var level types.DepthLevel
	s := newRowScanner(row, 2, "get_market_depth")
	s.intCol("price", &level.Price)
	s.int64Col("total_amount", &level.TotalAmount)
	return level, s.Err()
}

// parseBestPricesRow reads best_bid, best_ask and spread, all nullable.
// Bids stored negative are reported as magnitudes, and a missing spread is
// derived when both sides are present.
func parseBestPricesRow(row []any) (*types.BestPrices, error) {
	prices := &types.BestPrices{}
	s := newRowScanner(row, 3, "get_best_prices")
	s.optInt("best_bid", &prices.BestBid)
	s.optInt("best_ask", &prices.BestAsk)
	s.optInt("spread", &prices.Spread)
	if err := s.Err(); err != nil {
		return nil, err
	}

	if prices.BestBid != nil && *prices.BestBid < 0 {
		magnitude := -*prices.BestBid
		prices.BestBid = &magnitude
	}
	switch {
	case prices.BestBid == nil || prices.BestAsk == nil:
		prices.Spread = nil
	case prices.Spread == nil:
		spread := *prices.BestAsk - *prices.BestBid
		prices.Spread = &spread
	}
	return prices, nil
}

// total_locked, buy_orders_locked, shares_value
func parseUserCollateralRow(row []any) (*types.UserCollateral, error) {
	collateral := &types.UserCollateral{}
	s := newRowScanner(row, 3, "get_user_collateral")
	s.stringCol("total_locked", &collateral.TotalLocked)
	s.stringCol("buy_orders_locked", &collateral.BuyOrdersLocked)
	s.stringCol("shares_value", &collateral.SharesValue)
	if err := s.Err(); err != nil {
		return nil, err
	}
	return collateral, nil
}
