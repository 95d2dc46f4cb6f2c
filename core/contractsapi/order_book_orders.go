package contractsapi

import (
	"context"

	"github.com/pkg/errors"
	kwilClientType "github.com/trufnetwork/kwil-db/core/client/types"
	kwiltypes "github.com/trufnetwork/kwil-db/core/types"

	"github.com/trufnetwork/orderbook-go/core/types"
)

// ═══════════════════════════════════════════════════════════════
// ORDERS
// ═══════════════════════════════════════════════════════════════

// PlaceBuyOrder bids for YES or NO shares. Price is signed (-99..-1); the
// node action takes the magnitude and stores the bid negated.
//
// The bid locks amount × |price| × 10^16 wei, so 10 shares at 56¢ lock 5.6 tokens.
func (o *OrderBook) PlaceBuyOrder(ctx context.Context, input types.PlaceBuyOrderInput,
	opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	const action = "place_buy_order"
	if err := input.Validate(); err != nil {
		return kwiltypes.Hash{}, o.invalid(action, err)
	}
	// the action takes the bid magnitude
	return o.execute(ctx, action, [][]any{{input.QueryID, input.Outcome, input.Bid().Cents, input.Amount}}, opts...)
}

// PlaceSellOrder lists held shares at price (1..99). Selling more than the
// holding gives a *types.InsufficientBalanceError.
func (o *OrderBook) PlaceSellOrder(ctx context.Context, input types.PlaceSellOrderInput,
	opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	const action = "place_sell_order"
	if err := input.Validate(); err != nil {
		return kwiltypes.Hash{}, o.invalid(action, err)
	}
	return o.execute(ctx, action, [][]any{{input.QueryID, input.Outcome, input.Ask().Wire(), input.Amount}}, opts...)
}

// PlaceSplitLimitOrder mints Amount YES/NO pairs for one full token each,
// keeps the YES shares as a holding and lists the NO shares at 100-TruePrice.
// TruePrice 60 with Amount 100 leaves a 100 share YES holding and asks 40¢ for 100 NO.
func (o *OrderBook) PlaceSplitLimitOrder(ctx context.Context, input types.PlaceSplitLimitOrderInput,
	opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	const action = "place_split_limit_order"
	if err := input.Validate(); err != nil {
		return kwiltypes.Hash{}, o.invalid(action, err)
	}
	return o.execute(ctx, action, [][]any{{input.QueryID, input.TruePrice, input.Amount}}, opts...)
}

// CancelOrder removes the signer's order at a signed price. A cancelled bid
// refunds its collateral and a cancelled ask returns its shares to the holding.
// Holdings themselves (price 0) are rejected before submission.
func (o *OrderBook) CancelOrder(ctx context.Context, input types.CancelOrderInput,
	opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	const action = "cancel_order"
	if err := input.Validate(); err != nil {
		return kwiltypes.Hash{}, o.invalid(action, err)
	}
	hash, err := o.execute(ctx, action, [][]any{{input.QueryID, input.Outcome, input.Order().Wire()}}, opts...)
	return hash, orderNotFound(err, input.QueryID, input.Outcome, input.Order().Wire())
}

// ChangeBid moves a bid to a new price and amount in one transaction. The
// replacement keeps the original queue position and only the collateral
// difference is locked or released.
func (o *OrderBook) ChangeBid(ctx context.Context, input types.ChangeBidInput,
	opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	const action = "change_bid"
	if err := input.Validate(); err != nil {
		return kwiltypes.Hash{}, o.invalid(action, err)
	}
	old, replacement := input.Bids()
	hash, err := o.execute(ctx, action, [][]any{{
		input.QueryID, input.Outcome, old.Wire(), replacement.Wire(), input.NewAmount,
	}}, opts...)
	return hash, orderNotFound(err, input.QueryID, input.Outcome, old.Wire())
}

// ChangeAsk is ChangeBid for asks. A larger amount draws on the holding and a
// smaller one returns the excess to it.
func (o *OrderBook) ChangeAsk(ctx context.Context, input types.ChangeAskInput,
	opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	const action = "change_ask"
	if err := input.Validate(); err != nil {
		return kwiltypes.Hash{}, o.invalid(action, err)
	}
	old, replacement := input.Asks()
	hash, err := o.execute(ctx, action, [][]any{{
		input.QueryID, input.Outcome, old.Wire(), replacement.Wire(), input.NewAmount,
	}}, opts...)
	return hash, orderNotFound(err, input.QueryID, input.Outcome, old.Wire())
}

// orderNotFound narrows a not-found rejection to the price level it targeted.
func orderNotFound(err error, queryID int, outcome bool, price int) error {
	if err == nil || !errors.Is(err, types.ErrNotFound) {
		return err
	}
	return &types.OrderNotFoundError{QueryID: queryID, Outcome: outcome, Price: price, Detail: err.Error()}
}
