package contractsapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trufnetwork/orderbook-go/core/types"
	"github.com/trufnetwork/orderbook-go/core/util"
)

// GetBridgeBalance reads the free collateral of a wallet on a bridge. This is
// what buy orders and split orders lock from.
func (o *OrderBook) GetBridgeBalance(ctx context.Context,
	input types.GetBridgeBalanceInput) (types.QueryResponse[*types.BridgeBalance], error) {
	if err := input.Validate(); err != nil {
		return types.QueryResponse[*types.BridgeBalance]{}, errors.WithStack(err)
	}
	wallet := strings.ToLower(input.Wallet)

	result, md, err := o.call(ctx, input.Bridge+"_wallet_balance", []any{wallet})
	if err != nil {
		return types.QueryResponse[*types.BridgeBalance]{}, errors.WithStack(err)
	}

	wei := "0"
	if len(result.Values) > 0 && len(result.Values[0]) > 0 && result.Values[0][0] != nil {
		wei = fmt.Sprint(result.Values[0][0])
	}
	tokens, err := util.FormatWei(wei)
	if err != nil {
		return types.QueryResponse[*types.BridgeBalance]{}, errors.WithStack(&types.EncodingError{
			Field: "balance", Err: err,
		})
	}

	return respond(&types.BridgeBalance{
		Bridge: input.Bridge,
		Wallet: wallet,
		Wei:    wei,
		Tokens: tokens,
	}, md), nil
}
