package contractsapi

import (
	"context"

	kwilClientType "github.com/trufnetwork/kwil-db/core/client/types"
	kwiltypes "github.com/trufnetwork/kwil-db/core/types"

	"github.com/trufnetwork/orderbook-go/core/types"
)

// ═══════════════════════════════════════════════════════════════
// MARKET DEFINITION BUILDER
// ═══════════════════════════════════════════════════════════════

// MarketDefinition turns a settlement condition into query components.
// A condition that omits its data provider is built against the default provider.
type MarketDefinition struct {
	defaultProvider string
}

// NewMarketDefinition returns a builder; defaultProvider may be empty.
func NewMarketDefinition(defaultProvider string) *MarketDefinition {
	return &MarketDefinition{defaultProvider: defaultProvider}
}

// DefaultProvider is the address filled into conditions without one.
func (m *MarketDefinition) DefaultProvider() string {
	return m.defaultProvider
}

// Build validates cond and ABI-encodes it as (address, bytes32, string, bytes).
// cond is not modified.
func (m *MarketDefinition) Build(cond types.MarketCondition) ([]byte, error) {
	resolved := types.ConditionWithDefaultProvider(cond, m.defaultProvider)
	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	args, err := conditionArgs(resolved)
	if err != nil {
		return nil, err
	}
	argsBytes, err := EncodeActionArgs(args)
	if err != nil {
		return nil, err
	}

	target := resolved.Target()
	return EncodeQueryComponents(target.DataProvider, target.StreamID, resolved.ActionName(), argsBytes)
}

// ═══════════════════════════════════════════════════════════════
// HELPER FUNCTIONS FOR BUILDING QUERY COMPONENTS
// ═══════════════════════════════════════════════════════════════

// BuildPriceAboveThresholdQueryComponents builds query_components for a price_above_threshold query
func BuildPriceAboveThresholdQueryComponents(input types.PriceAboveThresholdInput) ([]byte, error) {
	return NewMarketDefinition("").Build(&input)
}

// BuildPriceBelowThresholdQueryComponents builds query_components for a price_below_threshold query
func BuildPriceBelowThresholdQueryComponents(input types.PriceBelowThresholdInput) ([]byte, error) {
	return NewMarketDefinition("").Build(&input)
}

// BuildValueInRangeQueryComponents builds query_components for a value_in_range query
func BuildValueInRangeQueryComponents(input types.ValueInRangeInput) ([]byte, error) {
	return NewMarketDefinition("").Build(&input)
}

// BuildValueEqualsQueryComponents builds query_components for a value_equals query
func BuildValueEqualsQueryComponents(input types.ValueEqualsInput) ([]byte, error) {
	return NewMarketDefinition("").Build(&input)
}

// ═══════════════════════════════════════════════════════════════
// BINARY MARKET HELPER FUNCTIONS
// ═══════════════════════════════════════════════════════════════

// CreatePriceAboveThresholdMarket creates a binary prediction market that settles
// TRUE if the stream value exceeds the threshold at the specified timestamp.
//
// Example: "Will BTC exceed $100,000 by December 31, 2025?"
//   - StreamID: "stbtcusd000000000000000000000000"
//   - Timestamp: 1735689600 (Dec 31, 2025 00:00:00 UTC)
//   - Threshold: "100000"
func (o *OrderBook) CreatePriceAboveThresholdMarket(ctx context.Context,
	input types.CreatePriceAboveThresholdMarketInput, opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	return o.createFromCondition(ctx, &input.PriceAboveThresholdInput, input.MarketParams, opts...)
}

// CreatePriceBelowThresholdMarket creates a market that settles TRUE if the
// stream value is below the threshold at the timestamp.
func (o *OrderBook) CreatePriceBelowThresholdMarket(ctx context.Context,
	input types.CreatePriceBelowThresholdMarketInput, opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	return o.createFromCondition(ctx, &input.PriceBelowThresholdInput, input.MarketParams, opts...)
}

// CreateValueInRangeMarket creates a market that settles TRUE if the stream
// value is within [MinValue, MaxValue] at the timestamp.
func (o *OrderBook) CreateValueInRangeMarket(ctx context.Context,
	input types.CreateValueInRangeMarketInput, opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	return o.createFromCondition(ctx, &input.ValueInRangeInput, input.MarketParams, opts...)
}

// CreateValueEqualsMarket creates a market that settles TRUE if the stream
// value equals TargetValue within Tolerance at the timestamp.
//
// Example: "Will the Fed rate be exactly 5.25%?" uses TargetValue "5.25" and
// Tolerance "0" for an exact match.
func (o *OrderBook) CreateValueEqualsMarket(ctx context.Context,
	input types.CreateValueEqualsMarketInput, opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	return o.createFromCondition(ctx, &input.ValueEqualsInput, input.MarketParams, opts...)
}

func (o *OrderBook) createFromCondition(ctx context.Context, cond types.MarketCondition,
	params types.MarketParams, opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	queryComponents, err := o.builder.Build(cond)
	if err != nil {
		return kwiltypes.Hash{}, o.invalid("create_market", err)
	}
	return o.CreateMarket(ctx, types.CreateMarketInput{
		QueryComponents: queryComponents,
		MarketParams:    params,
	}, opts...)
}
