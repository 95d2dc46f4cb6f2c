package types

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ═══════════════════════════════════════════════════════════════
// CREATE MARKET INPUT VALIDATION TESTS
// ═══════════════════════════════════════════════════════════════

func validMarketParams() MarketParams {
	return MarketParams{
		Bridge:       "hoodi_tt2",
		SettleTime:   time.Now().Unix() + 3600,
		MaxSpread:    10,
		MinOrderSize: 1_000_000_000_000_000_000,
	}
}

func TestCreateMarketInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateMarketInput)
		wantErr string
	}{
		{name: "valid", mutate: func(*CreateMarketInput) {}},
		{name: "empty bridge", mutate: func(c *CreateMarketInput) { c.Bridge = "" }, wantErr: "bridge: is required"},
		{name: "unknown bridge", mutate: func(c *CreateMarketInput) { c.Bridge = "hoodi_tt3" }, wantErr: "bridge: must be one of"},
		{name: "wrong case bridge", mutate: func(c *CreateMarketInput) { c.Bridge = "HOODI_TT2" }, wantErr: "bridge: must be one of"},
		{name: "nil components", mutate: func(c *CreateMarketInput) { c.QueryComponents = nil }, wantErr: "query_components: is required"},
		{name: "127 byte components", mutate: func(c *CreateMarketInput) { c.QueryComponents = make([]byte, 127) }, wantErr: "too short"},
		{name: "past settle time", mutate: func(c *CreateMarketInput) { c.SettleTime = time.Now().Unix() - 1 }, wantErr: "settle_time: must be a future"},
		{name: "zero settle time", mutate: func(c *CreateMarketInput) { c.SettleTime = 0 }, wantErr: "settle_time: must be positive"},
		{name: "spread 0", mutate: func(c *CreateMarketInput) { c.MaxSpread = 0 }, wantErr: "max_spread"},
		{name: "spread 51", mutate: func(c *CreateMarketInput) { c.MaxSpread = 51 }, wantErr: "max_spread"},
		{name: "spread 50", mutate: func(c *CreateMarketInput) { c.MaxSpread = 50 }},
		{name: "spread 1", mutate: func(c *CreateMarketInput) { c.MaxSpread = 1 }},
		{name: "zero min order", mutate: func(c *CreateMarketInput) { c.MinOrderSize = 0 }, wantErr: "min_order_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := CreateMarketInput{
				QueryComponents: make([]byte, MinQueryComponentsSize),
				MarketParams:    validMarketParams(),
			}
			tt.mutate(&input)

			err := input.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
			require.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestCreateMarketInput_AllValidBridges(t *testing.T) {
	for bridge := range ValidBridges {
		t.Run(bridge, func(t *testing.T) {
			params := validMarketParams()
			params.Bridge = bridge
			input := CreateMarketInput{QueryComponents: make([]byte, 200), MarketParams: params}
			require.NoError(t, input.Validate())
		})
	}
}

// ═══════════════════════════════════════════════════════════════
// ORDER INPUT VALIDATION TESTS
// ═══════════════════════════════════════════════════════════════

func TestPlaceBuyOrderInput_Validate(t *testing.T) {
	for p := -99; p <= -1; p++ {
		in := PlaceBuyOrderInput{QueryID: 1, Outcome: true, Price: p, Amount: 10}
		require.NoError(t, in.Validate(), "price %d", p)
	}

	for _, p := range []int{-100, 0, 1, 56, 99, 100} {
		in := PlaceBuyOrderInput{QueryID: 1, Outcome: true, Price: p, Amount: 10}
		err := in.Validate()
		require.Error(t, err, "price %d", p)
		var priceErr *InvalidPriceError
		require.True(t, errors.As(err, &priceErr))
		assert.Equal(t, RoleBuy, priceErr.Role)
	}

	bad := []PlaceBuyOrderInput{
		{QueryID: 0, Price: -50, Amount: 1},
		{QueryID: 1, Price: -50, Amount: 0},
		{QueryID: 1, Price: -50, Amount: MaxOrderAmount + 1},
	}
	for _, in := range bad {
		require.ErrorIs(t, in.Validate(), ErrValidation)
	}
}

func TestPlaceSellOrderInput_Validate(t *testing.T) {
	ok := PlaceSellOrderInput{QueryID: 3, Outcome: false, Price: 40, Amount: 100}
	require.NoError(t, ok.Validate())

	for _, p := range []int{-40, 0, 100} {
		in := PlaceSellOrderInput{QueryID: 3, Price: p, Amount: 100}
		require.ErrorIs(t, in.Validate(), ErrValidation, "price %d", p)
	}
}

func TestPlaceSplitLimitOrderInput_Validate(t *testing.T) {
	in := PlaceSplitLimitOrderInput{QueryID: 1, TruePrice: 60, Amount: 100}
	require.NoError(t, in.Validate())
	assert.Equal(t, 40, in.NoSellPrice())

	for _, p := range []int{0, 100, -60} {
		bad := PlaceSplitLimitOrderInput{QueryID: 1, TruePrice: p, Amount: 100}
		err := bad.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "true_price: must be between 1 and 99 cents")
	}
}

func TestCancelOrderInput_Validate(t *testing.T) {
	zero := CancelOrderInput{QueryID: 1, Outcome: true, Price: 0}
	err := zero.Validate()
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "holdings cannot be cancelled")

	for _, p := range []int{-99, -1, 1, 99} {
		in := CancelOrderInput{QueryID: 1, Price: p}
		require.NoError(t, in.Validate())
	}
	for _, p := range []int{-100, 100} {
		in := CancelOrderInput{QueryID: 1, Price: p}
		require.Contains(t, in.Validate().Error(), "must be between -99 and 99")
	}
}

func TestChangeBidInput_Validate(t *testing.T) {
	ok := ChangeBidInput{QueryID: 1, Outcome: true, OldPrice: -56, NewPrice: -55, NewAmount: 200}
	require.NoError(t, ok.Validate())

	tests := []struct {
		name    string
		in      ChangeBidInput
		wantErr string
	}{
		{"positive old", ChangeBidInput{QueryID: 1, OldPrice: 56, NewPrice: -55, NewAmount: 1}, "old_price"},
		{"positive new", ChangeBidInput{QueryID: 1, OldPrice: -56, NewPrice: 55, NewAmount: 1}, "new_price"},
		{"same price", ChangeBidInput{QueryID: 1, OldPrice: -56, NewPrice: -56, NewAmount: 1}, "must differ"},
		{"zero amount", ChangeBidInput{QueryID: 1, OldPrice: -56, NewPrice: -55}, "new_amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestChangeAskInput_Validate(t *testing.T) {
	ok := ChangeAskInput{QueryID: 1, OldPrice: 60, NewPrice: 55, NewAmount: 150}
	require.NoError(t, ok.Validate())

	neg := ChangeAskInput{QueryID: 1, OldPrice: -60, NewPrice: 55, NewAmount: 150}
	require.ErrorIs(t, neg.Validate(), ErrValidation)
}

func TestOrderInputs_TaggedPrices(t *testing.T) {
	buy := PlaceBuyOrderInput{QueryID: 1, Price: -56, Amount: 10}
	require.NoError(t, buy.Validate())
	assert.Equal(t, OrderPrice{Kind: PriceBuy, Cents: 56}, buy.Bid())
	assert.Equal(t, -56, buy.Bid().Wire())

	sell := PlaceSellOrderInput{QueryID: 1, Price: 44, Amount: 10}
	require.NoError(t, sell.Validate())
	assert.Equal(t, OrderPrice{Kind: PriceSell, Cents: 44}, sell.Ask())

	cancelBid := CancelOrderInput{QueryID: 1, Price: -30}
	require.NoError(t, cancelBid.Validate())
	assert.True(t, cancelBid.Order().IsBuy())
	assert.Equal(t, -30, cancelBid.Order().Wire())

	change := ChangeBidInput{QueryID: 1, OldPrice: -56, NewPrice: -55, NewAmount: 5}
	require.NoError(t, change.Validate())
	old, replacement := change.Bids()
	assert.Equal(t, []int{-56, -55}, []int{old.Wire(), replacement.Wire()})

	ask := ChangeAskInput{QueryID: 1, OldPrice: 60, NewPrice: 62, NewAmount: 5}
	require.NoError(t, ask.Validate())
	old, replacement = ask.Asks()
	assert.True(t, old.IsSell() && replacement.IsSell())
	assert.Equal(t, 62, replacement.Cents)
}

// ═══════════════════════════════════════════════════════════════
// QUERY & AUDIT INPUT VALIDATION TESTS
// ═══════════════════════════════════════════════════════════════

func TestListMarketsInput_Validate(t *testing.T) {
	limit := func(v int) *int { return &v }

	require.NoError(t, (&ListMarketsInput{}).Validate())
	require.NoError(t, (&ListMarketsInput{Limit: limit(100), Offset: limit(0)}).Validate())
	require.Error(t, (&ListMarketsInput{Limit: limit(0)}).Validate())
	require.Error(t, (&ListMarketsInput{Limit: limit(101)}).Validate())
	require.Error(t, (&ListMarketsInput{Offset: limit(-1)}).Validate())
}

func TestHashInputs_Validate(t *testing.T) {
	require.NoError(t, (&GetMarketByHashInput{QueryHash: make([]byte, 32)}).Validate())
	require.Error(t, (&GetMarketByHashInput{QueryHash: make([]byte, 31)}).Validate())
	require.Error(t, (&MarketExistsInput{QueryHash: nil}).Validate())
}

func TestGetParticipantRewardHistoryInput_Validate(t *testing.T) {
	ok := GetParticipantRewardHistoryInput{WalletHex: "0x1111111111111111111111111111111111111111"}
	require.NoError(t, ok.Validate())

	for _, w := range []string{"", "1111111111111111111111111111111111111111", "0x11", "0xzz11111111111111111111111111111111111111"} {
		in := GetParticipantRewardHistoryInput{WalletHex: w}
		require.ErrorIs(t, in.Validate(), ErrValidation, "wallet %q", w)
	}
}

func TestSampleLPRewardsInput_Validate(t *testing.T) {
	require.NoError(t, (&SampleLPRewardsInput{QueryID: 1, Block: 0}).Validate())
	require.Error(t, (&SampleLPRewardsInput{QueryID: 1, Block: -1}).Validate())
}

// ═══════════════════════════════════════════════════════════════
// OUTPUT HELPERS
// ═══════════════════════════════════════════════════════════════

func TestMarketInfo_Settleable(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	early := MarketInfo{ID: 1, SettleTime: now.Unix() + 10}
	require.ErrorIs(t, early.Settleable(now), ErrValidation)

	due := MarketInfo{ID: 1, SettleTime: now.Unix()}
	require.NoError(t, due.Settleable(now))

	done := MarketInfo{ID: 1, SettleTime: now.Unix() - 10, Settled: true}
	require.ErrorIs(t, done.Settleable(now), ErrAlreadySettled)
}

func TestPositionAndDepthSides(t *testing.T) {
	assert.Equal(t, "holding", UserPosition{Price: 0}.PositionType())
	assert.Equal(t, "buy_order", UserPosition{Price: -55}.PositionType())
	assert.Equal(t, "sell_order", UserPosition{Price: 40}.PositionType())

	bid := DepthLevel{Price: -55, TotalAmount: 200}
	ask := DepthLevel{Price: 40, TotalAmount: 100}
	assert.Equal(t, int64(200), bid.BuyVolume())
	assert.Zero(t, bid.SellVolume())
	assert.Equal(t, int64(100), ask.SellVolume())
	assert.Equal(t, OrderPrice{Kind: PriceSell, Cents: 40}, ask.Side())
}
