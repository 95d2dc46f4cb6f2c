package types

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	kwilClientType "github.com/trufnetwork/kwil-db/core/client/types"
	kwiltypes "github.com/trufnetwork/kwil-db/core/types"
)

// MaxOrderAmount is the largest share amount a single order may carry.
const MaxOrderAmount int64 = 1_000_000_000

// MinQueryComponentsSize is the fixed ABI header of the query components tuple:
// address(32) + bytes32(32) + string offset(32) + bytes offset(32).
const MinQueryComponentsSize = 128

// ═══════════════════════════════════════════════════════════════
// INTERFACES
// ═══════════════════════════════════════════════════════════════

// QueryResponse pairs a read-only result with the cache status reported for it.
type QueryResponse[T any] struct {
	Data  T
	Cache CacheMetadata
}

// IOrderBook drives the prediction market order book on a node.
// Mutations return a transaction hash as soon as the node accepts them; confirmation
// is a separate wait on the client.
type IOrderBook interface {
	// ═══════════════════════════════════════════════════════════════
	// MARKET OPERATIONS
	// ═══════════════════════════════════════════════════════════════

	// CreateMarket
	// Maps to: create_market($bridge, $query_components, $settle_time, $max_spread, $min_order_size)
	CreateMarket(ctx context.Context, input CreateMarketInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)

	CreatePriceAboveThresholdMarket(ctx context.Context, input CreatePriceAboveThresholdMarketInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)
	CreatePriceBelowThresholdMarket(ctx context.Context, input CreatePriceBelowThresholdMarketInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)
	CreateValueInRangeMarket(ctx context.Context, input CreateValueInRangeMarketInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)
	CreateValueEqualsMarket(ctx context.Context, input CreateValueEqualsMarketInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)

	// GetMarketInfo
	// Maps to: get_market_info($query_id)
	GetMarketInfo(ctx context.Context, input GetMarketInfoInput) (QueryResponse[*MarketInfo], error)

	// GetMarketByHash
	// Maps to: get_market_by_hash($query_hash)
	GetMarketByHash(ctx context.Context, input GetMarketByHashInput) (QueryResponse[*MarketInfo], error)

	// ListMarkets
	// Maps to: list_markets($settled_filter, $limit_val, $offset_val)
	ListMarkets(ctx context.Context, input ListMarketsInput) (QueryResponse[[]MarketSummary], error)

	// MarketExists
	// Maps to: market_exists($query_hash)
	MarketExists(ctx context.Context, input MarketExistsInput) (QueryResponse[bool], error)

	// ValidateMarketCollateral
	// Maps to: validate_market_collateral($query_id)
	ValidateMarketCollateral(ctx context.Context, input ValidateMarketCollateralInput) (QueryResponse[*MarketValidation], error)

	// ═══════════════════════════════════════════════════════════════
	// ORDER PLACEMENT
	// ═══════════════════════════════════════════════════════════════

	// PlaceBuyOrder
	// Maps to: place_buy_order($query_id, $outcome, $price, $amount)
	PlaceBuyOrder(ctx context.Context, input PlaceBuyOrderInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)

	// PlaceSellOrder
	// Maps to: place_sell_order($query_id, $outcome, $price, $amount)
	PlaceSellOrder(ctx context.Context, input PlaceSellOrderInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)

	// PlaceSplitLimitOrder
	// Maps to: place_split_limit_order($query_id, $true_price, $amount)
	PlaceSplitLimitOrder(ctx context.Context, input PlaceSplitLimitOrderInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)

	// CancelOrder
	// Maps to: cancel_order($query_id, $outcome, $price)
	CancelOrder(ctx context.Context, input CancelOrderInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)

	// ChangeBid
	// Maps to: change_bid($query_id, $outcome, $old_price, $new_price, $new_amount)
	ChangeBid(ctx context.Context, input ChangeBidInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)

	// ChangeAsk
	// Maps to: change_ask($query_id, $outcome, $old_price, $new_price, $new_amount)
	ChangeAsk(ctx context.Context, input ChangeAskInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)

	// ═══════════════════════════════════════════════════════════════
	// QUERY OPERATIONS
	// ═══════════════════════════════════════════════════════════════

	// GetOrderBook
	// Maps to: get_order_book($query_id, $outcome)
	GetOrderBook(ctx context.Context, input GetOrderBookInput) (QueryResponse[[]OrderBookEntry], error)

	// GetUserPositions
	// Maps to: get_user_positions()
	GetUserPositions(ctx context.Context) (QueryResponse[[]UserPosition], error)

	// GetMarketDepth
	// Maps to: get_market_depth($query_id, $outcome)
	GetMarketDepth(ctx context.Context, input GetMarketDepthInput) (QueryResponse[[]DepthLevel], error)

	// GetBestPrices
	// Maps to: get_best_prices($query_id, $outcome)
	GetBestPrices(ctx context.Context, input GetBestPricesInput) (QueryResponse[*BestPrices], error)

	// GetUserCollateral
	// Maps to: get_user_collateral()
	GetUserCollateral(ctx context.Context) (QueryResponse[*UserCollateral], error)

	// GetMarketSnapshot reads market info and both outcome books concurrently.
	GetMarketSnapshot(ctx context.Context, input GetMarketInfoInput) (*MarketSnapshot, error)

	// GetBridgeBalance
	// Maps to: {bridge}_wallet_balance($wallet)
	GetBridgeBalance(ctx context.Context, input GetBridgeBalanceInput) (QueryResponse[*BridgeBalance], error)

	// ═══════════════════════════════════════════════════════════════
	// SETTLEMENT & REWARDS
	// ═══════════════════════════════════════════════════════════════

	// SettleMarket
	// Maps to: settle_market($query_id)
	SettleMarket(ctx context.Context, input SettleMarketInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)

	// SampleLPRewards
	// Maps to: sample_lp_rewards($query_id, $block)
	SampleLPRewards(ctx context.Context, input SampleLPRewardsInput,
		opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)

	// GetDistributionSummary
	// Maps to: get_distribution_summary($query_id)
	GetDistributionSummary(ctx context.Context, input GetDistributionSummaryInput) (QueryResponse[*DistributionSummary], error)

	// GetDistributionDetails
	// Maps to: get_distribution_details($distribution_id)
	GetDistributionDetails(ctx context.Context, input GetDistributionDetailsInput) (QueryResponse[[]LPRewardDetail], error)

	// GetParticipantRewardHistory
	// Maps to: get_participant_reward_history($wallet_hex)
	GetParticipantRewardHistory(ctx context.Context, input GetParticipantRewardHistoryInput) (QueryResponse[[]RewardHistory], error)
}

// MarketCache stores market metadata on the client side. Implementations must
// report a miss as (nil, nil).
type MarketCache interface {
	GetMarket(ctx context.Context, queryID int) (*MarketInfo, error)
	GetMarketByHash(ctx context.Context, hash []byte) (*MarketInfo, error)
	PutMarket(ctx context.Context, market *MarketInfo) error
}

// ═══════════════════════════════════════════════════════════════
// SHARED FIELD CHECKS
// ═══════════════════════════════════════════════════════════════

func validateQueryID(id int) error {
	if id < 1 {
		return invalidf("query_id", "must be positive, got %d", id)
	}
	return nil
}

func validateAmount(field string, amount int64) error {
	if amount <= 0 {
		return invalidf(field, "must be positive, got %d", amount)
	}
	if amount > MaxOrderAmount {
		return invalidf(field, "exceeds maximum of 1,000,000,000, got %d", amount)
	}
	return nil
}

func validateHash(hash []byte) error {
	if len(hash) != 32 {
		return invalidf("query_hash", "must be exactly 32 bytes, got %d", len(hash))
	}
	return nil
}

// ValidateWalletHex checks for a 0x-prefixed 20-byte hex address.
func ValidateWalletHex(field, addr string) error {
	if addr == "" {
		return invalidf(field, "is required")
	}
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return invalidf(field, "must be 0x-prefixed 40-character hex string, got %q", addr)
	}
	if _, err := hex.DecodeString(addr[2:]); err != nil {
		return invalidf(field, "contains invalid hex characters: %v", err)
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════
// INPUT TYPES - MARKET OPERATIONS
// ═══════════════════════════════════════════════════════════════

// ValidBridges lists the collateral namespaces a market may use.
var ValidBridges = map[string]bool{
	"hoodi_tt2":       true,
	"sepolia_bridge":  true,
	"ethereum_bridge": true,
}

// MarketParams are the economic parameters shared by every market creation path.
type MarketParams struct {
	Bridge       string // hoodi_tt2, sepolia_bridge or ethereum_bridge
	SettleTime   int64  // unix seconds, must be in the future
	MaxSpread    int    // LP reward spread, 1-50 cents
	MinOrderSize int64  // LP reward minimum, positive
}

// Validate checks the parameters against the current wall clock.
func (m *MarketParams) Validate() error {
	return m.ValidateAt(time.Now())
}

// ValidateAt checks the parameters against now.
func (m *MarketParams) ValidateAt(now time.Time) error {
	if m.Bridge == "" {
		return invalidf("bridge", "is required")
	}
	if !ValidBridges[m.Bridge] {
		return invalidf("bridge", "must be one of: hoodi_tt2, sepolia_bridge, ethereum_bridge, got %s", m.Bridge)
	}
	if m.SettleTime <= 0 {
		return invalidf("settle_time", "must be positive (unix timestamp)")
	}
	if m.SettleTime <= now.Unix() {
		return invalidf("settle_time", "must be a future unix timestamp, got %d (current time: %d)", m.SettleTime, now.Unix())
	}
	if m.MaxSpread < 1 || m.MaxSpread > 50 {
		return invalidf("max_spread", "must be between 1 and 50 cents, got %d", m.MaxSpread)
	}
	if m.MinOrderSize <= 0 {
		return invalidf("min_order_size", "must be positive, got %d", m.MinOrderSize)
	}
	return nil
}

// CreateMarketInput carries pre-encoded query components plus the market parameters.
type CreateMarketInput struct {
	QueryComponents []byte // ABI tuple (address, bytes32, string, bytes)
	MarketParams
}

// Validate checks the input without touching the network.
func (c *CreateMarketInput) Validate() error {
	return c.ValidateAt(time.Now())
}

func (c *CreateMarketInput) ValidateAt(now time.Time) error {
	if err := c.MarketParams.ValidateAt(now); err != nil {
		return err
	}
	if len(c.QueryComponents) == 0 {
		return invalidf("query_components", "is required")
	}
	if len(c.QueryComponents) < MinQueryComponentsSize {
		return invalidf("query_components", "too short for ABI-encoded tuple, got %d bytes (minimum %d)",
			len(c.QueryComponents), MinQueryComponentsSize)
	}
	return nil
}

type CreatePriceAboveThresholdMarketInput struct {
	PriceAboveThresholdInput
	MarketParams
}

type CreatePriceBelowThresholdMarketInput struct {
	PriceBelowThresholdInput
	MarketParams
}

type CreateValueInRangeMarketInput struct {
	ValueInRangeInput
	MarketParams
}

type CreateValueEqualsMarketInput struct {
	ValueEqualsInput
	MarketParams
}

// GetMarketInfoInput selects a market by its node-assigned id.
type GetMarketInfoInput struct {
	QueryID int
}

func (g *GetMarketInfoInput) Validate() error { return validateQueryID(g.QueryID) }

// GetMarketByHashInput selects a market by its 32-byte query hash.
type GetMarketByHashInput struct {
	QueryHash []byte
}

func (g *GetMarketByHashInput) Validate() error { return validateHash(g.QueryHash) }

// ListMarketsInput pages through markets in creation order.
type ListMarketsInput struct {
	SettledFilter *bool // nil=all, true=settled only, false=active only
	Limit         *int  // 1-100, node default when nil
	Offset        *int  // >= 0, node default when nil
}

func (l *ListMarketsInput) Validate() error {
	if l.Limit != nil && (*l.Limit < 1 || *l.Limit > 100) {
		return invalidf("limit", "must be between 1 and 100, got %d", *l.Limit)
	}
	if l.Offset != nil && *l.Offset < 0 {
		return invalidf("offset", "must be non-negative, got %d", *l.Offset)
	}
	return nil
}

type MarketExistsInput struct {
	QueryHash []byte
}

func (m *MarketExistsInput) Validate() error { return validateHash(m.QueryHash) }

type ValidateMarketCollateralInput struct {
	QueryID int
}

func (v *ValidateMarketCollateralInput) Validate() error { return validateQueryID(v.QueryID) }

// ═══════════════════════════════════════════════════════════════
// INPUT TYPES - ORDER OPERATIONS
// ═══════════════════════════════════════════════════════════════

// PlaceBuyOrderInput places a bid. Price uses the signed convention: -99..-1.
type PlaceBuyOrderInput struct {
	QueryID int
	Outcome bool
	Price   int
	Amount  int64
}

func (p *PlaceBuyOrderInput) Validate() error {
	if err := validateQueryID(p.QueryID); err != nil {
		return err
	}
	if err := ValidateOrderPrice(p.Price, RoleBuy); err != nil {
		return err
	}
	return validateAmount("amount", p.Amount)
}

// Bid is the tagged form of Price, meaningful once Validate passes.
func (p *PlaceBuyOrderInput) Bid() OrderPrice { return sideOf(p.Price) }

// PlaceSellOrderInput lists owned shares. Price is 1..99.
type PlaceSellOrderInput struct {
	QueryID int
	Outcome bool
	Price   int
	Amount  int64
}

func (p *PlaceSellOrderInput) Validate() error {
	if err := validateQueryID(p.QueryID); err != nil {
		return err
	}
	if err := ValidateOrderPrice(p.Price, RoleSell); err != nil {
		return err
	}
	return validateAmount("amount", p.Amount)
}

// Ask is the tagged form of Price, meaningful once Validate passes.
func (p *PlaceSellOrderInput) Ask() OrderPrice { return sideOf(p.Price) }

// PlaceSplitLimitOrderInput mints Amount share pairs, holds the YES side and
// lists the NO side at 100 - TruePrice.
type PlaceSplitLimitOrderInput struct {
	QueryID   int
	TruePrice int
	Amount    int64
}

func (p *PlaceSplitLimitOrderInput) Validate() error {
	if err := validateQueryID(p.QueryID); err != nil {
		return err
	}
	if p.TruePrice < MinPriceCents || p.TruePrice > MaxPriceCents {
		return invalidf("true_price", "must be between 1 and 99 cents, got %d", p.TruePrice)
	}
	return validateAmount("amount", p.Amount)
}

// NoSellPrice is the ask the NO side is listed at.
func (p *PlaceSplitLimitOrderInput) NoSellPrice() int {
	return PairValueCents - p.TruePrice
}

// CancelOrderInput removes a resting order. Holdings (price 0) cannot be cancelled.
type CancelOrderInput struct {
	QueryID int
	Outcome bool
	Price   int
}

func (c *CancelOrderInput) Validate() error {
	if err := validateQueryID(c.QueryID); err != nil {
		return err
	}
	if c.Price == 0 {
		return invalidf("price", "cannot be 0 (holdings cannot be cancelled)")
	}
	if c.Price < -MaxPriceCents || c.Price > MaxPriceCents {
		return invalidf("price", "must be between -99 and 99 (excluding 0), got %d", c.Price)
	}
	return nil
}

// Order is the tagged price of the order being cancelled.
func (c *CancelOrderInput) Order() OrderPrice { return sideOf(c.Price) }

// ChangeBidInput atomically moves a bid from OldPrice to NewPrice/NewAmount.
type ChangeBidInput struct {
	QueryID   int
	Outcome   bool
	OldPrice  int // -99..-1
	NewPrice  int // -99..-1
	NewAmount int64
}

func (c *ChangeBidInput) Validate() error {
	if err := validateQueryID(c.QueryID); err != nil {
		return err
	}
	if err := validatePriceField("old_price", c.OldPrice, RoleBuy); err != nil {
		return err
	}
	if err := validatePriceField("new_price", c.NewPrice, RoleBuy); err != nil {
		return err
	}
	if c.OldPrice == c.NewPrice {
		return invalidf("new_price", "must differ from old_price")
	}
	return validateAmount("new_amount", c.NewAmount)
}

// Bids returns the tagged old and new prices.
func (c *ChangeBidInput) Bids() (old, replacement OrderPrice) {
	return sideOf(c.OldPrice), sideOf(c.NewPrice)
}

// ChangeAskInput atomically moves an ask from OldPrice to NewPrice/NewAmount.
type ChangeAskInput struct {
	QueryID   int
	Outcome   bool
	OldPrice  int // 1..99
	NewPrice  int // 1..99
	NewAmount int64
}

func (c *ChangeAskInput) Validate() error {
	if err := validateQueryID(c.QueryID); err != nil {
		return err
	}
	if err := validatePriceField("old_price", c.OldPrice, RoleSell); err != nil {
		return err
	}
	if err := validatePriceField("new_price", c.NewPrice, RoleSell); err != nil {
		return err
	}
	if c.OldPrice == c.NewPrice {
		return invalidf("new_price", "must differ from old_price")
	}
	return validateAmount("new_amount", c.NewAmount)
}

// Asks returns the tagged old and new prices.
func (c *ChangeAskInput) Asks() (old, replacement OrderPrice) {
	return sideOf(c.OldPrice), sideOf(c.NewPrice)
}

// ═══════════════════════════════════════════════════════════════
// INPUT TYPES - QUERY OPERATIONS
// ═══════════════════════════════════════════════════════════════

// GetBridgeBalanceInput names the collateral bridge and the wallet to read.
type GetBridgeBalanceInput struct {
	Bridge string
	Wallet string
}

func (g *GetBridgeBalanceInput) Validate() error {
	if !ValidBridges[g.Bridge] {
		return invalidf("bridge", "must be one of: hoodi_tt2, sepolia_bridge, ethereum_bridge, got %s", g.Bridge)
	}
	return ValidateWalletHex("wallet", g.Wallet)
}

// OutcomeBookInput addresses one outcome side of a market.
type OutcomeBookInput struct {
	QueryID int
	Outcome bool
}

func (o *OutcomeBookInput) Validate() error { return validateQueryID(o.QueryID) }

type GetOrderBookInput = OutcomeBookInput
type GetMarketDepthInput = OutcomeBookInput
type GetBestPricesInput = OutcomeBookInput

// ═══════════════════════════════════════════════════════════════
// INPUT TYPES - SETTLEMENT & REWARDS
// ═══════════════════════════════════════════════════════════════

// SettleMarketInput triggers settlement. With CheckSettleable the market is read
// first and settlement is refused locally when it is early or already settled.
type SettleMarketInput struct {
	QueryID         int
	CheckSettleable bool
}

func (s *SettleMarketInput) Validate() error { return validateQueryID(s.QueryID) }

type SampleLPRewardsInput struct {
	QueryID int
	Block   int64
}

func (s *SampleLPRewardsInput) Validate() error {
	if err := validateQueryID(s.QueryID); err != nil {
		return err
	}
	if s.Block < 0 {
		return invalidf("block", "must be non-negative, got %d", s.Block)
	}
	return nil
}

type GetDistributionSummaryInput struct {
	QueryID int
}

func (g *GetDistributionSummaryInput) Validate() error { return validateQueryID(g.QueryID) }

type GetDistributionDetailsInput struct {
	DistributionID int
}

func (g *GetDistributionDetailsInput) Validate() error {
	if g.DistributionID < 1 {
		return invalidf("distribution_id", "must be positive, got %d", g.DistributionID)
	}
	return nil
}

type GetParticipantRewardHistoryInput struct {
	WalletHex string
}

func (g *GetParticipantRewardHistoryInput) Validate() error {
	return ValidateWalletHex("wallet_hex", g.WalletHex)
}

// ═══════════════════════════════════════════════════════════════
// OUTPUT TYPES - MARKETS
// ═══════════════════════════════════════════════════════════════

// MarketInfo is one binary market. WinningOutcome and SettledAt are nil until settled.
type MarketInfo struct {
	ID              int    `json:"id"`
	Hash            []byte `json:"hash"`
	QueryComponents []byte `json:"query_components,omitempty"`
	Bridge          string `json:"bridge,omitempty"`
	SettleTime      int64  `json:"settle_time"`
	Settled         bool   `json:"settled"`
	WinningOutcome  *bool  `json:"winning_outcome,omitempty"`
	SettledAt       *int64 `json:"settled_at,omitempty"`
	MaxSpread       int    `json:"max_spread"`
	MinOrderSize    int64  `json:"min_order_size"`
	CreatedAt       int64  `json:"created_at"`
	Creator         []byte `json:"creator"`
}

// Settleable reports whether settlement may be triggered at now.
func (m *MarketInfo) Settleable(now time.Time) error {
	if m.Settled {
		return ErrAlreadySettled
	}
	if now.Unix() < m.SettleTime {
		return invalidf("settle_time", "market %d cannot settle before %d (now %d)", m.ID, m.SettleTime, now.Unix())
	}
	return nil
}

type MarketSummary struct {
	ID             int    `json:"id"`
	Hash           []byte `json:"hash"`
	SettleTime     int64  `json:"settle_time"`
	Settled        bool   `json:"settled"`
	WinningOutcome *bool  `json:"winning_outcome,omitempty"`
	MaxSpread      int    `json:"max_spread"`
	MinOrderSize   int64  `json:"min_order_size"`
	CreatedAt      int64  `json:"created_at"`
}

// MarketValidation is the audit view of share parity and vault backing.
type MarketValidation struct {
	ValidTokenBinaries bool   `json:"valid_token_binaries"`
	ValidCollateral    bool   `json:"valid_collateral"`
	TotalTrue          int64  `json:"total_true"`
	TotalFalse         int64  `json:"total_false"`
	VaultBalance       string `json:"vault_balance"`       // NUMERIC(78,0)
	ExpectedCollateral string `json:"expected_collateral"` // NUMERIC(78,0)
	OpenBuysValue      int64  `json:"open_buys_value"`     // cents
}

// Consistent is true when both node-side checks pass.
func (v *MarketValidation) Consistent() bool {
	return v.ValidTokenBinaries && v.ValidCollateral
}

// ═══════════════════════════════════════════════════════════════
// OUTPUT TYPES - BOOKS & POSITIONS
// ═══════════════════════════════════════════════════════════════

type OrderBookEntry struct {
	WalletAddress []byte `json:"wallet_address"`
	Price         int    `json:"price"` // signed wire price
	Amount        int64  `json:"amount"`
	LastUpdated   int64  `json:"last_updated"`
}

func (e OrderBookEntry) Side() OrderPrice { return sideOf(e.Price) }

type UserPosition struct {
	QueryID     int   `json:"query_id"`
	Outcome     bool  `json:"outcome"`
	Price       int   `json:"price"` // 0 holding, <0 bid, >0 ask
	Amount      int64 `json:"amount"`
	LastUpdated int64 `json:"last_updated"`
}

func (p UserPosition) Side() OrderPrice { return sideOf(p.Price) }

// PositionType names the position as holding, buy_order or sell_order.
func (p UserPosition) PositionType() string {
	switch p.Side().Kind {
	case PriceBuy:
		return "buy_order"
	case PriceSell:
		return "sell_order"
	default:
		return "holding"
	}
}

type DepthLevel struct {
	Price       int   `json:"price"`
	TotalAmount int64 `json:"total_amount"`
}

func (d DepthLevel) Side() OrderPrice { return sideOf(d.Price) }

// BuyVolume and SellVolume split a level into its two sides.
func (d DepthLevel) BuyVolume() int64 {
	if d.Price < 0 {
		return d.TotalAmount
	}
	return 0
}

func (d DepthLevel) SellVolume() int64 {
	if d.Price > 0 {
		return d.TotalAmount
	}
	return 0
}

// BestPrices holds bid and ask magnitudes in cents. Each is nil when that side is
// empty, and Spread is nil unless both are present.
type BestPrices struct {
	BestBid *int `json:"best_bid"`
	BestAsk *int `json:"best_ask"`
	Spread  *int `json:"spread"`
}

// UserCollateral values are NUMERIC(78,0) wei strings.
type UserCollateral struct {
	TotalLocked     string `json:"total_locked"`
	BuyOrdersLocked string `json:"buy_orders_locked"`
	SharesValue     string `json:"shares_value"`
}

// BridgeBalance is the free collateral a wallet holds on a bridge.
type BridgeBalance struct {
	Bridge string `json:"bridge"`
	Wallet string `json:"wallet"`
	Wei    string `json:"wei"`
	Tokens string `json:"tokens"`
}

// OutcomeBook is one side of a snapshot.
type OutcomeBook struct {
	Outcome bool             `json:"outcome"`
	Entries []OrderBookEntry `json:"entries"`
	Best    *BestPrices      `json:"best"`
}

// MarketSnapshot is a point-in-time read of a market and both of its books.
type MarketSnapshot struct {
	Market *MarketInfo     `json:"market"`
	Yes    OutcomeBook     `json:"yes"`
	No     OutcomeBook     `json:"no"`
	Cache  []CacheMetadata `json:"cache"`
}

// ═══════════════════════════════════════════════════════════════
// OUTPUT TYPES - SETTLEMENT & AUDIT
// ═══════════════════════════════════════════════════════════════

type DistributionSummary struct {
	DistributionID       int    `json:"distribution_id"`
	TotalFeesDistributed string `json:"total_fees_distributed"` // NUMERIC(78,0)
	TotalLPCount         int64  `json:"total_lp_count"`
	BlockCount           int64  `json:"block_count"`
	DistributedAt        int64  `json:"distributed_at"`
}

type LPRewardDetail struct {
	WalletAddress      []byte `json:"wallet_address"`
	RewardAmount       string `json:"reward_amount"`        // NUMERIC(78,0)
	TotalRewardPercent string `json:"total_reward_percent"` // NUMERIC(10,2)
}

type RewardHistory struct {
	DistributionID     int    `json:"distribution_id"`
	QueryID            int    `json:"query_id"`
	RewardAmount       string `json:"reward_amount"`
	TotalRewardPercent string `json:"total_reward_percent"`
	DistributedAt      int64  `json:"distributed_at"`
}
