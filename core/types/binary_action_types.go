package types

import (
	"strings"

	"github.com/cockroachdb/apd/v3"
	kwiltypes "github.com/trufnetwork/kwil-db/core/types"
)

// ═══════════════════════════════════════════════════════════════
// BINARY MARKET CONDITIONS
// Each condition names a binary attestation action and the thresholds it
// compares the stream value against at settlement.
// ═══════════════════════════════════════════════════════════════

// MarketCondition is a settlement condition that can be packed into query components.
type MarketCondition interface {
	ActionName() string
	Target() QueryTarget
	// Thresholds returns the decimal arguments in the order the action takes them.
	Thresholds() []string
	Validate() error
}

// QueryTarget identifies the stream value a condition reads.
type QueryTarget struct {
	DataProvider string // 0x-prefixed address; empty means the builder's default provider
	StreamID     string // exactly 32 characters
	Timestamp    int64  // unix seconds the value is read at
	FrozenAt     *int64 // optional freeze time for the lookup
}

// WithDefaultProvider fills in the data provider only when it was omitted and
// lowercases it. The ABI address carries no case, so the lowercase form is the
// one that survives a decode and the one written into the action arguments.
func (q QueryTarget) WithDefaultProvider(provider string) QueryTarget {
	if q.DataProvider == "" {
		q.DataProvider = provider
	}
	q.DataProvider = strings.ToLower(q.DataProvider)
	return q
}

// Validate checks the fixed-width fields.
func (q QueryTarget) Validate() error {
	if err := ValidateWalletHex("data_provider", q.DataProvider); err != nil {
		return err
	}
	if len(q.StreamID) != 32 {
		return invalidf("stream_id", "must be exactly 32 characters, got %d", len(q.StreamID))
	}
	if q.Timestamp <= 0 {
		return invalidf("timestamp", "must be positive")
	}
	if q.FrozenAt != nil && *q.FrozenAt < 0 {
		return invalidf("frozen_at", "must be a non-negative unix timestamp, got %d", *q.FrozenAt)
	}
	return nil
}

// checkDecimal verifies the value fits the node's NUMERIC(36,18) threshold columns.
func checkDecimal(field, value string) error {
	if value == "" {
		return invalidf(field, "is required")
	}
	if _, err := kwiltypes.ParseDecimalExplicit(value, 36, 18); err != nil {
		return invalidf(field, "is not a valid NUMERIC(36,18) decimal: %v", err)
	}
	return nil
}

// PriceAboveThresholdInput settles TRUE when value > Threshold.
type PriceAboveThresholdInput struct {
	QueryTarget
	Threshold string
}

func (p *PriceAboveThresholdInput) ActionName() string   { return "price_above_threshold" }
func (p *PriceAboveThresholdInput) Target() QueryTarget  { return p.QueryTarget }
func (p *PriceAboveThresholdInput) Thresholds() []string { return []string{p.Threshold} }

func (p *PriceAboveThresholdInput) Validate() error {
	if err := p.QueryTarget.Validate(); err != nil {
		return err
	}
	return checkDecimal("threshold", p.Threshold)
}

// PriceBelowThresholdInput settles TRUE when value < Threshold.
type PriceBelowThresholdInput struct {
	QueryTarget
	Threshold string
}

func (p *PriceBelowThresholdInput) ActionName() string   { return "price_below_threshold" }
func (p *PriceBelowThresholdInput) Target() QueryTarget  { return p.QueryTarget }
func (p *PriceBelowThresholdInput) Thresholds() []string { return []string{p.Threshold} }

func (p *PriceBelowThresholdInput) Validate() error {
	if err := p.QueryTarget.Validate(); err != nil {
		return err
	}
	return checkDecimal("threshold", p.Threshold)
}

// ValueInRangeInput settles TRUE when MinValue <= value <= MaxValue.
type ValueInRangeInput struct {
	QueryTarget
	MinValue string
	MaxValue string
}

func (v *ValueInRangeInput) ActionName() string   { return "value_in_range" }
func (v *ValueInRangeInput) Target() QueryTarget  { return v.QueryTarget }
func (v *ValueInRangeInput) Thresholds() []string { return []string{v.MinValue, v.MaxValue} }

func (v *ValueInRangeInput) Validate() error {
	if err := v.QueryTarget.Validate(); err != nil {
		return err
	}
	if err := checkDecimal("min_value", v.MinValue); err != nil {
		return err
	}
	if err := checkDecimal("max_value", v.MaxValue); err != nil {
		return err
	}
	lo, _, err := apd.NewFromString(v.MinValue)
	if err != nil {
		return invalidf("min_value", "%v", err)
	}
	hi, _, err := apd.NewFromString(v.MaxValue)
	if err != nil {
		return invalidf("max_value", "%v", err)
	}
	if lo.Cmp(hi) > 0 {
		return invalidf("min_value", "must not exceed max_value (%s > %s)", v.MinValue, v.MaxValue)
	}
	return nil
}

// ValueEqualsInput settles TRUE when |value - TargetValue| <= Tolerance.
type ValueEqualsInput struct {
	QueryTarget
	TargetValue string
	Tolerance   string
}

func (v *ValueEqualsInput) ActionName() string   { return "value_equals" }
func (v *ValueEqualsInput) Target() QueryTarget  { return v.QueryTarget }
func (v *ValueEqualsInput) Thresholds() []string { return []string{v.TargetValue, v.Tolerance} }

func (v *ValueEqualsInput) Validate() error {
	if err := v.QueryTarget.Validate(); err != nil {
		return err
	}
	if err := checkDecimal("target_value", v.TargetValue); err != nil {
		return err
	}
	if err := checkDecimal("tolerance", v.Tolerance); err != nil {
		return err
	}
	tol, _, err := apd.NewFromString(v.Tolerance)
	if err != nil {
		return invalidf("tolerance", "%v", err)
	}
	if tol.Negative && !tol.IsZero() {
		return invalidf("tolerance", "must be non-negative, got %s", v.Tolerance)
	}
	return nil
}

// ConditionWithDefaultProvider returns a copy of cond whose data provider is
// provider when cond leaves it empty. cond itself is not modified.
func ConditionWithDefaultProvider(cond MarketCondition, provider string) MarketCondition {
	switch c := cond.(type) {
	case *PriceAboveThresholdInput:
		cp := *c
		cp.QueryTarget = cp.QueryTarget.WithDefaultProvider(provider)
		return &cp
	case *PriceBelowThresholdInput:
		cp := *c
		cp.QueryTarget = cp.QueryTarget.WithDefaultProvider(provider)
		return &cp
	case *ValueInRangeInput:
		cp := *c
		cp.QueryTarget = cp.QueryTarget.WithDefaultProvider(provider)
		return &cp
	case *ValueEqualsInput:
		cp := *c
		cp.QueryTarget = cp.QueryTarget.WithDefaultProvider(provider)
		return &cp
	}
	return cond
}

var (
	_ MarketCondition = (*PriceAboveThresholdInput)(nil)
	_ MarketCondition = (*PriceBelowThresholdInput)(nil)
	_ MarketCondition = (*ValueInRangeInput)(nil)
	_ MarketCondition = (*ValueEqualsInput)(nil)
)
