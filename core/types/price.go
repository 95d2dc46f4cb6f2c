package types

import "fmt"

const (
	// MinPriceCents and MaxPriceCents bound the magnitude of any order price.
	MinPriceCents = 1
	MaxPriceCents = 99

	// PairValueCents is the collateral backing one YES+NO share pair.
	PairValueCents = 100
)

// Outcome aliases for readability at call sites.
const (
	OutcomeYes = true
	OutcomeNo  = false
)

// OutcomeName renders an outcome as YES or NO.
func OutcomeName(outcome bool) string {
	if outcome {
		return "YES"
	}
	return "NO"
}

// OrderRole selects which side of the wire price convention a price belongs to.
type OrderRole int

const (
	RoleBuy OrderRole = iota + 1
	RoleSell
)

func (r OrderRole) String() string {
	switch r {
	case RoleBuy:
		return "buy"
	case RoleSell:
		return "sell"
	default:
		return fmt.Sprintf("OrderRole(%d)", int(r))
	}
}

// ValidateOrderPrice checks a signed wire price against its role:
// buy prices are -99..-1 and sell prices are 1..99.
func ValidateOrderPrice(price int, role OrderRole) error {
	return validatePriceField("price", price, role)
}

func validatePriceField(field string, price int, role OrderRole) error {
	switch role {
	case RoleBuy:
		if price >= -MaxPriceCents && price <= -MinPriceCents {
			return nil
		}
	case RoleSell:
		if price >= MinPriceCents && price <= MaxPriceCents {
			return nil
		}
	}
	return &InvalidPriceError{Field: field, Price: price, Role: role}
}

// ComplementaryPrice returns the implied price of the opposite outcome.
func ComplementaryPrice(p int) (int, error) {
	if p < MinPriceCents || p > MaxPriceCents {
		return 0, invalidf("price", "must be between 1 and 99 cents, got %d", p)
	}
	return PairValueCents - p, nil
}

// IsLPEligible reports whether a YES ask and a NO bid form a complementary pair.
func IsLPEligible(yesAsk, noBid int) bool {
	if noBid < 0 {
		noBid = -noBid
	}
	return yesAsk+noBid == PairValueCents
}

// ═══════════════════════════════════════════════════════════════
// TAGGED PRICE
// ═══════════════════════════════════════════════════════════════

// PriceKind distinguishes the three states folded into the signed wire price.
type PriceKind int

const (
	PriceHolding PriceKind = iota
	PriceBuy
	PriceSell
)

func (k PriceKind) String() string {
	switch k {
	case PriceBuy:
		return "buy"
	case PriceSell:
		return "sell"
	default:
		return "holding"
	}
}

// OrderPrice is the typed form of a wire price. Cents is the unsigned magnitude
// and is zero for holdings.
type OrderPrice struct {
	Kind  PriceKind
	Cents int
}

// BuyAt builds a resting bid at the given magnitude (1..99).
func BuyAt(cents int) (OrderPrice, error) {
	if cents < MinPriceCents || cents > MaxPriceCents {
		return OrderPrice{}, invalidf("price", "bid must be between 1 and 99 cents, got %d", cents)
	}
	return OrderPrice{Kind: PriceBuy, Cents: cents}, nil
}

// SellAt builds a resting ask at the given magnitude (1..99).
func SellAt(cents int) (OrderPrice, error) {
	if cents < MinPriceCents || cents > MaxPriceCents {
		return OrderPrice{}, invalidf("price", "ask must be between 1 and 99 cents, got %d", cents)
	}
	return OrderPrice{Kind: PriceSell, Cents: cents}, nil
}

// Holding is the price of shares owned but not listed.
func Holding() OrderPrice { return OrderPrice{Kind: PriceHolding} }

// ParseWirePrice converts a signed wire price into its tagged form.
func ParseWirePrice(price int) (OrderPrice, error) {
	switch {
	case price == 0:
		return Holding(), nil
	case price < 0:
		return BuyAt(-price)
	default:
		return SellAt(price)
	}
}

// Wire returns the signed integer the node stores for this price.
func (p OrderPrice) Wire() int {
	switch p.Kind {
	case PriceBuy:
		return -p.Cents
	case PriceSell:
		return p.Cents
	default:
		return 0
	}
}

func (p OrderPrice) IsBuy() bool     { return p.Kind == PriceBuy }
func (p OrderPrice) IsSell() bool    { return p.Kind == PriceSell }
func (p OrderPrice) IsHolding() bool { return p.Kind == PriceHolding }

func (p OrderPrice) String() string {
	if p.Kind == PriceHolding {
		return "holding"
	}
	return fmt.Sprintf("%s@%d", p.Kind, p.Cents)
}

// sideOf tags a price read back from the node without range checks.
func sideOf(wire int) OrderPrice {
	switch {
	case wire < 0:
		return OrderPrice{Kind: PriceBuy, Cents: -wire}
	case wire > 0:
		return OrderPrice{Kind: PriceSell, Cents: wire}
	}
	return Holding()
}
