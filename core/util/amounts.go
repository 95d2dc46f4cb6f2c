package util

import (
	"github.com/cockroachdb/apd/v3"
	"github.com/pkg/errors"
)

// TokenDecimals is the precision of bridged collateral tokens.
const TokenDecimals = 18

// centWei is the wei value of one cent of collateral: a pair settles for 1 token.
var centWei = apd.New(1, TokenDecimals-2)

var decimalCtx = apd.BaseContext.WithPrecision(100)

// WeiToToken converts a NUMERIC(78,0) wei string into token units.
func WeiToToken(wei string) (*apd.Decimal, error) {
	value, _, err := apd.NewFromString(wei)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid wei amount %q", wei)
	}
	if value.Exponent < 0 {
		return nil, errors.Errorf("wei amount %q must be an integer", wei)
	}

	token := new(apd.Decimal)
	if _, err := decimalCtx.Quo(token, value, apd.New(1, TokenDecimals)); err != nil {
		return nil, errors.Wrap(err, "convert wei to token")
	}
	token.Reduce(token)
	return token, nil
}

// FormatWei renders a wei string in token units without trailing zeros.
func FormatWei(wei string) (string, error) {
	token, err := WeiToToken(wei)
	if err != nil {
		return "", err
	}
	return token.Text('f'), nil
}

// CollateralWei is the wei an order of amount shares locks at priceCents.
func CollateralWei(priceCents int, amount int64) (string, error) {
	if priceCents < 0 {
		priceCents = -priceCents
	}
	locked := new(apd.Decimal)
	if _, err := decimalCtx.Mul(locked, apd.New(int64(priceCents), 0), apd.New(amount, 0)); err != nil {
		return "", errors.Wrap(err, "collateral")
	}
	if _, err := decimalCtx.Mul(locked, locked, centWei); err != nil {
		return "", errors.Wrap(err, "collateral")
	}
	// integral by construction; fix the exponent at zero for NUMERIC(78,0)
	if _, err := decimalCtx.Quantize(locked, locked, 0); err != nil {
		return "", errors.Wrap(err, "collateral")
	}
	return locked.Text('f'), nil
}
