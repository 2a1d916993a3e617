package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/shopspring/decimal"
)

const (
	// MoneyScale is the number of fraction digits a monetary input may carry
	MoneyScale = 2

	// maxAmountExponent bounds the exponent of a parsed amount before any
	// arithmetic rescales it
	maxAmountExponent = 12
)

// MaxAmount bounds monetary inputs from above, exclusive. Stored amounts are
// numeric(14,2).
var MaxAmount = decimal.New(1, 12)

// ValidateAmount rejects negative amounts, amounts not below MaxAmount and
// amounts with more than MoneyScale fraction digits
func ValidateAmount(field string, v decimal.Decimal) error {
	if exp := v.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return goerr.Wrap(ErrInvalidInput, "amount is out of range",
			goerr.V("field", field), goerr.V("exponent", exp))
	}
	if v.IsNegative() {
		return goerr.Wrap(ErrInvalidInput, "amount must not be negative",
			goerr.V("field", field), goerr.V("amount", v.String()))
	}
	if !v.LessThan(MaxAmount) {
		return goerr.Wrap(ErrInvalidInput, "amount is too large",
			goerr.V("field", field), goerr.V("max", MaxAmount.String()))
	}
	if !v.Equal(v.Truncate(MoneyScale)) {
		return goerr.Wrap(ErrInvalidInput, "amount has too many fraction digits",
			goerr.V("field", field), goerr.V("amount", v.String()))
	}
	return nil
}
