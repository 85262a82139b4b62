package ledger

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// maxAmount bounds amounts to 9 integer digits (NUMERIC(19,2) leaves ample
// headroom; the business limit comes from the API contract).
var maxAmount = decimal.New(1, 9)

// normalizeAmount validates a monetary amount and applies the single HALF_UP
// rounding to scale 2. The scale must already be exactly 2: direction is
// carried by the entry kind, never by sign, so the amount must be strictly
// positive.
func normalizeAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.Exponent() != -2 {
		return decimal.Zero, ErrInvalidScale
	}
	normalized := amount.Round(2)
	if normalized.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, ErrAmountTooLarge
	}
	return normalized, nil
}

func validateIdempotencyKey(key string) error {
	if strings.TrimSpace(key) == "" || len(key) > 255 {
		return ErrInvalidIdempotencyKey
	}
	return nil
}

func validateSource(source string) error {
	if strings.TrimSpace(source) == "" || len(source) > 50 {
		return ErrInvalidSource
	}
	return nil
}

// resolveCurrency applies the USD default and validates the 3-letter ISO form.
func resolveCurrency(currency string) (string, error) {
	if currency == "" {
		return DefaultCurrency, nil
	}
	if !currencyPattern.MatchString(currency) {
		return "", ErrInvalidCurrency
	}
	return currency, nil
}

func validatePagination(page, pageSize int) error {
	if page < 0 || pageSize < MinPageSize || pageSize > MaxPageSize {
		return ErrInvalidPagination
	}
	return nil
}
