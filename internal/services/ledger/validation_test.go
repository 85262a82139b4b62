package ledger

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    string
		wantErr error
	}{
		{name: "typical amount", amount: "25.50", want: "25.50"},
		{name: "smallest unit", amount: "0.01", want: "0.01"},
		{name: "largest valid", amount: "999999999.99", want: "999999999.99"},
		{name: "zero", amount: "0.00", wantErr: ErrInvalidAmount},
		{name: "negative", amount: "-1.00", wantErr: ErrInvalidAmount},
		{name: "integer scale", amount: "25", wantErr: ErrInvalidScale},
		{name: "one decimal place", amount: "25.5", wantErr: ErrInvalidScale},
		{name: "three decimal places", amount: "25.505", wantErr: ErrInvalidScale},
		{name: "ten integer digits", amount: "1000000000.00", wantErr: ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)

			got, gotErr := normalizeAmount(amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, gotErr, tt.wantErr)
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestValidateIdempotencyKey(t *testing.T) {
	assert.NoError(t, validateIdempotencyKey("order-2026-0001"))
	assert.NoError(t, validateIdempotencyKey(strings.Repeat("k", 255)))

	assert.ErrorIs(t, validateIdempotencyKey(""), ErrInvalidIdempotencyKey)
	assert.ErrorIs(t, validateIdempotencyKey("   "), ErrInvalidIdempotencyKey)
	assert.ErrorIs(t, validateIdempotencyKey(strings.Repeat("k", 256)), ErrInvalidIdempotencyKey)
}

func TestValidateSource(t *testing.T) {
	assert.NoError(t, validateSource("TOPUP"))
	assert.NoError(t, validateSource(strings.Repeat("s", 50)))

	assert.ErrorIs(t, validateSource(""), ErrInvalidSource)
	assert.ErrorIs(t, validateSource(" \t"), ErrInvalidSource)
	assert.ErrorIs(t, validateSource(strings.Repeat("s", 51)), ErrInvalidSource)
}

func TestResolveCurrency(t *testing.T) {
	currency, err := resolveCurrency("")
	require.NoError(t, err)
	assert.Equal(t, "USD", currency)

	currency, err = resolveCurrency("EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", currency)

	for _, bad := range []string{"usd", "US", "USDX", "U1D", "US "} {
		_, err := resolveCurrency(bad)
		assert.ErrorIs(t, err, ErrInvalidCurrency, "currency %q", bad)
	}
}

func TestValidatePagination(t *testing.T) {
	assert.NoError(t, validatePagination(0, 1))
	assert.NoError(t, validatePagination(0, 20))
	assert.NoError(t, validatePagination(7, 100))

	assert.ErrorIs(t, validatePagination(-1, 20), ErrInvalidPagination)
	assert.ErrorIs(t, validatePagination(0, 0), ErrInvalidPagination)
	assert.ErrorIs(t, validatePagination(0, 101), ErrInvalidPagination)
}
