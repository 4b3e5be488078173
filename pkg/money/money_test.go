package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "₦1,000.00", Format(decimal.NewFromInt(1000)))
	assert.Equal(t, "₦500.00", Format(decimal.NewFromInt(500)))
	assert.Equal(t, "₦1,234,567.50", Format(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "₦0.00", Format(decimal.Zero))
}

func TestFormatWhole(t *testing.T) {
	assert.Equal(t, "₦2,000", FormatWhole(decimal.NewFromInt(2000)))
	assert.Equal(t, "₦1,801", FormatWhole(decimal.RequireFromString("1800.6")))
}

func TestSum(t *testing.T) {
	total := Sum(decimal.NewFromInt(1000), decimal.RequireFromString("0.50"), decimal.NewFromInt(300))
	assert.True(t, total.Equal(decimal.RequireFromString("1300.50")), "got %s", total)
	assert.True(t, Sum().IsZero())
}
