package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	RequiredID("client_id", 0, v)
	PositiveInt("quantity", 0, v)
	NonNegativeDecimal("price", decimal.NewFromInt(-1), v)
	RangeDecimal("tax_rate", decimal.NewFromInt(120), decimal.Zero, decimal.NewFromInt(100), v)
	OneOf("store", "paris", []string{"ville_avray", "garches"}, v)
	MaxScale("unit_price", decimal.RequireFromString("33.333"), 2, v)

	assert.Equal(t, Violations{
		"name":       "required",
		"client_id":  "required",
		"quantity":   "must_be_positive",
		"price":      "must_not_be_negative",
		"tax_rate":   "out_of_range",
		"store":      "invalid_choice",
		"unit_price": "too_many_decimals",
	}, v)
	assert.Error(t, v.Err())
	assert.Equal(t, "client_id: required, name: required, price: must_not_be_negative, quantity: must_be_positive, store: invalid_choice, tax_rate: out_of_range, unit_price: too_many_decimals", v.Error())
}

func TestValidatorsAcceptValidInput(t *testing.T) {
	v := Violations{}
	Required("name", "Casque", v)
	RequiredID("client_id", 3, v)
	PositiveInt("quantity", 2, v)
	NonNegativeDecimal("price", decimal.Zero, v)
	RangeDecimal("tax_rate", decimal.NewFromInt(20), decimal.Zero, decimal.NewFromInt(100), v)
	OneOf("store", "garches", []string{"ville_avray", "garches"}, v)
	MaxScale("unit_price", decimal.RequireFromString("33.30"), 2, v)
	MaxScale("total", decimal.NewFromInt(120), 2, v)

	assert.True(t, v.Empty())
	assert.NoError(t, v.Err())
}
