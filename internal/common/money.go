package common

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Money values are rendered as JSON numbers, not strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	// PriceChangeEpsilon is the smallest price movement that counts as a change.
	PriceChangeEpsilon = decimal.RequireFromString("0.01")
	one                = decimal.NewFromInt(1)
)

// RoundMoney rounds to cents, the stored precision of prices.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundUnitPrice keeps extra precision for per-unit figures.
func RoundUnitPrice(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

// RoundQuantity matches the stored precision of quantities.
func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(3)
}

// NonZeroQuantity treats a zero or negative quantity as a single unit.
func NonZeroQuantity(q decimal.Decimal) decimal.Decimal {
	if q.Sign() <= 0 {
		return one
	}
	return q
}

// RegisterValidators lets binding tags such as gt=0 and gte=0 apply to decimal fields and
// reports failing fields by their JSON names. Safe to call more than once.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})
	v.RegisterTagNameFunc(jsonFieldName)
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func decimalValue(field reflect.Value) interface{} {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		f, _ := d.Float64()
		return f
	case decimal.NullDecimal:
		if !d.Valid {
			return nil
		}
		f, _ := d.Decimal.Float64()
		return f
	}
	return nil
}
