package shopping

import (
	"testing"

	"pricehive_backend/internal/common"
	"pricehive_backend/internal/price"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func latestOf(p, q string) *price.PriceRecord {
	return &price.PriceRecord{Price: d(p), Quantity: d(q)}
}

func TestRecompute_UnitPriceRegression(t *testing.T) {
	sp := uuid.New()
	items := []ShoppingListItem{{
		SellableProductID: sp,
		Quantity:          d("3"),
		Price:             decimal.NewNullDecimal(d("5.50")),
	}}

	est := Recompute(items, LatestLookup{sp: latestOf("4.00", "2")})

	require.Len(t, est.Items, 1)
	require.NotNil(t, est.Items[0].UnitPrice)
	require.NotNil(t, est.Items[0].Estimated)
	assert.Equal(t, "1.8333", common.RoundUnitPrice(*est.Items[0].UnitPrice).StringFixed(4))
	assert.Equal(t, "6.00", common.RoundMoney(*est.Items[0].Estimated).StringFixed(2))
	assert.Equal(t, "5.50", est.TotalActual.StringFixed(2), "item prices are totals, never multiplied by quantity")
	assert.Equal(t, "6.00", est.TotalEstimated.StringFixed(2))
}

func TestRecompute_MissingLatestHasNoEstimate(t *testing.T) {
	known, unknown := uuid.New(), uuid.New()
	items := []ShoppingListItem{
		{SellableProductID: known, Quantity: d("2")},
		{SellableProductID: unknown, Quantity: d("5")},
	}

	est := Recompute(items, LatestLookup{known: latestOf("1.50", "1"), unknown: nil})

	assert.NotNil(t, est.Items[0].Estimated)
	assert.Nil(t, est.Items[1].Estimated)
	assert.Nil(t, est.Items[1].UnitPrice)
	assert.True(t, d("3.00").Equal(est.TotalEstimated), "unresolvable items contribute nothing")
	assert.True(t, decimal.Zero.Equal(est.TotalActual))
}

func TestEstimateItem_ZeroLatestQuantityCountsAsOne(t *testing.T) {
	est := EstimateItem(d("2"), latestOf("3.00", "0"))
	require.NotNil(t, est)
	assert.True(t, d("6").Equal(*est))
}

func TestItemUnitPrice_NeedsPriceAndQuantity(t *testing.T) {
	assert.Nil(t, ItemUnitPrice(ShoppingListItem{Quantity: d("2")}))
	assert.Nil(t, ItemUnitPrice(ShoppingListItem{Quantity: decimal.Zero, Price: decimal.NewNullDecimal(d("1"))}))

	u := ItemUnitPrice(ShoppingListItem{Quantity: d("4"), Price: decimal.NewNullDecimal(d("2"))})
	require.NotNil(t, u)
	assert.True(t, d("0.5").Equal(*u))
}

func TestRecompute_IsIdempotent(t *testing.T) {
	sp := uuid.New()
	items := []ShoppingListItem{{SellableProductID: sp, Quantity: d("3"), Price: decimal.NewNullDecimal(d("5.50"))}}
	lookup := LatestLookup{sp: latestOf("4.00", "2")}

	assert.Equal(t, Recompute(items, lookup), Recompute(items, lookup))
}
