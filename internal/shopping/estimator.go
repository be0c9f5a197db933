package shopping

import (
	"pricehive_backend/internal/common"
	"pricehive_backend/internal/price"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LatestLookup maps sellable product ids to their latest price. Missing or nil entries have no estimate.
type LatestLookup map[uuid.UUID]*price.PriceRecord

// ItemEstimate holds the derived figures for one item, unrounded.
type ItemEstimate struct {
	UnitPrice *decimal.Decimal // the item's own price per unit
	Estimated *decimal.Decimal // latest unit price times the item quantity
}

// ListEstimate is the result of Recompute. Items line up with the input items.
type ListEstimate struct {
	Items          []ItemEstimate
	TotalEstimated decimal.Decimal
	TotalActual    decimal.Decimal
}

// EstimateItem prices quantity units from the latest observation. A latest quantity of zero counts as one.
func EstimateItem(quantity decimal.Decimal, latest *price.PriceRecord) *decimal.Decimal {
	if latest == nil {
		return nil
	}
	unit := latest.Price.Div(common.NonZeroQuantity(latest.Quantity))
	est := unit.Mul(quantity)
	return &est
}

// ItemUnitPrice is the paid price per unit, or nil without a price or a positive quantity.
func ItemUnitPrice(item ShoppingListItem) *decimal.Decimal {
	if !item.Price.Valid || item.Quantity.Sign() <= 0 {
		return nil
	}
	u := item.Price.Decimal.Div(item.Quantity)
	return &u
}

// Recompute derives item estimates and list totals. TotalActual sums item prices as entered,
// since an item price already covers its whole quantity.
func Recompute(items []ShoppingListItem, latest LatestLookup) ListEstimate {
	out := ListEstimate{
		Items:          make([]ItemEstimate, len(items)),
		TotalEstimated: decimal.Zero,
		TotalActual:    decimal.Zero,
	}
	for i, item := range items {
		est := EstimateItem(item.Quantity, latest[item.SellableProductID])
		out.Items[i] = ItemEstimate{UnitPrice: ItemUnitPrice(item), Estimated: est}
		if est != nil {
			out.TotalEstimated = out.TotalEstimated.Add(*est)
		}
		if item.Price.Valid {
			out.TotalActual = out.TotalActual.Add(item.Price.Decimal)
		}
	}
	return out
}

func roundPtr(d *decimal.Decimal, round func(decimal.Decimal) decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := round(*d)
	return &r
}
