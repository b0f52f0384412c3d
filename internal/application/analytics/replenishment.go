package analytics

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
)

// salesWindowDays historial de ventas que pondera la prioridad de reposición.
const salesWindowDays = 90

type shopProduct struct {
	shopID, productID string
}

// Replenishment lista de reposición: productos cuyo stock en una farmacia (sumando sus lotes)
// está en o bajo el punto de reorden. La cantidad sugerida lleva el stock a 1.5 × punto de reorden.
// shopID vacío considera todas las farmacias.
// Orden: más unidades vendidas en 90 días, luego mayor déficit bajo el reorden, luego farmacia y producto.
func (p *Projector) Replenishment(ctx context.Context, shopID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	ds, err := p.load(ctx, true)
	if err != nil {
		return nil, err
	}

	stock := map[shopProduct]int{}
	keyOf := make(map[string]shopProduct, len(ds.batches))
	for _, b := range ds.batches {
		k := shopProduct{b.ShopID, b.ProductID}
		keyOf[b.ID] = k
		if shopID != "" && b.ShopID != shopID {
			continue
		}
		stock[k] += b.CurrentStock
	}

	since := p.now().AddDate(0, 0, -salesWindowDays)
	sold := map[shopProduct]int{}
	for _, m := range ds.sales {
		if m.CreatedAt.Before(since) {
			continue
		}
		if k, ok := keyOf[m.BatchID]; ok {
			sold[k] += m.Quantity
		}
	}

	out := make([]dto.ReplenishmentSuggestionDTO, 0)
	for k, current := range stock {
		product, ok := ds.products[k.productID]
		if !ok || current > product.ReorderPoint {
			continue
		}
		ideal := (product.ReorderPoint*3 + 1) / 2
		qty := ideal - current
		if qty < 0 {
			qty = 0
		}
		row := dto.ReplenishmentSuggestionDTO{
			ShopID:              k.shopID,
			ProductID:           k.productID,
			SKU:                 product.SKU,
			ProductName:         product.Name,
			CurrentStock:        current,
			ReorderPoint:        product.ReorderPoint,
			IdealStock:          ideal,
			SuggestedOrderQty:   qty,
			UnitPrice:           product.UnitPrice,
			EstimatedOrderValue: product.UnitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2),
			UnitsSoldLast90Days: sold[k],
		}
		if s, ok := ds.shopByID[k.shopID]; ok {
			row.ShopName = s.Name
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.UnitsSoldLast90Days != b.UnitsSoldLast90Days {
			return a.UnitsSoldLast90Days > b.UnitsSoldLast90Days
		}
		defA, defB := a.ReorderPoint-a.CurrentStock, b.ReorderPoint-b.CurrentStock
		if defA != defB {
			return defA > defB
		}
		if a.ShopID != b.ShopID {
			return a.ShopID < b.ShopID
		}
		return a.ProductID < b.ProductID
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}
