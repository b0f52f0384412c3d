package analytics_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

func TestReplenishment_SumaLotesYPriorizaPorVentas(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	centro := w.shop(t, "Centro", entity.ShopStatusOnline)
	norte := w.shop(t, "Norte", entity.ShopStatusOnline)
	ibu := w.product(t, "IBU-400", 2, 10)
	lor := w.product(t, "LOR-10", 5, 8)

	// Centro: IBU 6 + 3 = 9 <= 10; con ventas.
	a := w.batch(t, ibu, centro, 10, nil)
	w.batch(t, ibu, centro, 3, nil)
	_, _, err := w.engine.RecordSale(ctx, a.ID, 4, "V-1", "")
	require.NoError(t, err)

	// Centro: LOR 20, por encima del reorden; no aparece.
	w.batch(t, lor, centro, 20, nil)
	// Norte: LOR agotado, sin ventas.
	w.batch(t, lor, norte, 0, nil)

	rows, err := w.projector.Replenishment(ctx, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 1, first.Priority)
	assert.Equal(t, ibu.ID, first.ProductID)
	assert.Equal(t, "Centro", first.ShopName)
	assert.Equal(t, 9, first.CurrentStock)
	assert.Equal(t, 15, first.IdealStock)
	assert.Equal(t, 6, first.SuggestedOrderQty)
	assert.Equal(t, 4, first.UnitsSoldLast90Days)
	assert.True(t, first.EstimatedOrderValue.Equal(decimal.NewFromInt(12)), "6 × 2 = 12, got %s", first.EstimatedOrderValue)

	second := rows[1]
	assert.Equal(t, 2, second.Priority)
	assert.Equal(t, lor.ID, second.ProductID)
	assert.Equal(t, norte.ID, second.ShopID)
	assert.Equal(t, 12, second.SuggestedOrderQty)

	onlyNorte, err := w.projector.Replenishment(ctx, norte.ID)
	require.NoError(t, err)
	require.Len(t, onlyNorte, 1)
	assert.Equal(t, lor.ID, onlyNorte[0].ProductID)
}
