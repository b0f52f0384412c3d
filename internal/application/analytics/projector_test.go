package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/application/analytics"
	"github.com/jhoicas/Farmacia-api/internal/application/ledger"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

type world struct {
	store     *memory.Store
	engine    *ledger.Engine
	projector *analytics.Projector
}

func newWorld(t *testing.T) *world {
	t.Helper()
	store := memory.NewStore()
	engine := ledger.NewEngine(store, store.Batches(), store.Movements(), store.Products(), store.Shops(), nil, ledger.DefaultConfig(), logger.Nop())
	return &world{store: store, engine: engine, projector: analytics.NewProjector(store)}
}

func (w *world) product(t *testing.T, sku string, price int64, reorder int) *entity.Product {
	t.Helper()
	p := &entity.Product{Name: "Producto " + sku, SKU: sku, Category: "General", UnitPrice: decimal.NewFromInt(price), ReorderPoint: reorder}
	require.NoError(t, w.store.Products().Create(context.Background(), p))
	return p
}

func (w *world) shop(t *testing.T, name, status string) *entity.Shop {
	t.Helper()
	s := &entity.Shop{Name: name, Address: "Dirección " + name, Status: status}
	require.NoError(t, w.store.Shops().Create(context.Background(), s))
	return s
}

func (w *world) batch(t *testing.T, p *entity.Product, s *entity.Shop, qty int, expiry *time.Time) *entity.Batch {
	t.Helper()
	b, _, err := w.engine.ReceiveBatch(context.Background(), ledger.ReceiveBatchInput{
		ProductID: p.ID, ShopID: s.ID, BatchNumber: "L-" + p.SKU, Quantity: qty, ExpiryDate: expiry,
	})
	require.NoError(t, err)
	return b
}

func days(n int) *time.Time {
	t := time.Now().AddDate(0, 0, n)
	return &t
}

func TestLowStockYOutOfStock(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	p := w.product(t, "PARA-500", 3, 10)
	s := w.shop(t, "Centro", entity.ShopStatusOnline)

	low := w.batch(t, p, s, 4, nil)
	edge := w.batch(t, p, s, 10, nil)
	w.batch(t, p, s, 11, nil)
	empty := w.batch(t, p, s, 0, nil)

	rows, err := w.projector.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, low.ID, rows[0].ID)
	assert.Equal(t, edge.ID, rows[1].ID)
	require.NotNil(t, rows[0].Product)
	assert.Equal(t, p.Name, rows[0].Product.Name)
	require.NotNil(t, rows[0].Shop)
	assert.Equal(t, s.Name, rows[0].Shop.Name)

	out, err := w.projector.OutOfStock(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, empty.ID, out[0].ID)

	// Vender todo mueve el lote de bajo a agotado.
	_, _, err = w.engine.RecordSale(ctx, low.ID, 4, "S-1", "")
	require.NoError(t, err)
	rows, _ = w.projector.LowStock(ctx)
	assert.Len(t, rows, 1)
	out, _ = w.projector.OutOfStock(ctx)
	assert.Len(t, out, 2)
}

func TestExpiring_Ventana(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	p := w.product(t, "INS-100", 50, 5)
	s := w.shop(t, "Centro", entity.ShopStatusOnline)

	expired := w.batch(t, p, s, 5, days(-1))
	soon := w.batch(t, p, s, 5, days(10))
	w.batch(t, p, s, 5, days(40))
	w.batch(t, p, s, 5, nil)

	rows, err := w.projector.Expiring(ctx, 30)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, expired.ID, rows[0].ID)
	assert.Equal(t, soon.ID, rows[1].ID)

	rows, err = w.projector.Expiring(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, expired.ID, rows[0].ID)

	_, err = w.projector.Expiring(ctx, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTopSelling(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	s := w.shop(t, "Centro", entity.ShopStatusOnline)
	a := w.product(t, "A", 1, 0)
	b := w.product(t, "B", 1, 0)
	c := w.product(t, "C", 1, 0)

	ba := w.batch(t, a, s, 100, nil)
	bb := w.batch(t, b, s, 100, nil)
	bb2 := w.batch(t, b, s, 100, nil)
	bc := w.batch(t, c, s, 100, nil)

	sell := func(id string, q int) {
		_, _, err := w.engine.RecordSale(ctx, id, q, "", "")
		require.NoError(t, err)
	}
	sell(ba.ID, 5)
	sell(bb.ID, 3)
	sell(bb2.ID, 4)
	// Salidas que no son venta no cuentan.
	_, _, err := w.engine.ApplyMovement(ctx, ledger.MovementInput{BatchID: bc.ID, Type: entity.MovementTypeOut, Quantity: 50, Reason: "Merma"})
	require.NoError(t, err)

	top, err := w.projector.TopSelling(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, b.ID, top[0].ProductID)
	assert.Equal(t, 7, top[0].TotalSold)
	assert.Equal(t, "B", top[0].SKU)
	assert.Equal(t, a.ID, top[1].ProductID)
	assert.Equal(t, 5, top[1].TotalSold)

	top, err = w.projector.TopSelling(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestShopSummary_IncluyeFarmaciasSinLotes(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	p := w.product(t, "X", 1, 5)
	norte := w.shop(t, "Norte", entity.ShopStatusOffline)
	centro := w.shop(t, "Centro", entity.ShopStatusOnline)

	w.batch(t, p, centro, 0, nil)
	w.batch(t, p, centro, 3, nil)
	w.batch(t, p, centro, 30, nil)

	rows, err := w.projector.ShopSummary(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, centro.ID, rows[0].ShopID)
	assert.Equal(t, 3, rows[0].TotalBatches)
	assert.Equal(t, 1, rows[0].LowStockCount)
	assert.Equal(t, 1, rows[0].OutOfStock)
	assert.Equal(t, norte.ID, rows[1].ShopID)
	assert.Zero(t, rows[1].TotalBatches)
}

func TestDashboardKPIs(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	p := w.product(t, "K", 0, 5)
	q := w.product(t, "Q", 10, 5)
	cheap := &entity.Product{Name: "Gasas", SKU: "GAS", Category: "Curación", UnitPrice: decimal.RequireFromString("2.50"), ReorderPoint: 1}
	require.NoError(t, w.store.Products().Create(ctx, cheap))

	online := w.shop(t, "Centro", entity.ShopStatusOnline)
	w.shop(t, "Norte", entity.ShopStatusAway)

	sold := w.batch(t, q, online, 10, nil) // 10 × 10
	w.batch(t, cheap, online, 4, nil)      // 4 × 2.50
	w.batch(t, p, online, 0, nil)
	_, _, err := w.engine.RecordSale(ctx, sold.ID, 6, "", "") // queda 4: bajo
	require.NoError(t, err)

	kpis, err := w.projector.DashboardKPIs(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("50").Equal(kpis.TotalStockValue), kpis.TotalStockValue.String())
	assert.Equal(t, 1, kpis.LowStockItems)
	assert.Equal(t, 1, kpis.OutOfStockItems)
	assert.Equal(t, 1, kpis.FastMovingItems)
	assert.Equal(t, 1, kpis.OnlineShops)
	assert.Equal(t, 2, kpis.TotalShops)
}
