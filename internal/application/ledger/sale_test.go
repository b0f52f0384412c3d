package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/application/ledger"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

func (f *fixture) openSale(t *testing.T, shopID string) *entity.Sale {
	t.Helper()
	sale := &entity.Sale{ShopID: shopID, PaymentMode: entity.PaymentModeCash}
	require.NoError(t, f.store.Sales().Create(context.Background(), sale))
	return sale
}

func TestAddSaleItem_GuardaLineaYDescuentaLote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	batch := f.receive(t, 50)
	sale := f.openSale(t, f.shop.ID)

	res, err := f.engine.AddSaleItem(ctx, ledger.SaleItemInput{SaleID: sale.ID, BatchID: batch.ID, QuantitySold: 5, UserID: "u-cajero"})
	require.NoError(t, err)
	assert.Equal(t, 45, res.Batch.CurrentStock)
	assert.Equal(t, entity.MovementTypeOut, res.Movement.Type)
	assert.Equal(t, entity.ReasonSale, *res.Movement.Reason)
	assert.Equal(t, sale.ID, *res.Movement.Reference)
	assert.Equal(t, res.Movement.ID, res.Item.MovementID)
	assert.True(t, res.Item.UnitPrice.Equal(decimal.NewFromInt(12)), "precio de catálogo")
	assert.True(t, res.Item.TotalPrice.Equal(decimal.NewFromInt(60)))
	assert.True(t, res.Sale.TotalAmount.Equal(decimal.NewFromInt(60)))

	price := decimal.RequireFromString("9.999")
	res, err = f.engine.AddSaleItem(ctx, ledger.SaleItemInput{SaleID: sale.ID, BatchID: batch.ID, QuantitySold: 2, UnitPrice: &price})
	require.NoError(t, err)
	assert.True(t, res.Item.UnitPrice.Equal(decimal.RequireFromString("10")), "el precio se redondea a 2 decimales")
	assert.True(t, res.Sale.TotalAmount.Equal(decimal.NewFromInt(80)))

	items, err := f.store.Sales().ListItems(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, []string{entity.EventInventoryUpdated, entity.EventSaleCompleted, entity.EventSaleCompleted}, f.events.types())
	f.assertFold(t, batch.ID)
}

func TestAddSaleItem_Rechazos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	batch := f.receive(t, 3)
	sale := f.openSale(t, f.shop.ID)

	other := &entity.Shop{Name: "Farmacia Norte", Address: "Av 3", Status: entity.ShopStatusOnline}
	require.NoError(t, f.store.Shops().Create(ctx, other))
	foreign := f.openSale(t, other.ID)
	negative := decimal.NewFromInt(-1)

	cases := []struct {
		name string
		in   ledger.SaleItemInput
		want error
	}{
		{"venta inexistente", ledger.SaleItemInput{SaleID: "ghost", BatchID: batch.ID, QuantitySold: 1}, domain.ErrNotFound},
		{"lote inexistente", ledger.SaleItemInput{SaleID: sale.ID, BatchID: "ghost", QuantitySold: 1}, domain.ErrNotFound},
		{"lote de otra farmacia", ledger.SaleItemInput{SaleID: foreign.ID, BatchID: batch.ID, QuantitySold: 1}, domain.ErrInvalidInput},
		{"cantidad cero", ledger.SaleItemInput{SaleID: sale.ID, BatchID: batch.ID}, domain.ErrInvalidInput},
		{"precio negativo", ledger.SaleItemInput{SaleID: sale.ID, BatchID: batch.ID, QuantitySold: 1, UnitPrice: &negative}, domain.ErrInvalidInput},
		{"sobreventa", ledger.SaleItemInput{SaleID: sale.ID, BatchID: batch.ID, QuantitySold: 4}, domain.ErrInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.AddSaleItem(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	got, err := f.store.Sales().GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.IsZero())
	items, err := f.store.Sales().ListItems(ctx, sale.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	movs, err := f.engine.ListMovements(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 1, "ningún rechazo deja salida en el libro")
}

func TestAddSaleItem_LineasConcurrentesSumanElTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	batch := f.receive(t, 30)
	sale := f.openSale(t, f.shop.ID)

	const workers = 40
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		errs []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.AddSaleItem(ctx, ledger.SaleItemInput{SaleID: sale.ID, BatchID: batch.ID, QuantitySold: 1})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			oks++
		}()
	}
	wg.Wait()

	assert.Equal(t, 30, oks)
	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	got, err := f.store.Sales().GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(30*12)), "total %s", got.TotalAmount)
	items, err := f.store.Sales().ListItems(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, items, 30)
	f.assertFold(t, batch.ID)
}

func TestAddSaleItem_AlmacenSinVentas(t *testing.T) {
	f := newFixture(t)
	batch := f.receive(t, 5)
	engine := newEngine(f.store, &flakyRunner{inner: f.store}, f.events)

	_, err := engine.AddSaleItem(context.Background(), ledger.SaleItemInput{SaleID: "s", BatchID: batch.ID, QuantitySold: 1})
	require.Error(t, err)
	assert.Equal(t, "INTERNAL", domain.Code(err))
}
