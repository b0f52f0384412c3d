package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// SaleItemInput línea de venta a registrar sobre una venta existente.
type SaleItemInput struct {
	SaleID       string
	BatchID      string
	QuantitySold int
	UnitPrice    *decimal.Decimal // nil = precio de catálogo del producto
	UserID       string
}

// SaleItemResult la línea guardada, la venta con su nuevo total y el cambio de stock.
type SaleItemResult struct {
	Sale     *entity.Sale     `json:"sale"`
	Item     *entity.SaleItem `json:"item"`
	Batch    *entity.Batch    `json:"batch"`
	Movement *entity.Movement `json:"movement"`
}

// AddSaleItem bloquea la venta y el lote, descuenta las unidades (salida con motivo "Sale" y
// referencia = ID de la venta), guarda la línea y actualiza el total en una sola transacción.
// Si cualquier paso falla no queda ni la línea ni la salida. Publica sale_completed tras el commit.
func (e *Engine) AddSaleItem(ctx context.Context, in SaleItemInput) (*SaleItemResult, error) {
	runner, ok := e.txRunner.(SaleTxRunner)
	if !ok {
		return nil, errors.New("ledger: el almacén no soporta ventas")
	}
	if in.SaleID == "" || in.BatchID == "" {
		return nil, fmt.Errorf("%w: sale_id y batch_id requeridos", domain.ErrInvalidInput)
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: el precio unitario no puede ser negativo", domain.ErrInvalidInput)
	}
	mov := MovementInput{
		BatchID:   in.BatchID,
		Type:      entity.MovementTypeOut,
		Quantity:  in.QuantitySold,
		Reason:    entity.ReasonSale,
		Reference: in.SaleID,
		UserID:    in.UserID,
	}
	if err := validateMovement(mov); err != nil {
		return nil, err
	}

	var res *SaleItemResult
	err := e.retry(ctx, "add_sale_item", func() error {
		return runner.RunSale(ctx, func(batchRepo repository.BatchWriter, movRepo repository.MovementWriter, saleRepo repository.SaleWriter) error {
			sale, err := saleRepo.GetForUpdate(ctx, in.SaleID)
			if err != nil {
				return err
			}
			if sale == nil {
				return fmt.Errorf("%w: venta %s", domain.ErrNotFound, in.SaleID)
			}
			locked, err := lockBatch(ctx, batchRepo, in.BatchID)
			if err != nil {
				return err
			}
			if locked.ShopID != sale.ShopID {
				return fmt.Errorf("%w: el lote %s no pertenece a la farmacia de la venta", domain.ErrInvalidInput, locked.ID)
			}
			price, err := e.unitPrice(ctx, locked, in.UnitPrice)
			if err != nil {
				return err
			}

			batch, movement, err := applyLocked(ctx, batchRepo, movRepo, locked, mov)
			if err != nil {
				return err
			}
			item, updated, err := saleRepo.AppendItem(ctx, &entity.SaleItem{
				SaleID:     sale.ID,
				BatchID:    batch.ID,
				Quantity:   in.QuantitySold,
				UnitPrice:  price,
				TotalPrice: price.Mul(decimal.NewFromInt(int64(in.QuantitySold))).Round(2),
				MovementID: movement.ID,
			})
			if err != nil {
				return err
			}
			res = &SaleItemResult{Sale: updated, Item: item, Batch: batch, Movement: movement}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("sale", res.Sale.ID).
		Str("batch", res.Batch.ID).
		Int("quantity", res.Item.Quantity).
		Str("total", res.Sale.TotalAmount.StringFixed(2)).
		Int("stock", res.Batch.CurrentStock).
		Msg("línea de venta registrada")
	e.publish(entity.Event{Type: entity.EventSaleCompleted, Data: entity.StockChange{Batch: res.Batch, Movement: res.Movement}})
	return res, nil
}

// unitPrice usa el precio indicado o, si no viene, el de catálogo del producto del lote.
func (e *Engine) unitPrice(ctx context.Context, batch *entity.Batch, override *decimal.Decimal) (decimal.Decimal, error) {
	if override != nil {
		return override.Round(2), nil
	}
	product, err := e.productRepo.GetByID(ctx, batch.ProductID)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, fmt.Errorf("%w: producto %s", domain.ErrNotFound, batch.ProductID)
	}
	return product.UnitPrice.Round(2), nil
}
