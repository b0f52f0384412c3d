package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// ReceiveBatchInput recepción de un lote nuevo en una farmacia.
type ReceiveBatchInput struct {
	ProductID    string
	ShopID       string
	BatchNumber  string
	Quantity     int
	ExpiryDate   *time.Time
	ReceivedDate *time.Time // nil = ahora
	SupplierID   string
	UserID       string
}

// ReceiveBatch crea el lote con stock 0 y, si Quantity > 0, registra la entrada inicial en la
// misma transacción; así el fold del historial desde 0 reproduce el stock. Publica inventory_updated.
func (e *Engine) ReceiveBatch(ctx context.Context, in ReceiveBatchInput) (*entity.Batch, *entity.Movement, error) {
	if in.ProductID == "" || in.ShopID == "" || in.BatchNumber == "" {
		return nil, nil, fmt.Errorf("%w: product_id, shop_id y batch_number son requeridos", domain.ErrInvalidInput)
	}
	if in.Quantity < 0 || in.Quantity > inventory.MaxQuantity {
		return nil, nil, fmt.Errorf("%w: cantidad recibida %d fuera de rango [0, %d]", domain.ErrInvalidInput, in.Quantity, inventory.MaxQuantity)
	}

	// Validar que producto y farmacia existan
	product, err := e.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, nil, classify(err)
	}
	if product == nil {
		return nil, nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	shop, err := e.shopRepo.GetByID(ctx, in.ShopID)
	if err != nil {
		return nil, nil, classify(err)
	}
	if shop == nil {
		return nil, nil, fmt.Errorf("%w: farmacia %s", domain.ErrNotFound, in.ShopID)
	}

	now := e.now()
	received := now
	if in.ReceivedDate != nil {
		received = *in.ReceivedDate
	}

	var (
		batch *entity.Batch
		mov   *entity.Movement
	)
	err = e.runWithRetry(ctx, "receive_batch", func(batchRepo repository.BatchWriter, movRepo repository.MovementWriter) error {
		created := &entity.Batch{
			ID:           uuid.New().String(),
			ProductID:    in.ProductID,
			ShopID:       in.ShopID,
			BatchNumber:  in.BatchNumber,
			CurrentStock: 0,
			ExpiryDate:   in.ExpiryDate,
			ReceivedDate: received,
			SupplierID:   entity.StringPtr(in.SupplierID),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := batchRepo.Create(ctx, created); err != nil {
			return err
		}
		batch, mov = created, nil
		if in.Quantity == 0 {
			return nil
		}
		var err error
		batch, mov, err = applyLocked(ctx, batchRepo, movRepo, created, MovementInput{
			BatchID:  created.ID,
			Type:     entity.MovementTypeIn,
			Quantity: in.Quantity,
			Reason:   entity.ReasonInitialReceipt,
			UserID:   in.UserID,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	e.log.Info().
		Str("batch", batch.ID).
		Str("product", batch.ProductID).
		Str("shop", batch.ShopID).
		Int("stock", batch.CurrentStock).
		Msg("lote recibido")
	e.publish(entity.Event{Type: entity.EventInventoryUpdated, Data: entity.StockChange{Batch: batch, Movement: mov}})
	return batch, mov, nil
}
