package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// TransferInput traslado de Quantity unidades entre dos lotes del mismo producto.
type TransferInput struct {
	FromBatchID string
	ToBatchID   string
	Quantity    int
	Reason      string
	Reference   string // vacío = se genera TRF-<uuid>
	UserID      string
}

// TransferResult los dos tramos confirmados del traslado.
type TransferResult struct {
	Reference   string             `json:"reference"`
	Source      entity.StockChange `json:"source"`
	Destination entity.StockChange `json:"destination"`
}

// Transfer resta del lote origen y suma en el destino en la misma transacción: o se confirman
// los dos tramos o ninguno. Los lotes se bloquean en orden ascendente de ID para que dos
// traslados cruzados no se bloqueen mutuamente.
func (e *Engine) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.FromBatchID == "" || in.ToBatchID == "" {
		return nil, fmt.Errorf("%w: lotes origen y destino requeridos", domain.ErrInvalidInput)
	}
	if in.FromBatchID == in.ToBatchID {
		return nil, fmt.Errorf("%w: origen y destino son el mismo lote", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 || in.Quantity > inventory.MaxQuantity {
		return nil, fmt.Errorf("%w: cantidad a trasladar %d fuera de rango [1, %d]", domain.ErrInvalidInput, in.Quantity, inventory.MaxQuantity)
	}
	if in.Reference == "" {
		in.Reference = "TRF-" + uuid.New().String()
	}
	if in.Reason == "" {
		in.Reason = entity.ReasonTransfer
	}

	var res *TransferResult
	err := e.runWithRetry(ctx, "transfer", func(batchRepo repository.BatchWriter, movRepo repository.MovementWriter) error {
		first, second := in.FromBatchID, in.ToBatchID
		if second < first {
			first, second = second, first
		}
		a, err := lockBatch(ctx, batchRepo, first)
		if err != nil {
			return err
		}
		b, err := lockBatch(ctx, batchRepo, second)
		if err != nil {
			return err
		}
		src, dst := a, b
		if src.ID != in.FromBatchID {
			src, dst = b, a
		}

		if src.ProductID != dst.ProductID {
			return fmt.Errorf("%w: los lotes pertenecen a productos distintos", domain.ErrInvalidInput)
		}
		// El piso en cero de transfer no aplica al origen: sin stock suficiente se rechaza todo.
		if src.CurrentStock < in.Quantity {
			return fmt.Errorf("%w: lote %s disponible %d, solicitado %d",
				domain.ErrInsufficientStock, src.ID, src.CurrentStock, in.Quantity)
		}

		leg := func(batch *entity.Batch, delta int) (entity.StockChange, error) {
			updated, mov, err := applyLocked(ctx, batchRepo, movRepo, batch, MovementInput{
				BatchID:   batch.ID,
				Type:      entity.MovementTypeTransfer,
				Quantity:  delta,
				Reason:    in.Reason,
				Reference: in.Reference,
				UserID:    in.UserID,
			})
			return entity.StockChange{Batch: updated, Movement: mov}, err
		}
		out, err := leg(src, -in.Quantity)
		if err != nil {
			return err
		}
		into, err := leg(dst, in.Quantity)
		if err != nil {
			return err
		}
		res = &TransferResult{Reference: in.Reference, Source: out, Destination: into}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("reference", res.Reference).
		Str("from", in.FromBatchID).
		Str("to", in.ToBatchID).
		Int("quantity", in.Quantity).
		Msg("traslado registrado")
	e.publish(entity.Event{Type: entity.EventStockUpdated, Data: res.Source})
	e.publish(entity.Event{Type: entity.EventStockUpdated, Data: res.Destination})
	return res, nil
}
