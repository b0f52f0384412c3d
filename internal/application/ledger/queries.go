package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// BatchFilter filtro para ListBatches; ShopID tiene prioridad sobre ProductID.
type BatchFilter struct {
	ShopID    string
	ProductID string
}

// Reconciliation compara el stock guardado con el que resulta de reproducir el historial.
type Reconciliation struct {
	BatchID    string `json:"batch_id"`
	Stored     int    `json:"stored_stock"`
	Replayed   int    `json:"replayed_stock"`
	Movements  int    `json:"movements"`
	Consistent bool   `json:"consistent"`
	Detail     string `json:"detail,omitempty"`
}

// GetBatch devuelve el lote o ErrNotFound.
func (e *Engine) GetBatch(ctx context.Context, id string) (*entity.Batch, error) {
	batch, err := e.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return batch, nil
}

// ListBatches lista lotes, opcionalmente por farmacia o por producto.
func (e *Engine) ListBatches(ctx context.Context, f BatchFilter) ([]*entity.Batch, error) {
	var (
		list []*entity.Batch
		err  error
	)
	switch {
	case f.ShopID != "":
		list, err = e.batchRepo.ListByShop(ctx, f.ShopID)
	case f.ProductID != "":
		list, err = e.batchRepo.ListByProduct(ctx, f.ProductID)
	default:
		list, err = e.batchRepo.List(ctx)
	}
	if err != nil {
		return nil, classify(err)
	}
	return list, nil
}

// ListMovements con batchID devuelve el historial del lote (ascendente); sin él, todo (descendente).
func (e *Engine) ListMovements(ctx context.Context, batchID string) ([]*entity.Movement, error) {
	var (
		list []*entity.Movement
		err  error
	)
	if batchID != "" {
		list, err = e.movRepo.ListByBatch(ctx, batchID)
	} else {
		list, err = e.movRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, classify(err)
	}
	return list, nil
}

// VerifyBatch bloquea el lote y reproduce su historial para comprobar que coincide con el stock.
func (e *Engine) VerifyBatch(ctx context.Context, batchID string) (*Reconciliation, error) {
	var rec *Reconciliation
	err := e.runWithRetry(ctx, "verify_batch", func(batchRepo repository.BatchWriter, movRepo repository.MovementWriter) error {
		batch, err := lockBatch(ctx, batchRepo, batchID)
		if err != nil {
			return err
		}
		movs, err := movRepo.ListByBatch(ctx, batchID)
		if err != nil {
			return err
		}
		rec = &Reconciliation{BatchID: batchID, Stored: batch.CurrentStock, Movements: len(movs)}
		replayed, replayErr := inventory.Replay(movs)
		rec.Replayed = replayed
		rec.Consistent = replayErr == nil && replayed == batch.CurrentStock
		if replayErr != nil {
			rec.Detail = replayErr.Error()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !rec.Consistent {
		e.log.Error().
			Str("batch", batchID).
			Int("stored", rec.Stored).
			Int("replayed", rec.Replayed).
			Msg("stock del lote no coincide con su historial")
	}
	return rec, nil
}
