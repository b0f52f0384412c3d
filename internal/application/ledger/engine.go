// Package ledger implementa el libro de stock por lote: la única ruta que calcula el nuevo
// stock, lo persiste y agrega el movimiento correspondiente en la misma transacción.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// Config parámetros del motor.
type Config struct {
	MaxRetries   int           // reintentos ante ErrConcurrencyConflict (además del primer intento)
	RetryBackoff time.Duration // espera base entre intentos; crece linealmente
}

// DefaultConfig valores usados cuando no se configura nada.
func DefaultConfig() Config {
	return Config{MaxRetries: 3, RetryBackoff: 10 * time.Millisecond}
}

// Engine orquesta los movimientos de stock (IN, OUT, ADJUSTMENT, TRANSFER).
// Serializa por lote con el bloqueo de fila que entrega TxRunner y publica un evento
// solo después del commit.
type Engine struct {
	txRunner    TxRunner
	batchRepo   repository.BatchReader
	movRepo     repository.MovementReader
	productRepo repository.ProductReader
	shopRepo    repository.ShopReader
	publisher   Publisher
	cfg         Config
	log         *logger.Logger
	now         func() time.Time
}

// NewEngine construye el motor del libro.
func NewEngine(
	txRunner TxRunner,
	batchRepo repository.BatchReader,
	movRepo repository.MovementReader,
	productRepo repository.ProductReader,
	shopRepo repository.ShopReader,
	publisher Publisher,
	cfg Config,
	log *logger.Logger,
) *Engine {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		txRunner:    txRunner,
		batchRepo:   batchRepo,
		movRepo:     movRepo,
		productRepo: productRepo,
		shopRepo:    shopRepo,
		publisher:   publisher,
		cfg:         cfg,
		log:         log.Named("ledger"),
		now:         time.Now,
	}
}

// MovementInput entrada para aplicar un movimiento sobre un lote.
// Quantity es magnitud positiva para in/out y delta con signo para adjustment/transfer.
type MovementInput struct {
	BatchID   string
	Type      string
	Quantity  int
	Reason    string
	Reference string
	UserID    string
}

// ApplyMovement valida el movimiento, bloquea el lote, calcula el nuevo stock, lo persiste
// y agrega el movimiento en una sola transacción. Publica stock_movement_created tras el commit.
// Un tramo transfer suelto se rechaza: los traslados solo entran por Transfer, con sus dos tramos.
func (e *Engine) ApplyMovement(ctx context.Context, in MovementInput) (*entity.Batch, *entity.Movement, error) {
	if in.Type == entity.MovementTypeTransfer {
		return nil, nil, fmt.Errorf("%w: los traslados se registran con origen y destino", domain.ErrInvalidInput)
	}
	return e.apply(ctx, in, entity.EventStockMovementCreated)
}

// RecordSale es exactamente ApplyMovement(out, reason="Sale", reference=saleReference);
// publica sale_completed.
func (e *Engine) RecordSale(ctx context.Context, batchID string, quantitySold int, saleReference, userID string) (*entity.Batch, *entity.Movement, error) {
	return e.apply(ctx, MovementInput{
		BatchID:   batchID,
		Type:      entity.MovementTypeOut,
		Quantity:  quantitySold,
		Reason:    entity.ReasonSale,
		Reference: saleReference,
		UserID:    userID,
	}, entity.EventSaleCompleted)
}

// validateMovement comprueba lo que no depende del estado del lote.
func validateMovement(in MovementInput) error {
	if in.BatchID == "" {
		return fmt.Errorf("%w: batch_id requerido", domain.ErrInvalidInput)
	}
	return inventory.ValidateQuantity(in.Type, in.Quantity)
}

func (e *Engine) apply(ctx context.Context, in MovementInput, eventType string) (*entity.Batch, *entity.Movement, error) {
	if err := validateMovement(in); err != nil {
		return nil, nil, err
	}

	var (
		batch *entity.Batch
		mov   *entity.Movement
	)
	err := e.runWithRetry(ctx, "apply_movement", func(batchRepo repository.BatchWriter, movRepo repository.MovementWriter) error {
		locked, err := lockBatch(ctx, batchRepo, in.BatchID)
		if err != nil {
			return err
		}
		batch, mov, err = applyLocked(ctx, batchRepo, movRepo, locked, in)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	e.log.Info().
		Str("batch", batch.ID).
		Str("type", mov.Type).
		Int("quantity", mov.Quantity).
		Int("stock", batch.CurrentStock).
		Msg("movimiento registrado")
	e.publish(entity.Event{Type: eventType, Data: entity.StockChange{Batch: batch, Movement: mov}})
	return batch, mov, nil
}

// AdjustToTarget es el ajuste manual: el llamador indica el stock absoluto deseado y el motor
// calcula delta = objetivo - actual con el lote bloqueado. Si el delta es cero no hay movimiento,
// ni evento, y se devuelve el lote sin cambios.
func (e *Engine) AdjustToTarget(ctx context.Context, batchID string, targetStock int, reason, userID string) (*entity.Batch, *entity.Movement, error) {
	if batchID == "" {
		return nil, nil, fmt.Errorf("%w: batch_id requerido", domain.ErrInvalidInput)
	}
	if targetStock < 0 || targetStock > inventory.MaxQuantity {
		return nil, nil, fmt.Errorf("%w: stock objetivo %d fuera de rango [0, %d]", domain.ErrInvalidInput, targetStock, inventory.MaxQuantity)
	}
	if reason == "" {
		reason = entity.ReasonManualAdjust
	}

	var (
		batch *entity.Batch
		mov   *entity.Movement
	)
	err := e.runWithRetry(ctx, "adjust_to_target", func(batchRepo repository.BatchWriter, movRepo repository.MovementWriter) error {
		locked, err := lockBatch(ctx, batchRepo, batchID)
		if err != nil {
			return err
		}
		delta := targetStock - locked.CurrentStock
		if delta == 0 {
			batch, mov = locked, nil
			return nil
		}
		batch, mov, err = applyLocked(ctx, batchRepo, movRepo, locked, MovementInput{
			BatchID:  batchID,
			Type:     entity.MovementTypeAdjustment,
			Quantity: delta,
			Reason:   reason,
			UserID:   userID,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if mov == nil {
		return batch, nil, nil
	}

	e.log.Info().
		Str("batch", batch.ID).
		Int("delta", mov.Quantity).
		Int("stock", batch.CurrentStock).
		Msg("ajuste manual registrado")
	e.publish(entity.Event{Type: entity.EventStockUpdated, Data: entity.StockChange{Batch: batch, Movement: mov}})
	return batch, mov, nil
}

// lockBatch bloquea el lote (SELECT FOR UPDATE) y devuelve ErrNotFound si no existe.
func lockBatch(ctx context.Context, batchRepo repository.BatchWriter, batchID string) (*entity.Batch, error) {
	batch, err := batchRepo.GetForUpdate(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, batchID)
	}
	return batch, nil
}

// applyLocked es el único punto que calcula el nuevo stock y agrega el movimiento.
// batch debe estar bloqueado por la transacción en curso.
func applyLocked(
	ctx context.Context,
	batchRepo repository.BatchWriter,
	movRepo repository.MovementWriter,
	batch *entity.Batch,
	in MovementInput,
) (*entity.Batch, *entity.Movement, error) {
	next, err := inventory.NextStock(batch.CurrentStock, in.Type, in.Quantity)
	if err != nil {
		return nil, nil, fmt.Errorf("lote %s: %w", batch.ID, err)
	}
	updated, err := batchRepo.SetStock(ctx, batch.ID, next)
	if err != nil {
		return nil, nil, err
	}
	mov, err := movRepo.Append(ctx, &entity.Movement{
		BatchID:   batch.ID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Reason:    entity.StringPtr(in.Reason),
		Reference: entity.StringPtr(in.Reference),
		UserID:    entity.StringPtr(in.UserID),
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, mov, nil
}

// runWithRetry ejecuta fn en una transacción. Solo ErrConcurrencyConflict se reintenta,
// rehaciendo la lectura desde cero; los errores terminales y de persistencia se devuelven ya.
func (e *Engine) runWithRetry(ctx context.Context, op string, fn func(repository.BatchWriter, repository.MovementWriter) error) error {
	return e.retry(ctx, op, func() error { return e.txRunner.Run(ctx, fn) })
}

// retry repite run mientras devuelva ErrConcurrencyConflict y queden intentos.
func (e *Engine) retry(ctx context.Context, op string, run func() error) error {
	attempts := e.cfg.MaxRetries + 1
	for attempt := 1; ; attempt++ {
		err := classify(run())
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			if errors.Is(err, domain.ErrPersistence) {
				e.log.Error().Err(err).Str("op", op).Msg("fallo de persistencia")
			}
			return err
		}
		if attempt >= attempts {
			e.log.Warn().Err(err).Str("op", op).Int("attempts", attempt).Msg("reintentos agotados")
			return err
		}
		e.log.Debug().Str("op", op).Int("attempt", attempt).Msg("conflicto de concurrencia, reintentando")
		if wait := e.cfg.RetryBackoff * time.Duration(attempt); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
}

// classify deja pasar los errores de dominio y la cancelación; todo lo demás es ErrPersistence.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case domain.IsTerminal(err),
		errors.Is(err, domain.ErrConcurrencyConflict),
		errors.Is(err, domain.ErrPersistence):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
}

// publish entrega el evento sin afectar la escritura ya confirmada.
func (e *Engine) publish(ev entity.Event) {
	if e.publisher == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("event", ev.Type).Interface("panic", r).Msg("publicación de evento fallida")
		}
	}()
	e.publisher.Publish(ev)
}
