package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// MovementReader consultas sobre el historial de movimientos. No existe Update ni Delete.
type MovementReader interface {
	// ListByBatch devuelve los movimientos del lote en orden cronológico ascendente.
	ListByBatch(ctx context.Context, batchID string) ([]*entity.Movement, error)
	// ListAll devuelve todos los movimientos, el más reciente primero.
	ListAll(ctx context.Context) ([]*entity.Movement, error)
	// ListByType devuelve los movimientos de un tipo en orden ascendente.
	ListByType(ctx context.Context, movementType string) ([]*entity.Movement, error)
}

// MovementWriter vista transaccional del historial (solo append).
type MovementWriter interface {
	MovementReader
	// Append asigna ID y CreatedAt y guarda el movimiento de forma inmutable.
	Append(ctx context.Context, movement *entity.Movement) (*entity.Movement, error)
}
