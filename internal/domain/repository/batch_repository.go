package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// BatchReader consultas sobre lotes. GetByID devuelve (nil, nil) si el lote no existe.
// Es la única vista de lotes que reciben handlers y casos de uso.
type BatchReader interface {
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	List(ctx context.Context) ([]*entity.Batch, error)
	ListByShop(ctx context.Context, shopID string) ([]*entity.Batch, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Batch, error)
}

// BatchWriter vista transaccional de lotes. Solo la entrega TxRunner al motor del libro;
// SetStock es la única primitiva que modifica CurrentStock.
type BatchWriter interface {
	BatchReader
	// GetForUpdate lee el lote y lo bloquea hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Batch, error)
	Create(ctx context.Context, batch *entity.Batch) error
	// SetStock fija CurrentStock y avanza UpdatedAt. ErrNotFound si el lote no existe.
	SetStock(ctx context.Context, id string, newStock int) (*entity.Batch, error)
}
