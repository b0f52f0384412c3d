package analytics

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// SnapshotRunner ejecuta fn sobre una vista consistente de solo lectura: todo lo que fn lee
// corresponde al mismo estado confirmado (REPEATABLE READ en PostgreSQL, copia en memoria).
type SnapshotRunner interface {
	Snapshot(ctx context.Context, fn func(
		batches repository.BatchReader,
		movements repository.MovementReader,
		products repository.ProductReader,
		shops repository.ShopReader,
	) error) error
}
