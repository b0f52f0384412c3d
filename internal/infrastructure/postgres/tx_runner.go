package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Farmacia-api/internal/application/analytics"
	"github.com/jhoicas/Farmacia-api/internal/application/ledger"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var (
	_ ledger.TxRunner          = (*TxRunner)(nil)
	_ ledger.SaleTxRunner      = (*TxRunner)(nil)
	_ analytics.SnapshotRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit
// o Rollback. La serialización por lote la da el SELECT FOR UPDATE de BatchRepo.GetForUpdate.
func (r *TxRunner) Run(ctx context.Context, fn func(
	batchRepo repository.BatchWriter,
	movRepo repository.MovementWriter,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewBatchRepository(tx), NewMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// RunSale es Run con el repositorio de ventas atado a la misma tx. La venta se bloquea con
// SELECT FOR UPDATE antes que el lote, siempre en ese orden.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	batchRepo repository.BatchWriter,
	movRepo repository.MovementWriter,
	saleRepo repository.SaleWriter,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewBatchRepository(tx), NewMovementRepository(tx), NewSaleRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// Snapshot ejecuta fn en una transacción REPEATABLE READ READ ONLY: todas las lecturas ven el
// mismo estado confirmado y no toman bloqueos de fila.
func (r *TxRunner) Snapshot(ctx context.Context, fn func(
	batches repository.BatchReader,
	movements repository.MovementReader,
	products repository.ProductReader,
	shops repository.ShopReader,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return persistenceError("begin snapshot", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewBatchRepository(tx), NewMovementRepository(tx), NewProductRepository(tx), NewShopRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return persistenceError("commit snapshot", err)
	}
	return nil
}
