package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.BatchWriter = (*BatchRepo)(nil)

const batchColumns = `id, product_id, shop_id, batch_number, current_stock, expiry_date, received_date, supplier_id, created_at, updated_at`

// BatchRepo lotes sobre PostgreSQL (usable con pool o tx). GetForUpdate y SetStock solo
// tienen sentido dentro de la tx que entrega TxRunner.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.ProductID, &b.ShopID, &b.BatchNumber, &b.CurrentStock,
		&b.ExpiryDate, &b.ReceivedDate, &b.SupplierID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByID obtiene un lote por ID; (nil, nil) si no existe.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM inventory_batches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get batch", err)
	}
	return b, nil
}

// GetForUpdate obtiene el lote y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM inventory_batches WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get batch for update", err)
	}
	return b, nil
}

// Create inserta el lote.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO inventory_batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.ProductID, b.ShopID, b.BatchNumber, b.CurrentStock,
		b.ExpiryDate, b.ReceivedDate, b.SupplierID, b.CreatedAt, b.UpdatedAt,
	)
	return mapError("insert batch", err)
}

// SetStock fija current_stock; updated_at avanza siempre aunque el reloj no lo haga.
func (r *BatchRepo) SetStock(ctx context.Context, id string, newStock int) (*entity.Batch, error) {
	query := `
		UPDATE inventory_batches
		SET current_stock = $2,
		    updated_at = GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')
		WHERE id = $1
		RETURNING ` + batchColumns
	b, err := scanBatch(r.q.QueryRow(ctx, query, id, newStock))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
		}
		return nil, mapError("set stock", err)
	}
	return b, nil
}

// List todos los lotes, el actualizado más recientemente primero.
func (r *BatchRepo) List(ctx context.Context) ([]*entity.Batch, error) {
	return r.list(ctx, `SELECT `+batchColumns+` FROM inventory_batches ORDER BY updated_at DESC, id`)
}

// ListByShop lotes de una farmacia.
func (r *BatchRepo) ListByShop(ctx context.Context, shopID string) ([]*entity.Batch, error) {
	return r.list(ctx, `SELECT `+batchColumns+` FROM inventory_batches WHERE shop_id = $1 ORDER BY updated_at DESC, id`, shopID)
}

// ListByProduct lotes de un producto.
func (r *BatchRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Batch, error) {
	return r.list(ctx, `SELECT `+batchColumns+` FROM inventory_batches WHERE product_id = $1 ORDER BY updated_at DESC, id`, productID)
}

func (r *BatchRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list batches", err)
	}
	defer rows.Close()
	out := make([]*entity.Batch, 0)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, mapError("scan batch", err)
		}
		out = append(out, b)
	}
	return out, mapError("list batches", rows.Err())
}
