package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.MovementWriter = (*MovementRepo)(nil)

const movementColumns = `id, batch_id, movement_type, quantity, reason, reference, user_id, created_at`

// MovementRepo historial de movimientos (solo INSERT y SELECT). seq desempata created_at.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append inserta el movimiento; el ID se genera aquí y created_at lo fija la base.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) (*entity.Movement, error) {
	out := *m
	out.ID = uuid.New().String()
	query := `
		INSERT INTO stock_movements (id, batch_id, movement_type, quantity, reason, reference, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, clock_timestamp())
		RETURNING created_at`
	err := r.q.QueryRow(ctx, query,
		out.ID, out.BatchID, out.Type, out.Quantity, out.Reason, out.Reference, out.UserID,
	).Scan(&out.CreatedAt)
	if err != nil {
		return nil, mapError("insert movement", err)
	}
	return &out, nil
}

// ListByBatch historial del lote en orden de aplicación.
func (r *MovementRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.Movement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE batch_id = $1 ORDER BY created_at, seq`, batchID)
}

// ListAll todos los movimientos, el más reciente primero.
func (r *MovementRepo) ListAll(ctx context.Context) ([]*entity.Movement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements ORDER BY created_at DESC, seq DESC`)
}

// ListByType movimientos de un tipo en orden ascendente.
func (r *MovementRepo) ListByType(ctx context.Context, movementType string) ([]*entity.Movement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE movement_type = $1 ORDER BY created_at, seq`, movementType)
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list movements", err)
	}
	defer rows.Close()
	out := make([]*entity.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, mapError("scan movement", err)
		}
		out = append(out, m)
	}
	return out, mapError("list movements", rows.Err())
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	if err := row.Scan(&m.ID, &m.BatchID, &m.Type, &m.Quantity, &m.Reason, &m.Reference, &m.UserID, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}
