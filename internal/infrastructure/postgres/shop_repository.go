package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.ShopRepository = (*ShopRepo)(nil)

const shopColumns = `id, name, address, status, COALESCE(app_version, ''), last_seen, created_at`

// ShopRepo farmacias sobre PostgreSQL.
type ShopRepo struct {
	q Querier
}

// NewShopRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShopRepository(q Querier) *ShopRepo {
	return &ShopRepo{q: q}
}

// Create registra una farmacia.
func (r *ShopRepo) Create(ctx context.Context, s *entity.Shop) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.LastSeen.IsZero() {
		s.LastSeen = now
	}
	query := `
		INSERT INTO shops (id, name, address, status, app_version, last_seen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, s.ID, s.Name, s.Address, s.Status, s.AppVersion, s.LastSeen, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: farmacia %s", domain.ErrDuplicate, s.ID)
		}
		return fmt.Errorf("insert shop: %w", err)
	}
	return nil
}

// GetByID obtiene una farmacia; (nil, nil) si no existe.
func (r *ShopRepo) GetByID(ctx context.Context, id string) (*entity.Shop, error) {
	s, err := scanShop(r.q.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shop: %w", err)
	}
	return s, nil
}

// List farmacias ordenadas por nombre.
func (r *ShopRepo) List(ctx context.Context) ([]*entity.Shop, error) {
	rows, err := r.q.Query(ctx, `SELECT `+shopColumns+` FROM shops ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()
	out := make([]*entity.Shop, 0)
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStatus cambia el estado y last_seen; (nil, nil) si no existe.
func (r *ShopRepo) UpdateStatus(ctx context.Context, id, status string, lastSeen time.Time) (*entity.Shop, error) {
	query := `UPDATE shops SET status = $2, last_seen = $3 WHERE id = $1 RETURNING ` + shopColumns
	s, err := scanShop(r.q.QueryRow(ctx, query, id, status, lastSeen))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update shop status: %w", err)
	}
	return s, nil
}

func scanShop(row pgx.Row) (*entity.Shop, error) {
	var s entity.Shop
	if err := row.Scan(&s.ID, &s.Name, &s.Address, &s.Status, &s.AppVersion, &s.LastSeen, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
