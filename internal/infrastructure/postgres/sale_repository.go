package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var (
	_ repository.SaleRepository = (*SaleRepo)(nil)
	_ repository.SaleWriter     = (*SaleRepo)(nil)
)

const (
	saleColumns     = `id, shop_id, total_amount, payment_mode, customer_name, user_id, created_at`
	saleItemColumns = `id, sale_id, batch_id, quantity, unit_price, total_price, movement_id, created_at`
)

// SaleRepo ventas y líneas de venta. total_amount y los precios son NUMERIC leídos como
// decimal.Decimal por el codec del pool. GetForUpdate y AppendItem van dentro de la tx de TxRunner.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO sales (` + saleColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, s.ID, s.ShopID, s.TotalAmount, s.PaymentMode, s.CustomerName, s.UserID, s.CreatedAt)
	return mapError("insert sale", err)
}

// GetByID obtiene la cabecera; (nil, nil) si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate obtiene la cabecera y bloquea la fila (el total cambia con cada línea).
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) get(ctx context.Context, query, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get sale", err)
	}
	return s, nil
}

// List ventas filtradas, la más reciente primero.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var (
		where []string
		args  []any
	)
	if f.ShopID != "" {
		args = append(args, f.ShopID)
		where = append(where, fmt.Sprintf("shop_id = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	query := `SELECT ` + saleColumns + ` FROM sales`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list sales", err)
	}
	defer rows.Close()
	out := make([]*entity.Sale, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, mapError("scan sale", err)
		}
		out = append(out, s)
	}
	return out, mapError("list sales", rows.Err())
}

// ListItems líneas de la venta en orden de registro.
func (r *SaleRepo) ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+saleItemColumns+` FROM sale_items WHERE sale_id = $1 ORDER BY seq`, saleID)
	if err != nil {
		return nil, mapError("list sale items", err)
	}
	defer rows.Close()
	out := make([]*entity.SaleItem, 0)
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.BatchID, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.MovementID, &it.CreatedAt); err != nil {
			return nil, mapError("scan sale item", err)
		}
		out = append(out, &it)
	}
	return out, mapError("list sale items", rows.Err())
}

// AppendItem inserta la línea y suma su total a la cabecera en la misma tx.
func (r *SaleRepo) AppendItem(ctx context.Context, item *entity.SaleItem) (*entity.SaleItem, *entity.Sale, error) {
	out := *item
	out.ID = uuid.New().String()
	query := `
		INSERT INTO sale_items (id, sale_id, batch_id, quantity, unit_price, total_price, movement_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, clock_timestamp())
		RETURNING created_at`
	err := r.q.QueryRow(ctx, query,
		out.ID, out.SaleID, out.BatchID, out.Quantity, out.UnitPrice, out.TotalPrice, out.MovementID,
	).Scan(&out.CreatedAt)
	if err != nil {
		return nil, nil, mapError("insert sale item", err)
	}

	update := `UPDATE sales SET total_amount = total_amount + $2 WHERE id = $1 RETURNING ` + saleColumns
	sale, err := scanSale(r.q.QueryRow(ctx, update, out.SaleID, out.TotalPrice))
	if err != nil {
		return nil, nil, mapError("update sale total", err)
	}
	return &out, sale, nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	if err := row.Scan(&s.ID, &s.ShopID, &s.TotalAmount, &s.PaymentMode, &s.CustomerName, &s.UserID, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
