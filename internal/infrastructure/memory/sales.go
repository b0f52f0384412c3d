package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// saleLockKey separa los bloqueos de venta de los de lote dentro del mismo lockArena.
func saleLockKey(id string) string { return "sale:" + id }

type saleRepo struct{ s *Store }

var _ repository.SaleRepository = (*saleRepo)(nil)

func (r *saleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return saleView{read: r.s.read}.GetByID(ctx, id)
}

func (r *saleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	return saleView{read: r.s.read}.List(ctx, f)
}

func (r *saleRepo) ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	return saleView{read: r.s.read}.ListItems(ctx, saleID)
}

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	if _, ok := r.s.st.sales[sale.ID]; ok {
		return fmt.Errorf("%w: venta %s", domain.ErrDuplicate, sale.ID)
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = r.s.tick()
	}
	cp := sale.Clone()
	cp.Items = nil
	r.s.st.sales[cp.ID] = cp
	return nil
}

type saleView struct {
	read func(func(st *state))
}

func (v saleView) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	v.read(func(st *state) { out = st.sales[id].Clone() })
	return out, nil
}

func (v saleView) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	out := make([]*entity.Sale, 0)
	v.read(func(st *state) {
		for _, s := range st.sales {
			if matchSale(s, f) {
				out = append(out, s.Clone())
			}
		}
	})
	sortSales(out)
	return out, nil
}

func (v saleView) ListItems(_ context.Context, saleID string) ([]*entity.SaleItem, error) {
	out := make([]*entity.SaleItem, 0)
	v.read(func(st *state) {
		for _, it := range st.saleItems {
			if it.SaleID == saleID {
				cp := *it
				out = append(out, &cp)
			}
		}
	})
	return out, nil
}

func matchSale(s *entity.Sale, f repository.SaleFilter) bool {
	if f.ShopID != "" && s.ShopID != f.ShopID {
		return false
	}
	if f.From != nil && s.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && s.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

// sortSales la más reciente primero, igual que el listado SQL.
func sortSales(list []*entity.Sale) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

// txSales ventas vistas desde una transacción: lo escrito en ella más lo confirmado.
type txSales struct{ t *tx }

var _ repository.SaleWriter = txSales{}

func (r txSales) current(ctx context.Context, id string) *entity.Sale {
	if s, ok := r.t.sales[id]; ok {
		return s
	}
	s, _ := r.t.s.Sales().GetByID(ctx, id)
	return s
}

func (r txSales) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.current(ctx, id).Clone(), nil
}

func (r txSales) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	if err := r.t.lock(ctx, saleLockKey(id)); err != nil {
		return nil, err
	}
	return r.current(ctx, id).Clone(), nil
}

func (r txSales) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	committed, err := r.t.s.Sales().List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Sale, 0, len(committed))
	for _, s := range committed {
		if staged, ok := r.t.sales[s.ID]; ok {
			s = staged.Clone()
		}
		out = append(out, s)
	}
	return out, nil
}

func (r txSales) ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	out, err := r.t.s.Sales().ListItems(ctx, saleID)
	if err != nil {
		return nil, err
	}
	for _, it := range r.t.saleItems {
		if it.SaleID == saleID {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r txSales) AppendItem(ctx context.Context, item *entity.SaleItem) (*entity.SaleItem, *entity.Sale, error) {
	if err := r.t.lock(ctx, saleLockKey(item.SaleID)); err != nil {
		return nil, nil, err
	}
	cur := r.current(ctx, item.SaleID)
	if cur == nil {
		return nil, nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, item.SaleID)
	}
	it := *item
	it.ID = uuid.New().String()
	it.CreatedAt = r.t.s.tick()
	r.t.saleItems = append(r.t.saleItems, &it)

	sale := cur.Clone()
	sale.TotalAmount = sale.TotalAmount.Add(it.TotalPrice)
	r.t.sales[sale.ID] = sale

	out := it
	return &out, sale.Clone(), nil
}
