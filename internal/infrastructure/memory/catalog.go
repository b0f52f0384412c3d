package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

type productRepo struct{ s *Store }

var _ repository.ProductRepository = (*productRepo)(nil)

func (r *productRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return productView{read: r.s.read}.GetByID(ctx, id)
}

func (r *productRepo) List(ctx context.Context) ([]*entity.Product, error) {
	return productView{read: r.s.read}.List(ctx)
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.s.read(func(st *state) {
		for _, p := range st.products {
			if p.SKU == sku {
				cp := *p
				out = &cp
				return
			}
		}
	})
	return out, nil
}

// Create asigna ID y CreatedAt si vienen vacíos. El SKU es único.
func (r *productRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.st.products {
		if p.SKU == product.SKU {
			return fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, product.SKU)
		}
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, ok := r.s.st.products[product.ID]; ok {
		return fmt.Errorf("%w: producto %s", domain.ErrDuplicate, product.ID)
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = r.s.tick()
	}
	cp := *product
	r.s.st.products[cp.ID] = &cp
	return nil
}

type shopRepo struct{ s *Store }

var _ repository.ShopRepository = (*shopRepo)(nil)

func (r *shopRepo) GetByID(ctx context.Context, id string) (*entity.Shop, error) {
	return shopView{read: r.s.read}.GetByID(ctx, id)
}

func (r *shopRepo) List(ctx context.Context) ([]*entity.Shop, error) {
	return shopView{read: r.s.read}.List(ctx)
}

func (r *shopRepo) Create(_ context.Context, shop *entity.Shop) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if shop.ID == "" {
		shop.ID = uuid.New().String()
	}
	if _, ok := r.s.st.shops[shop.ID]; ok {
		return fmt.Errorf("%w: farmacia %s", domain.ErrDuplicate, shop.ID)
	}
	now := r.s.tick()
	if shop.CreatedAt.IsZero() {
		shop.CreatedAt = now
	}
	if shop.LastSeen.IsZero() {
		shop.LastSeen = now
	}
	cp := *shop
	r.s.st.shops[cp.ID] = &cp
	return nil
}

func (r *shopRepo) UpdateStatus(_ context.Context, id, status string, lastSeen time.Time) (*entity.Shop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.st.shops[id]
	if !ok {
		return nil, nil
	}
	s.Status = status
	s.LastSeen = lastSeen
	cp := *s
	return &cp, nil
}
