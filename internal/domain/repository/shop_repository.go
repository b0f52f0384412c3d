package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// ShopReader lectura de farmacias. GetByID devuelve (nil, nil) si no existe.
type ShopReader interface {
	GetByID(ctx context.Context, id string) (*entity.Shop, error)
	List(ctx context.Context) ([]*entity.Shop, error)
}

// ShopRepository define el puerto de persistencia para Shop (DIP).
type ShopRepository interface {
	ShopReader
	Create(ctx context.Context, shop *entity.Shop) error
	// UpdateStatus devuelve (nil, nil) si la farmacia no existe.
	UpdateStatus(ctx context.Context, id, status string, lastSeen time.Time) (*entity.Shop, error)
}
