package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// ProductReader lectura del catálogo. GetByID devuelve (nil, nil) si no existe.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	ProductReader
	Create(ctx context.Context, product *entity.Product) error
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
}
