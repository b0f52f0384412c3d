package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// SaleFilter criterios de listado de ventas. Los campos vacíos no filtran; From y To son inclusivos.
type SaleFilter struct {
	ShopID string
	From   *time.Time
	To     *time.Time
}

// SaleReader consultas de ventas. GetByID devuelve (nil, nil) si no existe y no carga Items.
type SaleReader interface {
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// List devuelve las ventas que cumplen f, la más reciente primero, sin Items.
	List(ctx context.Context, f SaleFilter) ([]*entity.Sale, error)
	// ListItems devuelve las líneas de la venta en orden de registro.
	ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error)
}

// SaleRepository puerto de persistencia de cabeceras de venta.
type SaleRepository interface {
	SaleReader
	// Create asigna ID y CreatedAt si vienen vacíos; TotalAmount se guarda tal cual.
	Create(ctx context.Context, sale *entity.Sale) error
}

// SaleWriter vista transaccional de ventas que el motor del libro usa al registrar una línea.
type SaleWriter interface {
	SaleReader
	// GetForUpdate lee la venta y la bloquea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// AppendItem guarda la línea (asigna ID y CreatedAt) y suma TotalPrice al total de la venta.
	AppendItem(ctx context.Context, item *entity.SaleItem) (*entity.SaleItem, *entity.Sale, error)
}
