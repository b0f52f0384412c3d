package ledger

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Todo lo que fn escriba se confirma junto o no se confirma; si ctx se cancela antes del commit
// no queda nada visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		batchRepo repository.BatchWriter,
		movRepo repository.MovementWriter,
	) error) error
}

// SaleTxRunner es TxRunner con el repositorio de ventas atado a la misma transacción: la línea
// de venta, la salida del lote y el nuevo total se confirman juntos.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		batchRepo repository.BatchWriter,
		movRepo repository.MovementWriter,
		saleRepo repository.SaleWriter,
	) error) error
}

// Publisher recibe los eventos de dominio después de cada commit (realtime.Hub).
type Publisher interface {
	Publish(ev entity.Event)
}
