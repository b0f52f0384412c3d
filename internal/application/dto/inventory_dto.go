package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// CreateBatchRequest body para POST /api/inventory (recepción de lote).
type CreateBatchRequest struct {
	ProductID    string     `json:"product_id" validate:"required"`
	ShopID       string     `json:"shop_id" validate:"required"`
	BatchNumber  string     `json:"batch_number" validate:"required"`
	Quantity     int        `json:"quantity" validate:"min=0,max=2147483647"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	ReceivedDate *time.Time `json:"received_date,omitempty"`
	SupplierID   string     `json:"supplier_id,omitempty"`
}

// UpdateStockRequest body para PUT /api/inventory/:id/stock (ajuste manual al stock objetivo).
type UpdateStockRequest struct {
	CurrentStock *int   `json:"current_stock" validate:"required,min=0,max=2147483647"`
	Reason       string `json:"reason,omitempty"`
}

// CreateMovementRequest body para POST /api/stock-movements.
// Quantity es magnitud positiva para in/out y delta con signo para adjustment.
// Los traslados van por POST /api/stock-movements/transfer.
type CreateMovementRequest struct {
	BatchID      string `json:"batch_id" validate:"required"`
	MovementType string `json:"movement_type" validate:"required,oneof=in out adjustment"`
	Quantity     int    `json:"quantity" validate:"min=-2147483647,max=2147483647"`
	Reason       string `json:"reason,omitempty"`
	Reference    string `json:"reference,omitempty"`
}

// TransferRequest body para POST /api/stock-movements/transfer.
type TransferRequest struct {
	FromBatchID string `json:"from_batch_id" validate:"required"`
	ToBatchID   string `json:"to_batch_id" validate:"required"`
	Quantity    int    `json:"quantity" validate:"min=1,max=2147483647"`
	Reason      string `json:"reason,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

// SaleItemRequest body para POST /api/sales/:saleId/items. Sin unit_price se usa el de catálogo.
type SaleItemRequest struct {
	BatchID      string           `json:"batch_id" validate:"required"`
	QuantitySold int              `json:"quantity_sold" validate:"min=1,max=2147483647"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
}

// StockChangeResponse lote resultante y movimiento registrado (nil si no hubo cambio).
type StockChangeResponse struct {
	Batch    *entity.Batch    `json:"batch"`
	Movement *entity.Movement `json:"movement,omitempty"`
}

// BatchView lote enriquecido con su producto y farmacia para analítica y listados.
type BatchView struct {
	entity.Batch
	Product *entity.Product `json:"product,omitempty"`
	Shop    *entity.Shop    `json:"shop,omitempty"`
}
