package dto

import "github.com/shopspring/decimal"

// CreateProductRequest entrada para crear un producto del catálogo.
type CreateProductRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	SKU          string          `json:"sku" validate:"required,min=1,max=100"`
	Category     string          `json:"category" validate:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ReorderPoint int             `json:"reorder_point" validate:"min=0"`
	Description  string          `json:"description"`
}
