package dto

import "github.com/jhoicas/Farmacia-api/internal/domain/entity"

// CreateSaleRequest body para POST /api/sales. La venta nace con total 0.
type CreateSaleRequest struct {
	ShopID       string `json:"shop_id" validate:"required"`
	PaymentMode  string `json:"payment_mode" validate:"required,oneof=cash card digital"`
	CustomerName string `json:"customer_name,omitempty" validate:"max=200"`
}

// SaleQuery filtros de GET /api/sales; fechas en RFC3339 o AAAA-MM-DD.
type SaleQuery struct {
	ShopID    string `query:"shop_id"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

// SaleView venta con sus líneas y la farmacia.
type SaleView struct {
	entity.Sale
	Shop *entity.Shop `json:"shop,omitempty"`
}

// SaleItemResponse respuesta de POST /api/sales/:saleId/items.
type SaleItemResponse struct {
	Sale     *entity.Sale     `json:"sale"`
	Item     *entity.SaleItem `json:"item"`
	Batch    *entity.Batch    `json:"batch"`
	Movement *entity.Movement `json:"movement"`
}
