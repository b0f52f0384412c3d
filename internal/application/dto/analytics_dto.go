package dto

import "github.com/shopspring/decimal"

// TopProductDTO unidades vendidas de un producto (suma de salidas con motivo "Sale").
type TopProductDTO struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Category    string `json:"category"`
	TotalSold   int    `json:"total_sold"`
}

// ShopSummaryDTO conteo de lotes por farmacia.
type ShopSummaryDTO struct {
	ShopID        string `json:"shop_id"`
	ShopName      string `json:"shop_name"`
	Status        string `json:"status"`
	TotalBatches  int    `json:"total_batches"`
	LowStockCount int    `json:"low_stock_count"`
	OutOfStock    int    `json:"out_of_stock_count"`
}

// DashboardKPIsDTO respuesta de GET /api/dashboard/kpis.
type DashboardKPIsDTO struct {
	TotalStockValue decimal.Decimal `json:"total_stock_value"` // Σ stock × precio unitario
	LowStockItems   int             `json:"low_stock_items"`
	OutOfStockItems int             `json:"out_of_stock_items"`
	FastMovingItems int             `json:"fast_moving_items"` // productos en el top 5 de ventas
	OnlineShops     int             `json:"online_shops"`
	TotalShops      int             `json:"total_shops"`
}

// ReplenishmentSuggestionDTO sugerencia de pedido para un producto en una farmacia.
type ReplenishmentSuggestionDTO struct {
	Priority            int             `json:"priority"` // 1 = más urgente
	ShopID              string          `json:"shop_id"`
	ShopName            string          `json:"shop_name"`
	ProductID           string          `json:"product_id"`
	SKU                 string          `json:"sku"`
	ProductName         string          `json:"product_name"`
	CurrentStock        int             `json:"current_stock"` // suma de los lotes del producto en la farmacia
	ReorderPoint        int             `json:"reorder_point"`
	IdealStock          int             `json:"ideal_stock"`
	SuggestedOrderQty   int             `json:"suggested_order_qty"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	EstimatedOrderValue decimal.Decimal `json:"estimated_order_value"`
	UnitsSoldLast90Days int             `json:"units_sold_last_90_days"`
}
