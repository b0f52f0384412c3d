package entity

// Tipos de evento de dominio emitidos tras cada escritura confirmada.
const (
	EventStockUpdated         = "stock_updated"
	EventInventoryUpdated     = "inventory_updated"
	EventStockMovementCreated = "stock_movement_created"
	EventSaleCompleted        = "sale_completed"
	EventShopStatusUpdated    = "shop_status_updated"
	EventShopCreated          = "shop_created"
)

// Event notificación efímera: no se persiste ni se reproduce.
// Data lleva el lote y/o movimiento afectado (StockChange, *Batch, *Shop...).
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// StockChange payload de los eventos que afectan a un lote.
type StockChange struct {
	Batch    *Batch    `json:"batch"`
	Movement *Movement `json:"movement,omitempty"`
}
