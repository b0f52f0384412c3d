package entity

import "time"

// Batch representa un lote físico de un producto en una farmacia.
// CurrentStock solo cambia a través del libro de movimientos (ledger.Engine).
type Batch struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"product_id"`
	ShopID       string     `json:"shop_id"`
	BatchNumber  string     `json:"batch_number"`
	CurrentStock int        `json:"current_stock"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	ReceivedDate time.Time  `json:"received_date"`
	SupplierID   *string    `json:"supplier_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Clone devuelve una copia independiente (los punteros opcionales también se copian).
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	c := *b
	if b.ExpiryDate != nil {
		d := *b.ExpiryDate
		c.ExpiryDate = &d
	}
	if b.SupplierID != nil {
		s := *b.SupplierID
		c.SupplierID = &s
	}
	return &c
}

// NextUpdatedAt devuelve el sello de actualización para una nueva mutación:
// now, o el anterior + 1µs si el reloj no avanzó. UpdatedAt es estrictamente creciente.
func NextUpdatedAt(prev, now time.Time) time.Time {
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}
