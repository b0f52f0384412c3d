package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medios de pago de una venta.
const (
	PaymentModeCash    = "cash"
	PaymentModeCard    = "card"
	PaymentModeDigital = "digital"
)

// Sale cabecera de una venta en mostrador. TotalAmount es la suma de TotalPrice de sus líneas;
// empieza en 0 y solo crece al registrar cada línea.
type Sale struct {
	ID           string          `json:"id"`
	ShopID       string          `json:"shop_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaymentMode  string          `json:"payment_mode"`
	CustomerName *string         `json:"customer_name,omitempty"`
	UserID       *string         `json:"user_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Items        []*SaleItem     `json:"items,omitempty"`
}

// SaleItem línea de venta: unidades descontadas de un lote con su precio.
// MovementID enlaza la salida que la línea produjo en el libro.
type SaleItem struct {
	ID         string          `json:"id"`
	SaleID     string          `json:"sale_id"`
	BatchID    string          `json:"batch_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	MovementID string          `json:"movement_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

// IsValidPaymentMode indica si m es un medio de pago admitido.
func IsValidPaymentMode(m string) bool {
	switch m {
	case PaymentModeCash, PaymentModeCard, PaymentModeDigital:
		return true
	}
	return false
}

// Clone copia la venta y sus líneas.
func (s *Sale) Clone() *Sale {
	if s == nil {
		return nil
	}
	c := *s
	if s.Items != nil {
		c.Items = make([]*SaleItem, len(s.Items))
		for i, it := range s.Items {
			cp := *it
			c.Items[i] = &cp
		}
	}
	return &c
}
