package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIn         = "in"         // entrada (cantidad positiva)
	MovementTypeOut        = "out"        // salida (cantidad positiva)
	MovementTypeAdjustment = "adjustment" // ajuste (delta con signo)
	MovementTypeTransfer   = "transfer"   // traslado entre lotes (delta con signo)
)

// Motivos que el motor asigna por su cuenta.
const (
	ReasonSale           = "Sale"
	ReasonManualAdjust   = "Manual stock adjustment"
	ReasonInitialReceipt = "Initial receipt"
	ReasonTransfer       = "Transfer"
)

// Movement es un cambio atómico e inmutable sobre el stock de un lote.
// Quantity es magnitud positiva para in/out y delta con signo para adjustment/transfer.
type Movement struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batch_id"`
	Type      string    `json:"movement_type"`
	Quantity  int       `json:"quantity"`
	Reason    *string   `json:"reason,omitempty"`
	Reference *string   `json:"reference,omitempty"`
	UserID    *string   `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsValidMovementType indica si t es uno de los tipos soportados.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment, MovementTypeTransfer:
		return true
	}
	return false
}

// StringPtr devuelve nil para cadenas vacías; útil para campos opcionales.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
