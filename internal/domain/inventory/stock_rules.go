// Package inventory contiene las reglas puras del libro de stock: validación de cantidades,
// cálculo del nuevo stock por tipo de movimiento y reconstrucción (fold) desde el historial.
package inventory

import (
	"fmt"
	"math"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// MaxQuantity tope de |cantidad| por movimiento y de stock por lote: la columna es INTEGER.
const MaxQuantity = math.MaxInt32

// ValidateQuantity verifica que quantity sea válida para el tipo de movimiento.
// in/out exigen magnitud positiva; adjustment/transfer aceptan cualquier delta distinto de cero.
// En todos los casos |quantity| <= MaxQuantity.
func ValidateQuantity(movementType string, quantity int) error {
	if quantity > MaxQuantity || quantity < -MaxQuantity {
		return fmt.Errorf("%w: cantidad %d fuera de rango (máximo %d)", domain.ErrInvalidInput, quantity, MaxQuantity)
	}
	switch movementType {
	case entity.MovementTypeIn, entity.MovementTypeOut:
		if quantity <= 0 {
			return fmt.Errorf("%w: %s requiere cantidad positiva, recibido %d", domain.ErrInvalidInput, movementType, quantity)
		}
	case entity.MovementTypeAdjustment, entity.MovementTypeTransfer:
		if quantity == 0 {
			return fmt.Errorf("%w: %s requiere delta distinto de cero", domain.ErrInvalidInput, movementType)
		}
	default:
		return fmt.Errorf("%w: tipo de movimiento desconocido %q", domain.ErrInvalidInput, movementType)
	}
	return nil
}

// NextStock calcula el stock resultante de aplicar un movimiento sobre current.
//
//	in:                  current + q
//	out:                 current - q; ErrInsufficientStock si queda negativo (sin cumplimiento parcial)
//	adjustment/transfer: current + delta, con piso en 0
//
// Un resultado por encima de MaxQuantity es ErrInvalidInput; el piso nunca oculta un desborde.
func NextStock(current int, movementType string, quantity int) (int, error) {
	if err := ValidateQuantity(movementType, quantity); err != nil {
		return current, err
	}
	if current < 0 || current > MaxQuantity {
		return current, fmt.Errorf("%w: stock actual %d fuera de rango", domain.ErrInvalidInput, current)
	}
	switch movementType {
	case entity.MovementTypeIn:
		return checkCeiling(current, current+quantity)
	case entity.MovementTypeOut:
		next := current - quantity
		if next < 0 {
			return current, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, current, quantity)
		}
		return next, nil
	default:
		// Piso en cero: red de seguridad, no sustituye el rechazo de las salidas.
		return checkCeiling(current, max(current+quantity, 0))
	}
}

// checkCeiling rechaza un stock resultante mayor que MaxQuantity. Con ambos operandos acotados
// por MaxQuantity la suma cabe en int, así que la comparación es exacta.
func checkCeiling(current, next int) (int, error) {
	if next > MaxQuantity {
		return current, fmt.Errorf("%w: el stock resultante %d supera el máximo %d", domain.ErrInvalidInput, next, MaxQuantity)
	}
	return next, nil
}

// Replay reconstruye el stock aplicando los movimientos en orden cronológico desde 0.
// Devuelve error si el historial contiene un movimiento que no pudo haberse aceptado.
func Replay(movements []*entity.Movement) (int, error) {
	stock := 0
	for _, m := range movements {
		next, err := NextStock(stock, m.Type, m.Quantity)
		if err != nil {
			return stock, fmt.Errorf("movimiento %s: %w", m.ID, err)
		}
		stock = next
	}
	return stock, nil
}
