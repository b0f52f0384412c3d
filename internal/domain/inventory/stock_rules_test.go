package inventory_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/inventory"
)

// ── ValidateQuantity ──────────────────────────────────────────────────────────

func TestValidateQuantity(t *testing.T) {
	cases := []struct {
		name    string
		typ     string
		qty     int
		wantErr bool
	}{
		{"entrada positiva", entity.MovementTypeIn, 10, false},
		{"entrada cero", entity.MovementTypeIn, 0, true},
		{"entrada negativa", entity.MovementTypeIn, -3, true},
		{"salida positiva", entity.MovementTypeOut, 1, false},
		{"salida negativa", entity.MovementTypeOut, -1, true},
		{"ajuste negativo", entity.MovementTypeAdjustment, -15, false},
		{"ajuste cero", entity.MovementTypeAdjustment, 0, true},
		{"traslado positivo", entity.MovementTypeTransfer, 4, false},
		{"tipo desconocido", "robo", 4, true},
		{"entrada en el máximo", entity.MovementTypeIn, inventory.MaxQuantity, false},
		{"entrada sobre el máximo", entity.MovementTypeIn, inventory.MaxQuantity + 1, true},
		{"ajuste enorme positivo", entity.MovementTypeAdjustment, math.MaxInt, true},
		{"ajuste enorme negativo", entity.MovementTypeAdjustment, math.MinInt, true},
		{"ajuste negativo en el máximo", entity.MovementTypeAdjustment, -inventory.MaxQuantity, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := inventory.ValidateQuantity(tc.typ, tc.qty)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// ── NextStock ─────────────────────────────────────────────────────────────────

func TestNextStock_Entrada(t *testing.T) {
	next, err := inventory.NextStock(0, entity.MovementTypeIn, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, next)
}

func TestNextStock_SalidaSinStockSuficiente(t *testing.T) {
	next, err := inventory.NextStock(5, entity.MovementTypeOut, 10)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, next, "el stock no cambia cuando se rechaza la salida")
}

func TestNextStock_SalidaAgotaExacto(t *testing.T) {
	next, err := inventory.NextStock(5, entity.MovementTypeOut, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, next)
}

func TestNextStock_AjusteNegativo(t *testing.T) {
	next, err := inventory.NextStock(40, entity.MovementTypeAdjustment, -15)
	require.NoError(t, err)
	assert.Equal(t, 25, next)
}

func TestNextStock_AjusteConPisoEnCero(t *testing.T) {
	next, err := inventory.NextStock(10, entity.MovementTypeAdjustment, -50)
	require.NoError(t, err)
	assert.Equal(t, 0, next, "un ajuste que deja negativo se recorta a cero")
}

func TestNextStock_AjusteQueDesbordaSeRechaza(t *testing.T) {
	next, err := inventory.NextStock(5, entity.MovementTypeAdjustment, math.MaxInt)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 5, next, "el stock no cambia ni se recorta a cero")
}

func TestNextStock_ResultadoSobreElMaximo(t *testing.T) {
	cases := []struct {
		name string
		typ  string
	}{
		{"entrada", entity.MovementTypeIn},
		{"ajuste", entity.MovementTypeAdjustment},
		{"traslado", entity.MovementTypeTransfer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := inventory.NextStock(inventory.MaxQuantity-1, tc.typ, 2)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, inventory.MaxQuantity-1, next)
		})
	}
}

func TestNextStock_HastaElMaximoExacto(t *testing.T) {
	next, err := inventory.NextStock(inventory.MaxQuantity-1, entity.MovementTypeIn, 1)
	require.NoError(t, err)
	assert.Equal(t, inventory.MaxQuantity, next)
}

func TestNextStock_StockActualFueraDeRango(t *testing.T) {
	_, err := inventory.NextStock(-1, entity.MovementTypeIn, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Replay ────────────────────────────────────────────────────────────────────

func TestReplay_ReproduceStock(t *testing.T) {
	movs := []*entity.Movement{
		{ID: "1", Type: entity.MovementTypeIn, Quantity: 100},
		{ID: "2", Type: entity.MovementTypeOut, Quantity: 30},
		{ID: "3", Type: entity.MovementTypeAdjustment, Quantity: -15},
		{ID: "4", Type: entity.MovementTypeTransfer, Quantity: 20},
		{ID: "5", Type: entity.MovementTypeAdjustment, Quantity: -500},
		{ID: "6", Type: entity.MovementTypeIn, Quantity: 7},
	}
	stock, err := inventory.Replay(movs)
	require.NoError(t, err)
	assert.Equal(t, 7, stock)
}

func TestReplay_HistorialVacio(t *testing.T) {
	stock, err := inventory.Replay(nil)
	require.NoError(t, err)
	assert.Zero(t, stock)
}

func TestReplay_HistorialInconsistente(t *testing.T) {
	_, err := inventory.Replay([]*entity.Movement{
		{ID: "x", Type: entity.MovementTypeOut, Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}
