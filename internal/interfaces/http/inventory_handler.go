package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/ledger"
)

// InventoryHandler lotes: recepción, consulta, ajuste manual y verificación contra el historial.
type InventoryHandler struct {
	engine *ledger.Engine
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *ledger.Engine) *InventoryHandler {
	return &InventoryHandler{engine: engine}
}

// List godoc
// @Summary      Listar lotes
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        shop_id     query  string  false  "Filtrar por farmacia"
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Success      200  {array}   entity.Batch
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	list, err := h.engine.ListBatches(c.UserContext(), ledger.BatchFilter{
		ShopID:    c.Query("shop_id"),
		ProductID: c.Query("product_id"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del lote"
// @Success      200  {object}  entity.Batch
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	batch, err := h.engine.GetBatch(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(batch)
}

// Create godoc
// @Summary      Recibir lote
// @Description  Crea el lote con stock 0 y registra la entrada inicial en la misma transacción.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateBatchRequest  true  "product_id, shop_id, batch_number, quantity"
// @Success      201   {object}  dto.StockChangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	batch, mov, err := h.engine.ReceiveBatchFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StockChangeResponse{Batch: batch, Movement: mov})
}

// UpdateStock godoc
// @Summary      Ajuste manual de stock
// @Description  Fija el stock absoluto del lote; se registra un movimiento adjustment con la diferencia.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "ID del lote"
// @Param        body  body      dto.UpdateStockRequest  true  "current_stock objetivo"
// @Success      200   {object}  dto.StockChangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/stock [put]
func (h *InventoryHandler) UpdateStock(c *fiber.Ctx) error {
	var in dto.UpdateStockRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	batch, mov, err := h.engine.AdjustToTarget(c.UserContext(), c.Params("id"), *in.CurrentStock, in.Reason, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockChangeResponse{Batch: batch, Movement: mov})
}

// Verify godoc
// @Summary      Verificar lote contra su historial
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del lote"
// @Success      200  {object}  ledger.Reconciliation
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/verify [get]
func (h *InventoryHandler) Verify(c *fiber.Ctx) error {
	rec, err := h.engine.VerifyBatch(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}
