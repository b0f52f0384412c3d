package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/ledger"
)

// MovementHandler historial y registro de movimientos de stock.
type MovementHandler struct {
	engine *ledger.Engine
}

// NewMovementHandler construye el handler.
func NewMovementHandler(engine *ledger.Engine) *MovementHandler {
	return &MovementHandler{engine: engine}
}

// List godoc
// @Summary      Listar movimientos
// @Description  Con batch_id, historial completo del lote en orden cronológico; sin él, todos paginados
// @Description  (más reciente primero) y el total en X-Total-Count.
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        batch_id  query  string  false  "ID del lote"
// @Param        limit     query  int     false  "Tamaño de página sin batch_id (default 20, máx. 100)"
// @Param        offset    query  int     false  "Desplazamiento sin batch_id"
// @Success      200  {array}   entity.Movement
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	batchID := c.Query("batch_id")
	var page dto.PageRequest
	if batchID == "" {
		var err error
		if page, err = parsePage(c); err != nil {
			return writeError(c, err)
		}
	}
	list, err := h.engine.ListMovements(c.UserContext(), batchID)
	if err != nil {
		return writeError(c, err)
	}
	if batchID != "" {
		return c.JSON(list)
	}
	c.Set("X-Total-Count", strconv.Itoa(len(list)))
	start := min(page.Offset, len(list))
	end := min(start+page.Limit, len(list))
	return c.JSON(list[start:end])
}

// Create godoc
// @Summary      Registrar movimiento
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateMovementRequest  true  "batch_id, movement_type (in|out|adjustment|transfer), quantity"
// @Success      201   {object}  dto.StockChangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock-movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	batch, mov, err := h.engine.ApplyMovementFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StockChangeResponse{Batch: batch, Movement: mov})
}

// Transfer godoc
// @Summary      Traslado entre lotes
// @Description  Resta del lote origen y suma en el destino en una sola transacción.
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TransferRequest  true  "from_batch_id, to_batch_id, quantity"
// @Success      201   {object}  ledger.TransferResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-movements/transfer [post]
func (h *MovementHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	res, err := h.engine.TransferFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
