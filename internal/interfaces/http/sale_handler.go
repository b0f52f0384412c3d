package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/ledger"
	"github.com/jhoicas/Farmacia-api/internal/application/usecase"
	"github.com/jhoicas/Farmacia-api/internal/domain"
)

// SaleHandler ventas en mostrador: cabecera con SaleUseCase y líneas con el libro de stock.
type SaleHandler struct {
	uc     *usecase.SaleUseCase
	engine *ledger.Engine
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *usecase.SaleUseCase, engine *ledger.Engine) *SaleHandler {
	return &SaleHandler{uc: uc, engine: engine}
}

// Create godoc
// @Summary      Abrir venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateSaleRequest  true  "shop_id, payment_mode, customer_name"
// @Success      201   {object}  entity.Sale
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	sale, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        shop_id     query     string  false  "Farmacia"
// @Param        start_date  query     string  false  "Desde (RFC3339 o AAAA-MM-DD)"
// @Param        end_date    query     string  false  "Hasta (RFC3339 o AAAA-MM-DD)"
// @Success      200         {array}   dto.SaleView
// @Failure      400         {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var q dto.SaleQuery
	if err := c.QueryParser(&q); err != nil {
		return writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
	}
	list, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        saleId  path      string  true  "ID de la venta"
// @Success      200     {object}  dto.SaleView
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/sales/{saleId} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.uc.GetByID(c.UserContext(), c.Params("saleId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sale)
}

// AddItem godoc
// @Summary      Registrar línea de venta
// @Description  Guarda la línea, descuenta el lote (salida "Sale", referencia = saleId) y suma al total
// @Description  en una sola transacción. Publica sale_completed.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        saleId  path      string               true  "ID de la venta"
// @Param        body    body      dto.SaleItemRequest  true  "batch_id, quantity_sold, unit_price"
// @Success      201     {object}  dto.SaleItemResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/sales/{saleId}/items [post]
func (h *SaleHandler) AddItem(c *fiber.Ctx) error {
	var in dto.SaleItemRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	res, err := h.engine.AddSaleItem(c.UserContext(), ledger.SaleItemInput{
		SaleID:       c.Params("saleId"),
		BatchID:      in.BatchID,
		QuantitySold: in.QuantitySold,
		UnitPrice:    in.UnitPrice,
		UserID:       GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SaleItemResponse{
		Sale:     res.Sale,
		Item:     res.Item,
		Batch:    res.Batch,
		Movement: res.Movement,
	})
}
