package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Farmacia-api/internal/application/analytics"
)

// AnalyticsHandler vistas analíticas de solo lectura y KPIs del panel.
type AnalyticsHandler struct {
	projector *analytics.Projector
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(projector *analytics.Projector) *AnalyticsHandler {
	return &AnalyticsHandler{projector: projector}
}

// LowStock godoc
// @Summary      Lotes con stock bajo
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BatchView
// @Router       /api/analytics/low-stock [get]
func (h *AnalyticsHandler) LowStock(c *fiber.Ctx) error {
	rows, err := h.projector.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rows)
}

// OutOfStock godoc
// @Summary      Lotes agotados
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BatchView
// @Router       /api/analytics/out-of-stock [get]
func (h *AnalyticsHandler) OutOfStock(c *fiber.Ctx) error {
	rows, err := h.projector.OutOfStock(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rows)
}

// Expiring godoc
// @Summary      Lotes próximos a vencer
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días (default 30)"
// @Success      200  {array}   dto.BatchView
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analytics/expiring [get]
func (h *AnalyticsHandler) Expiring(c *fiber.Ctx) error {
	rows, err := h.projector.Expiring(c.UserContext(), c.QueryInt("days", analytics.DefaultExpiringDays))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rows)
}

// TopProducts godoc
// @Summary      Productos más vendidos
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de productos (default 10)"
// @Success      200  {array}  dto.TopProductDTO
// @Router       /api/analytics/top-products [get]
func (h *AnalyticsHandler) TopProducts(c *fiber.Ctx) error {
	rows, err := h.projector.TopSelling(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rows)
}

// ShopSummary godoc
// @Summary      Resumen de lotes por farmacia
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ShopSummaryDTO
// @Router       /api/analytics/shop-summary [get]
func (h *AnalyticsHandler) ShopSummary(c *fiber.Ctx) error {
	rows, err := h.projector.ShopSummary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rows)
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Productos en o bajo el punto de reorden por farmacia, con cantidad sugerida y prioridad.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        shop_id  query  string  false  "Filtrar por farmacia"
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/analytics/replenishment [get]
func (h *AnalyticsHandler) Replenishment(c *fiber.Ctx) error {
	rows, err := h.projector.Replenishment(c.UserContext(), c.Query("shop_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rows)
}

// DashboardKPIs godoc
// @Summary      KPIs del panel
// @Description  Valor del inventario, lotes bajos y agotados, alta rotación y farmacias en línea.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardKPIsDTO
// @Router       /api/dashboard/kpis [get]
func (h *AnalyticsHandler) DashboardKPIs(c *fiber.Ctx) error {
	kpis, err := h.projector.DashboardKPIs(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(kpis)
}
