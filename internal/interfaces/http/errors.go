package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
)

// statusByCode estado HTTP para cada código de dominio.
var statusByCode = map[string]int{
	"NOT_FOUND":          fiber.StatusNotFound,
	"VALIDATION":         fiber.StatusBadRequest,
	"INSUFFICIENT_STOCK": fiber.StatusConflict,
	"CONFLICT":           fiber.StatusConflict,
	"DUPLICATE":          fiber.StatusConflict,
	"UNAUTHORIZED":       fiber.StatusUnauthorized,
	"FORBIDDEN":          fiber.StatusForbidden,
	"PERSISTENCE":        fiber.StatusServiceUnavailable,
	"INTERNAL":           fiber.StatusInternalServerError,
}

// writeError responde dto.ErrorResponse con el código y estado que corresponden al error.
// Los errores internos no exponen su detalle.
func writeError(c *fiber.Ctx, err error) error {
	code := domain.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	msg := err.Error()
	switch code {
	case "INTERNAL":
		msg = "error interno"
	case "PERSISTENCE":
		msg = "almacenamiento no disponible, intente de nuevo"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
