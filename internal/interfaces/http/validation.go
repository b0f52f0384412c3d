package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
)

var errInvalidBody = fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput)

// bodyValidator aplica las etiquetas validate de los DTO; los errores nombran el campo JSON.
var bodyValidator = newBodyValidator()

func newBodyValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodifica el JSON del cuerpo en out y lo valida. Los errores envuelven ErrInvalidInput.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	if err := bodyValidator.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errInvalidBody
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, describeField(fe))
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, "; "))
	}
	return nil
}

// parsePage lee limit/offset de la query con los valores por defecto de dto.PageRequest.
func parsePage(c *fiber.Ctx) (dto.PageRequest, error) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return page, fmt.Errorf("%w: limit y offset deben ser enteros", domain.ErrInvalidInput)
	}
	page.DefaultPage()
	if err := bodyValidator.Struct(&page); err != nil {
		return page, fmt.Errorf("%w: limit entre 1 y 100, offset >= 0", domain.ErrInvalidInput)
	}
	return page, nil
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " es requerido"
	case "min":
		return fmt.Sprintf("%s debe ser al menos %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s admite como máximo %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s no cumple %s", fe.Field(), fe.Tag())
	}
}
