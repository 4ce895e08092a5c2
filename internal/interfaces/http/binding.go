package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger/internal/domain"
)

var validate = newValidator()

// newValidator usa el nombre JSON de cada campo en los mensajes.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// bindJSON decodifica el cuerpo y valida las etiquetas `validate`.
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return domain.Invalid("body", "cuerpo inválido: "+err.Error())
	}
	return validateStruct(dst)
}

// bindQuery decodifica la query string. Los valores se validan en el caso de uso.
func bindQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return domain.Invalid("query", "parámetros inválidos: "+err.Error())
	}
	return nil
}

// validateStruct convierte los errores de validator en un ValidationError con todos los campos.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	ve := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		ve.Fields = append(ve.Fields, domain.FieldError{Index: -1, Field: fe.Field(), Message: describe(fe)})
	}
	return ve
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "min":
		return "longitud mínima " + fe.Param()
	case "max":
		return "longitud máxima " + fe.Param()
	}
	return "no cumple la regla " + fe.Tag()
}
