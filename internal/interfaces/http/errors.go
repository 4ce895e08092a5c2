package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain"
)

// Códigos de error expuestos por la API.
const (
	CodeValidation         = "VALIDATION"
	CodeNotFound           = "NOT_FOUND"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeReferenced         = "REFERENCED"
	CodeDuplicate          = "DUPLICATE"
	CodeConflict           = "CONFLICT"
	CodeTransactionFailure = "TRANSACTION_FAILURE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternal           = "INTERNAL"
)

// insufficientStockDetails detalle de un rechazo de salida.
type insufficientStockDetails struct {
	ProductID    string `json:"productId"`
	CurrentStock int64  `json:"currentStock"`
	Requested    int64  `json:"requested"`
}

type missingDetails struct {
	Entity string   `json:"entity"`
	IDs    []string `json:"ids"`
}

type referencedDetails struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
	Count  int64  `json:"movements"`
}

// errorResponse traduce un error de aplicación a estado HTTP y cuerpo. Es el único punto de mapeo.
func errorResponse(err error) (int, dto.ErrorResponse) {
	var (
		invalid      *domain.ValidationError
		missing      *domain.MissingReferencesError
		insufficient *domain.InsufficientStockError
		referenced   *domain.ReferencedError
		fiberErr     *fiber.Error
	)
	switch {
	case domain.IsRetryable(err):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{
			Code:      CodeTransactionFailure,
			Message:   domain.ErrTransactionFailure.Error() + ", reintente la operación",
			Retryable: true,
		}
	case errors.As(err, &invalid):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: CodeValidation, Message: invalid.Error(), Details: invalid.Fields}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: CodeValidation, Message: err.Error()}
	case errors.As(err, &missing):
		return fiber.StatusNotFound, dto.ErrorResponse{
			Code: CodeNotFound, Message: missing.Error(),
			Details: missingDetails{Entity: missing.Entity, IDs: missing.IDs},
		}
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: CodeNotFound, Message: err.Error()}
	case errors.As(err, &insufficient):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: CodeInsufficientStock, Message: insufficient.Error(),
			Details: insufficientStockDetails{ProductID: insufficient.ProductID, CurrentStock: insufficient.Current, Requested: insufficient.Requested},
		}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: CodeInsufficientStock, Message: err.Error()}
	case errors.As(err, &referenced):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: CodeReferenced, Message: referenced.Error(),
			Details: referencedDetails{Entity: referenced.Entity, ID: referenced.ID, Count: referenced.Count},
		}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: CodeDuplicate, Message: "ya existe un registro con ese nombre"}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: CodeConflict, Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: CodeUnauthorized, Message: "credenciales inválidas"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: CodeForbidden, Message: "acceso denegado"}
	case errors.As(err, &fiberErr):
		return fiberErr.Code, dto.ErrorResponse{Code: fiberCode(fiberErr.Code), Message: fiberErr.Message}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: CodeInternal, Message: "error interno"}
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return CodeValidation
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusForbidden:
		return CodeForbidden
	}
	return CodeInternal
}

// writeError responde con el mapeo de errorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	return c.Status(status).JSON(body)
}

// ErrorHandler manejador de errores de la app Fiber: lo que un handler devuelva sin responder pasa por aquí.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, err)
}
