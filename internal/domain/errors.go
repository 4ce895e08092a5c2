package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrTransactionFailure = errors.New("la transacción no pudo completarse")
)

// InsufficientStockError detalla un rechazo de salida: stock actual vs cantidad solicitada.
type InsufficientStockError struct {
	ProductID string
	Current   int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente, stock actual: %d, salida solicitada: %d", e.Current, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// MissingReferencesError agrupa todos los IDs inexistentes de una misma validación.
type MissingReferencesError struct {
	Entity string // product, merchant
	IDs    []string
}

func (e *MissingReferencesError) Error() string {
	return fmt.Sprintf("%s no encontrado: %s", e.Entity, strings.Join(e.IDs, ", "))
}

func (e *MissingReferencesError) Unwrap() error { return ErrNotFound }

// NewMissing construye un MissingReferencesError para un solo ID.
func NewMissing(entity, id string) *MissingReferencesError {
	return &MissingReferencesError{Entity: entity, IDs: []string{id}}
}

// FieldError describe un campo o ítem inválido. Index es -1 cuando no aplica a un ítem de lote.
type FieldError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError enumera todas las violaciones detectadas antes de escribir.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Index >= 0 {
			parts = append(parts, fmt.Sprintf("items[%d].%s: %s", f.Index, f.Field, f.Message))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "entrada inválida: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError de un solo campo.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Index: -1, Field: field, Message: message}}}
}

// ReferencedError indica que una entidad no puede eliminarse porque hay movimientos que la referencian.
type ReferencedError struct {
	Entity string
	ID     string
	Count  int64
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("%s %s tiene %d movimientos registrados, no puede eliminarse", e.Entity, e.ID, e.Count)
}

func (e *ReferencedError) Unwrap() error { return ErrConflict }

// TransactionError envuelve un aborto de almacenamiento. Siempre es reintentable por el llamador.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() []error { return []error{ErrTransactionFailure, e.Err} }

// IsRetryable indica si el llamador puede reintentar la operación.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransactionFailure)
}
