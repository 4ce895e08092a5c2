package dto

import (
	"strings"
	"time"
)

// Valores de paginación de los listados.
const (
	DefaultPageNumber = 1
	DefaultPageLimit  = 10
	MaxPageLimit      = 100
	// MaxPageNumber con MaxPageLimit acota el offset muy por debajo del desborde de int.
	MaxPageNumber = 1_000_000
)

// PageRequest paginación para listados (page base 1).
type PageRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// DefaultPage aplica valores por defecto si Page/Limit son cero y recorta Limit al máximo.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = DefaultPageNumber
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}

// PageInRange false si Page supera MaxPageNumber; se valida antes de calcular Offset.
func (p PageRequest) PageInRange() bool {
	return p.Page <= MaxPageNumber
}

// Offset filas a saltar para la página pedida.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPageResponse calcula totalPages = ceil(total / limit).
func NewPageResponse(p PageRequest, total int64) PageResponse {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return PageResponse{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// ParseDate acepta RFC3339 o YYYY-MM-DD. Con endOfDay una fecha sin hora
// se extiende al último instante del día (límite superior inclusivo).
func ParseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		// Día siguiente por calendario: en cambios de horario el día no dura 24h.
		t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
	}
	return t, nil
}
