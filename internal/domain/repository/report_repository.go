package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stockledger/internal/domain/entity"
)

// Columnas de orden admitidas por el listado de movimientos.
const (
	SortByDate      = "date"
	SortByQuantity  = "quantity"
	SortByCreatedAt = "createdAt"
)

// MovementQuery filtro ya validado para el listado de movimientos.
// From/To son inclusivos; nil significa sin límite.
type MovementQuery struct {
	Search     string
	ProductID  string
	MerchantID string
	Type       entity.MovementType
	From       *time.Time
	To         *time.Time
	SortBy     string
	SortDesc   bool
	Limit      int
	Offset     int
}

// MovementTotals sumas de cantidad por tipo sobre el conjunto filtrado.
type MovementTotals struct {
	Inbound  int64
	Outbound int64
}

// ReportRepository define las consultas de lectura sobre el libro.
// Las implementaciones son read-only (no modifican datos) y no toman bloqueos.
type ReportRepository interface {
	SearchMovements(ctx context.Context, q MovementQuery) ([]*entity.MovementView, error)
	CountMovements(ctx context.Context, q MovementQuery) (int64, error)
	SumMovements(ctx context.Context, q MovementQuery) (MovementTotals, error)

	// OutboundByMerchant devuelve las salidas de un comercio con fecha en [from, to).
	OutboundByMerchant(ctx context.Context, merchantID string, from, to time.Time) ([]entity.QuantityPoint, error)

	// OutboundTotalsByProduct suma las salidas por producto con fecha >= since.
	// Los productos sin salidas no aparecen en el mapa.
	OutboundTotalsByProduct(ctx context.Context, since time.Time) (map[string]int64, error)
}
