package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de almacenamiento, pasando repositorios atados a esa tx.
// Commit si fn retorna nil; Rollback ante cualquier error o cancelación de ctx.
// Los abortos de almacenamiento se devuelven como domain.ErrTransactionFailure.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// CacheVersion generación de la caché leída por Get. Set la recibe de vuelta para que un
// reporte calculado antes de una invalidación no quede publicado bajo la generación nueva.
type CacheVersion int64

// UnknownCacheVersion Get no pudo leer la generación; Set no escribe nada.
const UnknownCacheVersion CacheVersion = -1

// ReportCache caché de reportes derivados del libro (tendencias y alertas).
// Invalidate descarta todas las entradas; se llama tras cada escritura confirmada.
type ReportCache interface {
	Get(ctx context.Context, key string, dst any) (CacheVersion, bool, error)
	Set(ctx context.Context, ver CacheVersion, key string, value any) error
	Invalidate(ctx context.Context) error
}

// LedgerMetrics instrumentación de las escrituras del libro.
type LedgerMetrics interface {
	MovementRecorded(kind entity.MovementType, quantity int64)
	MovementRejected(kind entity.MovementType, reason string)
	ObserveTransaction(op string, elapsed time.Duration, err error)
}

// AlertRenderer genera el documento (PDF) del reporte de alertas.
type AlertRenderer interface {
	RenderAlertReport(report *dto.AlertReportResponse) ([]byte, error)
}

// NoopCache caché deshabilitada.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, any) (CacheVersion, bool, error) { return 0, false, nil }
func (NoopCache) Set(context.Context, CacheVersion, string, any) error        { return nil }
func (NoopCache) Invalidate(context.Context) error                            { return nil }

// NoopMetrics métricas deshabilitadas.
type NoopMetrics struct{}

func (NoopMetrics) MovementRecorded(entity.MovementType, int64)     {}
func (NoopMetrics) MovementRejected(entity.MovementType, string)    {}
func (NoopMetrics) ObserveTransaction(string, time.Duration, error) {}
