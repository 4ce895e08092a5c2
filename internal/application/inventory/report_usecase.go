package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/jhoicas/stockledger/pkg/logger"
)

// ReportUseCase vistas derivadas de solo lectura sobre el libro: listado filtrado,
// tendencia mensual por comercio y alertas de reposición. No toma bloqueos.
type ReportUseCase struct {
	reports   repository.ReportRepository
	products  repository.ProductRepository
	merchants repository.MerchantRepository
	movements repository.MovementRepository
	cache     ReportCache
	renderer  AlertRenderer
	alerts    inventory.AlertPolicy
	trend     inventory.TrendPolicy
	log       *logger.Logger
	now       func() time.Time
}

// NewReportUseCase construye el motor de reportes. cache y renderer pueden ser nil.
func NewReportUseCase(
	reports repository.ReportRepository,
	products repository.ProductRepository,
	merchants repository.MerchantRepository,
	movements repository.MovementRepository,
	cache ReportCache,
	renderer AlertRenderer,
	alerts inventory.AlertPolicy,
	trend inventory.TrendPolicy,
	log *logger.Logger,
) *ReportUseCase {
	if cache == nil {
		cache = NoopCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReportUseCase{
		reports:   reports,
		products:  products,
		merchants: merchants,
		movements: movements,
		cache:     cache,
		renderer:  renderer,
		alerts:    alerts,
		trend:     trend,
		log:       log.Named("reports"),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (pruebas y reportes históricos).
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = now
	return uc
}

// ListMovements devuelve una página de movimientos filtrados más los totales del conjunto filtrado.
// Página, conteo y estadísticas se consultan en paralelo.
func (uc *ReportUseCase) ListMovements(ctx context.Context, f dto.MovementFilterRequest) (*dto.MovementListResponse, error) {
	q, page, err := buildMovementQuery(f)
	if err != nil {
		return nil, err
	}

	var (
		views  []*entity.MovementView
		total  int64
		totals repository.MovementTotals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		views, err = uc.reports.SearchMovements(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = uc.reports.CountMovements(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = uc.reports.SumMovements(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.MovementListResponse{
		Items:      toMovementResponses(views),
		Pagination: dto.NewPageResponse(page, total),
		Statistics: dto.MovementStatistics{
			InboundTotal:  totals.Inbound,
			OutboundTotal: totals.Outbound,
			NetChange:     totals.Inbound - totals.Outbound,
		},
	}, nil
}

// GetMovement obtiene un movimiento con sus resúmenes.
func (uc *ReportUseCase) GetMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	v, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.NewMissing("movimiento", id)
	}
	resp := toMovementResponse(v)
	return &resp, nil
}

// CountByProduct movimientos que referencian al producto (guarda de borrado del CRUD).
func (uc *ReportUseCase) CountByProduct(ctx context.Context, productID string) (int64, error) {
	return uc.movements.CountByProduct(ctx, productID)
}

// CountByMerchant movimientos que referencian al comercio (guarda de borrado del CRUD).
func (uc *ReportUseCase) CountByMerchant(ctx context.Context, merchantID string) (int64, error) {
	return uc.movements.CountByMerchant(ctx, merchantID)
}

// MonthlyTrend serie de salidas del comercio por mes calendario, siempre con TrendPolicy.WindowMonths puntos.
func (uc *ReportUseCase) MonthlyTrend(ctx context.Context, merchantID string) (*dto.TrendResponse, error) {
	merchantID = strings.TrimSpace(merchantID)
	if merchantID == "" {
		return nil, domain.Invalid("merchantId", "es obligatorio")
	}
	merchant, err := uc.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, domain.NewMissing("comercio", merchantID)
	}

	now := uc.now()
	key := "trend:" + merchantID + ":" + now.Format("2006-01")
	var cached dto.TrendResponse
	ver, hit, err := uc.cache.Get(ctx, key, &cached)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida")
	} else if hit {
		return &cached, nil
	}

	from, to := uc.trend.Window(now)
	points, err := uc.reports.OutboundByMerchant(ctx, merchantID, from, to)
	if err != nil {
		return nil, err
	}
	trend := uc.trend.Build(now, points)

	resp := &dto.TrendResponse{
		MerchantID:   merchant.ID,
		MerchantName: merchant.Name,
		Points:       make([]dto.TrendPoint, 0, len(trend.Points)),
		Summary: dto.TrendSummary{
			TotalQuantity:    trend.TotalQuantity,
			AverageQuantity:  trend.AverageQuantity,
			HighVolumeMonths: trend.HighVolumeMonths,
		},
		GeneratedAt: now,
	}
	for _, p := range trend.Points {
		resp.Points = append(resp.Points, dto.TrendPoint{
			Month:         p.Month,
			Year:          p.Year,
			MonthNumber:   p.MonthNumber,
			TotalQuantity: p.Quantity,
			IsHighVolume:  p.IsHighVolume,
		})
	}

	if err := uc.cache.Set(ctx, ver, key, resp); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
	}
	return resp, nil
}

// buildMovementQuery valida el filtro y lo traduce a la consulta del repositorio.
// Cualquier valor mal formado devuelve ErrInvalidInput antes de tocar el almacenamiento.
func buildMovementQuery(f dto.MovementFilterRequest) (repository.MovementQuery, dto.PageRequest, error) {
	ve := &domain.ValidationError{}
	page := f.PageRequest
	if page.Page < 0 {
		ve.Fields = append(ve.Fields, domain.FieldError{Index: -1, Field: "page", Message: "debe ser mayor o igual a 1"})
	}
	if page.Limit < 0 {
		ve.Fields = append(ve.Fields, domain.FieldError{Index: -1, Field: "limit", Message: "debe ser mayor o igual a 1"})
	}
	if page.Page > dto.MaxPageNumber {
		ve.Fields = append(ve.Fields, domain.FieldError{Index: -1, Field: "page", Message: fmt.Sprintf("no puede ser mayor a %d", dto.MaxPageNumber)})
	}
	page.DefaultPage()

	q := repository.MovementQuery{
		Search:     strings.TrimSpace(f.Search),
		ProductID:  strings.TrimSpace(f.ProductID),
		MerchantID: strings.TrimSpace(f.MerchantID),
		SortBy:     repository.SortByDate,
		SortDesc:   true,
		Limit:      page.Limit,
	}
	if page.PageInRange() {
		q.Offset = page.Offset()
	}

	if t := strings.TrimSpace(f.Type); t != "" {
		kind, ok := parseMovementType(t)
		if !ok {
			ve.Fields = append(ve.Fields, domain.FieldError{Index: -1, Field: "type", Message: "debe ser INBOUND u OUTBOUND"})
		}
		q.Type = kind
	}

	switch s := strings.TrimSpace(f.SortBy); s {
	case "":
	case repository.SortByDate, repository.SortByQuantity, repository.SortByCreatedAt:
		q.SortBy = s
	default:
		ve.Fields = append(ve.Fields, domain.FieldError{Index: -1, Field: "sortBy", Message: "debe ser date, quantity o createdAt"})
	}

	switch strings.ToLower(strings.TrimSpace(f.SortOrder)) {
	case "", "desc":
	case "asc":
		q.SortDesc = false
	default:
		ve.Fields = append(ve.Fields, domain.FieldError{Index: -1, Field: "sortOrder", Message: "debe ser asc o desc"})
	}

	if s := strings.TrimSpace(f.StartDate); s != "" {
		t, err := dto.ParseDate(s, false)
		if err != nil {
			ve.Fields = append(ve.Fields, domain.FieldError{Index: -1, Field: "startDate", Message: "fecha inválida"})
		} else {
			q.From = &t
		}
	}
	if s := strings.TrimSpace(f.EndDate); s != "" {
		t, err := dto.ParseDate(s, true)
		if err != nil {
			ve.Fields = append(ve.Fields, domain.FieldError{Index: -1, Field: "endDate", Message: "fecha inválida"})
		} else {
			q.To = &t
		}
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		ve.Fields = append(ve.Fields, domain.FieldError{Index: -1, Field: "startDate", Message: "no puede ser posterior a endDate"})
	}

	if len(ve.Fields) > 0 {
		return repository.MovementQuery{}, page, ve
	}
	return q, page, nil
}

// parseMovementType acepta también IN/OUT, los códigos cortos del sistema anterior.
func parseMovementType(s string) (entity.MovementType, bool) {
	switch strings.ToUpper(s) {
	case "INBOUND", "IN":
		return entity.MovementInbound, true
	case "OUTBOUND", "OUT":
		return entity.MovementOutbound, true
	}
	return "", false
}
