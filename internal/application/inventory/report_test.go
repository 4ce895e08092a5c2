package inventory_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger/internal/application/dto"
	appinv "github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/domain"
)

func at(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 12, 0, 0, 0, time.Local)
	return &t
}

// seedLedger: Arroz 100 entradas, 40 salidas a Tienda Centro; Frijol 20 entradas, 5 salidas a Donde Pepe.
func seedLedger(t *testing.T, f *fixture) {
	t.Helper()
	f.product(t, "A", "Arroz", 0)
	f.product(t, "B", "Frijol", 0)
	f.merchant(t, "M1", "Tienda Centro")
	f.merchant(t, "M2", "Donde Pepe")
	ctx := context.Background()
	notes := "pedido urgente"

	_, err := f.writer.RecordInbound(ctx, appinv.InboundInput{ProductID: "A", Quantity: 100, Date: at(2026, 1, 10)})
	require.NoError(t, err)
	_, err = f.writer.RecordInbound(ctx, appinv.InboundInput{ProductID: "B", Quantity: 20, Date: at(2026, 1, 12)})
	require.NoError(t, err)
	_, err = f.writer.RecordOutbound(ctx, appinv.OutboundInput{ProductID: "A", MerchantID: "M1", Quantity: 25, Date: at(2026, 2, 1)})
	require.NoError(t, err)
	_, err = f.writer.RecordOutbound(ctx, appinv.OutboundInput{ProductID: "A", MerchantID: "M1", Quantity: 15, Date: at(2026, 3, 1), Notes: &notes})
	require.NoError(t, err)
	_, err = f.writer.RecordOutbound(ctx, appinv.OutboundInput{ProductID: "B", MerchantID: "M2", Quantity: 5, Date: at(2026, 3, 5)})
	require.NoError(t, err)
}

func TestListMovements_FiltrosYEstadisticas(t *testing.T) {
	f := newFixture(t)
	seedLedger(t, f)
	ctx := context.Background()

	all, err := f.reports.ListMovements(ctx, dto.MovementFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), all.Pagination.Total)
	assert.Equal(t, 1, all.Pagination.Page)
	assert.Equal(t, 10, all.Pagination.Limit)
	assert.Equal(t, 1, all.Pagination.TotalPages)
	assert.Equal(t, int64(120), all.Statistics.InboundTotal)
	assert.Equal(t, int64(45), all.Statistics.OutboundTotal)
	assert.Equal(t, int64(75), all.Statistics.NetChange)
	// Orden por defecto: fecha descendente.
	assert.Equal(t, "B", all.Items[0].ProductID)
	assert.Equal(t, int64(5), all.Items[0].Quantity)

	arroz, err := f.reports.ListMovements(ctx, dto.MovementFilterRequest{ProductID: "A", Type: "out"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), arroz.Pagination.Total)
	assert.Equal(t, int64(0), arroz.Statistics.InboundTotal)
	assert.Equal(t, int64(40), arroz.Statistics.OutboundTotal)
	assert.Equal(t, int64(-40), arroz.Statistics.NetChange)

	byMerchant, err := f.reports.ListMovements(ctx, dto.MovementFilterRequest{Search: "PEPE"})
	require.NoError(t, err)
	require.Len(t, byMerchant.Items, 1)
	assert.Equal(t, "Donde Pepe", byMerchant.Items[0].Merchant.Name)

	byNotes, err := f.reports.ListMovements(ctx, dto.MovementFilterRequest{Search: "urgente"})
	require.NoError(t, err)
	require.Len(t, byNotes.Items, 1)
	assert.Equal(t, int64(15), byNotes.Items[0].Quantity)

	// endDate sin hora incluye todo el día.
	ranged, err := f.reports.ListMovements(ctx, dto.MovementFilterRequest{StartDate: "2026-02-01", EndDate: "2026-03-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), ranged.Pagination.Total)
	assert.Equal(t, int64(40), ranged.Statistics.OutboundTotal)
}

func TestListMovements_PaginacionYOrden(t *testing.T) {
	f := newFixture(t)
	seedLedger(t, f)
	ctx := context.Background()
	filter := dto.MovementFilterRequest{
		PageRequest: dto.PageRequest{Page: 2, Limit: 2},
		SortBy:      "quantity",
		SortOrder:   "asc",
	}

	page, err := f.reports.ListMovements(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(20), page.Items[0].Quantity)
	assert.Equal(t, int64(25), page.Items[1].Quantity)
	// Las estadísticas cubren el conjunto filtrado, no solo la página.
	assert.Equal(t, int64(120), page.Statistics.InboundTotal)

	again, err := f.reports.ListMovements(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, page, again, "lecturas repetidas sin escrituras intermedias son idénticas")

	big, err := f.reports.ListMovements(ctx, dto.MovementFilterRequest{PageRequest: dto.PageRequest{Limit: 1000}})
	require.NoError(t, err)
	assert.Equal(t, 100, big.Pagination.Limit)
}

func TestListMovements_FiltrosInvalidos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []dto.MovementFilterRequest{
		{SortBy: "price"},
		{SortOrder: "up"},
		{Type: "TRANSFER"},
		{StartDate: "31/12/2025"},
		{StartDate: "2026-03-02", EndDate: "2026-03-01"},
		{PageRequest: dto.PageRequest{Page: -1}},
		{PageRequest: dto.PageRequest{Page: math.MaxInt64 / 10, Limit: 100}},
		{PageRequest: dto.PageRequest{Page: dto.MaxPageNumber + 1}},
	}
	for _, c := range cases {
		_, err := f.reports.ListMovements(ctx, c)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", c)
	}
}

func TestListMovements_UltimaPaginaPermitida(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 0)
	_, err := f.writer.RecordInbound(context.Background(), appinv.InboundInput{ProductID: "A", Quantity: 1})
	require.NoError(t, err)

	out, err := f.reports.ListMovements(context.Background(), dto.MovementFilterRequest{
		PageRequest: dto.PageRequest{Page: dto.MaxPageNumber, Limit: dto.MaxPageLimit},
	})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(1), out.Pagination.Total)
}

func TestGetMovement(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 0)
	created, err := f.writer.RecordInbound(context.Background(), appinv.InboundInput{ProductID: "A", Quantity: 2})
	require.NoError(t, err)

	got, err := f.reports.GetMovement(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Arroz", got.Product.Name)

	_, err = f.reports.GetMovement(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMonthlyTrend(t *testing.T) {
	f := newFixture(t)
	seedLedger(t, f)
	f.reports.WithClock(func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local) })

	trend, err := f.reports.MonthlyTrend(context.Background(), "M1")
	require.NoError(t, err)
	assert.Equal(t, "Tienda Centro", trend.MerchantName)
	require.Len(t, trend.Points, 12)
	assert.Equal(t, "2025-11", trend.Points[0].Month)
	assert.Equal(t, "2026-10", trend.Points[11].Month)
	assert.Equal(t, int64(25), trend.Points[3].TotalQuantity) // 2026-02
	assert.Equal(t, int64(15), trend.Points[4].TotalQuantity) // 2026-03
	assert.Equal(t, int64(40), trend.Summary.TotalQuantity)
	assert.Equal(t, int64(3), trend.Summary.AverageQuantity) // 40 / 12 = 3.33
	assert.Equal(t, 2, trend.Summary.HighVolumeMonths)

	empty, err := f.reports.MonthlyTrend(context.Background(), "M2")
	require.NoError(t, err)
	require.Len(t, empty.Points, 12)

	_, err = f.reports.MonthlyTrend(context.Background(), "M404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.reports.MonthlyTrend(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMonthlyTrend_CacheInvalidadaTrasEscritura(t *testing.T) {
	f := newFixture(t)
	seedLedger(t, f)
	ctx := context.Background()
	now := time.Now()
	f.reports.WithClock(func() time.Time { return now })

	first, err := f.reports.MonthlyTrend(ctx, "M2")
	require.NoError(t, err)

	_, err = f.writer.RecordOutbound(ctx, appinv.OutboundInput{ProductID: "B", MerchantID: "M2", Quantity: 2, Date: &now})
	require.NoError(t, err)

	second, err := f.reports.MonthlyTrend(ctx, "M2")
	require.NoError(t, err)
	assert.Equal(t, first.Summary.TotalQuantity+2, second.Summary.TotalQuantity)
}

func TestInventoryAlerts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	lastMonth := now.AddDate(0, -1, 0)
	longAgo := now.AddDate(-1, 0, 0)

	f.product(t, "C", "Café", 65)
	f.product(t, "D", "Detergente", 0)
	f.product(t, "E", "Escoba", 100)
	f.merchant(t, "M1", "Tienda Centro")

	_, err := f.writer.RecordOutbound(ctx, appinv.OutboundInput{ProductID: "C", MerchantID: "M1", Quantity: 60, Date: &lastMonth})
	require.NoError(t, err)
	_, err = f.writer.RecordOutbound(ctx, appinv.OutboundInput{ProductID: "E", MerchantID: "M1", Quantity: 50, Date: &longAgo})
	require.NoError(t, err)

	report, err := f.reports.InventoryAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, report.Products, 3)

	byID := map[string]dto.ProductAlert{}
	for _, p := range report.Products {
		byID[p.ProductID] = p
	}

	c := byID["C"]
	assert.Equal(t, int64(5), c.CurrentStock)
	assert.Equal(t, int64(10), c.AverageMonthlySales)
	assert.Equal(t, int64(10), c.AlertThreshold)
	assert.Equal(t, int64(25), c.RecommendedPurchase)
	assert.Equal(t, "low", c.AlertLevel)

	assert.Equal(t, "critical", byID["D"].AlertLevel)
	assert.Equal(t, int64(10), byID["D"].RecommendedPurchase)

	// Las salidas fuera de la ventana de 6 meses no cuentan.
	e := byID["E"]
	assert.Equal(t, int64(0), e.AverageMonthlySales)
	assert.Equal(t, "normal", e.AlertLevel)

	assert.Equal(t, "Café", report.Products[0].Name, "ordenado por nombre")
	assert.Equal(t, 3, report.Summary.TotalProducts)
	assert.Equal(t, 1, report.Summary.LowStockProducts)
	assert.Equal(t, 1, report.Summary.CriticalStockProducts)
	assert.Equal(t, 1, report.Summary.NormalProducts)
	assert.Equal(t, int64(18), report.Summary.AverageStockLevel) // (5+0+50)/3 = 18.3
	assert.Equal(t, int64(35), report.Summary.TotalRecommendedPurchase)
}

func TestInventoryAlertsPDF_SinRenderer(t *testing.T) {
	f := newFixture(t)
	_, err := f.reports.InventoryAlertsPDF(context.Background())
	assert.Error(t, err)
}
