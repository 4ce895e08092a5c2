package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger/internal/application/dto"
)

func TestRenderAlertReport(t *testing.T) {
	report := &dto.AlertReportResponse{
		Products: []dto.ProductAlert{
			{ProductID: "p1", Name: "Arroz", Specification: "5kg", Unit: "saco", CurrentStock: 5, AverageMonthlySales: 10, AlertThreshold: 10, RecommendedPurchase: 25, AlertLevel: "low"},
			{ProductID: "p2", Name: "Aceite", Unit: "unidad", CurrentStock: 0, AlertThreshold: 10, RecommendedPurchase: 10, AlertLevel: "critical"},
			{ProductID: "p3", Name: "Sal", Unit: "unidad", CurrentStock: 500, AlertThreshold: 10, AlertLevel: "normal"},
		},
		Summary:     dto.AlertSummary{TotalProducts: 3, NormalProducts: 1, LowStockProducts: 1, CriticalStockProducts: 1, AverageStockLevel: 168, TotalRecommendedPurchase: 35},
		GeneratedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}

	out, err := NewMarotoAlertRenderer("").RenderAlertReport(report)
	require.NoError(t, err)
	assert.True(t, len(out) > 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestRenderAlertReport_NoAlerts(t *testing.T) {
	out, err := NewMarotoAlertRenderer("Reposición").RenderAlertReport(&dto.AlertReportResponse{GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRenderAlertReport_Nil(t *testing.T) {
	_, err := NewMarotoAlertRenderer("").RenderAlertReport(nil)
	assert.Error(t, err)
}

func TestFormatQuantity(t *testing.T) {
	cases := map[int64]string{
		0:        "0",
		999:      "999",
		25000:    "25.000",
		1000000:  "1.000.000",
		-1234567: "-1.234.567",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatQuantity(in), "formatQuantity(%d)", in)
	}
}
