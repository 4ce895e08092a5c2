package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
)

// InventoryAlerts evalúa la política de reposición sobre todos los productos (ordenados por nombre)
// usando las salidas de la ventana configurada.
func (uc *ReportUseCase) InventoryAlerts(ctx context.Context) (*dto.AlertReportResponse, error) {
	now := uc.now()
	key := "alerts:" + now.Format("2006-01-02")
	var cached dto.AlertReportResponse
	ver, hit, err := uc.cache.Get(ctx, key, &cached)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida")
	} else if hit {
		return &cached, nil
	}

	products, err := uc.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := uc.reports.OutboundTotalsByProduct(ctx, uc.alerts.WindowStart(now))
	if err != nil {
		return nil, err
	}

	resp := &dto.AlertReportResponse{
		Products:    make([]dto.ProductAlert, 0, len(products)),
		GeneratedAt: now,
	}
	evaluated := make([]inventory.Evaluated, 0, len(products))
	for _, p := range products {
		alert := uc.alerts.Evaluate(p.CurrentStock, totals[p.ID])
		evaluated = append(evaluated, inventory.Evaluated{CurrentStock: p.CurrentStock, Alert: alert})
		resp.Products = append(resp.Products, dto.ProductAlert{
			ProductID:           p.ID,
			Name:                p.Name,
			Specification:       p.Specification,
			Unit:                p.Unit,
			CurrentStock:        p.CurrentStock,
			AverageMonthlySales: alert.AverageMonthlySales,
			AlertThreshold:      alert.AlertThreshold,
			RecommendedPurchase: alert.RecommendedPurchase,
			AlertLevel:          string(alert.Level),
		})
	}

	s := inventory.Summarize(evaluated)
	resp.Summary = dto.AlertSummary{
		TotalProducts:            s.TotalProducts,
		NormalProducts:           s.NormalProducts,
		LowStockProducts:         s.LowStockProducts,
		CriticalStockProducts:    s.CriticalStockProducts,
		AverageStockLevel:        s.AverageStockLevel,
		TotalRecommendedPurchase: s.TotalRecommendedPurchase,
	}

	if err := uc.cache.Set(ctx, ver, key, resp); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
	}
	return resp, nil
}

// InventoryAlertsPDF genera la lista de compra sugerida en PDF.
func (uc *ReportUseCase) InventoryAlertsPDF(ctx context.Context) ([]byte, error) {
	if uc.renderer == nil {
		return nil, fmt.Errorf("reporte PDF no configurado")
	}
	report, err := uc.InventoryAlerts(ctx)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderAlertReport(report)
}
