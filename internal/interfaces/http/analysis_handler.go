package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger/internal/application/inventory"
)

// AnalysisHandler tendencias de salidas y alertas de reposición.
type AnalysisHandler struct {
	reports *inventory.ReportUseCase
}

// NewAnalysisHandler construye el handler.
func NewAnalysisHandler(reports *inventory.ReportUseCase) *AnalysisHandler {
	return &AnalysisHandler{reports: reports}
}

// Trend godoc
// @Summary      Tendencia mensual de salidas de un comercio (12 meses)
// @Tags         sales-analysis
// @Security     Bearer
// @Produce      json
// @Param        merchantId  query  string  true  "comercio"
// @Success      200  {object}  dto.TrendResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales-analysis/trend [get]
func (h *AnalysisHandler) Trend(c *fiber.Ctx) error {
	out, err := h.reports.MonthlyTrend(c.UserContext(), c.Query("merchantId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// InventoryAlert godoc
// @Summary      Alertas de reposición por producto
// @Tags         sales-analysis
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AlertReportResponse
// @Router       /api/sales-analysis/inventory-alert [get]
func (h *AnalysisHandler) InventoryAlert(c *fiber.Ctx) error {
	out, err := h.reports.InventoryAlerts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// InventoryAlertPDF godoc
// @Summary      Sugerencia de compra en PDF
// @Tags         sales-analysis
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/sales-analysis/inventory-alert/pdf [get]
func (h *AnalysisHandler) InventoryAlertPDF(c *fiber.Ctx) error {
	doc, err := h.reports.InventoryAlertsPDF(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="sugerencia-compra-%s.pdf"`, time.Now().Format("20060102")))
	return c.Send(doc)
}
