// Package pdf genera el documento de sugerencia de compra a partir del reporte de alertas de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha de generación                        │
//	│  RESUMEN: productos / normal / bajo / crítico / a comprar    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Stock | Prom. mensual | Umbral | Compra   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/application/inventory"
	domaininv "github.com/jhoicas/stockledger/internal/domain/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorCritical = &props.Color{Red: 190, Green: 30, Blue: 45}
	colorLow      = &props.Color{Red: 200, Green: 120, Blue: 0}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.AlertRenderer = (*MarotoAlertRenderer)(nil)

// MarotoAlertRenderer implementa inventory.AlertRenderer usando Maroto v2.
type MarotoAlertRenderer struct {
	title string
}

// NewMarotoAlertRenderer construye el generador. title encabeza el documento.
func NewMarotoAlertRenderer(title string) *MarotoAlertRenderer {
	if title == "" {
		title = "Sugerencia de compra"
	}
	return &MarotoAlertRenderer{title: title}
}

// RenderAlertReport genera el PDF y devuelve sus bytes. Solo lista productos en nivel low o critical.
func (g *MarotoAlertRenderer) RenderAlertReport(report *dto.AlertReportResponse) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report.Summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	rows := tableRows(report.Products)
	if len(rows) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Ningún producto requiere reposición.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}
	m.AddRows(rows...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoAlertRenderer) headerRow(report *dto.AlertReportResponse) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(g.title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func summaryRow(s dto.AlertSummary) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Top: 5, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		cell("Productos", strconv.Itoa(s.TotalProducts)),
		cell("Normal", strconv.Itoa(s.NormalProducts)),
		cell("Stock bajo", strconv.Itoa(s.LowStockProducts)),
		cell("Crítico", strconv.Itoa(s.CriticalStockProducts)),
		cell("Stock promedio", formatQuantity(s.AverageStockLevel)),
		cell("Compra sugerida", formatQuantity(s.TotalRecommendedPurchase)),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 4, align.Left),
		h("Nivel", 1, align.Center),
		h("Stock", 2, align.Right),
		h("Prom. mensual", 2, align.Right),
		h("Umbral", 1, align.Right),
		h("Comprar", 2, align.Right),
	)
}

// tableRows una fila por producto con alerta; los de nivel normal se omiten.
func tableRows(products []dto.ProductAlert) []core.Row {
	result := make([]core.Row, 0, len(products))
	for _, p := range products {
		if p.AlertLevel == string(domaininv.AlertNormal) {
			continue
		}
		name := p.Name
		if p.Specification != "" {
			name += " (" + p.Specification + ")"
		}
		levelColor := colorLow
		if p.AlertLevel == string(domaininv.AlertCritical) {
			levelColor = colorCritical
		}
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(p.AlertLevel, props.Text{
				Size: 8, Align: align.Center, Top: 1, Style: fontstyle.Bold, Color: levelColor,
			})),
			col.New(2).Add(text.New(formatQuantity(p.CurrentStock)+" "+p.Unit, props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
			col.New(2).Add(text.New(formatQuantity(p.AverageMonthlySales), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
			col.New(1).Add(text.New(formatQuantity(p.AlertThreshold), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
			col.New(2).Add(text.New(formatQuantity(p.RecommendedPurchase), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1, Style: fontstyle.Bold,
			})),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatQuantity inserta puntos de miles.
// Ej: 25000 → "25.000", -1000000 → "-1.000.000"
func formatQuantity(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
