package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertLevel clasificación del stock de un producto frente a su umbral.
type AlertLevel string

const (
	AlertCritical AlertLevel = "critical" // sin existencias
	AlertLow      AlertLevel = "low"      // en o por debajo del umbral
	AlertNormal   AlertLevel = "normal"
)

// AlertPolicy parámetros de la heurística de reposición (servicio de dominio).
//
//	promedioMensual = round(salidas de la ventana / WindowMonths)
//	umbral          = max(MinThreshold, round(promedioMensual * ThresholdRatio))
//	compraSugerida  = max(0, umbral - stock + promedioMensual * CoverageMonths)
type AlertPolicy struct {
	WindowMonths   int
	ThresholdRatio decimal.Decimal
	MinThreshold   int64
	CoverageMonths int64
}

// DefaultAlertPolicy valores históricos: 6 meses, 50%, mínimo 10, cobertura de 2 meses.
func DefaultAlertPolicy() AlertPolicy {
	return AlertPolicy{
		WindowMonths:   6,
		ThresholdRatio: decimal.NewFromFloat(0.5),
		MinThreshold:   10,
		CoverageMonths: 2,
	}
}

// WindowStart inicio de la ventana de ventas usada para el promedio mensual.
func (p AlertPolicy) WindowStart(now time.Time) time.Time {
	return now.AddDate(0, -p.WindowMonths, 0)
}

// StockAlert resultado de evaluar un producto.
type StockAlert struct {
	AverageMonthlySales int64
	AlertThreshold      int64
	RecommendedPurchase int64
	Level               AlertLevel
}

// Evaluate aplica la política al stock actual y al total de salidas de la ventana.
func (p AlertPolicy) Evaluate(currentStock, outboundTotal int64) StockAlert {
	months := int64(p.WindowMonths)
	if months <= 0 {
		months = 1
	}
	avg := roundHalfUp(decimal.NewFromInt(outboundTotal).Div(decimal.NewFromInt(months)))
	threshold := roundHalfUp(decimal.NewFromInt(avg).Mul(p.ThresholdRatio))
	if threshold < p.MinThreshold {
		threshold = p.MinThreshold
	}
	recommended := threshold - currentStock + avg*p.CoverageMonths
	if recommended < 0 {
		recommended = 0
	}

	level := AlertNormal
	switch {
	case currentStock <= 0:
		level = AlertCritical
	case currentStock <= threshold:
		level = AlertLow
	}

	return StockAlert{
		AverageMonthlySales: avg,
		AlertThreshold:      threshold,
		RecommendedPurchase: recommended,
		Level:               level,
	}
}

// AlertSummary agregados del reporte de alertas.
type AlertSummary struct {
	TotalProducts            int
	NormalProducts           int
	LowStockProducts         int
	CriticalStockProducts    int
	AverageStockLevel        int64
	TotalRecommendedPurchase int64
}

// Evaluated par stock actual / alerta calculada de un producto.
type Evaluated struct {
	CurrentStock int64
	Alert        StockAlert
}

// Summarize agrega los productos evaluados; el stock promedio se redondea.
func Summarize(items []Evaluated) AlertSummary {
	var s AlertSummary
	var stockSum int64
	for _, it := range items {
		s.TotalProducts++
		switch it.Alert.Level {
		case AlertCritical:
			s.CriticalStockProducts++
		case AlertLow:
			s.LowStockProducts++
		default:
			s.NormalProducts++
		}
		s.TotalRecommendedPurchase += it.Alert.RecommendedPurchase
		stockSum += it.CurrentStock
	}
	if s.TotalProducts > 0 {
		s.AverageStockLevel = roundHalfUp(decimal.NewFromInt(stockSum).Div(decimal.NewFromInt(int64(s.TotalProducts))))
	}
	return s
}

// roundHalfUp redondea al entero más cercano, .5 hacia arriba (las cantidades no son negativas).
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
