package inventory

import (
	"time"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TrendPolicy parámetros de la tendencia mensual de salidas por comercio.
type TrendPolicy struct {
	WindowMonths     int
	HighVolumeFactor decimal.Decimal // mes "alto" si cantidad > promedio * factor
}

// DefaultTrendPolicy últimos 12 meses, pico por encima de 1.5x el promedio.
func DefaultTrendPolicy() TrendPolicy {
	return TrendPolicy{WindowMonths: 12, HighVolumeFactor: decimal.NewFromFloat(1.5)}
}

// MonthPoint total de un mes calendario.
type MonthPoint struct {
	Month        string // YYYY-MM
	Year         int
	MonthNumber  int
	Quantity     int64
	IsHighVolume bool
}

// Trend serie mensual completa, del mes más antiguo al actual.
type Trend struct {
	Points           []MonthPoint
	TotalQuantity    int64
	AverageQuantity  int64 // redondeado; la marca de pico usa el promedio exacto
	HighVolumeMonths int
}

// Window devuelve [inicio del mes más antiguo, inicio del mes siguiente al actual)
// en la zona horaria de now.
func (p TrendPolicy) Window(now time.Time) (time.Time, time.Time) {
	months := p.months()
	first := time.Date(now.Year(), now.Month()-time.Month(months-1), 1, 0, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	return first, end
}

// Build agrupa las salidas por mes calendario. Los meses sin movimiento quedan en 0,
// por lo que la serie siempre tiene WindowMonths puntos.
func (p TrendPolicy) Build(now time.Time, points []entity.QuantityPoint) Trend {
	months := p.months()
	first, _ := p.Window(now)
	loc := now.Location()

	series := make([]MonthPoint, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		d := time.Date(first.Year(), first.Month()+time.Month(i), 1, 0, 0, 0, 0, loc)
		key := d.Format("2006-01")
		series[i] = MonthPoint{Month: key, Year: d.Year(), MonthNumber: int(d.Month())}
		index[key] = i
	}

	var total int64
	for _, pt := range points {
		i, ok := index[pt.Date.In(loc).Format("2006-01")]
		if !ok {
			continue
		}
		series[i].Quantity += pt.Quantity
		total += pt.Quantity
	}

	// cantidad > (total / meses) * factor  <=>  cantidad * meses > total * factor
	limit := decimal.NewFromInt(total).Mul(p.HighVolumeFactor)
	highMonths := 0
	for i := range series {
		if decimal.NewFromInt(series[i].Quantity * int64(months)).GreaterThan(limit) {
			series[i].IsHighVolume = true
			highMonths++
		}
	}

	return Trend{
		Points:           series,
		TotalQuantity:    total,
		AverageQuantity:  roundHalfUp(decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(months)))),
		HighVolumeMonths: highMonths,
	}
}

func (p TrendPolicy) months() int {
	if p.WindowMonths <= 0 {
		return 12
	}
	return p.WindowMonths
}
