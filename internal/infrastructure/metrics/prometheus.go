package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/domain/entity"
)

var _ inventory.LedgerMetrics = (*Prometheus)(nil)

// Prometheus métricas del libro y de la capa HTTP.
type Prometheus struct {
	movements      *prometheus.CounterVec
	quantity       *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	txDuration     *prometheus.HistogramVec
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New crea y registra las métricas en reg.
func New(reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		movements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockledger_movements_total",
				Help: "Movimientos confirmados en el libro",
			},
			[]string{"type"},
		),
		quantity: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockledger_movement_quantity_total",
				Help: "Unidades movidas por tipo de movimiento",
			},
			[]string{"type"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockledger_movements_rejected_total",
				Help: "Escrituras rechazadas por motivo",
			},
			[]string{"type", "reason"},
		),
		txDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockledger_transaction_duration_seconds",
				Help:    "Duración de las transacciones del libro",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op", "outcome"},
		),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockledger_http_requests_total",
				Help: "Peticiones HTTP atendidas",
			},
			[]string{"method", "route", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockledger_http_request_duration_seconds",
				Help:    "Latencia de las peticiones HTTP",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(m.movements, m.quantity, m.rejections, m.txDuration, m.requestCounter, m.requestLatency)
	return m
}

func (m *Prometheus) MovementRecorded(kind entity.MovementType, quantity int64) {
	m.movements.WithLabelValues(string(kind)).Inc()
	m.quantity.WithLabelValues(string(kind)).Add(float64(quantity))
}

func (m *Prometheus) MovementRejected(kind entity.MovementType, reason string) {
	m.rejections.WithLabelValues(string(kind), reason).Inc()
}

func (m *Prometheus) ObserveTransaction(op string, elapsed time.Duration, err error) {
	outcome := "commit"
	if err != nil {
		outcome = "rollback"
	}
	m.txDuration.WithLabelValues(op, outcome).Observe(elapsed.Seconds())
}

// ObserveRequest registra una petición HTTP. route es el patrón de la ruta, no la URL concreta.
func (m *Prometheus) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
