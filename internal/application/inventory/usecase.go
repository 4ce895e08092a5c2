package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/jhoicas/stockledger/pkg/logger"
)

var tracer = otel.Tracer("stockledger/inventory")

// LedgerWriter registra entradas y salidas de forma transaccional: bloqueo de la fila
// del producto (SELECT FOR UPDATE), verificación de stock, asiento en el libro y
// actualización del saldo en la misma transacción.
type LedgerWriter struct {
	txRunner  TxRunner
	products  repository.ProductRepository
	merchants repository.MerchantRepository
	cache     ReportCache
	metrics   LedgerMetrics
	log       *logger.Logger
	now       func() time.Time
}

// NewLedgerWriter construye el caso de uso. cache y metrics pueden ser nil.
func NewLedgerWriter(
	txRunner TxRunner,
	products repository.ProductRepository,
	merchants repository.MerchantRepository,
	cache ReportCache,
	metrics LedgerMetrics,
	log *logger.Logger,
) *LedgerWriter {
	if cache == nil {
		cache = NoopCache{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerWriter{
		txRunner:  txRunner,
		products:  products,
		merchants: merchants,
		cache:     cache,
		metrics:   metrics,
		log:       log.Named("ledger"),
		now:       time.Now,
	}
}

// InboundInput entrada de mercancía. Date nil significa ahora.
type InboundInput struct {
	ProductID string
	Quantity  int64
	Date      *time.Time
	Notes     *string
	UserID    string
}

// OutboundInput salida hacia un comercio. Date nil significa ahora.
type OutboundInput struct {
	ProductID  string
	MerchantID string
	Quantity   int64
	Date       *time.Time
	Notes      *string
	UserID     string
}

// RecordInbound anexa un movimiento INBOUND y suma la cantidad al stock del producto.
func (w *LedgerWriter) RecordInbound(ctx context.Context, in InboundInput) (*dto.MovementResponse, error) {
	ctx, span := tracer.Start(ctx, "ledger.record_inbound", trace.WithAttributes(
		attribute.String("product.id", in.ProductID),
		attribute.Int64("movement.quantity", in.Quantity),
	))
	defer span.End()

	ve := &domain.ValidationError{}
	checkProductID(ve, -1, in.ProductID)
	checkQuantity(ve, -1, in.Quantity)
	if len(ve.Fields) > 0 {
		return nil, w.reject(span, entity.MovementInbound, ve)
	}

	product, err := w.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, w.reject(span, entity.MovementInbound, err)
	}
	if product == nil {
		return nil, w.reject(span, entity.MovementInbound, domain.NewMissing("producto", in.ProductID))
	}

	mov := w.newMovement(in.ProductID, nil, entity.MovementInbound, in.Quantity, in.Date, in.Notes, in.UserID)
	var balance int64
	start := time.Now()
	err = w.txRunner.Run(ctx, func(ctx context.Context, movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		locked, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.NewMissing("producto", in.ProductID)
		}
		product = locked
		if balance, err = productRepo.AdjustStock(ctx, in.ProductID, in.Quantity); err != nil {
			return err
		}
		return movRepo.Create(ctx, mov)
	})
	w.metrics.ObserveTransaction("inbound", time.Since(start), err)
	if err != nil {
		return nil, w.reject(span, entity.MovementInbound, err)
	}

	w.committed(ctx, mov)
	w.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Int64("quantity", mov.Quantity).
		Int64("current_stock", balance).
		Msg("entrada registrada")

	resp := toMovementResponse(viewOf(mov, product, nil))
	resp.CurrentStock = &balance
	return &resp, nil
}

// RecordOutbound anexa un movimiento OUTBOUND hacia un comercio y descuenta el stock.
// Falla con InsufficientStockError si la cantidad supera el stock bloqueado.
func (w *LedgerWriter) RecordOutbound(ctx context.Context, in OutboundInput) (*dto.MovementResponse, error) {
	ctx, span := tracer.Start(ctx, "ledger.record_outbound", trace.WithAttributes(
		attribute.String("product.id", in.ProductID),
		attribute.String("merchant.id", in.MerchantID),
		attribute.Int64("movement.quantity", in.Quantity),
	))
	defer span.End()

	ve := &domain.ValidationError{}
	checkProductID(ve, -1, in.ProductID)
	if strings.TrimSpace(in.MerchantID) == "" {
		ve.Fields = append(ve.Fields, domain.FieldError{Index: -1, Field: "merchantId", Message: "es obligatorio"})
	}
	checkQuantity(ve, -1, in.Quantity)
	if len(ve.Fields) > 0 {
		return nil, w.reject(span, entity.MovementOutbound, ve)
	}

	product, err := w.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, w.reject(span, entity.MovementOutbound, err)
	}
	if product == nil {
		return nil, w.reject(span, entity.MovementOutbound, domain.NewMissing("producto", in.ProductID))
	}
	merchant, err := w.merchants.GetByID(ctx, in.MerchantID)
	if err != nil {
		return nil, w.reject(span, entity.MovementOutbound, err)
	}
	if merchant == nil {
		return nil, w.reject(span, entity.MovementOutbound, domain.NewMissing("comercio", in.MerchantID))
	}

	merchantID := merchant.ID
	mov := w.newMovement(in.ProductID, &merchantID, entity.MovementOutbound, in.Quantity, in.Date, in.Notes, in.UserID)
	var balance int64
	start := time.Now()
	err = w.txRunner.Run(ctx, func(ctx context.Context, movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		// El saldo se lee con la fila bloqueada: dos salidas concurrentes del mismo producto se serializan aquí.
		locked, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.NewMissing("producto", in.ProductID)
		}
		if locked.CurrentStock < in.Quantity {
			return &domain.InsufficientStockError{ProductID: in.ProductID, Current: locked.CurrentStock, Requested: in.Quantity}
		}
		product = locked
		if balance, err = productRepo.AdjustStock(ctx, in.ProductID, -in.Quantity); err != nil {
			return err
		}
		return movRepo.Create(ctx, mov)
	})
	w.metrics.ObserveTransaction("outbound", time.Since(start), err)
	if err != nil {
		return nil, w.reject(span, entity.MovementOutbound, err)
	}

	w.committed(ctx, mov)
	w.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Str("merchant_id", merchantID).
		Int64("quantity", mov.Quantity).
		Int64("current_stock", balance).
		Msg("salida registrada")

	resp := toMovementResponse(viewOf(mov, product, merchant))
	resp.CurrentStock = &balance
	return &resp, nil
}

func (w *LedgerWriter) newMovement(productID string, merchantID *string, kind entity.MovementType, qty int64, date *time.Time, notes *string, userID string) *entity.Movement {
	now := w.now()
	effective := now
	if date != nil && !date.IsZero() {
		effective = *date
	}
	var createdBy *string
	if userID != "" {
		createdBy = &userID
	}
	return &entity.Movement{
		ID:         uuid.New().String(),
		ProductID:  productID,
		MerchantID: merchantID,
		Type:       kind,
		Quantity:   qty,
		Date:       effective,
		Notes:      cleanNotes(notes),
		CreatedAt:  now,
		CreatedBy:  createdBy,
	}
}

// committed efectos posteriores al Commit; sus fallos no revierten la escritura.
func (w *LedgerWriter) committed(ctx context.Context, movs ...*entity.Movement) {
	for _, m := range movs {
		w.metrics.MovementRecorded(m.Type, m.Quantity)
	}
	if err := w.cache.Invalidate(ctx); err != nil {
		w.log.Warn().Err(err).Msg("no se pudo invalidar la caché de reportes")
	}
}

// reject registra el rechazo (log, métrica, span) y devuelve err sin modificar.
func (w *LedgerWriter) reject(span trace.Span, kind entity.MovementType, err error) error {
	reason := rejectReason(err)
	w.metrics.MovementRejected(kind, reason)
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)

	ev := w.log.Warn()
	if reason == "transaction_failure" || reason == "internal" {
		ev = w.log.Error()
	}
	ev.Err(err).Str("type", string(kind)).Str("reason", reason).Msg("movimiento rechazado")
	return err
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_argument"
	case errors.Is(err, domain.ErrTransactionFailure):
		return "transaction_failure"
	default:
		return "internal"
	}
}

func checkProductID(ve *domain.ValidationError, index int, id string) {
	if strings.TrimSpace(id) == "" {
		ve.Fields = append(ve.Fields, domain.FieldError{Index: index, Field: "productId", Message: "es obligatorio"})
	}
}

func checkQuantity(ve *domain.ValidationError, index int, qty int64) {
	if qty <= 0 {
		ve.Fields = append(ve.Fields, domain.FieldError{Index: index, Field: "quantity", Message: "debe ser un entero positivo"})
	}
}

func cleanNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	s := strings.TrimSpace(*notes)
	if s == "" {
		return nil
	}
	return &s
}
