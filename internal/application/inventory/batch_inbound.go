package inventory

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

// BatchInboundUseCase registra varias entradas en una sola transacción: o se aplican todas o ninguna.
type BatchInboundUseCase struct {
	writer *LedgerWriter
}

// NewBatchInboundUseCase comparte repositorios, caché y métricas con el LedgerWriter.
func NewBatchInboundUseCase(writer *LedgerWriter) *BatchInboundUseCase {
	return &BatchInboundUseCase{writer: writer}
}

// BatchItem ítem de un lote de entradas.
type BatchItem struct {
	ProductID string
	Quantity  int64
	Notes     *string
}

// BatchInboundInput lote completo. Notes del lote tiene prioridad sobre las notas de cada ítem.
type BatchInboundInput struct {
	Items  []BatchItem
	Date   *time.Time
	Notes  *string
	UserID string
}

// RecordBatchInbound valida el lote completo antes de escribir (enumerando todos los ítems
// inválidos y todos los productos inexistentes) y luego aplica cada entrada en una única transacción.
func (uc *BatchInboundUseCase) RecordBatchInbound(ctx context.Context, in BatchInboundInput) (*dto.BatchStockInResponse, error) {
	w := uc.writer
	ctx, span := tracer.Start(ctx, "ledger.record_batch_inbound", trace.WithAttributes(
		attribute.Int("batch.items", len(in.Items)),
	))
	defer span.End()

	if len(in.Items) == 0 {
		return nil, w.reject(span, entity.MovementInbound, domain.Invalid("items", "el lote debe tener al menos un ítem"))
	}
	ve := &domain.ValidationError{}
	for i, it := range in.Items {
		checkProductID(ve, i, it.ProductID)
		checkQuantity(ve, i, it.Quantity)
	}
	if len(ve.Fields) > 0 {
		return nil, w.reject(span, entity.MovementInbound, ve)
	}

	ids := uniqueProductIDs(in.Items)
	found, err := w.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, w.reject(span, entity.MovementInbound, err)
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return nil, w.reject(span, entity.MovementInbound, &domain.MissingReferencesError{Entity: "producto", IDs: missing})
	}

	shared := cleanNotes(in.Notes)
	movs := make([]*entity.Movement, len(in.Items))
	for i, it := range in.Items {
		notes := shared
		if notes == nil {
			notes = it.Notes
		}
		movs[i] = w.newMovement(it.ProductID, nil, entity.MovementInbound, it.Quantity, in.Date, notes, in.UserID)
	}

	products := make(map[string]*entity.Product, len(ids))
	start := time.Now()
	err = w.txRunner.Run(ctx, func(ctx context.Context, movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		// Orden fijo de bloqueo: dos lotes con productos cruzados no se interbloquean.
		sorted := append([]string(nil), ids...)
		sort.Strings(sorted)
		locked, err := productRepo.LockForUpdate(ctx, sorted)
		if err != nil {
			return err
		}
		if missing := missingIDs(sorted, locked); len(missing) > 0 {
			return &domain.MissingReferencesError{Entity: "producto", IDs: missing}
		}
		for _, p := range locked {
			products[p.ID] = p
		}
		for _, mov := range movs {
			if _, err := productRepo.AdjustStock(ctx, mov.ProductID, mov.Quantity); err != nil {
				return err
			}
			if err := movRepo.Create(ctx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	w.metrics.ObserveTransaction("batch_inbound", time.Since(start), err)
	if err != nil {
		return nil, w.reject(span, entity.MovementInbound, err)
	}

	w.committed(ctx, movs...)

	resp := &dto.BatchStockInResponse{Movements: make([]dto.MovementResponse, 0, len(movs))}
	for _, mov := range movs {
		resp.Movements = append(resp.Movements, toMovementResponse(viewOf(mov, products[mov.ProductID], nil)))
		resp.Summary.TotalQuantity += mov.Quantity
	}
	resp.Summary.TotalItems = len(movs)

	w.log.Info().
		Int("items", resp.Summary.TotalItems).
		Int64("total_quantity", resp.Summary.TotalQuantity).
		Msg("lote de entradas registrado")
	return resp, nil
}

func uniqueProductIDs(items []BatchItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}

// missingIDs devuelve, en el orden de ids, los que no están en found.
func missingIDs(ids []string, found []*entity.Product) []string {
	present := make(map[string]struct{}, len(found))
	for _, p := range found {
		present[p.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
