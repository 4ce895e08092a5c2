package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain"
)

// RecordInboundFromRequest adapta el request HTTP al caso de uso RecordInbound.
// userID viene de la identidad ya validada por el middleware de auth.
func (w *LedgerWriter) RecordInboundFromRequest(ctx context.Context, userID string, in dto.StockInRequest) (*dto.MovementResponse, error) {
	date, err := parseOptionalDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	return w.RecordInbound(ctx, InboundInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Date:      date,
		Notes:     in.Notes,
		UserID:    userID,
	})
}

// RecordOutboundFromRequest adapta el request HTTP al caso de uso RecordOutbound.
func (w *LedgerWriter) RecordOutboundFromRequest(ctx context.Context, userID string, in dto.StockOutRequest) (*dto.MovementResponse, error) {
	date, err := parseOptionalDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	return w.RecordOutbound(ctx, OutboundInput{
		ProductID:  in.ProductID,
		MerchantID: in.MerchantID,
		Quantity:   in.Quantity,
		Date:       date,
		Notes:      in.Notes,
		UserID:     userID,
	})
}

// RecordBatchInboundFromRequest adapta el request HTTP al caso de uso RecordBatchInbound.
func (uc *BatchInboundUseCase) RecordBatchInboundFromRequest(ctx context.Context, userID string, in dto.BatchStockInRequest) (*dto.BatchStockInResponse, error) {
	date, err := parseOptionalDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	items := make([]BatchItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, BatchItem{ProductID: it.ProductID, Quantity: it.Quantity, Notes: it.Notes})
	}
	return uc.RecordBatchInbound(ctx, BatchInboundInput{
		Items:  items,
		Date:   date,
		Notes:  in.Notes,
		UserID: userID,
	})
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := dto.ParseDate(raw, false)
	if err != nil {
		return nil, domain.Invalid(field, "fecha inválida, use RFC3339 o YYYY-MM-DD")
	}
	return &t, nil
}
