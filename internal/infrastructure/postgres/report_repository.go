package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

var movementSortColumns = map[string]string{
	repository.SortByDate:      "m.date",
	repository.SortByQuantity:  "m.quantity",
	repository.SortByCreatedAt: "m.created_at",
}

// ReportRepo consultas de solo lectura sobre el libro. Nunca toma bloqueos.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el repositorio de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// movementsFrom aplica los filtros comunes a listado, conteo y sumas.
func movementsFrom(b sq.SelectBuilder, q repository.MovementQuery) sq.SelectBuilder {
	b = b.From("movements m").
		Join("products p ON p.id = m.product_id").
		LeftJoin("merchants mc ON mc.id = m.merchant_id")
	if q.ProductID != "" {
		b = b.Where(sq.Eq{"m.product_id": q.ProductID})
	}
	if q.MerchantID != "" {
		b = b.Where(sq.Eq{"m.merchant_id": q.MerchantID})
	}
	if q.Type != "" {
		b = b.Where(sq.Eq{"m.type": string(q.Type)})
	}
	if q.From != nil {
		b = b.Where(sq.GtOrEq{"m.date": *q.From})
	}
	if q.To != nil {
		b = b.Where(sq.LtOrEq{"m.date": *q.To})
	}
	if q.Search != "" {
		pattern := likePattern(q.Search)
		b = b.Where(sq.Or{
			sq.ILike{"p.name": pattern},
			sq.ILike{"p.specification": pattern},
			sq.ILike{"mc.name": pattern},
			sq.ILike{"m.notes": pattern},
		})
	}
	return b
}

// SearchMovements página del listado; el id desempata para que lecturas repetidas coincidan.
func (r *ReportRepo) SearchMovements(ctx context.Context, q repository.MovementQuery) ([]*entity.MovementView, error) {
	col, ok := movementSortColumns[q.SortBy]
	if !ok {
		col = "m.date"
	}
	dir := orderDir(q.SortDesc)
	sel := movementsFrom(psql.Select(
		"m.id", "m.product_id", "m.merchant_id", "m.type", "m.quantity", "m.date", "m.notes", "m.created_at", "m.created_by",
		"p.name AS product_name", "p.specification AS product_specification", "p.unit AS product_unit",
		"mc.name AS merchant_name", "mc.contact AS merchant_contact", "mc.phone AS merchant_phone",
	), q).OrderBy(col+" "+dir, "m.id "+dir)
	if q.Limit > 0 {
		sel = sel.Limit(uint64(q.Limit)).Offset(uint64(q.Offset))
	}
	sqlStr, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movement search: %w", err)
	}
	out := []*entity.MovementView{}
	if err := pgxscan.Select(ctx, r.q, &out, sqlStr, args...); err != nil {
		return nil, mapError("search movements", err)
	}
	return out, nil
}

func (r *ReportRepo) CountMovements(ctx context.Context, q repository.MovementQuery) (int64, error) {
	sqlStr, args, err := movementsFrom(psql.Select("COUNT(*)"), q).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build movement count: %w", err)
	}
	var n int64
	if err := r.q.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, mapError("count movements", err)
	}
	return n, nil
}

// SumMovements SUM(bigint) devuelve NUMERIC; se escanea a decimal y se baja a int64.
func (r *ReportRepo) SumMovements(ctx context.Context, q repository.MovementQuery) (repository.MovementTotals, error) {
	sqlStr, args, err := movementsFrom(psql.Select(
		"COALESCE(SUM(m.quantity) FILTER (WHERE m.type = 'INBOUND'), 0)",
		"COALESCE(SUM(m.quantity) FILTER (WHERE m.type = 'OUTBOUND'), 0)",
	), q).ToSql()
	if err != nil {
		return repository.MovementTotals{}, fmt.Errorf("build movement totals: %w", err)
	}
	var inbound, outbound decimal.Decimal
	if err := r.q.QueryRow(ctx, sqlStr, args...).Scan(&inbound, &outbound); err != nil {
		return repository.MovementTotals{}, mapError("sum movements", err)
	}
	return repository.MovementTotals{Inbound: inbound.IntPart(), Outbound: outbound.IntPart()}, nil
}

// OutboundByMerchant salidas del comercio con fecha en [from, to).
func (r *ReportRepo) OutboundByMerchant(ctx context.Context, merchantID string, from, to time.Time) ([]entity.QuantityPoint, error) {
	var out []entity.QuantityPoint
	err := pgxscan.Select(ctx, r.q, &out, `
		SELECT date, quantity FROM movements
		WHERE type = 'OUTBOUND' AND merchant_id = $1 AND date >= $2 AND date < $3
		ORDER BY date`, merchantID, from, to)
	if err != nil {
		return nil, mapError("outbound by merchant", err)
	}
	return out, nil
}

type productTotal struct {
	ProductID string          `db:"product_id"`
	Total     decimal.Decimal `db:"total"`
}

func (r *ReportRepo) OutboundTotalsByProduct(ctx context.Context, since time.Time) (map[string]int64, error) {
	var rows []productTotal
	err := pgxscan.Select(ctx, r.q, &rows, `
		SELECT product_id, SUM(quantity) AS total FROM movements
		WHERE type = 'OUTBOUND' AND date >= $1
		GROUP BY product_id`, since)
	if err != nil {
		return nil, mapError("outbound totals by product", err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.Total.IntPart()
	}
	return out, nil
}
