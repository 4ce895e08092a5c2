package postgres

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// movementViewSelect movimiento con los resúmenes de producto y comercio.
const movementViewSelect = `
	SELECT m.id, m.product_id, m.merchant_id, m.type, m.quantity, m.date, m.notes, m.created_at, m.created_by,
	       p.name AS product_name, p.specification AS product_specification, p.unit AS product_unit,
	       mc.name AS merchant_name, mc.contact AS merchant_contact, mc.phone AS merchant_phone
	FROM movements m
	JOIN products p ON p.id = m.product_id
	LEFT JOIN merchants mc ON mc.id = m.merchant_id`

// MovementRepo libro de movimientos sobre PostgreSQL. Solo INSERT y lecturas; un trigger rechaza UPDATE/DELETE.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el repositorio. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create anexa un movimiento. Una FK rota se informa como NotFound de la entidad referida.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, product_id, merchant_id, type, quantity, date, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.MerchantID, string(m.Type), m.Quantity, m.Date, m.Notes, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == codeForeignKeyViolation {
			if pgErr.ConstraintName == "movements_merchant_id_fkey" && m.MerchantID != nil {
				return domain.NewMissing("comercio", *m.MerchantID)
			}
			return domain.NewMissing("producto", m.ProductID)
		}
		return mapError("insert movement", err)
	}
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.MovementView, error) {
	var v entity.MovementView
	if err := pgxscan.Get(ctx, r.q, &v, movementViewSelect+` WHERE m.id = $1`, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, mapError("get movement", err)
	}
	return &v, nil
}

func (r *MovementRepo) CountByProduct(ctx context.Context, productID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movements WHERE product_id = $1`, productID).Scan(&n)
	return n, mapError("count movements by product", err)
}

func (r *MovementRepo) CountByMerchant(ctx context.Context, merchantID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movements WHERE merchant_id = $1`, merchantID).Scan(&n)
	return n, mapError("count movements by merchant", err)
}

// ListRecentByMerchant últimos movimientos del comercio, fecha descendente.
func (r *MovementRepo) ListRecentByMerchant(ctx context.Context, merchantID string, limit int) ([]*entity.MovementView, error) {
	var out []*entity.MovementView
	err := pgxscan.Select(ctx, r.q, &out,
		movementViewSelect+` WHERE m.merchant_id = $1 ORDER BY m.date DESC, m.id DESC LIMIT $2`,
		merchantID, limit)
	if err != nil {
		return nil, mapError("list recent movements", err)
	}
	return out, nil
}
