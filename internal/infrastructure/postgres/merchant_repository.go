package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

var _ repository.MerchantRepository = (*MerchantRepo)(nil)

const merchantColumns = "id, name, contact, phone, address, created_at, updated_at"

var merchantSortColumns = map[string]string{
	repository.SortByName:      "name",
	repository.SortByCreatedAt: "created_at",
}

// MerchantRepo implementación del puerto MerchantRepository sobre PostgreSQL.
type MerchantRepo struct {
	q Querier
}

// NewMerchantRepository construye el adaptador de persistencia para comercios.
func NewMerchantRepository(q Querier) *MerchantRepo {
	return &MerchantRepo{q: q}
}

func (r *MerchantRepo) Create(ctx context.Context, m *entity.Merchant) error {
	query := `
		INSERT INTO merchants (id, name, contact, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, m.ID, m.Name, m.Contact, m.Phone, m.Address, m.CreatedAt, m.UpdatedAt)
	return mapError("insert merchant", err)
}

// GetByID devuelve (nil, nil) si no existe.
func (r *MerchantRepo) GetByID(ctx context.Context, id string) (*entity.Merchant, error) {
	return r.getOne(ctx, "get merchant", `SELECT `+merchantColumns+` FROM merchants WHERE id = $1`, id)
}

func (r *MerchantRepo) GetByName(ctx context.Context, name string) (*entity.Merchant, error) {
	return r.getOne(ctx, "get merchant by name", `SELECT `+merchantColumns+` FROM merchants WHERE name = $1`, name)
}

func (r *MerchantRepo) Update(ctx context.Context, m *entity.Merchant) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE merchants SET name = $2, contact = $3, phone = $4, address = $5, updated_at = $6
		WHERE id = $1`,
		m.ID, m.Name, m.Contact, m.Phone, m.Address, m.UpdatedAt,
	)
	if err != nil {
		return mapError("update merchant", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewMissing("comercio", m.ID)
	}
	return nil
}

// List búsqueda por nombre, contacto o teléfono.
func (r *MerchantRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.Merchant, int64, error) {
	base := psql.Select().From("merchants")
	if q.Search != "" {
		pattern := likePattern(q.Search)
		base = base.Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"contact": pattern},
			sq.ILike{"phone": pattern},
		})
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapError("count merchants", err)
	}

	col, ok := merchantSortColumns[q.SortBy]
	if !ok {
		col = "name"
	}
	dir := orderDir(q.SortDesc)
	sel := base.Columns(merchantColumns).OrderBy(col+" "+dir, "id "+dir)
	if q.Limit > 0 {
		sel = sel.Limit(uint64(q.Limit)).Offset(uint64(q.Offset))
	}
	sqlStr, args, err := sel.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	var out []*entity.Merchant
	if err := pgxscan.Select(ctx, r.q, &out, sqlStr, args...); err != nil {
		return nil, 0, mapError("list merchants", err)
	}
	return out, total, nil
}

func (r *MerchantRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM merchants WHERE id = $1`, id)
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == codeForeignKeyViolation {
			return &domain.ReferencedError{Entity: "comercio", ID: id, Count: countMovementRefs(ctx, r.q, "merchant_id", id)}
		}
		return mapError("delete merchant", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewMissing("comercio", id)
	}
	return nil
}

func (r *MerchantRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Merchant, error) {
	var m entity.Merchant
	if err := pgxscan.Get(ctx, r.q, &m, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return &m, nil
}
