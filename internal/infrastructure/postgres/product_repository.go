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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = "id, name, specification, unit, current_stock, image_url, created_at, updated_at"

// productSortColumns columnas de orden permitidas en el listado.
var productSortColumns = map[string]string{
	repository.SortByName:      "name",
	repository.SortByStock:     "current_stock",
	repository.SortByCreatedAt: "created_at",
}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, name, specification, unit, current_stock, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Specification, p.Unit, p.CurrentStock, p.ImageURL, p.CreatedAt, p.UpdatedAt,
	)
	return mapError("insert product", err)
}

// GetByID obtiene un producto por ID. Devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByName busca por nombre exacto.
func (r *ProductRepo) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by name", `SELECT `+productColumns+` FROM products WHERE name = $1`, name)
}

// GetByIDs devuelve los productos existentes entre ids; los ausentes se omiten.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []*entity.Product
	err := pgxscan.Select(ctx, r.q, &out,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, mapError("get products", err)
	}
	return out, nil
}

// GetForUpdate bloquea la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "lock product", `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// LockForUpdate toma los bloqueos en orden de ID: dos lotes con productos en común no se interbloquean.
func (r *ProductRepo) LockForUpdate(ctx context.Context, ids []string) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []*entity.Product
	err := pgxscan.Select(ctx, r.q, &out,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, mapError("lock products", err)
	}
	return out, nil
}

// AdjustStock aplica delta en una sola sentencia; el CHECK de la tabla impide saldos negativos.
func (r *ProductRepo) AdjustStock(ctx context.Context, id string, delta int64) (int64, error) {
	var balance int64
	err := r.q.QueryRow(ctx, `
		UPDATE products SET current_stock = current_stock + $2, updated_at = now()
		WHERE id = $1
		RETURNING current_stock`, id, delta).Scan(&balance)
	if err != nil {
		if pgxscan.NotFound(err) {
			return 0, domain.NewMissing("producto", id)
		}
		return 0, mapError("adjust stock", err)
	}
	return balance, nil
}

// Update actualiza los datos descriptivos. current_stock no se toca aquí.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE products SET name = $2, specification = $3, unit = $4, image_url = $5, updated_at = $6
		WHERE id = $1`,
		p.ID, p.Name, p.Specification, p.Unit, p.ImageURL, p.UpdatedAt,
	)
	if err != nil {
		return mapError("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewMissing("producto", p.ID)
	}
	return nil
}

// List búsqueda por nombre o especificación, con orden estable (id desempata) y total.
func (r *ProductRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.Product, int64, error) {
	base := psql.Select().From("products")
	if q.Search != "" {
		pattern := likePattern(q.Search)
		base = base.Where(sq.Or{sq.ILike{"name": pattern}, sq.ILike{"specification": pattern}})
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapError("count products", err)
	}

	col, ok := productSortColumns[q.SortBy]
	if !ok {
		col = "name"
	}
	dir := orderDir(q.SortDesc)
	sel := base.Columns(productColumns).OrderBy(col+" "+dir, "id "+dir)
	if q.Limit > 0 {
		sel = sel.Limit(uint64(q.Limit)).Offset(uint64(q.Offset))
	}
	sqlStr, args, err := sel.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	var out []*entity.Product
	if err := pgxscan.Select(ctx, r.q, &out, sqlStr, args...); err != nil {
		return nil, 0, mapError("list products", err)
	}
	return out, total, nil
}

// ListAll todos los productos por nombre (id desempata); insumo del reporte de alertas.
func (r *ProductRepo) ListAll(ctx context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	if err := pgxscan.Select(ctx, r.q, &out, `SELECT `+productColumns+` FROM products ORDER BY name, id`); err != nil {
		return nil, mapError("list all products", err)
	}
	return out, nil
}

// Delete falla con ReferencedError si hay movimientos (FK ON DELETE RESTRICT).
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == codeForeignKeyViolation {
			return &domain.ReferencedError{Entity: "producto", ID: id, Count: countMovementRefs(ctx, r.q, "product_id", id)}
		}
		return mapError("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewMissing("producto", id)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Product, error) {
	var p entity.Product
	if err := pgxscan.Get(ctx, r.q, &p, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return &p, nil
}

