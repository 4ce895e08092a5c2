package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

// ProductRepository implementación en memoria de repository.ProductRepository.
// Dentro de una transacción (Store.Run) el bloqueo de filas es implícito: la tx tiene exclusividad.
type ProductRepository struct {
	sc scope
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	return r.sc.update(func(d *dataset) error {
		if _, ok := d.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range d.products {
			if other.Name == p.Name {
				return domain.ErrDuplicate
			}
		}
		if p.CurrentStock < 0 {
			return domain.ErrInvalidInput
		}
		d.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.sc.view(func(d *dataset) {
		if p, ok := d.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *ProductRepository) GetByName(_ context.Context, name string) (*entity.Product, error) {
	var out *entity.Product
	r.sc.view(func(d *dataset) {
		for _, p := range d.products {
			if p.Name == name {
				p := p
				out = &p
				return
			}
		}
	})
	return out, nil
}

func (r *ProductRepository) GetByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	r.sc.view(func(d *dataset) {
		for _, id := range ids {
			if p, ok := d.products[id]; ok {
				out = append(out, &p)
			}
		}
	})
	return out, nil
}

func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepository) LockForUpdate(ctx context.Context, ids []string) ([]*entity.Product, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return r.GetByIDs(ctx, sorted)
}

// AdjustStock emula el CHECK (current_stock >= 0) de la tabla.
func (r *ProductRepository) AdjustStock(_ context.Context, id string, delta int64) (int64, error) {
	var balance int64
	err := r.sc.update(func(d *dataset) error {
		p, ok := d.products[id]
		if !ok {
			return domain.NewMissing("producto", id)
		}
		if p.CurrentStock+delta < 0 {
			return &domain.InsufficientStockError{ProductID: id, Current: p.CurrentStock, Requested: -delta}
		}
		p.CurrentStock += delta
		d.products[id] = p
		balance = p.CurrentStock
		return nil
	})
	return balance, err
}

// Update no toca current_stock: el saldo solo cambia vía AdjustStock.
func (r *ProductRepository) Update(_ context.Context, p *entity.Product) error {
	return r.sc.update(func(d *dataset) error {
		cur, ok := d.products[p.ID]
		if !ok {
			return domain.NewMissing("producto", p.ID)
		}
		for _, other := range d.products {
			if other.ID != p.ID && other.Name == p.Name {
				return domain.ErrDuplicate
			}
		}
		cur.Name = p.Name
		cur.Specification = p.Specification
		cur.Unit = p.Unit
		cur.ImageURL = p.ImageURL
		cur.UpdatedAt = p.UpdatedAt
		d.products[p.ID] = cur
		return nil
	})
}

func (r *ProductRepository) List(_ context.Context, q repository.ListQuery) ([]*entity.Product, int64, error) {
	var matched []entity.Product
	r.sc.view(func(d *dataset) {
		for _, p := range d.products {
			if q.Search == "" || containsFold(p.Name, q.Search) || containsFold(p.Specification, q.Search) {
				matched = append(matched, p)
			}
		}
	})
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var c int
		switch q.SortBy {
		case repository.SortByStock:
			c = cmpInt64(a.CurrentStock, b.CurrentStock)
		case repository.SortByCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		default:
			c = strings.Compare(a.Name, b.Name)
		}
		if q.SortDesc {
			c = -c
		}
		if c == 0 {
			return a.ID < b.ID
		}
		return c < 0
	})
	total := int64(len(matched))
	return toProductPtrs(paginate(matched, q.Offset, q.Limit)), total, nil
}

// ListAll productos ordenados por nombre (y por ID ante empates).
func (r *ProductRepository) ListAll(ctx context.Context) ([]*entity.Product, error) {
	items, _, err := r.List(ctx, repository.ListQuery{SortBy: repository.SortByName})
	return items, err
}

// Delete emula la FK ON DELETE RESTRICT de movements.
func (r *ProductRepository) Delete(_ context.Context, id string) error {
	return r.sc.update(func(d *dataset) error {
		if _, ok := d.products[id]; !ok {
			return domain.NewMissing("producto", id)
		}
		var refs int64
		for _, m := range d.movements {
			if m.ProductID == id {
				refs++
			}
		}
		if refs > 0 {
			return &domain.ReferencedError{Entity: "producto", ID: id, Count: refs}
		}
		delete(d.products, id)
		return nil
	})
}

func toProductPtrs(items []entity.Product) []*entity.Product {
	out := make([]*entity.Product, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
