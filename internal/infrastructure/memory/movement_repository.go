package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

// MovementRepository libro de movimientos en memoria (solo anexado).
type MovementRepository struct {
	sc scope
}

var _ repository.MovementRepository = (*MovementRepository)(nil)

// Create emula las restricciones de la tabla movements: FKs y CHECKs.
func (r *MovementRepository) Create(_ context.Context, m *entity.Movement) error {
	return r.sc.update(func(d *dataset) error {
		if m.Quantity <= 0 || !m.Type.Valid() {
			return domain.ErrInvalidInput
		}
		if (m.Type == entity.MovementOutbound) != (m.MerchantID != nil) {
			return domain.ErrInvalidInput
		}
		if _, ok := d.products[m.ProductID]; !ok {
			return domain.NewMissing("producto", m.ProductID)
		}
		if m.MerchantID != nil {
			if _, ok := d.merchants[*m.MerchantID]; !ok {
				return domain.NewMissing("comercio", *m.MerchantID)
			}
		}
		for _, existing := range d.movements {
			if existing.ID == m.ID {
				return domain.ErrDuplicate
			}
		}
		d.movements = append(d.movements, *m)
		return nil
	})
}

func (r *MovementRepository) GetByID(_ context.Context, id string) (*entity.MovementView, error) {
	var out *entity.MovementView
	r.sc.view(func(d *dataset) {
		for i := range d.movements {
			if d.movements[i].ID == id {
				out = d.view(d.movements[i])
				return
			}
		}
	})
	return out, nil
}

func (r *MovementRepository) CountByProduct(_ context.Context, productID string) (int64, error) {
	var n int64
	r.sc.view(func(d *dataset) {
		for _, m := range d.movements {
			if m.ProductID == productID {
				n++
			}
		}
	})
	return n, nil
}

func (r *MovementRepository) CountByMerchant(_ context.Context, merchantID string) (int64, error) {
	var n int64
	r.sc.view(func(d *dataset) {
		for _, m := range d.movements {
			if m.MerchantID != nil && *m.MerchantID == merchantID {
				n++
			}
		}
	})
	return n, nil
}

// ListRecentByMerchant últimos movimientos del comercio por fecha descendente.
func (r *MovementRepository) ListRecentByMerchant(_ context.Context, merchantID string, limit int) ([]*entity.MovementView, error) {
	var out []*entity.MovementView
	r.sc.view(func(d *dataset) {
		for _, m := range d.movements {
			if m.MerchantID != nil && *m.MerchantID == merchantID {
				out = append(out, d.view(m))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// view arma el movimiento con sus resúmenes (equivalente al JOIN de la versión SQL).
func (d *dataset) view(m entity.Movement) *entity.MovementView {
	v := &entity.MovementView{Movement: m}
	if p, ok := d.products[m.ProductID]; ok {
		v.ProductName = p.Name
		v.ProductSpecification = p.Specification
		v.ProductUnit = p.Unit
	}
	if m.MerchantID != nil {
		if mer, ok := d.merchants[*m.MerchantID]; ok {
			v.MerchantName = &mer.Name
			v.MerchantContact = &mer.Contact
			v.MerchantPhone = &mer.Phone
		}
	}
	return v
}
