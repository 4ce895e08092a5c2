package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

// MerchantRepository implementación en memoria de repository.MerchantRepository.
type MerchantRepository struct {
	sc scope
}

var _ repository.MerchantRepository = (*MerchantRepository)(nil)

func (r *MerchantRepository) Create(_ context.Context, m *entity.Merchant) error {
	return r.sc.update(func(d *dataset) error {
		if _, ok := d.merchants[m.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range d.merchants {
			if other.Name == m.Name {
				return domain.ErrDuplicate
			}
		}
		d.merchants[m.ID] = *m
		return nil
	})
}

func (r *MerchantRepository) GetByID(_ context.Context, id string) (*entity.Merchant, error) {
	var out *entity.Merchant
	r.sc.view(func(d *dataset) {
		if m, ok := d.merchants[id]; ok {
			out = &m
		}
	})
	return out, nil
}

func (r *MerchantRepository) GetByName(_ context.Context, name string) (*entity.Merchant, error) {
	var out *entity.Merchant
	r.sc.view(func(d *dataset) {
		for _, m := range d.merchants {
			if m.Name == name {
				m := m
				out = &m
				return
			}
		}
	})
	return out, nil
}

func (r *MerchantRepository) Update(_ context.Context, m *entity.Merchant) error {
	return r.sc.update(func(d *dataset) error {
		if _, ok := d.merchants[m.ID]; !ok {
			return domain.NewMissing("comercio", m.ID)
		}
		for _, other := range d.merchants {
			if other.ID != m.ID && other.Name == m.Name {
				return domain.ErrDuplicate
			}
		}
		d.merchants[m.ID] = *m
		return nil
	})
}

func (r *MerchantRepository) List(_ context.Context, q repository.ListQuery) ([]*entity.Merchant, int64, error) {
	var matched []entity.Merchant
	r.sc.view(func(d *dataset) {
		for _, m := range d.merchants {
			if q.Search == "" || containsFold(m.Name, q.Search) || containsFold(m.Contact, q.Search) || containsFold(m.Phone, q.Search) {
				matched = append(matched, m)
			}
		}
	})
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		c := strings.Compare(a.Name, b.Name)
		if q.SortBy == repository.SortByCreatedAt {
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if q.SortDesc {
			c = -c
		}
		if c == 0 {
			return a.ID < b.ID
		}
		return c < 0
	})
	page := paginate(matched, q.Offset, q.Limit)
	out := make([]*entity.Merchant, len(page))
	for i := range page {
		out[i] = &page[i]
	}
	return out, int64(len(matched)), nil
}

// Delete emula la FK ON DELETE RESTRICT de movements.
func (r *MerchantRepository) Delete(_ context.Context, id string) error {
	return r.sc.update(func(d *dataset) error {
		if _, ok := d.merchants[id]; !ok {
			return domain.NewMissing("comercio", id)
		}
		var refs int64
		for _, m := range d.movements {
			if m.MerchantID != nil && *m.MerchantID == id {
				refs++
			}
		}
		if refs > 0 {
			return &domain.ReferencedError{Entity: "comercio", ID: id, Count: refs}
		}
		delete(d.merchants, id)
		return nil
	})
}
