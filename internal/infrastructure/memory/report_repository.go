package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

// ReportRepository consultas de lectura sobre el estado confirmado.
type ReportRepository struct {
	sc scope
}

var _ repository.ReportRepository = (*ReportRepository)(nil)

func (r *ReportRepository) SearchMovements(_ context.Context, q repository.MovementQuery) ([]*entity.MovementView, error) {
	matched := r.filter(q)
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var c int
		switch q.SortBy {
		case repository.SortByQuantity:
			c = cmpInt64(a.Quantity, b.Quantity)
		case repository.SortByCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		default:
			c = a.Date.Compare(b.Date)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if q.SortDesc {
			return c > 0
		}
		return c < 0
	})
	return paginate(matched, q.Offset, q.Limit), nil
}

func (r *ReportRepository) CountMovements(_ context.Context, q repository.MovementQuery) (int64, error) {
	return int64(len(r.filter(q))), nil
}

func (r *ReportRepository) SumMovements(_ context.Context, q repository.MovementQuery) (repository.MovementTotals, error) {
	var t repository.MovementTotals
	for _, v := range r.filter(q) {
		if v.Type == entity.MovementOutbound {
			t.Outbound += v.Quantity
		} else {
			t.Inbound += v.Quantity
		}
	}
	return t, nil
}

func (r *ReportRepository) OutboundByMerchant(_ context.Context, merchantID string, from, to time.Time) ([]entity.QuantityPoint, error) {
	var out []entity.QuantityPoint
	r.sc.view(func(d *dataset) {
		for _, m := range d.movements {
			if m.Type != entity.MovementOutbound || m.MerchantID == nil || *m.MerchantID != merchantID {
				continue
			}
			if m.Date.Before(from) || !m.Date.Before(to) {
				continue
			}
			out = append(out, entity.QuantityPoint{Date: m.Date, Quantity: m.Quantity})
		}
	})
	return out, nil
}

func (r *ReportRepository) OutboundTotalsByProduct(_ context.Context, since time.Time) (map[string]int64, error) {
	out := make(map[string]int64)
	r.sc.view(func(d *dataset) {
		for _, m := range d.movements {
			if m.Type == entity.MovementOutbound && !m.Date.Before(since) {
				out[m.ProductID] += m.Quantity
			}
		}
	})
	return out, nil
}

func (r *ReportRepository) filter(q repository.MovementQuery) []*entity.MovementView {
	var out []*entity.MovementView
	r.sc.view(func(d *dataset) {
		for _, m := range d.movements {
			if q.ProductID != "" && m.ProductID != q.ProductID {
				continue
			}
			if q.MerchantID != "" && (m.MerchantID == nil || *m.MerchantID != q.MerchantID) {
				continue
			}
			if q.Type != "" && m.Type != q.Type {
				continue
			}
			if q.From != nil && m.Date.Before(*q.From) {
				continue
			}
			if q.To != nil && m.Date.After(*q.To) {
				continue
			}
			v := d.view(m)
			if q.Search != "" && !matchesSearch(v, q.Search) {
				continue
			}
			out = append(out, v)
		}
	})
	return out
}

func matchesSearch(v *entity.MovementView, term string) bool {
	return containsFold(v.ProductName, term) ||
		containsFold(v.ProductSpecification, term) ||
		(v.MerchantName != nil && containsFold(*v.MerchantName, term)) ||
		(v.Notes != nil && containsFold(*v.Notes, term))
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
