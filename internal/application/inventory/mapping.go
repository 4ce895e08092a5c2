package inventory

import (
	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain/entity"
)

func viewOf(m *entity.Movement, p *entity.Product, merchant *entity.Merchant) *entity.MovementView {
	v := &entity.MovementView{Movement: *m}
	if p != nil {
		v.ProductName = p.Name
		v.ProductSpecification = p.Specification
		v.ProductUnit = p.Unit
	}
	if merchant != nil {
		v.MerchantName = &merchant.Name
		v.MerchantContact = &merchant.Contact
		v.MerchantPhone = &merchant.Phone
	}
	return v
}

// ToMovementResponse expone el mapeo para otros casos de uso (detalle de comercio).
func ToMovementResponse(v *entity.MovementView) dto.MovementResponse {
	return toMovementResponse(v)
}

func toMovementResponse(v *entity.MovementView) dto.MovementResponse {
	resp := dto.MovementResponse{
		ID:         v.ID,
		ProductID:  v.ProductID,
		MerchantID: v.MerchantID,
		Type:       string(v.Type),
		Quantity:   v.Quantity,
		Date:       v.Date,
		Notes:      v.Notes,
		CreatedAt:  v.CreatedAt,
		CreatedBy:  v.CreatedBy,
		Product: dto.ProductSummary{
			ID:            v.ProductID,
			Name:          v.ProductName,
			Specification: v.ProductSpecification,
			Unit:          v.ProductUnit,
		},
	}
	if v.MerchantID != nil {
		resp.Merchant = &dto.MerchantSummary{
			ID:      *v.MerchantID,
			Name:    deref(v.MerchantName),
			Contact: deref(v.MerchantContact),
			Phone:   deref(v.MerchantPhone),
		}
	}
	return resp
}

func toMovementResponses(views []*entity.MovementView) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toMovementResponse(v))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
