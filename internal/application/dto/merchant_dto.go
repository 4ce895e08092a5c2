package dto

import "time"

// CreateMerchantRequest entrada para crear un comercio.
type CreateMerchantRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Contact string `json:"contact" validate:"max=100"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=300"`
}

// UpdateMerchantRequest actualización parcial de un comercio.
type UpdateMerchantRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Contact *string `json:"contact" validate:"omitempty,max=100"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Address *string `json:"address" validate:"omitempty,max=300"`
}

// MerchantListRequest query string del listado de comercios.
type MerchantListRequest struct {
	PageRequest
	Search    string `query:"search"`
	SortBy    string `query:"sortBy"` // name | createdAt
	SortOrder string `query:"sortOrder"`
}

// MerchantResponse salida de un comercio.
type MerchantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MerchantDetailResponse comercio con sus movimientos más recientes.
type MerchantDetailResponse struct {
	MerchantResponse
	RecentMovements []MovementResponse `json:"recentMovements"`
}

// MerchantListResponse lista paginada de comercios.
type MerchantListResponse struct {
	Items      []MerchantResponse `json:"items"`
	Pagination PageResponse       `json:"pagination"`
}
