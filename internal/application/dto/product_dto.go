package dto

import "time"

// CreateProductRequest entrada para crear un producto. El stock inicial es 0: solo cambia vía movimientos.
type CreateProductRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=200"`
	Specification string `json:"specification" validate:"max=200"`
	Unit          string `json:"unit" validate:"omitempty,max=50"`
	ImageURL      string `json:"imageUrl" validate:"omitempty,max=500"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock).
type UpdateProductRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=200"`
	Specification *string `json:"specification" validate:"omitempty,max=200"`
	Unit          *string `json:"unit" validate:"omitempty,min=1,max=50"`
	ImageURL      *string `json:"imageUrl" validate:"omitempty,max=500"`
}

// ProductListRequest query string del listado de productos.
type ProductListRequest struct {
	PageRequest
	Search    string `query:"search"`
	SortBy    string `query:"sortBy"` // name | currentStock | createdAt
	SortOrder string `query:"sortOrder"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Specification string    `json:"specification"`
	Unit          string    `json:"unit"`
	CurrentStock  int64     `json:"currentStock"`
	ImageURL      string    `json:"imageUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items      []ProductResponse `json:"items"`
	Pagination PageResponse      `json:"pagination"`
}
