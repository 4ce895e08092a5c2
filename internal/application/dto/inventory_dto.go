package dto

import "time"

// StockInRequest entrada de mercancía (POST /api/inventory/stock-in).
type StockInRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Quantity  int64   `json:"quantity" validate:"required,gt=0"`
	Date      string  `json:"date"` // opcional; RFC3339 o YYYY-MM-DD, por defecto ahora
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

// StockOutRequest salida hacia un comercio (POST /api/inventory/stock-out).
type StockOutRequest struct {
	ProductID  string  `json:"productId" validate:"required"`
	MerchantID string  `json:"merchantId" validate:"required"`
	Quantity   int64   `json:"quantity" validate:"required,gt=0"`
	Date       string  `json:"date"`
	Notes      *string `json:"notes" validate:"omitempty,max=500"`
}

// BatchStockInItem ítem de una entrada por lote. Se valida en el caso de uso para reportar el índice.
type BatchStockInItem struct {
	ProductID string  `json:"productId"`
	Quantity  int64   `json:"quantity"`
	Notes     *string `json:"notes"`
}

// BatchStockInRequest entrada por lote (POST /api/inventory/batch-stock-in).
type BatchStockInRequest struct {
	Items []BatchStockInItem `json:"items"`
	Date  string             `json:"date"`
	Notes *string            `json:"notes" validate:"omitempty,max=500"`
}

// ProductSummary resumen desnormalizado del producto en un movimiento.
type ProductSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Specification string `json:"specification"`
	Unit          string `json:"unit"`
}

// MerchantSummary resumen desnormalizado del comercio en una salida.
type MerchantSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}

// MovementResponse asiento del libro con sus resúmenes.
type MovementResponse struct {
	ID         string           `json:"id"`
	ProductID  string           `json:"productId"`
	MerchantID *string          `json:"merchantId"`
	Type       string           `json:"type"`
	Quantity   int64            `json:"quantity"`
	Date       time.Time        `json:"date"`
	Notes      *string          `json:"notes"`
	CreatedAt  time.Time        `json:"createdAt"`
	CreatedBy  *string          `json:"createdBy,omitempty"`
	Product    ProductSummary   `json:"product"`
	Merchant   *MerchantSummary `json:"merchant"`
	// CurrentStock saldo del producto tras la escritura; solo en respuestas de registro.
	CurrentStock *int64 `json:"currentStock,omitempty"`
}

// BatchSummary totales de una entrada por lote.
type BatchSummary struct {
	TotalItems    int   `json:"totalItems"`
	TotalQuantity int64 `json:"totalQuantity"`
}

// BatchStockInResponse movimientos creados por el lote.
type BatchStockInResponse struct {
	Movements []MovementResponse `json:"movements"`
	Summary   BatchSummary       `json:"summary"`
}

// MovementFilterRequest query string de GET /api/inventory/transactions.
type MovementFilterRequest struct {
	PageRequest
	Search     string `query:"search"`
	ProductID  string `query:"productId"`
	MerchantID string `query:"merchantId"`
	Type       string `query:"type"`
	StartDate  string `query:"startDate"`
	EndDate    string `query:"endDate"`
	SortBy     string `query:"sortBy"`
	SortOrder  string `query:"sortOrder"`
}

// MovementStatistics totales sobre todo el conjunto filtrado (no solo la página).
type MovementStatistics struct {
	InboundTotal  int64 `json:"inboundTotal"`
	OutboundTotal int64 `json:"outboundTotal"`
	NetChange     int64 `json:"netChange"`
}

// MovementListResponse página de movimientos.
type MovementListResponse struct {
	Items      []MovementResponse `json:"items"`
	Pagination PageResponse       `json:"pagination"`
	Statistics MovementStatistics `json:"statistics"`
}
