package entity

import "time"

// MovementType tipo de movimiento del libro de inventario.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementInbound  MovementType = "INBOUND"  // entrada
	MovementOutbound MovementType = "OUTBOUND" // salida hacia un comercio
)

// Valid indica si el tipo es uno de los reconocidos por el libro.
func (t MovementType) Valid() bool {
	return t == MovementInbound || t == MovementOutbound
}

// Movement es un asiento inmutable del libro de inventario.
// MerchantID es obligatorio en salidas y nulo en entradas.
type Movement struct {
	ID         string       `db:"id"`
	ProductID  string       `db:"product_id"`
	MerchantID *string      `db:"merchant_id"`
	Type       MovementType `db:"type"`
	Quantity   int64        `db:"quantity"` // siempre > 0; el signo lo da Type
	Date       time.Time    `db:"date"`     // fecha efectiva de negocio
	Notes      *string      `db:"notes"`
	CreatedAt  time.Time    `db:"created_at"`
	CreatedBy  *string      `db:"created_by"`
}

// SignedQuantity devuelve la cantidad con signo según el efecto sobre el stock.
func (m *Movement) SignedQuantity() int64 {
	if m.Type == MovementOutbound {
		return -m.Quantity
	}
	return m.Quantity
}

// MovementView movimiento con los resúmenes desnormalizados de producto y comercio para presentación.
type MovementView struct {
	Movement
	ProductName          string  `db:"product_name"`
	ProductSpecification string  `db:"product_specification"`
	ProductUnit          string  `db:"product_unit"`
	MerchantName         *string `db:"merchant_name"`
	MerchantContact      *string `db:"merchant_contact"`
	MerchantPhone        *string `db:"merchant_phone"`
}

// QuantityPoint cantidad movida en una fecha; insumo de las tendencias mensuales.
type QuantityPoint struct {
	Date     time.Time `db:"date"`
	Quantity int64     `db:"quantity"`
}
