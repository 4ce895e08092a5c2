package entity

import "time"

// Product representa un artículo del inventario con su saldo actual.
// CurrentStock solo cambia a través del libro de movimientos (LedgerWriter); nunca es negativo.
type Product struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Specification string    `db:"specification"` // presentación, medida, modelo
	Unit          string    `db:"unit"`          // unidad de medida
	CurrentStock  int64     `db:"current_stock"`
	ImageURL      string    `db:"image_url"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// DefaultUnit unidad asignada cuando el alta no especifica una.
const DefaultUnit = "unidad"
