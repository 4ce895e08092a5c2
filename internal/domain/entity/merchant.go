package entity

import "time"

// Merchant representa un comercio o contraparte de las salidas de inventario.
type Merchant struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Contact   string    `db:"contact"`
	Phone     string    `db:"phone"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
