package repository

import (
	"context"

	"github.com/jhoicas/stockledger/internal/domain/entity"
)

// Columnas de orden de los listados CRUD (además de SortByCreatedAt).
const (
	SortByName  = "name"
	SortByStock = "currentStock"
)

// ListQuery filtro genérico de listados CRUD (búsqueda libre, orden y paginación).
type ListQuery struct {
	Search   string
	SortBy   string // columna ya validada por el caso de uso
	SortDesc bool
	Limit    int
	Offset   int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos *ForUpdate y AdjustStock solo tienen sentido dentro de una transacción (TxRunner).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// LockForUpdate bloquea varias filas en orden de ID para evitar interbloqueos entre lotes.
	LockForUpdate(ctx context.Context, ids []string) ([]*entity.Product, error)
	// AdjustStock suma delta (positivo o negativo) al stock actual y devuelve el nuevo saldo.
	AdjustStock(ctx context.Context, id string, delta int64) (int64, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, q ListQuery) ([]*entity.Product, int64, error)
	ListAll(ctx context.Context) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
