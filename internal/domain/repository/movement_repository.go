package repository

import (
	"context"

	"github.com/jhoicas/stockledger/internal/domain/entity"
)

// MovementRepository puerto del libro de movimientos. Es de solo anexado:
// no existen operaciones de actualización ni borrado.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.MovementView, error)
	// CountByProduct y CountByMerchant alimentan las guardas de borrado del CRUD.
	CountByProduct(ctx context.Context, productID string) (int64, error)
	CountByMerchant(ctx context.Context, merchantID string) (int64, error)
	ListRecentByMerchant(ctx context.Context, merchantID string, limit int) ([]*entity.MovementView, error)
}
