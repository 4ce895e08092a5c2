package repository

import (
	"context"

	"github.com/jhoicas/stockledger/internal/domain/entity"
)

// MerchantRepository define el puerto de persistencia para Merchant (contrapartes de las salidas).
type MerchantRepository interface {
	Create(ctx context.Context, merchant *entity.Merchant) error
	GetByID(ctx context.Context, id string) (*entity.Merchant, error)
	GetByName(ctx context.Context, name string) (*entity.Merchant, error)
	Update(ctx context.Context, merchant *entity.Merchant) error
	List(ctx context.Context, q ListQuery) ([]*entity.Merchant, int64, error)
	Delete(ctx context.Context, id string) error
}
