package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger/internal/application/dto"
	appinv "github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/application/usecase"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/infrastructure/memory"
)

type crud struct {
	products  *usecase.ProductUseCase
	merchants *usecase.MerchantUseCase
	writer    *appinv.LedgerWriter
}

func newCrud() *crud {
	store := memory.NewStore()
	repos := store.Repositories()
	return &crud{
		products:  usecase.NewProductUseCase(repos.Products, repos.Movements),
		merchants: usecase.NewMerchantUseCase(repos.Merchants, repos.Movements, repos.Movements),
		writer:    appinv.NewLedgerWriter(store, repos.Products, repos.Merchants, nil, nil, nil),
	}
}

func TestProductUseCase_CreateUpdateList(t *testing.T) {
	c := newCrud()
	ctx := context.Background()

	p, err := c.products.Create(ctx, dto.CreateProductRequest{Name: " Arroz ", Specification: "bulto 25kg"})
	require.NoError(t, err)
	assert.Equal(t, "Arroz", p.Name)
	assert.Equal(t, "unidad", p.Unit)
	assert.Zero(t, p.CurrentStock)

	_, err = c.products.Create(ctx, dto.CreateProductRequest{Name: "Arroz"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = c.products.Create(ctx, dto.CreateProductRequest{Name: "Frijol", Specification: "libra"})
	require.NoError(t, err)

	newName := "Arroz blanco"
	updated, err := c.products.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)

	taken := "Frijol"
	_, err = c.products.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := c.products.List(ctx, dto.ProductListRequest{Search: "LIBRA"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Frijol", list.Items[0].Name)

	list, err = c.products.List(ctx, dto.ProductListRequest{SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Pagination.Total)
	assert.Equal(t, "Frijol", list.Items[0].Name)

	_, err = c.products.List(ctx, dto.ProductListRequest{SortBy: "price"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = c.products.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_DeleteConMovimientos(t *testing.T) {
	c := newCrud()
	ctx := context.Background()

	p, err := c.products.Create(ctx, dto.CreateProductRequest{Name: "Aceite"})
	require.NoError(t, err)
	free, err := c.products.Create(ctx, dto.CreateProductRequest{Name: "Sal"})
	require.NoError(t, err)

	_, err = c.writer.RecordInbound(ctx, appinv.InboundInput{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	err = c.products.Delete(ctx, p.ID)
	var ref *domain.ReferencedError
	require.True(t, errors.As(err, &ref))
	assert.Equal(t, int64(1), ref.Count)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, c.products.Delete(ctx, free.ID))
	_, err = c.products.GetByID(ctx, free.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMerchantUseCase_DetalleYBorrado(t *testing.T) {
	c := newCrud()
	ctx := context.Background()

	m, err := c.merchants.Create(ctx, dto.CreateMerchantRequest{Name: "Tienda Centro", Phone: "3001234567"})
	require.NoError(t, err)
	_, err = c.merchants.Create(ctx, dto.CreateMerchantRequest{Name: "Tienda Centro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	p, err := c.products.Create(ctx, dto.CreateProductRequest{Name: "Panela"})
	require.NoError(t, err)
	_, err = c.writer.RecordInbound(ctx, appinv.InboundInput{ProductID: p.ID, Quantity: 30})
	require.NoError(t, err)
	for i := 0; i < 12; i++ {
		_, err = c.writer.RecordOutbound(ctx, appinv.OutboundInput{ProductID: p.ID, MerchantID: m.ID, Quantity: 1})
		require.NoError(t, err)
	}

	detail, err := c.merchants.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tienda Centro", detail.Name)
	assert.Len(t, detail.RecentMovements, 10)
	assert.Equal(t, "Panela", detail.RecentMovements[0].Product.Name)

	list, err := c.merchants.List(ctx, dto.MerchantListRequest{Search: "300123"})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	err = c.merchants.Delete(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	empty, err := c.merchants.Create(ctx, dto.CreateMerchantRequest{Name: "Sin ventas"})
	require.NoError(t, err)
	require.NoError(t, c.merchants.Delete(ctx, empty.ID))
	assert.ErrorIs(t, c.merchants.Delete(ctx, empty.ID), domain.ErrNotFound)
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return errors.New("redis caído")
}

func TestProductUseCase_InvalidatesReportCache(t *testing.T) {
	c := newCrud()
	ctx := context.Background()
	inv := &countingInvalidator{}
	c.products.WithReportCache(inv)

	p, err := c.products.Create(ctx, dto.CreateProductRequest{Name: "Sal"})
	require.NoError(t, err, "un fallo de caché no revierte la escritura")
	assert.Equal(t, 1, inv.calls)

	_, err = c.products.Create(ctx, dto.CreateProductRequest{Name: "Sal"})
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, 1, inv.calls)

	unit := "kg"
	_, err = c.products.Update(ctx, p.ID, dto.UpdateProductRequest{Unit: &unit})
	require.NoError(t, err)
	require.NoError(t, c.products.Delete(ctx, p.ID))
	assert.Equal(t, 3, inv.calls)
}
