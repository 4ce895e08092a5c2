package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

// ReferenceCounter cuenta los movimientos que referencian un producto o comercio.
// Lo implementan el motor de reportes y el repositorio de movimientos.
type ReferenceCounter interface {
	CountByProduct(ctx context.Context, productID string) (int64, error)
	CountByMerchant(ctx context.Context, merchantID string) (int64, error)
}

// ReportInvalidator descarta los reportes en caché; los nombres y el catálogo aparecen en tendencias y alertas.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ProductUseCase casos de uso CRUD para productos. El stock se maneja solo vía movimientos.
type ProductUseCase struct {
	repo  repository.ProductRepository
	refs  ReferenceCounter
	cache ReportInvalidator
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, refs ReferenceCounter) *ProductUseCase {
	return &ProductUseCase{repo: repo, refs: refs}
}

// WithReportCache invalida la caché de reportes tras cada alta, cambio o baja.
func (uc *ProductUseCase) WithReportCache(c ReportInvalidator) *ProductUseCase {
	uc.cache = c
	return uc
}

// Create crea un nuevo producto con stock 0. El nombre es único.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "es obligatorio")
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = entity.DefaultUnit
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Name:          name,
		Specification: strings.TrimSpace(in.Specification),
		Unit:          unit,
		CurrentStock:  0,
		ImageURL:      strings.TrimSpace(in.ImageURL),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	invalidateReports(ctx, uc.cache)
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewMissing("producto", id)
	}
	return toProductResponse(product), nil
}

// Update actualiza nombre, especificación, unidad o imagen. No permite modificar el stock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewMissing("producto", id)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "no puede estar vacío")
		}
		if name != product.Name {
			other, err := uc.repo.GetByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != product.ID {
				return nil, domain.ErrDuplicate
			}
		}
		product.Name = name
	}
	if in.Specification != nil {
		product.Specification = strings.TrimSpace(*in.Specification)
	}
	if in.Unit != nil && strings.TrimSpace(*in.Unit) != "" {
		product.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.ImageURL != nil {
		product.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	invalidateReports(ctx, uc.cache)
	return toProductResponse(product), nil
}

// List lista productos con búsqueda por nombre o especificación, orden y paginación.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	q, page, err := listQuery(in.PageRequest, in.Search, in.SortBy, in.SortOrder, repository.SortByName,
		repository.SortByName, repository.SortByStock, repository.SortByCreatedAt)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items:      items,
		Pagination: dto.NewPageResponse(page, total),
	}, nil
}

// Delete elimina un producto sin movimientos; con movimientos devuelve ReferencedError.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.NewMissing("producto", id)
	}
	refs, err := uc.refs.CountByProduct(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return &domain.ReferencedError{Entity: "producto", ID: id, Count: refs}
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateReports(ctx, uc.cache)
	return nil
}

// invalidateReports un fallo de caché no revierte la escritura; el TTL acota el dato viejo.
func invalidateReports(ctx context.Context, c ReportInvalidator) {
	if c != nil {
		_ = c.Invalidate(ctx)
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Specification: p.Specification,
		Unit:          p.Unit,
		CurrentStock:  p.CurrentStock,
		ImageURL:      p.ImageURL,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// listQuery valida orden y paginación de los listados CRUD.
func listQuery(page dto.PageRequest, search, sortBy, sortOrder, def string, allowed ...string) (repository.ListQuery, dto.PageRequest, error) {
	if page.Page < 0 || page.Limit < 0 {
		return repository.ListQuery{}, page, domain.Invalid("page", "page y limit deben ser positivos")
	}
	page.DefaultPage()
	if !page.PageInRange() {
		return repository.ListQuery{}, page, domain.Invalid("page", fmt.Sprintf("no puede ser mayor a %d", dto.MaxPageNumber))
	}

	q := repository.ListQuery{
		Search: strings.TrimSpace(search),
		SortBy: def,
		Limit:  page.Limit,
		Offset: page.Offset(),
	}
	if s := strings.TrimSpace(sortBy); s != "" {
		valid := false
		for _, a := range allowed {
			if s == a {
				valid = true
				break
			}
		}
		if !valid {
			return repository.ListQuery{}, page, domain.Invalid("sortBy", "columna de orden no admitida: "+s)
		}
		q.SortBy = s
	}
	switch strings.ToLower(strings.TrimSpace(sortOrder)) {
	case "", "asc":
	case "desc":
		q.SortDesc = true
	default:
		return repository.ListQuery{}, page, domain.Invalid("sortOrder", "debe ser asc o desc")
	}
	return q, page, nil
}
