package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stockledger/internal/application/dto"
	appinv "github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

// recentMovementsLimit movimientos incluidos en el detalle de un comercio.
const recentMovementsLimit = 10

// MerchantUseCase casos de uso CRUD para comercios (contrapartes de las salidas).
type MerchantUseCase struct {
	repo      repository.MerchantRepository
	movements repository.MovementRepository
	refs      ReferenceCounter
	cache     ReportInvalidator
}

// NewMerchantUseCase construye el caso de uso.
func NewMerchantUseCase(repo repository.MerchantRepository, movements repository.MovementRepository, refs ReferenceCounter) *MerchantUseCase {
	return &MerchantUseCase{repo: repo, movements: movements, refs: refs}
}

// WithReportCache invalida la caché de reportes tras cada cambio de comercio.
func (uc *MerchantUseCase) WithReportCache(c ReportInvalidator) *MerchantUseCase {
	uc.cache = c
	return uc
}

// Create registra un comercio. El nombre es único.
func (uc *MerchantUseCase) Create(ctx context.Context, in dto.CreateMerchantRequest) (*dto.MerchantResponse, error) {
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
	now := time.Now()
	m := &entity.Merchant{
		ID:        uuid.New().String(),
		Name:      name,
		Contact:   strings.TrimSpace(in.Contact),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	invalidateReports(ctx, uc.cache)
	return toMerchantResponse(m), nil
}

// GetByID devuelve el comercio con sus 10 movimientos más recientes.
func (uc *MerchantUseCase) GetByID(ctx context.Context, id string) (*dto.MerchantDetailResponse, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NewMissing("comercio", id)
	}
	recent, err := uc.movements.ListRecentByMerchant(ctx, id, recentMovementsLimit)
	if err != nil {
		return nil, err
	}
	out := &dto.MerchantDetailResponse{
		MerchantResponse: *toMerchantResponse(m),
		RecentMovements:  make([]dto.MovementResponse, 0, len(recent)),
	}
	for _, v := range recent {
		out.RecentMovements = append(out.RecentMovements, appinv.ToMovementResponse(v))
	}
	return out, nil
}

// Update actualización parcial.
func (uc *MerchantUseCase) Update(ctx context.Context, id string, in dto.UpdateMerchantRequest) (*dto.MerchantResponse, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NewMissing("comercio", id)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "no puede estar vacío")
		}
		if name != m.Name {
			other, err := uc.repo.GetByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != m.ID {
				return nil, domain.ErrDuplicate
			}
		}
		m.Name = name
	}
	if in.Contact != nil {
		m.Contact = strings.TrimSpace(*in.Contact)
	}
	if in.Phone != nil {
		m.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		m.Address = strings.TrimSpace(*in.Address)
	}
	m.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	invalidateReports(ctx, uc.cache)
	return toMerchantResponse(m), nil
}

// List búsqueda por nombre, contacto o teléfono.
func (uc *MerchantUseCase) List(ctx context.Context, in dto.MerchantListRequest) (*dto.MerchantListResponse, error) {
	q, page, err := listQuery(in.PageRequest, in.Search, in.SortBy, in.SortOrder, repository.SortByName,
		repository.SortByName, repository.SortByCreatedAt)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MerchantResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMerchantResponse(m))
	}
	return &dto.MerchantListResponse{Items: items, Pagination: dto.NewPageResponse(page, total)}, nil
}

// Delete bloqueado mientras existan movimientos del comercio.
func (uc *MerchantUseCase) Delete(ctx context.Context, id string) error {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.NewMissing("comercio", id)
	}
	refs, err := uc.refs.CountByMerchant(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return &domain.ReferencedError{Entity: "comercio", ID: id, Count: refs}
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateReports(ctx, uc.cache)
	return nil
}

func toMerchantResponse(m *entity.Merchant) *dto.MerchantResponse {
	return &dto.MerchantResponse{
		ID:        m.ID,
		Name:      m.Name,
		Contact:   m.Contact,
		Phone:     m.Phone,
		Address:   m.Address,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
