package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crm-lite/internal/application/dto"
	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
	"github.com/jhoicas/crm-lite/pkg/validator"
)

// SupplierUseCase casos de uso CRUD para proveedores de la empresa.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

// Create registra un proveedor. (empresa, tax id) es único.
func (uc *SupplierUseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	now := time.Now()
	supplier := &entity.Supplier{
		ID:        uuid.New().String(),
		CompanyID: actor.CompanyID,
		Name:      validator.NormalizeName(in.Name),
		TaxID:     in.TaxID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.ensureUnique(ctx, supplier); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// GetByID obtiene un proveedor de la empresa.
func (uc *SupplierUseCase) GetByID(ctx context.Context, actor access.Actor, id string) (*dto.SupplierResponse, error) {
	supplier, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// List lista proveedores de la empresa con paginación.
func (uc *SupplierUseCase) List(ctx context.Context, actor access.Actor, page dto.PageRequest) (*dto.SupplierListResponse, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.ListByCompany(ctx, actor.CompanyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplierResponse(s))
	}
	return &dto.SupplierListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update actualiza nombre y/o tax id.
func (uc *SupplierUseCase) Update(ctx context.Context, actor access.Actor, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	supplier, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		supplier.Name = validator.NormalizeName(*in.Name)
	}
	if in.TaxID != nil {
		supplier.TaxID = *in.TaxID
	}
	if err := uc.ensureUnique(ctx, supplier); err != nil {
		return nil, err
	}
	supplier.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// Delete elimina el proveedor. ErrConflict si tiene suministros registrados.
func (uc *SupplierUseCase) Delete(ctx context.Context, actor access.Actor, id string) error {
	if _, err := uc.load(ctx, actor, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, actor.CompanyID, id)
}

func (uc *SupplierUseCase) load(ctx context.Context, actor access.Actor, id string) (*entity.Supplier, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	supplier, err := uc.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.RequireOn(actor, access.Operate, supplier.CompanyID); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (uc *SupplierUseCase) ensureUnique(ctx context.Context, s *entity.Supplier) error {
	existing, err := uc.repo.GetByTaxID(ctx, s.CompanyID, s.TaxID)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != s.ID {
		return fmt.Errorf("%w: proveedor con tax_id %s", domain.ErrDuplicate, s.TaxID)
	}
	return nil
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:        s.ID,
		CompanyID: s.CompanyID,
		Name:      s.Name,
		TaxID:     s.TaxID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
