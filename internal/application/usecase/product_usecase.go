package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-lite/internal/application/dto"
	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
	"github.com/jhoicas/crm-lite/pkg/validator"
)

// ProductUseCase casos de uso CRUD para productos. Quantity solo cambia vía suministros y ventas.
type ProductUseCase struct {
	repo        repository.ProductRepository
	storageRepo repository.StorageRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, storageRepo repository.StorageRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, storageRepo: storageRepo}
}

// Create crea un producto en el almacén de la empresa con cantidad 0.
// ErrStorageMissing si la empresa aún no tiene almacén; ErrDuplicate si el SKU existe.
func (uc *ProductUseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	if err := validatePrices(&in.PurchasePrice, &in.SalePrice); err != nil {
		return nil, err
	}
	storage, err := uc.storageRepo.GetByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	if storage == nil {
		return nil, domain.ErrStorageMissing
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		StorageID:     storage.ID,
		CompanyID:     actor.CompanyID,
		SKU:           strings.TrimSpace(in.SKU),
		Name:          validator.NormalizeName(in.Name),
		Description:   in.Description,
		Quantity:      0,
		PurchasePrice: in.PurchasePrice.Round(2),
		SalePrice:     in.SalePrice.Round(2),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.ensureUniqueSKU(ctx, product); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto de la empresa (activo o no).
func (uc *ProductUseCase) GetByID(ctx context.Context, actor access.Actor, id string) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista los productos activos de la empresa; con IncludeInactive también los inactivos.
func (uc *ProductUseCase) List(ctx context.Context, actor access.Actor, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := uc.repo.ListByCompany(ctx, actor.CompanyID, in.IncludeInactive, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// Update actualiza datos y precios. Los precios nuevos no alteran líneas ya registradas.
func (uc *ProductUseCase) Update(ctx context.Context, actor access.Actor, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	if err := validatePrices(in.PurchasePrice, in.SalePrice); err != nil {
		return nil, err
	}
	product, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.SKU != nil {
		product.SKU = strings.TrimSpace(*in.SKU)
		if err := uc.ensureUniqueSKU(ctx, product); err != nil {
			return nil, err
		}
	}
	if in.Name != nil {
		product.Name = validator.NormalizeName(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.PurchasePrice != nil {
		product.PurchasePrice = in.PurchasePrice.Round(2)
	}
	if in.SalePrice != nil {
		product.SalePrice = in.SalePrice.Round(2)
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Deactivate marca el producto como inactivo. Las líneas de suministro y venta siguen
// referenciándolo, por eso no se elimina la fila.
func (uc *ProductUseCase) Deactivate(ctx context.Context, actor access.Actor, id string) error {
	product, err := uc.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return nil
	}
	product.IsActive = false
	product.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, product)
}

func (uc *ProductUseCase) load(ctx context.Context, actor access.Actor, id string) (*entity.Product, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.RequireOn(actor, access.Operate, product.CompanyID); err != nil {
		return nil, err
	}
	return product, nil
}

func (uc *ProductUseCase) ensureUniqueSKU(ctx context.Context, p *entity.Product) error {
	existing, err := uc.repo.GetBySKU(ctx, p.SKU)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != p.ID {
		return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, p.SKU)
	}
	return nil
}

// validatePrices exige precios de compra y venta >= 0 (nil = no enviado).
func validatePrices(purchase, sale *decimal.Decimal) error {
	fields := map[string]string{}
	if purchase != nil && purchase.IsNegative() {
		fields["purchase_price"] = "debe ser mayor o igual a 0"
	}
	if sale != nil && sale.IsNegative() {
		fields["sale_price"] = "debe ser mayor o igual a 0"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		StorageID:     p.StorageID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Quantity:      p.Quantity,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
