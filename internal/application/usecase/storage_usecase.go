package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crm-lite/internal/application/dto"
	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
	"github.com/jhoicas/crm-lite/pkg/validator"
)

// StorageUseCase casos de uso del almacén (uno por empresa).
type StorageUseCase struct {
	repo repository.StorageRepository
}

// NewStorageUseCase construye el caso de uso.
func NewStorageUseCase(repo repository.StorageRepository) *StorageUseCase {
	return &StorageUseCase{repo: repo}
}

// Create crea el almacén de la empresa del propietario. ErrStorageExists si ya tiene uno.
func (uc *StorageUseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateStorageRequest) (*dto.StorageResponse, error) {
	if err := access.Require(actor, access.Administer); err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrStorageExists
	}
	now := time.Now()
	storage := &entity.Storage{
		ID:        uuid.New().String(),
		CompanyID: actor.CompanyID,
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, storage); err != nil {
		return nil, err
	}
	return toStorageResponse(storage), nil
}

// Mine devuelve el almacén de la empresa del usuario (cualquier rol).
func (uc *StorageUseCase) Mine(ctx context.Context, actor access.Actor) (*dto.StorageResponse, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	storage, err := uc.repo.GetByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	if storage == nil {
		return nil, domain.ErrStorageMissing
	}
	return toStorageResponse(storage), nil
}

// GetByID obtiene el almacén por ID dentro de la empresa del propietario.
func (uc *StorageUseCase) GetByID(ctx context.Context, actor access.Actor, id string) (*dto.StorageResponse, error) {
	storage, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toStorageResponse(storage), nil
}

// Update actualiza la dirección del almacén.
func (uc *StorageUseCase) Update(ctx context.Context, actor access.Actor, id string, in dto.UpdateStorageRequest) (*dto.StorageResponse, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	storage, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Address != nil {
		storage.Address = strings.TrimSpace(*in.Address)
	}
	storage.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, storage); err != nil {
		return nil, err
	}
	return toStorageResponse(storage), nil
}

// Delete elimina el almacén. Falla con ErrConflict si sus productos tienen suministros o ventas.
func (uc *StorageUseCase) Delete(ctx context.Context, actor access.Actor, id string) error {
	if _, err := uc.load(ctx, actor, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, actor.CompanyID, id)
}

func (uc *StorageUseCase) load(ctx context.Context, actor access.Actor, id string) (*entity.Storage, error) {
	if err := access.Require(actor, access.Administer); err != nil {
		return nil, err
	}
	storage, err := uc.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if storage == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.RequireOn(actor, access.Administer, storage.CompanyID); err != nil {
		return nil, err
	}
	return storage, nil
}

func toStorageResponse(s *entity.Storage) *dto.StorageResponse {
	return &dto.StorageResponse{
		ID:        s.ID,
		CompanyID: s.CompanyID,
		Address:   s.Address,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
