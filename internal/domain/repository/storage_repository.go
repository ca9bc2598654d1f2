package repository

import (
	"context"

	"github.com/jhoicas/crm-lite/internal/domain/entity"
)

// StorageRepository define el puerto de persistencia para Storage (uno por empresa).
type StorageRepository interface {
	Create(ctx context.Context, storage *entity.Storage) error
	GetByCompany(ctx context.Context, companyID string) (*entity.Storage, error)
	GetByID(ctx context.Context, companyID, id string) (*entity.Storage, error)
	Update(ctx context.Context, storage *entity.Storage) error
	Delete(ctx context.Context, companyID, id string) error
}
