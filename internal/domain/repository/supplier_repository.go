package repository

import (
	"context"

	"github.com/jhoicas/crm-lite/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para Supplier.
// Todas las lecturas y escrituras se filtran por companyID.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Supplier, error)
	GetByTaxID(ctx context.Context, companyID, taxID string) (*entity.Supplier, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	Delete(ctx context.Context, companyID, id string) error
}
