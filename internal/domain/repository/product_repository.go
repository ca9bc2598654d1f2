package repository

import (
	"context"

	"github.com/jhoicas/crm-lite/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// La empresa del producto se resuelve vía su almacén.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	ListByCompany(ctx context.Context, companyID string, includeInactive bool, limit, offset int) ([]*entity.Product, error)
	// Update no modifica Quantity (solo cambia vía el libro de stock).
	Update(ctx context.Context, product *entity.Product) error

	// LockByIDs bloquea (SELECT FOR UPDATE) los productos de la empresa con esos IDs,
	// en orden de ID para evitar interbloqueos. Los IDs ajenos o inexistentes se omiten.
	LockByIDs(ctx context.Context, companyID string, ids []string) ([]*entity.Product, error)
	UpdateQuantity(ctx context.Context, productID string, quantity int64) error
}
