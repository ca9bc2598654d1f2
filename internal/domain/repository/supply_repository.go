package repository

import (
	"context"

	"github.com/jhoicas/crm-lite/internal/domain/entity"
)

// SupplyRepository define el puerto de persistencia para Supply y sus líneas.
type SupplyRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, supply *entity.Supply) error
	// GetByID devuelve el suministro con sus líneas (empresa vía proveedor).
	GetByID(ctx context.Context, companyID, id string) (*entity.Supply, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Supply, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Supply, error)
	// UpdateHeader modifica fecha de entrega, número de factura y notas; las líneas son inmutables.
	UpdateHeader(ctx context.Context, supply *entity.Supply) error
	// Delete elimina cabecera y líneas (cascade).
	Delete(ctx context.Context, id string) error
}
