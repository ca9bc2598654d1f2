package repository

import (
	"context"

	"github.com/jhoicas/crm-lite/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetOwner devuelve el propietario de la empresa (nil si no hay).
	GetOwner(ctx context.Context, companyID string) (*entity.User, error)
	// ListEmployees lista los usuarios de la empresa que no son propietarios.
	ListEmployees(ctx context.Context, companyID string) ([]*entity.User, error)
	// Affiliate asigna la empresa solo si el usuario no pertenece a ninguna en el momento
	// de la escritura. Devuelve domain.ErrAlreadyAffiliated si ya pertenece.
	Affiliate(ctx context.Context, userID, companyID string, owner bool) error
	// Unaffiliate quita la empresa solo si el usuario es empleado (no propietario) de
	// companyID. Devuelve domain.ErrNotFound si no lo es.
	Unaffiliate(ctx context.Context, userID, companyID string) error
}
