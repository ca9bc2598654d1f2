package usecase

import (
	"context"

	"github.com/jhoicas/crm-lite/internal/domain/repository"
)

// CompanyTxRunner ejecuta la creación de empresa y la afiliación del propietario en una sola transacción.
type CompanyTxRunner interface {
	RunCompany(ctx context.Context, fn func(
		companyRepo repository.CompanyRepository,
		userRepo repository.UserRepository,
	) error) error
}
