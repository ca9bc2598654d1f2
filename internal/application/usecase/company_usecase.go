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

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	txRunner CompanyTxRunner
	repo     repository.CompanyRepository
	userRepo repository.UserRepository
}

// NewCompanyUseCase construye el caso de uso con los puertos de persistencia.
func NewCompanyUseCase(txRunner CompanyTxRunner, repo repository.CompanyRepository, userRepo repository.UserRepository) *CompanyUseCase {
	return &CompanyUseCase{txRunner: txRunner, repo: repo, userRepo: userRepo}
}

// Create crea una empresa y convierte al usuario en su propietario (unaffiliated → owner).
// Devuelve ErrAlreadyAffiliated si el usuario ya pertenece a una empresa y ErrDuplicate si
// el tax id o el nombre ya existen.
func (uc *CompanyUseCase) Create(ctx context.Context, userID string, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Affiliated() {
		return nil, domain.ErrAlreadyAffiliated
	}

	now := time.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		TaxID:     in.TaxID,
		Name:      validator.NormalizeName(in.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.ensureUnique(ctx, company); err != nil {
		return nil, err
	}

	err = uc.txRunner.RunCompany(ctx, func(companyRepo repository.CompanyRepository, userRepo repository.UserRepository) error {
		if err := companyRepo.Create(ctx, company); err != nil {
			return err
		}
		return userRepo.Affiliate(ctx, user.ID, company.ID, true)
	})
	if err != nil {
		return nil, err
	}
	user.CompanyID, user.IsCompanyOwner = company.ID, true
	return toCompanyResponse(company, user), nil
}

// GetByID obtiene la empresa del propietario. Otro ID responde ErrNotFound.
func (uc *CompanyUseCase) GetByID(ctx context.Context, actor access.Actor, id string) (*dto.CompanyResponse, error) {
	company, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	owner, err := uc.userRepo.GetOwner(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(company, owner), nil
}

// Update actualiza tax id y/o nombre de la empresa del propietario.
func (uc *CompanyUseCase) Update(ctx context.Context, actor access.Actor, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	company, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.TaxID != nil {
		company.TaxID = *in.TaxID
	}
	if in.Name != nil {
		company.Name = validator.NormalizeName(*in.Name)
	}
	if err := uc.ensureUnique(ctx, company); err != nil {
		return nil, err
	}
	company.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	owner, err := uc.userRepo.GetOwner(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(company, owner), nil
}

// Delete elimina la empresa con su almacén, productos, proveedores, suministros y ventas.
// Sus usuarios quedan sin empresa.
func (uc *CompanyUseCase) Delete(ctx context.Context, actor access.Actor, id string) error {
	if _, err := uc.load(ctx, actor, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *CompanyUseCase) load(ctx context.Context, actor access.Actor, id string) (*entity.Company, error) {
	if err := access.RequireOn(actor, access.Administer, id); err != nil {
		return nil, err
	}
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

// ensureUnique verifica que tax id y nombre no pertenezcan a otra empresa.
func (uc *CompanyUseCase) ensureUnique(ctx context.Context, c *entity.Company) error {
	byTax, err := uc.repo.GetByTaxID(ctx, c.TaxID)
	if err != nil {
		return err
	}
	if byTax != nil && byTax.ID != c.ID {
		return fmt.Errorf("%w: tax_id %s", domain.ErrDuplicate, c.TaxID)
	}
	byName, err := uc.repo.GetByName(ctx, c.Name)
	if err != nil {
		return err
	}
	if byName != nil && byName.ID != c.ID {
		return fmt.Errorf("%w: name %s", domain.ErrDuplicate, c.Name)
	}
	return nil
}

// ownerDisplay "Nombre Apellido (email)".
func ownerDisplay(u *entity.User) string {
	if u == nil {
		return ""
	}
	return fmt.Sprintf("%s (%s)", u.FullName(), u.Email)
}

func toCompanyResponse(c *entity.Company, owner *entity.User) *dto.CompanyResponse {
	return &dto.CompanyResponse{
		ID:        c.ID,
		TaxID:     c.TaxID,
		Name:      c.Name,
		Owner:     ownerDisplay(owner),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
