package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/crm-lite/internal/application/dto"
	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
	"github.com/jhoicas/crm-lite/pkg/validator"
)

// EmployeeUseCase afiliación de empleados a la empresa del propietario.
// Transiciones: unaffiliated → employee (Add) y employee → unaffiliated (Remove).
type EmployeeUseCase struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
}

// NewEmployeeUseCase construye el caso de uso.
func NewEmployeeUseCase(userRepo repository.UserRepository, companyRepo repository.CompanyRepository) *EmployeeUseCase {
	return &EmployeeUseCase{userRepo: userRepo, companyRepo: companyRepo}
}

// Add afilia como empleado al usuario con ese email.
// ErrUserNotFound si no existe; ErrAlreadyAffiliated si ya pertenece a una empresa (incluida esta).
func (uc *EmployeeUseCase) Add(ctx context.Context, actor access.Actor, in dto.AddEmployeeRequest) (*dto.EmployeeResponse, error) {
	if err := access.Require(actor, access.Administer); err != nil {
		return nil, err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	company, err := uc.companyRepo.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	user, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.Affiliated() {
		return nil, domain.ErrAlreadyAffiliated
	}
	if err := uc.userRepo.Affiliate(ctx, user.ID, company.ID, false); err != nil {
		return nil, err
	}
	return toEmployeeResponse(user), nil
}

// List lista los empleados de la empresa (sin el propietario).
func (uc *EmployeeUseCase) List(ctx context.Context, actor access.Actor) ([]dto.EmployeeResponse, error) {
	if err := access.Require(actor, access.Administer); err != nil {
		return nil, err
	}
	users, err := uc.userRepo.ListEmployees(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EmployeeResponse, 0, len(users))
	for _, u := range users {
		if u.IsCompanyOwner {
			continue
		}
		out = append(out, *toEmployeeResponse(u))
	}
	return out, nil
}

// Remove desafilia al empleado. El propietario no puede eliminarse por esta vía.
func (uc *EmployeeUseCase) Remove(ctx context.Context, actor access.Actor, userID string) error {
	if err := access.Require(actor, access.Administer); err != nil {
		return err
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}
	if err := access.RequireOn(actor, access.Administer, user.CompanyID); err != nil {
		return err
	}
	if user.IsCompanyOwner {
		return domain.ErrOwnerNotRemovable
	}
	return uc.userRepo.Unaffiliate(ctx, user.ID, actor.CompanyID)
}

func toEmployeeResponse(u *entity.User) *dto.EmployeeResponse {
	return &dto.EmployeeResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
