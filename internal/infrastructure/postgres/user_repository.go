package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, email, password_hash, first_name, last_name, company_id::text, is_company_owner, created_at, updated_at`

// rowScanner lo cumplen pgx.Row y pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	var companyID *string
	if err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&companyID, &u.IsCompanyOwner, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.CompanyID = derefString(companyID)
	// Si la empresa fue eliminada company_id queda NULL (ON DELETE SET NULL) y la bandera ya no aplica.
	if u.CompanyID == "" {
		u.IsCompanyOwner = false
	}
	return &u, nil
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, company_id, is_company_owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		nullIfEmpty(user.CompanyID), user.IsCompanyOwner, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByEmail obtiene un usuario por email (ya en minúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetOwner obtiene el propietario de la empresa.
func (r *UserRepo) GetOwner(ctx context.Context, companyID string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE company_id = $1 AND is_company_owner`
	u, err := scanUser(r.q.QueryRow(ctx, query, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company owner: %w", err)
	}
	return u, nil
}

// ListEmployees lista los empleados (no propietarios) de la empresa ordenados por email.
func (r *UserRepo) ListEmployees(ctx context.Context, companyID string) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE company_id = $1 AND NOT is_company_owner
		ORDER BY email`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Affiliate unaffiliated → owner/employee. La condición company_id IS NULL va en el
// UPDATE: dos afiliaciones concurrentes no pueden pisarse.
func (r *UserRepo) Affiliate(ctx context.Context, userID, companyID string, owner bool) error {
	query := `UPDATE users SET company_id = $2, is_company_owner = $3, updated_at = now()
		WHERE id = $1 AND company_id IS NULL`
	cmd, err := r.q.Exec(ctx, query, userID, companyID, owner)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("affiliate user: %w", err)
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return fmt.Errorf("affiliate user: %w", err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	return domain.ErrAlreadyAffiliated
}

// Unaffiliate employee → unaffiliated. Nunca toca al propietario ni a usuarios de otra empresa.
func (r *UserRepo) Unaffiliate(ctx context.Context, userID, companyID string) error {
	query := `UPDATE users SET company_id = NULL, is_company_owner = false, updated_at = now()
		WHERE id = $1 AND company_id = $2 AND NOT is_company_owner`
	cmd, err := r.q.Exec(ctx, query, userID, companyID)
	if err != nil {
		return fmt.Errorf("unaffiliate user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
