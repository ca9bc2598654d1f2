package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
)

var _ repository.StorageRepository = (*StorageRepo)(nil)

// StorageRepo implementación del puerto StorageRepository sobre PostgreSQL.
type StorageRepo struct {
	q Querier
}

// NewStorageRepository construye el adaptador de persistencia para almacenes.
func NewStorageRepository(q Querier) *StorageRepo {
	return &StorageRepo{q: q}
}

const storageColumns = `id, company_id, address, created_at, updated_at`

func scanStorage(row rowScanner) (*entity.Storage, error) {
	var s entity.Storage
	if err := row.Scan(&s.ID, &s.CompanyID, &s.Address, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste el almacén. La empresa solo puede tener uno (UNIQUE company_id).
func (r *StorageRepo) Create(ctx context.Context, storage *entity.Storage) error {
	query := `
		INSERT INTO storages (id, company_id, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		storage.ID, storage.CompanyID, storage.Address, storage.CreatedAt, storage.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrStorageExists
		}
		return fmt.Errorf("insert storage: %w", err)
	}
	return nil
}

// GetByCompany obtiene el almacén de la empresa.
func (r *StorageRepo) GetByCompany(ctx context.Context, companyID string) (*entity.Storage, error) {
	s, err := scanStorage(r.q.QueryRow(ctx, `SELECT `+storageColumns+` FROM storages WHERE company_id = $1`, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get storage by company: %w", err)
	}
	return s, nil
}

// GetByID obtiene un almacén por ID dentro de la empresa.
func (r *StorageRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Storage, error) {
	query := `SELECT ` + storageColumns + ` FROM storages WHERE id = $1 AND company_id = $2`
	s, err := scanStorage(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get storage: %w", err)
	}
	return s, nil
}

// Update actualiza la dirección.
func (r *StorageRepo) Update(ctx context.Context, storage *entity.Storage) error {
	query := `UPDATE storages SET address = $3, updated_at = $4 WHERE id = $1 AND company_id = $2`
	cmd, err := r.q.Exec(ctx, query, storage.ID, storage.CompanyID, storage.Address, storage.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el almacén. Falla con ErrConflict si sus productos tienen historial de suministros o ventas.
func (r *StorageRepo) Delete(ctx context.Context, companyID, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM storages WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		if isFKViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete storage: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
