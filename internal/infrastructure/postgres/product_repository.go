package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// La empresa se resuelve siempre vía el almacén.
const productSelect = `
	SELECT p.id, p.storage_id, s.company_id, p.sku, p.name, p.description, p.quantity,
	       p.purchase_price, p.sale_price, p.is_active, p.created_at, p.updated_at
	  FROM products p
	  JOIN storages s ON s.id = p.storage_id`

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(
		&p.ID, &p.StorageID, &p.CompanyID, &p.SKU, &p.Name, &p.Description, &p.Quantity,
		&p.PurchasePrice, &p.SalePrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto. Quantity inicia en 0.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, storage_id, sku, name, description, quantity, purchase_price, sale_price, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.StorageID, product.SKU, product.Name, product.Description, product.Quantity,
		product.PurchasePrice, product.SalePrice, product.IsActive, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto de la empresa.
func (r *ProductRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, productSelect+` WHERE p.id = $1 AND s.company_id = $2`, id, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySKU obtiene un producto por SKU (único global).
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, productSelect+` WHERE p.sku = $1`, sku))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// ListByCompany lista productos de la empresa ordenados por SKU; los inactivos solo si se piden.
func (r *ProductRepo) ListByCompany(ctx context.Context, companyID string, includeInactive bool, limit, offset int) ([]*entity.Product, error) {
	query := productSelect + `
		WHERE s.company_id = $1 AND ($2 OR p.is_active)
		ORDER BY p.sku LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, includeInactive, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update actualiza datos descriptivos, precios y estado. No toca quantity.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET sku = $2, name = $3, description = $4, purchase_price = $5,
		       sale_price = $6, is_active = $7, updated_at = $8
		 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Description, product.PurchasePrice,
		product.SalePrice, product.IsActive, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// LockByIDs bloquea las filas de producto (FOR UPDATE) en orden de ID.
func (r *ProductRepo) LockByIDs(ctx context.Context, companyID string, ids []string) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := productSelect + `
		WHERE s.company_id = $1 AND p.id = ANY($2::uuid[])
		ORDER BY p.id
		FOR UPDATE OF p`
	rows, err := r.q.Query(ctx, query, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// UpdateQuantity persiste la cantidad calculada por el libro de stock sobre la fila ya bloqueada.
func (r *ProductRepo) UpdateQuantity(ctx context.Context, productID string, quantity int64) error {
	cmd, err := r.q.Exec(ctx, `UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`, productID, quantity)
	if err != nil {
		switch {
		case isCheckViolation(err):
			return fmt.Errorf("%w: cantidad negativa para el producto %s", domain.ErrConflict, productID)
		case isOutOfRange(err):
			return fmt.Errorf("%w: producto %s", domain.ErrQuantityLimit, productID)
		}
		return fmt.Errorf("update product quantity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
