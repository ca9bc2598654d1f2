package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de persistencia para ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleSelect = `
	SELECT s.id, s.company_id, s.buyer_name, s.sale_date, s.discount, s.created_by, s.created_at,
	       COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.email)
	  FROM sales s
	  JOIN users u ON u.id = s.created_by`

func scanSale(row rowScanner) (*entity.Sale, error) {
	var s entity.Sale
	if err := row.Scan(
		&s.ID, &s.CompanyID, &s.BuyerName, &s.SaleDate, &s.Discount, &s.CreatedBy, &s.CreatedAt,
		&s.CreatedByName,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserta cabecera y líneas con los precios congelados.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, company_id, buyer_name, sale_date, discount, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.CompanyID, sale.BuyerName, sale.SaleDate, sale.Discount, sale.CreatedBy, sale.CreatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.NewValidationError("discount", "debe estar entre 0 y 100")
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	lineQuery := `
		INSERT INTO sale_lines (id, sale_id, product_id, quantity, sale_price, purchase_price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, l := range sale.Lines {
		if _, err := r.q.Exec(ctx, lineQuery, l.ID, sale.ID, l.ProductID, l.Quantity, l.SalePrice, l.PurchasePrice); err != nil {
			if isUniqueViolation(err) {
				return domain.NewValidationError("products", "producto repetido")
			}
			return fmt.Errorf("insert sale line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Sale, error) {
	return r.getOne(ctx, saleSelect+` WHERE s.id = $1 AND s.company_id = $2`, companyID, id)
}

// GetForUpdate obtiene la venta bloqueando la cabecera hasta el fin de la transacción.
func (r *SaleRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Sale, error) {
	return r.getOne(ctx, saleSelect+` WHERE s.id = $1 AND s.company_id = $2 FOR UPDATE OF s`, companyID, id)
}

func (r *SaleRepo) getOne(ctx context.Context, query, companyID, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	lines, err := r.loadLines(ctx, []string{s.ID})
	if err != nil {
		return nil, err
	}
	s.Lines = lines[s.ID]
	return s, nil
}

// ListByCompany lista las ventas de la empresa, más recientes primero, con sus líneas.
func (r *SaleRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Sale, error) {
	query := saleSelect + `
		WHERE s.company_id = $1
		ORDER BY s.sale_date DESC, s.created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	var list []*entity.Sale
	var ids []string
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
		ids = append(ids, s.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		s.Lines = lines[s.ID]
	}
	return list, nil
}

func (r *SaleRepo) loadLines(ctx context.Context, saleIDs []string) (map[string][]entity.SaleLine, error) {
	out := make(map[string][]entity.SaleLine, len(saleIDs))
	if len(saleIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT l.id, l.sale_id, l.product_id, l.quantity, l.sale_price, l.purchase_price, p.sku, p.name
		  FROM sale_lines l
		  JOIN products p ON p.id = l.product_id
		 WHERE l.sale_id = ANY($1::uuid[])
		 ORDER BY p.sku`
	rows, err := r.q.Query(ctx, query, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Quantity, &l.SalePrice, &l.PurchasePrice, &l.ProductSKU, &l.ProductName); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		out[l.SaleID] = append(out[l.SaleID], l)
	}
	return out, rows.Err()
}

// Delete elimina la venta; las líneas caen en cascada.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
