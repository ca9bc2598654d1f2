package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
)

var _ repository.SupplyRepository = (*SupplyRepo)(nil)

// SupplyRepo implementación del puerto SupplyRepository sobre PostgreSQL (usable con pool o tx).
type SupplyRepo struct {
	q Querier
}

// NewSupplyRepository construye el adaptador de persistencia para suministros.
func NewSupplyRepository(q Querier) *SupplyRepo {
	return &SupplyRepo{q: q}
}

// La empresa del suministro es la de su proveedor.
const supplySelect = `
	SELECT s.id, s.supplier_id, sp.company_id, s.delivery_date, s.invoice_number, s.notes,
	       s.created_by, s.created_at, sp.name,
	       COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.email)
	  FROM supplies s
	  JOIN suppliers sp ON sp.id = s.supplier_id
	  JOIN users u ON u.id = s.created_by`

func scanSupply(row rowScanner) (*entity.Supply, error) {
	var s entity.Supply
	if err := row.Scan(
		&s.ID, &s.SupplierID, &s.CompanyID, &s.DeliveryDate, &s.InvoiceNumber, &s.Notes,
		&s.CreatedBy, &s.CreatedAt, &s.SupplierName, &s.CreatedByName,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserta cabecera y líneas. Debe ejecutarse dentro de la transacción que movió el stock.
func (r *SupplyRepo) Create(ctx context.Context, supply *entity.Supply) error {
	query := `
		INSERT INTO supplies (id, supplier_id, delivery_date, invoice_number, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		supply.ID, supply.SupplierID, supply.DeliveryDate, supply.InvoiceNumber, supply.Notes,
		supply.CreatedBy, supply.CreatedAt,
	)
	if err != nil {
		if isFKViolation(err) {
			return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, supply.SupplierID)
		}
		return fmt.Errorf("insert supply: %w", err)
	}

	lineQuery := `
		INSERT INTO supply_lines (id, supply_id, product_id, quantity, purchase_price)
		VALUES ($1, $2, $3, $4, $5)`
	for _, l := range supply.Lines {
		if _, err := r.q.Exec(ctx, lineQuery, l.ID, supply.ID, l.ProductID, l.Quantity, l.PurchasePrice); err != nil {
			if isUniqueViolation(err) {
				return domain.NewValidationError("products", "producto repetido")
			}
			return fmt.Errorf("insert supply line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el suministro con sus líneas.
func (r *SupplyRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Supply, error) {
	return r.getOne(ctx, supplySelect+` WHERE s.id = $1 AND sp.company_id = $2`, companyID, id)
}

// GetForUpdate obtiene el suministro bloqueando la cabecera hasta el fin de la transacción.
func (r *SupplyRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Supply, error) {
	return r.getOne(ctx, supplySelect+` WHERE s.id = $1 AND sp.company_id = $2 FOR UPDATE OF s`, companyID, id)
}

func (r *SupplyRepo) getOne(ctx context.Context, query, companyID, id string) (*entity.Supply, error) {
	s, err := scanSupply(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supply: %w", err)
	}
	lines, err := r.loadLines(ctx, []string{s.ID})
	if err != nil {
		return nil, err
	}
	s.Lines = lines[s.ID]
	return s, nil
}

// ListByCompany lista los suministros de la empresa, más recientes primero, con sus líneas.
func (r *SupplyRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Supply, error) {
	query := supplySelect + `
		WHERE sp.company_id = $1
		ORDER BY s.delivery_date DESC, s.created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}
	var list []*entity.Supply
	var ids []string
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan supply: %w", err)
		}
		list = append(list, s)
		ids = append(ids, s.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
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

// loadLines trae las líneas de varios suministros en una sola consulta.
func (r *SupplyRepo) loadLines(ctx context.Context, supplyIDs []string) (map[string][]entity.SupplyLine, error) {
	out := make(map[string][]entity.SupplyLine, len(supplyIDs))
	if len(supplyIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT l.id, l.supply_id, l.product_id, l.quantity, l.purchase_price, p.sku, p.name
		  FROM supply_lines l
		  JOIN products p ON p.id = l.product_id
		 WHERE l.supply_id = ANY($1::uuid[])
		 ORDER BY p.sku`
	rows, err := r.q.Query(ctx, query, supplyIDs)
	if err != nil {
		return nil, fmt.Errorf("list supply lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l entity.SupplyLine
		if err := rows.Scan(&l.ID, &l.SupplyID, &l.ProductID, &l.Quantity, &l.PurchasePrice, &l.ProductSKU, &l.ProductName); err != nil {
			return nil, fmt.Errorf("scan supply line: %w", err)
		}
		out[l.SupplyID] = append(out[l.SupplyID], l)
	}
	return out, rows.Err()
}

// UpdateHeader actualiza fecha de entrega, número de factura y notas.
func (r *SupplyRepo) UpdateHeader(ctx context.Context, supply *entity.Supply) error {
	query := `UPDATE supplies SET delivery_date = $2, invoice_number = $3, notes = $4 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, supply.ID, supply.DeliveryDate, supply.InvoiceNumber, supply.Notes)
	if err != nil {
		return fmt.Errorf("update supply: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el suministro; las líneas caen en cascada.
func (r *SupplyRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM supplies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete supply: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
