package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/crm-lite/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para reportes de ventas y stock.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// lineRevenue ingreso de una línea con el descuento de su venta aplicado.
const lineRevenue = `sl.quantity * sl.sale_price * (100 - s.discount) / 100`

// GetSalesMetrics número de ventas, ingreso neto de descuento y costo del período.
// COALESCE devuelve cero si el período no tiene ventas.
func (r *AnalyticsRepo) GetSalesMetrics(ctx context.Context, companyID string, start, end time.Time) (repository.SalesMetrics, error) {
	query := `
	SELECT
	    COUNT(DISTINCT s.id)                                  AS sales_count,
	    COALESCE(SUM(` + lineRevenue + `), 0)                 AS revenue,
	    COALESCE(SUM(sl.quantity * sl.purchase_price), 0)     AS cost
	FROM sales s
	JOIN sale_lines sl ON sl.sale_id = s.id
	WHERE s.company_id = $1
	  AND s.sale_date >= $2 AND s.sale_date < $3`

	var m repository.SalesMetrics
	if err := r.q.QueryRow(ctx, query, companyID, start, end).Scan(&m.SalesCount, &m.Revenue, &m.Cost); err != nil {
		return repository.SalesMetrics{}, fmt.Errorf("analytics.GetSalesMetrics: %w", err)
	}
	return m, nil
}

// GetSKUSales ingreso y costo por producto, de mayor a menor ingreso.
func (r *AnalyticsRepo) GetSKUSales(ctx context.Context, companyID string, start, end time.Time, limit int) ([]repository.SKUSalesResult, error) {
	query := `
	SELECT
	    p.id::text,
	    p.sku,
	    p.name,
	    SUM(sl.quantity)                        AS units_sold,
	    SUM(` + lineRevenue + `)                AS gross_revenue,
	    SUM(sl.quantity * sl.purchase_price)    AS total_cogs
	FROM sale_lines sl
	JOIN sales    s ON s.id = sl.sale_id
	JOIN products p ON p.id = sl.product_id
	WHERE s.company_id = $1
	  AND s.sale_date >= $2 AND s.sale_date < $3
	GROUP BY p.id, p.sku, p.name
	ORDER BY gross_revenue DESC, p.sku
	LIMIT $4`

	rows, err := r.q.Query(ctx, query, companyID, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetSKUSales: %w", err)
	}
	defer rows.Close()

	results := []repository.SKUSalesResult{}
	for rows.Next() {
		var row repository.SKUSalesResult
		if err := rows.Scan(
			&row.ProductID,
			&row.SKU,
			&row.ProductName,
			&row.UnitsSold,
			&row.GrossRevenue,
			&row.TotalCOGS,
		); err != nil {
			return nil, fmt.Errorf("analytics.GetSKUSales scan: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics.GetSKUSales rows: %w", err)
	}
	return results, nil
}

// GetLowStock productos activos del almacén de la empresa con quantity <= threshold.
func (r *AnalyticsRepo) GetLowStock(ctx context.Context, companyID string, threshold int64, limit int) ([]repository.LowStockResult, error) {
	const query = `
	SELECT p.id::text, p.sku, p.name, p.quantity
	FROM products p
	JOIN storages st ON st.id = p.storage_id
	WHERE st.company_id = $1
	  AND p.is_active
	  AND p.quantity <= $2
	ORDER BY p.quantity, p.sku
	LIMIT $3`

	rows, err := r.q.Query(ctx, query, companyID, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetLowStock: %w", err)
	}
	defer rows.Close()

	results := []repository.LowStockResult{}
	for rows.Next() {
		var row repository.LowStockResult
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.ProductName, &row.Quantity); err != nil {
			return nil, fmt.Errorf("analytics.GetLowStock scan: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics.GetLowStock rows: %w", err)
	}
	return results, nil
}
