package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesMetrics totales de ventas de un período, calculados con los precios congelados
// en las líneas. Revenue ya descuenta el porcentaje de descuento de cada venta.
type SalesMetrics struct {
	SalesCount int
	Revenue    decimal.Decimal
	Cost       decimal.Decimal // Σ quantity × purchase_price de la línea
}

// SKUSalesResult resultado crudo por producto vendido en un período.
type SKUSalesResult struct {
	ProductID    string
	SKU          string
	ProductName  string
	UnitsSold    int64
	GrossRevenue decimal.Decimal
	TotalCOGS    decimal.Decimal
}

// GrossProfit ingreso menos costo.
func (r SKUSalesResult) GrossProfit() decimal.Decimal {
	return r.GrossRevenue.Sub(r.TotalCOGS)
}

// LowStockResult producto activo con existencias en o por debajo del umbral.
type LowStockResult struct {
	ProductID   string
	SKU         string
	ProductName string
	Quantity    int64
}

// AnalyticsRepository consultas de solo lectura para reportes. Todas filtran por empresa.
type AnalyticsRepository interface {
	// GetSalesMetrics agrega las ventas con sale_date en [start, end).
	GetSalesMetrics(ctx context.Context, companyID string, start, end time.Time) (SalesMetrics, error)

	// GetSKUSales agrupa por producto las ventas de [start, end), ordenado por ingreso descendente.
	GetSKUSales(ctx context.Context, companyID string, start, end time.Time, limit int) ([]SKUSalesResult, error)

	// GetLowStock lista productos activos con quantity <= threshold, los más escasos primero.
	GetLowStock(ctx context.Context, companyID string, threshold int64, limit int) ([]LowStockResult, error)
}
