package dto

import "github.com/shopspring/decimal"

// MarginsReportRequest parámetros para GET /api/analytics/margins.
type MarginsReportRequest struct {
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"` // por defecto primer día del mes actual
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`   // por defecto hoy
	TopN      int    `json:"top_n" validate:"min=0,max=200"`                       // 0 = 20
}

// PeriodDTO rango de fechas del reporte (ambos extremos incluidos).
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SalesTotalsDTO totales del período.
type SalesTotalsDTO struct {
	SalesCount int             `json:"sales_count"`
	Revenue    decimal.Decimal `json:"revenue"`
	COGS       decimal.Decimal `json:"cogs"`
	Profit     decimal.Decimal `json:"profit"`
	MarginPct  decimal.Decimal `json:"margin_pct"`
}

// SKURankingDTO rentabilidad por producto.
type SKURankingDTO struct {
	Rank             int             `json:"rank"` // 1 = mayor ingreso
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	UnitsSold        int64           `json:"units_sold"`
	GrossRevenue     decimal.Decimal `json:"gross_revenue"`
	TotalCOGS        decimal.Decimal `json:"total_cogs"`
	GrossProfit      decimal.Decimal `json:"gross_profit"`
	MarginPct        decimal.Decimal `json:"margin_pct"`
	RevenuePct       decimal.Decimal `json:"revenue_pct"` // sobre el ingreso total del período
	CumulativeRevPct decimal.Decimal `json:"cumulative_revenue_pct"`
	IsTopPareto      bool            `json:"is_top_pareto"`
}

// MarginsReportDTO respuesta de GET /api/analytics/margins.
type MarginsReportDTO struct {
	Period     PeriodDTO       `json:"period"`
	Totals     SalesTotalsDTO  `json:"totals"`
	SKURanking []SKURankingDTO `json:"sku_ranking"`
	ParetoSKUs []SKURankingDTO `json:"pareto_skus"` // SKUs que acumulan ~80% del ingreso
}

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	TodaySales      decimal.Decimal `json:"today_sales"`
	TodayMargin     decimal.Decimal `json:"today_margin"`
	TodaySalesCount int             `json:"today_sales_count"`

	MonthlySales      decimal.Decimal `json:"monthly_sales"`
	MonthlyMargin     decimal.Decimal `json:"monthly_margin"`
	MonthlySalesCount int             `json:"monthly_sales_count"`

	TopSKUs  []TopSKUDTO   `json:"top_skus"`
	LowStock []LowStockDTO `json:"low_stock"`

	DateLabel string `json:"date_label"` // ej: "Octubre 2026"
}

// TopSKUDTO resumen de un SKU para el dashboard.
type TopSKUDTO struct {
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	QuantitySold     int64           `json:"quantity_sold"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"`
}

// LowStockDTO producto con pocas existencias.
type LowStockDTO struct {
	ProductID   string `json:"product_id"`
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
}
