package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/crm-lite/internal/application/dto"
	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
)

const (
	dashboardTopSKUs         = 5
	dashboardLowStockItems   = 10
	DefaultLowStockThreshold = 5
)

// DashboardUseCase resumen del día y del mes en curso.
type DashboardUseCase struct {
	repo repository.AnalyticsRepository
	now  func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(repo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{repo: repo, now: time.Now}
}

// WithClock fija el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary consulta en paralelo:
//  1. métricas de hoy
//  2. métricas del mes
//  3. top SKUs del mes por ingreso
//  4. productos activos con quantity <= lowStockThreshold
func (uc *DashboardUseCase) GetSummary(ctx context.Context, actor access.Actor, lowStockThreshold int64) (*dto.DashboardSummaryDTO, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	if lowStockThreshold < 0 {
		return nil, domain.NewValidationError("low_stock_threshold", "debe ser mayor o igual a 0")
	}

	now := uc.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := todayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var (
		today, month repository.SalesMetrics
		top          []repository.SKUSalesResult
		low          []repository.LowStockResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := uc.repo.GetSalesMetrics(gctx, actor.CompanyID, todayStart, tomorrow)
		if err != nil {
			return fmt.Errorf("dashboard: métricas de hoy: %w", err)
		}
		today = m
		return nil
	})
	g.Go(func() error {
		m, err := uc.repo.GetSalesMetrics(gctx, actor.CompanyID, monthStart, tomorrow)
		if err != nil {
			return fmt.Errorf("dashboard: métricas del mes: %w", err)
		}
		month = m
		return nil
	})
	g.Go(func() error {
		rows, err := uc.repo.GetSKUSales(gctx, actor.CompanyID, monthStart, tomorrow, dashboardTopSKUs)
		if err != nil {
			return fmt.Errorf("dashboard: top SKUs: %w", err)
		}
		top = rows
		return nil
	})
	g.Go(func() error {
		rows, err := uc.repo.GetLowStock(gctx, actor.CompanyID, lowStockThreshold, dashboardLowStockItems)
		if err != nil {
			return fmt.Errorf("dashboard: stock bajo: %w", err)
		}
		low = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	topSKUs := make([]dto.TopSKUDTO, 0, len(top))
	for _, r := range top {
		topSKUs = append(topSKUs, dto.TopSKUDTO{
			ProductID:        r.ProductID,
			SKU:              r.SKU,
			ProductName:      r.ProductName,
			QuantitySold:     r.UnitsSold,
			TotalRevenue:     r.GrossRevenue.Round(2),
			MarginPercentage: percent(r.GrossProfit(), r.GrossRevenue),
		})
	}
	lowStock := make([]dto.LowStockDTO, 0, len(low))
	for _, r := range low {
		lowStock = append(lowStock, dto.LowStockDTO{
			ProductID:   r.ProductID,
			SKU:         r.SKU,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
		})
	}

	return &dto.DashboardSummaryDTO{
		TodaySales:        today.Revenue.Round(2),
		TodayMargin:       today.Revenue.Sub(today.Cost).Round(2),
		TodaySalesCount:   today.SalesCount,
		MonthlySales:      month.Revenue.Round(2),
		MonthlyMargin:     month.Revenue.Sub(month.Cost).Round(2),
		MonthlySalesCount: month.SalesCount,
		TopSKUs:           topSKUs,
		LowStock:          lowStock,
		DateLabel:         monthLabel(now),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
