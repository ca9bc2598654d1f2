// Package analytics contiene los reportes de rentabilidad y el resumen del dashboard.
// Todo se calcula sobre los precios congelados en las líneas de venta, nunca sobre el
// precio vivo del producto.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/crm-lite/internal/application/dto"
	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
	"github.com/jhoicas/crm-lite/pkg/validator"
)

const (
	defaultTopN     = 20
	maxTopN         = 200
	paretoThreshold = 80 // el top de SKUs que acumula ~80% del ingreso
	dateLayout      = "2006-01-02"
)

var (
	hundred  = decimal.NewFromInt(100)
	pareto80 = decimal.NewFromInt(paretoThreshold)
)

// MarginsUseCase reporte de márgenes por período: totales, ranking de SKUs y Pareto.
type MarginsUseCase struct {
	repo repository.AnalyticsRepository
	now  func() time.Time
}

// NewMarginsUseCase construye el caso de uso.
func NewMarginsUseCase(repo repository.AnalyticsRepository) *MarginsUseCase {
	return &MarginsUseCase{repo: repo, now: time.Now}
}

// WithClock fija el reloj (tests).
func (uc *MarginsUseCase) WithClock(now func() time.Time) *MarginsUseCase {
	uc.now = now
	return uc
}

// GetReport genera el reporte de márgenes del período pedido.
func (uc *MarginsUseCase) GetReport(ctx context.Context, actor access.Actor, req dto.MarginsReportRequest) (*dto.MarginsReportDTO, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	start, end, err := parsePeriod(uc.now(), req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}

	var (
		metrics repository.SalesMetrics
		skus    []repository.SKUSalesResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := uc.repo.GetSalesMetrics(gctx, actor.CompanyID, start, end)
		if err != nil {
			return fmt.Errorf("analytics: totales: %w", err)
		}
		metrics = m
		return nil
	})
	g.Go(func() error {
		rows, err := uc.repo.GetSKUSales(gctx, actor.CompanyID, start, end, topN)
		if err != nil {
			return fmt.Errorf("analytics: SKUs: %w", err)
		}
		skus = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranking := buildSKURanking(skus, metrics.Revenue)
	pareto := make([]dto.SKURankingDTO, 0, len(ranking))
	for _, r := range ranking {
		if r.IsTopPareto {
			pareto = append(pareto, r)
		}
	}

	return &dto.MarginsReportDTO{
		Period: dto.PeriodDTO{
			StartDate: start.Format(dateLayout),
			EndDate:   end.AddDate(0, 0, -1).Format(dateLayout),
		},
		Totals:     buildTotals(metrics),
		SKURanking: ranking,
		ParetoSKUs: pareto,
	}, nil
}

func buildTotals(m repository.SalesMetrics) dto.SalesTotalsDTO {
	profit := m.Revenue.Sub(m.Cost)
	return dto.SalesTotalsDTO{
		SalesCount: m.SalesCount,
		Revenue:    m.Revenue.Round(2),
		COGS:       m.Cost.Round(2),
		Profit:     profit.Round(2),
		MarginPct:  percent(profit, m.Revenue),
	}
}

// buildSKURanking enriquece las filas (ya ordenadas por ingreso) con participación,
// acumulado y marca Pareto. totalRevenue es el ingreso de todo el período, no solo del top N.
// Un SKU es Pareto si el acumulado previo aún no alcanzaba el umbral: el que lo cruza entra.
func buildSKURanking(rows []repository.SKUSalesResult, totalRevenue decimal.Decimal) []dto.SKURankingDTO {
	ranking := make([]dto.SKURankingDTO, 0, len(rows))
	cumulative := decimal.Zero
	for i, r := range rows {
		share := decimal.Zero
		if totalRevenue.IsPositive() {
			share = r.GrossRevenue.Div(totalRevenue).Mul(hundred)
		}
		isPareto := cumulative.LessThan(pareto80)
		cumulative = cumulative.Add(share)

		profit := r.GrossProfit()
		ranking = append(ranking, dto.SKURankingDTO{
			Rank:             i + 1,
			ProductID:        r.ProductID,
			SKU:              r.SKU,
			ProductName:      r.ProductName,
			UnitsSold:        r.UnitsSold,
			GrossRevenue:     r.GrossRevenue.Round(2),
			TotalCOGS:        r.TotalCOGS.Round(2),
			GrossProfit:      profit.Round(2),
			MarginPct:        percent(profit, r.GrossRevenue),
			RevenuePct:       share.Round(2),
			CumulativeRevPct: cumulative.Round(2),
			IsTopPareto:      isPareto,
		})
	}
	return ranking
}

// percent part/whole*100 redondeado a 2 decimales; 0 si whole no es positivo.
func percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

// parsePeriod convierte las fechas YYYY-MM-DD en el intervalo [start, end).
// Sin end: hasta hoy inclusive. Sin start: primer día del mes de end.
func parsePeriod(now time.Time, startStr, endStr string) (start, end time.Time, err error) {
	loc := now.Location()
	lastDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if endStr != "" {
		lastDay, err = time.ParseInLocation(dateLayout, endStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError("end_date", "fecha inválida, formato esperado "+dateLayout)
		}
	}
	end = lastDay.AddDate(0, 0, 1)

	if startStr == "" {
		start = time.Date(lastDay.Year(), lastDay.Month(), 1, 0, 0, 0, 0, loc)
	} else {
		start, err = time.ParseInLocation(dateLayout, startStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError("start_date", "fecha inválida, formato esperado "+dateLayout)
		}
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, domain.NewValidationError("start_date", "no puede ser posterior a end_date")
	}
	return start, end, nil
}
