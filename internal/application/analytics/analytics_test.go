package analytics_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-lite/internal/application/analytics"
	"github.com/jhoicas/crm-lite/internal/application/dto"
	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
)

var (
	employee = access.Actor{UserID: "u1", CompanyID: "c1", Role: access.RoleEmployee}
	fixedNow = time.Date(2026, time.October, 18, 15, 30, 0, 0, time.UTC)
	clock    = func() time.Time { return fixedNow }
)

type period struct{ start, end time.Time }

type fakeRepo struct {
	mu sync.Mutex

	metrics  map[time.Time]repository.SalesMetrics // por inicio del período
	skus     []repository.SKUSalesResult
	low      []repository.LowStockResult
	failWith error

	metricCalls []period
	skuLimit    int
	threshold   int64
	companies   []string
}

func (f *fakeRepo) GetSalesMetrics(_ context.Context, companyID string, start, end time.Time) (repository.SalesMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metricCalls = append(f.metricCalls, period{start, end})
	f.companies = append(f.companies, companyID)
	if f.failWith != nil {
		return repository.SalesMetrics{}, f.failWith
	}
	return f.metrics[start], nil
}

func (f *fakeRepo) GetSKUSales(_ context.Context, companyID string, _, _ time.Time, limit int) ([]repository.SKUSalesResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skuLimit = limit
	f.companies = append(f.companies, companyID)
	if len(f.skus) > limit {
		return f.skus[:limit], nil
	}
	return f.skus, nil
}

func (f *fakeRepo) GetLowStock(_ context.Context, companyID string, threshold int64, _ int) ([]repository.LowStockResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threshold = threshold
	f.companies = append(f.companies, companyID)
	return f.low, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sku(id string, units int64, revenue, cogs string) repository.SKUSalesResult {
	return repository.SKUSalesResult{ProductID: id, SKU: "SKU-" + id, ProductName: "Producto " + id, UnitsSold: units, GrossRevenue: d(revenue), TotalCOGS: d(cogs)}
}

func TestMargins_PeriodoPorDefectoEsElMesEnCurso(t *testing.T) {
	monthStart := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{metrics: map[time.Time]repository.SalesMetrics{
		monthStart: {SalesCount: 3, Revenue: d("1000"), Cost: d("700")},
	}}
	uc := analytics.NewMarginsUseCase(repo).WithClock(clock)

	report, err := uc.GetReport(context.Background(), employee, dto.MarginsReportRequest{})
	require.NoError(t, err)

	assert.Equal(t, "2026-10-01", report.Period.StartDate)
	assert.Equal(t, "2026-10-18", report.Period.EndDate)
	require.Len(t, repo.metricCalls, 1)
	assert.Equal(t, time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC), repo.metricCalls[0].end)
	assert.Equal(t, 20, repo.skuLimit)

	assert.Equal(t, 3, report.Totals.SalesCount)
	assert.Equal(t, "300", report.Totals.Profit.String())
	assert.Equal(t, "30", report.Totals.MarginPct.String())
	assert.Empty(t, report.SKURanking)
	assert.NotNil(t, report.ParetoSKUs)
	for _, c := range repo.companies {
		assert.Equal(t, "c1", c)
	}
}

func TestMargins_RankingYPareto(t *testing.T) {
	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		metrics: map[time.Time]repository.SalesMetrics{start: {SalesCount: 9, Revenue: d("1000"), Cost: d("600")}},
		skus: []repository.SKUSalesResult{
			sku("a", 6, "600", "400"),
			sku("b", 5, "250", "100"),
			sku("c", 2, "100", "80"),
			sku("e", 1, "50", "20"),
		},
	}
	uc := analytics.NewMarginsUseCase(repo).WithClock(clock)

	report, err := uc.GetReport(context.Background(), employee, dto.MarginsReportRequest{
		StartDate: "2026-09-01", EndDate: "2026-09-30", TopN: 10,
	})
	require.NoError(t, err)
	require.Len(t, report.SKURanking, 4)

	first := report.SKURanking[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "200", first.GrossProfit.String())
	assert.Equal(t, "33.33", first.MarginPct.String())
	assert.Equal(t, "60", first.RevenuePct.String())

	// 60% → 85% (cruza el umbral y entra) → 95% → 100%.
	assert.Equal(t, "85", report.SKURanking[1].CumulativeRevPct.String())
	assert.True(t, report.SKURanking[1].IsTopPareto)
	assert.False(t, report.SKURanking[2].IsTopPareto)
	require.Len(t, report.ParetoSKUs, 2)
	assert.Equal(t, "a", report.ParetoSKUs[0].ProductID)
	assert.Equal(t, "b", report.ParetoSKUs[1].ProductID)
	assert.Equal(t, 10, repo.skuLimit)
}

func TestMargins_EntradaInvalida(t *testing.T) {
	uc := analytics.NewMarginsUseCase(&fakeRepo{}).WithClock(clock)
	ctx := context.Background()

	cases := []struct {
		name  string
		req   dto.MarginsReportRequest
		field string
	}{
		{"inicio posterior al fin", dto.MarginsReportRequest{StartDate: "2026-10-10", EndDate: "2026-10-01"}, "start_date"},
		{"formato de fecha", dto.MarginsReportRequest{StartDate: "10/01/2026"}, "start_date"},
		{"top_n excesivo", dto.MarginsReportRequest{TopN: 500}, "top_n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.GetReport(ctx, employee, tc.req)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "err = %v", err)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestMargins_SinEmpresa(t *testing.T) {
	uc := analytics.NewMarginsUseCase(&fakeRepo{}).WithClock(clock)
	_, err := uc.GetReport(context.Background(), access.Actor{UserID: "u9"}, dto.MarginsReportRequest{})
	assert.ErrorIs(t, err, domain.ErrNoCompany)
}

func TestDashboard_Resumen(t *testing.T) {
	today := time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		metrics: map[time.Time]repository.SalesMetrics{
			today:      {SalesCount: 1, Revenue: d("150"), Cost: d("100")},
			monthStart: {SalesCount: 4, Revenue: d("1234.567"), Cost: d("800")},
		},
		skus: []repository.SKUSalesResult{sku("a", 4, "600", "400")},
		low:  []repository.LowStockResult{{ProductID: "z", SKU: "Z1", ProductName: "Escaso", Quantity: 1}},
	}
	uc := analytics.NewDashboardUseCase(repo).WithClock(clock)

	out, err := uc.GetSummary(context.Background(), employee, 3)
	require.NoError(t, err)

	assert.Equal(t, "150", out.TodaySales.String())
	assert.Equal(t, "50", out.TodayMargin.String())
	assert.Equal(t, 1, out.TodaySalesCount)
	assert.Equal(t, "1234.57", out.MonthlySales.String())
	assert.Equal(t, "434.57", out.MonthlyMargin.String())
	assert.Equal(t, 4, out.MonthlySalesCount)
	require.Len(t, out.TopSKUs, 1)
	assert.Equal(t, "33.33", out.TopSKUs[0].MarginPercentage.String())
	require.Len(t, out.LowStock, 1)
	assert.Equal(t, int64(1), out.LowStock[0].Quantity)
	assert.Equal(t, int64(3), repo.threshold)
	assert.Equal(t, 5, repo.skuLimit)
	assert.Equal(t, "Octubre 2026", out.DateLabel)
}

func TestDashboard_ErroresYUmbral(t *testing.T) {
	ctx := context.Background()

	_, err := analytics.NewDashboardUseCase(&fakeRepo{}).WithClock(clock).GetSummary(ctx, employee, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	boom := errors.New("db caída")
	_, err = analytics.NewDashboardUseCase(&fakeRepo{failWith: boom}).WithClock(clock).GetSummary(ctx, employee, 5)
	assert.ErrorIs(t, err, boom)

	_, err = analytics.NewDashboardUseCase(&fakeRepo{}).WithClock(clock).GetSummary(ctx, access.Actor{}, 5)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
