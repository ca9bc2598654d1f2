package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/crm-lite/internal/application/analytics"
	"github.com/jhoicas/crm-lite/internal/application/dto"
)

// AnalyticsHandler reportes de rentabilidad y dashboard.
type AnalyticsHandler struct {
	margins   *appanalytics.MarginsUseCase
	dashboard *appanalytics.DashboardUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(margins *appanalytics.MarginsUseCase, dashboard *appanalytics.DashboardUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{margins: margins, dashboard: dashboard}
}

// GetMargins godoc
// @Summary      Reporte de márgenes y ranking de SKUs (Pareto 80/20)
// @Description  Ingresos netos de descuento y costo según los precios congelados en las líneas de venta.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "Inicio del período (YYYY-MM-DD). Default: primer día del mes."
// @Param        end_date    query  string  false  "Fin del período, inclusive (YYYY-MM-DD). Default: hoy."
// @Param        top_n       query  int     false  "Máx. SKUs en el ranking (default 20, max 200)."
// @Success      200  {object}  dto.MarginsReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/analytics/margins [get]
func (h *AnalyticsHandler) GetMargins(c *fiber.Ctx) error {
	req := dto.MarginsReportRequest{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		TopN:      c.QueryInt("top_n", 0),
	}
	report, err := h.margins.GetReport(c.UserContext(), GetActor(c), req)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// GetSummary godoc
// @Summary      Resumen del día y del mes en curso
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        low_stock_threshold  query  int  false  "Umbral de stock bajo (default 5)"
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/dashboard/summary [get]
func (h *AnalyticsHandler) GetSummary(c *fiber.Ctx) error {
	threshold := c.QueryInt("low_stock_threshold", appanalytics.DefaultLowStockThreshold)
	summary, err := h.dashboard.GetSummary(c.UserContext(), GetActor(c), int64(threshold))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}
