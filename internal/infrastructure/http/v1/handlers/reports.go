package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/domain/catalogs/category"
	"moneta/internal/domain/forecast"
	"moneta/internal/domain/ledger"
	"moneta/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles aggregate and forecasting endpoints.
type ReportsHandler struct {
	*BaseHandler
	ledger   *ledger.Service
	forecast *forecast.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, ledgerSvc *ledger.Service, forecastSvc *forecast.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		ledger:      ledgerSvc,
		forecast:    forecastSvc,
	}
}

// Total handles GET /reports/total?kind=income&from=...&to=...
// The range is half-open: from is included, to is not.
func (h *ReportsHandler) Total(c *gin.Context) {
	ctx := c.Request.Context()
	kind := category.Kind(c.Query("kind"))

	from, err := h.ParseDateQuery(c, "from")
	if err != nil {
		h.Error(c, err)
		return
	}
	to, err := h.ParseDateQuery(c, "to")
	if err != nil {
		h.Error(c, err)
		return
	}

	total, err := h.ledger.TotalByType(ctx, kind, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TotalResponse{
		Kind:  string(kind),
		Total: total,
	})
}

// Breakdown handles GET /reports/breakdown?kind=expense
func (h *ReportsHandler) Breakdown(c *gin.Context) {
	ctx := c.Request.Context()
	kind := category.Kind(c.Query("kind"))

	entries, err := h.ledger.CategoryBreakdown(ctx, kind)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromBreakdown(string(kind), entries))
}

// MonthlySummary handles GET /reports/monthly-summary?months=12
func (h *ReportsHandler) MonthlySummary(c *gin.Context) {
	ctx := c.Request.Context()
	months := h.ParseIntQuery(c, "months", 12)

	summary, err := h.ledger.MonthlySummary(ctx, months)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromMonthlySummary(summary))
}

// Forecast handles GET /reports/forecast?months=6
func (h *ReportsHandler) Forecast(c *gin.Context) {
	ctx := c.Request.Context()
	months := h.ParseIntQuery(c, "months", 6)

	projection, err := h.forecast.Forecast(ctx, months)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromProjection(projection))
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/total", h.Total)
	group.GET("/breakdown", h.Breakdown)
	group.GET("/monthly-summary", h.MonthlySummary)
	group.GET("/forecast", h.Forecast)
}
