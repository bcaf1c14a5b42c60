package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/core/apperror"
	"moneta/internal/core/id"
	"moneta/internal/domain"
	"moneta/internal/domain/documents/quote"
	"moneta/internal/infrastructure/http/v1/dto"
)

// QuoteHandler handles quote endpoints.
type QuoteHandler struct {
	*BaseHandler
	service *quote.Service
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(base *BaseHandler, service *quote.Service) *QuoteHandler {
	return &QuoteHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /quotes
func (h *QuoteHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := quote.ListFilter{ListFilter: domain.DefaultListFilter()}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "issue_date DESC")

	if statusParam := c.Query("status"); statusParam != "" {
		status := quote.Status(statusParam)
		filter.Status = &status
	}

	if custParam := c.Query("customerId"); custParam != "" {
		custID, err := id.Parse(custParam)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customer id").
				WithDetail("field", "customerId"))
			return
		}
		filter.CustomerID = &custID
	}

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
	filter.DateFrom = from
	filter.DateTo = to

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromQuote(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
	quoteID, ok := h.ParseID(c)
	if !ok {
		return
	}

	q, err := h.service.GetByID(c.Request.Context(), quoteID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuote(q))
}

// Create handles POST /quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	customerID, err := id.Parse(req.CustomerID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid customer id").
			WithDetail("field", "customerId"))
		return
	}

	q, err := h.service.Create(c.Request.Context(), quote.CreateInput{
		CustomerID: customerID,
		IssueDate:  req.IssueDate,
		ExpiryDate: req.ExpiryDate,
		Notes:      req.Notes,
		Lines:      dto.ToLines(req.Lines),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromQuote(q))
}

// UpdateLines handles PUT /quotes/:id/lines - full line replacement.
func (h *QuoteHandler) UpdateLines(c *gin.Context) {
	quoteID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateLinesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := h.service.UpdateLines(c.Request.Context(), quoteID, dto.ToLines(req.Lines), req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuote(q))
}

// SetStatus handles POST /quotes/:id/status
func (h *QuoteHandler) SetStatus(c *gin.Context) {
	quoteID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := h.service.SetStatus(c.Request.Context(), quoteID, quote.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuote(q))
}

// Convert handles POST /quotes/:id/convert - accepted quote to invoice.
func (h *QuoteHandler) Convert(c *gin.Context) {
	quoteID, ok := h.ParseID(c)
	if !ok {
		return
	}

	// Body is optional; an empty body means all defaults.
	var req dto.ConvertQuoteRequest
	if c.Request.ContentLength > 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}

	inv, err := h.service.ConvertToInvoice(c.Request.Context(), quoteID, quote.ConvertOptions{
		DueDate: req.DueDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromInvoice(inv))
}

// Delete handles DELETE /quotes/:id
func (h *QuoteHandler) Delete(c *gin.Context) {
	quoteID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), quoteID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers quote routes.
func (h *QuoteHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id/lines", h.UpdateLines)
	group.POST("/:id/status", h.SetStatus)
	group.POST("/:id/convert", h.Convert)
	group.DELETE("/:id", h.Delete)
}
