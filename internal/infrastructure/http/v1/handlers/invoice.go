package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/core/apperror"
	"moneta/internal/core/id"
	"moneta/internal/domain"
	"moneta/internal/domain/documents/invoice"
	"moneta/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler handles invoice endpoints.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := invoice.ListFilter{ListFilter: domain.DefaultListFilter()}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "issue_date DESC")

	if statusParam := c.Query("status"); statusParam != "" {
		status := invoice.Status(statusParam)
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
		items[i] = dto.FromInvoice(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	invID, ok := h.ParseID(c)
	if !ok {
		return
	}

	inv, err := h.service.GetByID(c.Request.Context(), invID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInvoice(inv))
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	customerID, err := id.Parse(req.CustomerID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid customer id").
			WithDetail("field", "customerId"))
		return
	}

	inv, err := h.service.Create(c.Request.Context(), invoice.CreateInput{
		CustomerID: customerID,
		IssueDate:  req.IssueDate,
		DueDate:    req.DueDate,
		Notes:      req.Notes,
		Lines:      dto.ToLines(req.Lines),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromInvoice(inv))
}

// UpdateLines handles PUT /invoices/:id/lines - full line replacement.
func (h *InvoiceHandler) UpdateLines(c *gin.Context) {
	invID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateLinesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.UpdateLines(c.Request.Context(), invID, dto.ToLines(req.Lines), req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInvoice(inv))
}

// SetStatus handles POST /invoices/:id/status
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	invID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.SetStatus(c.Request.Context(), invID, invoice.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInvoice(inv))
}

// Delete handles DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	invID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), invID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers invoice routes.
func (h *InvoiceHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id/lines", h.UpdateLines)
	group.POST("/:id/status", h.SetStatus)
	group.DELETE("/:id", h.Delete)
}
