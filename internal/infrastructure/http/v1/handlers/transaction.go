package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/core/apperror"
	"moneta/internal/core/id"
	"moneta/internal/domain"
	"moneta/internal/domain/ledger"
	"moneta/internal/infrastructure/http/v1/dto"
)

// TransactionHandler handles ledger transaction endpoints.
type TransactionHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(base *BaseHandler, service *ledger.Service) *TransactionHandler {
	return &TransactionHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /transactions
func (h *TransactionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := ledger.ListFilter{ListFilter: domain.DefaultListFilter()}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date DESC")

	if catParam := c.Query("categoryId"); catParam != "" {
		catID, err := id.Parse(catParam)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid category id").
				WithDetail("field", "categoryId"))
			return
		}
		filter.CategoryID = &catID
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
	filter.From = from
	filter.To = to

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromTransaction(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	txID, ok := h.ParseID(c)
	if !ok {
		return
	}

	tx, err := h.service.GetByID(c.Request.Context(), txID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTransaction(tx))
}

// Create handles POST /transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	var req dto.RecordTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tx, err := req.ToTransaction()
	if err != nil {
		h.Error(c, err)
		return
	}

	recorded, err := h.service.Record(c.Request.Context(), tx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromTransaction(recorded))
}

// Delete handles DELETE /transactions/:id
func (h *TransactionHandler) Delete(c *gin.Context) {
	txID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), txID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
