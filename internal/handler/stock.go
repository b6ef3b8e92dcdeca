package handler

import (
	"net/http"

	"stockwise/internal/dto"
	"stockwise/internal/service"

	"github.com/gin-gonic/gin"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler { return &StockHandler{svc: svc} }

// Record godoc
// @Summary      Record a stock transaction
// @Description  "in" takes a positive quantity, "out" a negative one, "adjust" any non-zero delta.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body body dto.RecordStockRequest true "Stock change"
// @Success      201  {object} dto.StockTransactionResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/stock-transactions [post]
func (h *StockHandler) Record(c *gin.Context) {
	var req dto.RecordStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Record(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error recording stock transaction")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      Stock ledger
// @Tags         stock
// @Produce      json
// @Param        product_id query int    false "Product ID"
// @Param        type       query string false "in | out | adjust"
// @Param        page       query int    false "Page (default 1)"
// @Param        limit      query int    false "Page size (default 50)"
// @Success      200 {object} dto.StockTransactionListResponse
// @Router       /v1/stock-transactions [get]
func (h *StockHandler) List(c *gin.Context) {
	var filter dto.StockTransactionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Error listing stock transactions")
		return
	}
	c.JSON(http.StatusOK, resp)
}
