package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"stockwise/internal/dto"
	"stockwise/internal/infra"
	"stockwise/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	svc       service.SaleService
	storeName string
	loc       *time.Location
}

func NewSalesHandler(svc service.SaleService, storeName string, loc *time.Location) *SalesHandler {
	return &SalesHandler{svc: svc, storeName: storeName, loc: loc}
}

// Create godoc
// @Summary      Record a sale
// @Description  Assigns the next SALE-NNNNNN number and takes each item's quantity out of stock, all in one transaction.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateSaleRequest true "Sale with items"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/sales [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error saving sale")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Sale detail
// @Tags         sales
// @Produce      json
// @Param        id  path     int true "Sale ID"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error loading sale")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List sales
// @Description  Filtered, paginated list with the summary of the whole filtered set.
// @Tags         sales
// @Produce      json
// @Param        search         query string false "Sale number, notes or product name contains"
// @Param        date_from      query string false "YYYY-MM-DD, inclusive"
// @Param        date_to        query string false "YYYY-MM-DD, inclusive"
// @Param        payment_method query string false "cash | card | transfer | digital"
// @Param        min_amount     query number false "Minimum total"
// @Param        max_amount     query number false "Maximum total"
// @Param        page           query int    false "Page (default 1)"
// @Param        limit          query int    false "Page size (default 20)"
// @Success      200 {object} dto.SaleListResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Error listing sales")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Edit a sale
// @Description  Header changes plus item add/edit/delete. Stock is reconciled with the item deltas.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id   path     int                   true "Sale ID"
// @Param        body body     dto.UpdateSaleRequest true "Changes"
// @Success      200  {object} dto.SaleResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/sales/{id} [put]
func (h *SalesHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error saving sale")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a sale
// @Description  Returns every item's quantity to stock.
// @Tags         sales
// @Param        id path int true "Sale ID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [delete]
func (h *SalesHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Error deleting sale")
		return
	}
	c.Status(http.StatusNoContent)
}

// Receipt godoc
// @Summary      Sale receipt as PDF
// @Tags         sales
// @Produce      application/pdf
// @Param        id  path int true "Sale ID"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sale, err := h.svc.Load(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error loading sale")
		return
	}
	var buf bytes.Buffer
	if err := infra.WriteReceiptPDF(&buf, sale, h.storeName, h.loc); err != nil {
		respondError(c, err, "Error rendering receipt")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", sale.SaleNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
