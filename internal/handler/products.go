package handler

import (
	"net/http"

	"stockwise/internal/dto"
	"stockwise/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// Create godoc
// @Summary      Create a product
// @Description  SKU is auto-assigned when empty. Selling price must not be below buying price.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateProductRequest true "Product"
// @Success      201  {object} dto.ProductResponse
// @Failure      400  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error saving product")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Product detail
// @Description  Includes the ten latest stock transactions and the sales history.
// @Tags         products
// @Produce      json
// @Param        id  path     int true "Product ID"
// @Success      200 {object} dto.ProductDetailResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error loading product")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        search    query string false "Name, SKU or description contains"
// @Param        category  query string false "Exact category"
// @Param        low_stock query string false "Only products at or below their minimum"
// @Param        active    query string false "true (default) | false | all"
// @Param        page      query int    false "Page (default 1)"
// @Param        limit     query int    false "Page size (default 20)"
// @Success      200 {object} dto.ProductListResponse
// @Router       /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Error listing products")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Categories godoc
// @Summary      Distinct product categories
// @Tags         products
// @Produce      json
// @Success      200 {array} string
// @Router       /v1/products/categories [get]
func (h *ProductsHandler) Categories(c *gin.Context) {
	cats, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error listing categories")
		return
	}
	c.JSON(http.StatusOK, cats)
}

// Update godoc
// @Summary      Update a product
// @Description  Partial update. A current_stock change is recorded as an adjustment.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id   path     int                      true "Product ID"
// @Param        body body     dto.UpdateProductRequest true "Changed fields"
// @Success      200  {object} dto.ProductResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/products/{id} [put]
func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error saving product")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary      Soft delete a product
// @Tags         products
// @Param        id path int true "Product ID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id}/deactivate [patch]
func (h *ProductsHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

// Reactivate godoc
// @Summary      Restore a soft-deleted product
// @Tags         products
// @Param        id path int true "Product ID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id}/reactivate [patch]
func (h *ProductsHandler) Reactivate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *ProductsHandler) setActive(c *gin.Context, active bool) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var err error
	if active {
		err = h.svc.Reactivate(c.Request.Context(), id)
	} else {
		err = h.svc.Deactivate(c.Request.Context(), id)
	}
	if err != nil {
		respondError(c, err, "Error saving product")
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete godoc
// @Summary      Permanently delete a product
// @Description  Refused with 409 when the product appears in any sale.
// @Tags         products
// @Param        id path int true "Product ID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/products/{id} [delete]
func (h *ProductsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Error deleting product")
		return
	}
	c.Status(http.StatusNoContent)
}
