package handler

import (
	"errors"
	"net/http"
	"strconv"

	"stockwise/internal/apierror"
	"stockwise/internal/cache"
	"stockwise/internal/dto"
	"stockwise/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ProductLookupHandler serves the read-only price and stock lookups used by
// the sale entry screen. Results come through the product cache.
type ProductLookupHandler struct{ svc service.ProductService }

func NewProductLookupHandler(svc service.ProductService) *ProductLookupHandler {
	return &ProductLookupHandler{svc: svc}
}

// Price godoc
// @Summary Current selling price and stock
// @Tags    lookup
// @Produce json
// @Param   id  path int true "Product ID"
// @Success 200 {object} dto.ProductPriceResponse
// @Failure 404 {object} apierror.LookupError
// @Router  /api/product/{id}/price [get]
func (h *ProductLookupHandler) Price(c *gin.Context) {
	v, ok := h.lookup(c)
	if !ok {
		return
	}
	price, _ := v.Price.Float64()
	c.JSON(http.StatusOK, dto.ProductPriceResponse{Price: price, Stock: v.Stock})
}

// Stock godoc
// @Summary Current stock
// @Tags    lookup
// @Produce json
// @Param   id  path int true "Product ID"
// @Success 200 {object} dto.ProductStockResponse
// @Failure 404 {object} apierror.LookupError
// @Router  /api/product/{id}/stock [get]
func (h *ProductLookupHandler) Stock(c *gin.Context) {
	v, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ProductStockResponse{Stock: v.Stock})
}

func (h *ProductLookupHandler) lookup(c *gin.Context) (*cache.ProductLookup, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, apierror.LookupError{Error: "Product not found"})
		return nil, false
	}
	v, err := h.svc.Lookup(c.Request.Context(), uint(id))
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.LookupError{Error: "Product not found"})
		return nil, false
	case err != nil:
		log.Error().Err(err).Uint64("product_id", id).Msg("product lookup failed")
		c.JSON(http.StatusInternalServerError, apierror.LookupError{Error: "Lookup failed"})
		return nil, false
	}
	return v, true
}
