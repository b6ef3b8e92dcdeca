package handler

import (
	"net/http"

	"stockwise/internal/dto"
	"stockwise/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler { return &ReportsHandler{svc: svc} }

// Dashboard godoc
// @Summary      Dashboard figures
// @Description  Active product count, low-stock list, recent sales, today's revenue and the top sellers.
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.DashboardResponse
// @Router       /v1/dashboard [get]
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error loading dashboard")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LowStock godoc
// @Summary      Low stock report
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.LowStockReportResponse
// @Router       /v1/reports/low-stock [get]
func (h *ReportsHandler) LowStock(c *gin.Context) {
	resp, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error building report")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Sales godoc
// @Summary      Sales report
// @Tags         reports
// @Produce      json
// @Param        date_from      query string false "YYYY-MM-DD, inclusive"
// @Param        date_to        query string false "YYYY-MM-DD, inclusive"
// @Param        payment_method query string false "cash | card | transfer | digital"
// @Success      200 {object} dto.SalesReportResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/reports/sales [get]
func (h *ReportsHandler) Sales(c *gin.Context) {
	var filter dto.SalesReportFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Sales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Error building report")
		return
	}
	c.JSON(http.StatusOK, resp)
}
