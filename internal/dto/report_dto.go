package dto

import "github.com/shopspring/decimal"

// SalesReportFilter is bound from the query string of GET /v1/reports/sales.
type SalesReportFilter struct {
	DateFrom      string `form:"date_from"`
	DateTo        string `form:"date_to"`
	PaymentMethod string `form:"payment_method"`
}

type TopProductResponse struct {
	ProductID    uint            `json:"product_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	TotalSold    int64           `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type LowStockReportResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int               `json:"total"`
}

type SalesReportResponse struct {
	DateFrom       string                `json:"date_from"`
	DateTo         string                `json:"date_to"`
	PaymentMethod  string                `json:"payment_method"`
	Summary        SalesSummary          `json:"summary"`
	TopProducts    []TopProductResponse  `json:"top_products"`
	Sales          []SaleResponse        `json:"sales"`
	PaymentMethods []PaymentMethodOption `json:"payment_methods"`
}

type DashboardResponse struct {
	TotalProducts    int64                `json:"total_products"`
	TotalLowStock    int                  `json:"total_low_stock"`
	LowStockProducts []ProductResponse    `json:"low_stock_products"`
	RecentSales      []SaleResponse       `json:"recent_sales"`
	TodaySales       decimal.Decimal      `json:"today_sales"`
	TopProducts      []TopProductResponse `json:"top_products"`
}
