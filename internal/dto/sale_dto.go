package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SaleItemRequest describes one line. On update, ID selects an existing item;
// Delete removes it. UnitPrice defaults to the product's selling price.
type SaleItemRequest struct {
	ID        *uint            `json:"id"`
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Delete    bool             `json:"delete"`
}

type CreateSaleRequest struct {
	Date          *time.Time        `json:"date"`
	PaymentMethod string            `json:"payment_method" validate:"omitempty,oneof=cash card transfer digital"`
	Notes         string            `json:"notes"`
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1"`
}

// UpdateSaleRequest edits the header and applies item changes. Existing items
// not listed are kept as they are.
type UpdateSaleRequest struct {
	Date          *time.Time        `json:"date"`
	PaymentMethod *string           `json:"payment_method" validate:"omitempty,oneof=cash card transfer digital"`
	Notes         *string           `json:"notes"`
	Items         []SaleItemRequest `json:"items"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
// Dates are YYYY-MM-DD and inclusive.
type SaleFilter struct {
	Search        string `form:"search"`
	DateFrom      string `form:"date_from"`
	DateTo        string `form:"date_to"`
	PaymentMethod string `form:"payment_method"`
	MinAmount     string `form:"min_amount"`
	MaxAmount     string `form:"max_amount"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=20" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID                 uint               `json:"id"`
	SaleNumber         string             `json:"sale_number"`
	Date               string             `json:"date"`
	TotalAmount        decimal.Decimal    `json:"total_amount"`
	PaymentMethod      string             `json:"payment_method"`
	PaymentMethodLabel string             `json:"payment_method_label"`
	Notes              string             `json:"notes"`
	Items              []SaleItemResponse `json:"items"`
	CreatedAt          string             `json:"created_at"`
	UpdatedAt          string             `json:"updated_at"`
}

// SalesSummary aggregates a filtered set of sales.
type SalesSummary struct {
	TotalSales   int64           `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AvgSale      decimal.Decimal `json:"avg_sale"`
}

type PaymentMethodOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type SaleListResponse struct {
	Data           []SaleResponse        `json:"data"`
	Summary        SalesSummary          `json:"summary"`
	PaymentMethods []PaymentMethodOption `json:"payment_methods"`
	Total          int64                 `json:"total"`
	Page           int                   `json:"page"`
	Limit          int                   `json:"limit"`
	TotalPages     int                   `json:"total_pages"`
}
