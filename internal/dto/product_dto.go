package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name          string          `json:"name"            validate:"required,min=1,max=100"`
	SKU           *string         `json:"sku"             validate:"omitempty,max=50"`
	Description   string          `json:"description"`
	Category      string          `json:"category"        validate:"max=50"`
	BuyingPrice   decimal.Decimal `json:"buying_price"    validate:"min=0"`
	SellingPrice  decimal.Decimal `json:"selling_price"   validate:"min=0"`
	CurrentStock  int             `json:"current_stock"   validate:"min=0"`
	MinStockLevel *int            `json:"min_stock_level" validate:"omitempty,min=0"`
	IsActive      *bool           `json:"is_active"`
}

// UpdateProductRequest is a partial update; nil fields are left untouched.
// A CurrentStock change is booked as an adjustment in the stock ledger.
type UpdateProductRequest struct {
	Name          *string          `json:"name"            validate:"omitempty,min=1,max=100"`
	SKU           *string          `json:"sku"             validate:"omitempty,max=50"`
	Description   *string          `json:"description"`
	Category      *string          `json:"category"        validate:"omitempty,max=50"`
	BuyingPrice   *decimal.Decimal `json:"buying_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	CurrentStock  *int             `json:"current_stock"   validate:"omitempty,min=0"`
	MinStockLevel *int             `json:"min_stock_level" validate:"omitempty,min=0"`
	IsActive      *bool            `json:"is_active"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	LowStock string `form:"low_stock"`        // any non-empty value other than 0/false enables it
	Active   string `form:"active,default=true"` // true | false | all
	Page     int    `form:"page,default=1"    validate:"min=1"`
	Limit    int    `form:"limit,default=20"  validate:"min=1,max=100"`
}

// LowStockOnly reports whether the low_stock query parameter is switched on.
func (f ProductFilter) LowStockOnly() bool {
	switch f.LowStock {
	case "", "0", "false", "False", "off":
		return false
	}
	return true
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	BuyingPrice   decimal.Decimal `json:"buying_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CurrentStock  int             `json:"current_stock"`
	MinStockLevel int             `json:"min_stock_level"`
	IsActive      bool            `json:"is_active"`
	IsLowStock    bool            `json:"is_low_stock"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Categories []string          `json:"categories"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// ProductSaleLine is one entry of a product's sales history.
type ProductSaleLine struct {
	SaleID     uint            `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	Date       string          `json:"date"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type ProductDetailResponse struct {
	ProductResponse
	RecentTransactions []StockTransactionResponse `json:"recent_transactions"`
	SalesHistory       []ProductSaleLine          `json:"sales_history"`
}

// ProductPriceResponse is served by GET /api/product/:id/price.
type ProductPriceResponse struct {
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// ProductStockResponse is served by GET /api/product/:id/stock.
type ProductStockResponse struct {
	Stock int `json:"stock"`
}
