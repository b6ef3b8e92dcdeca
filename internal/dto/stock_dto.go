package dto

type RecordStockRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Type      string `json:"type"       validate:"required,oneof=in out adjust"`
	Quantity  int    `json:"quantity"   validate:"required"`
	Reference string `json:"reference"  validate:"max=100"`
	Notes     string `json:"notes"`
}

type StockTransactionFilter struct {
	ProductID uint   `form:"product_id"`
	Type      string `form:"type"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type StockTransactionResponse struct {
	ID          uint   `json:"id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
	StockBefore int    `json:"stock_before"`
	StockAfter  int    `json:"stock_after"`
	Reference   string `json:"reference"`
	Notes       string `json:"notes"`
	Timestamp   string `json:"timestamp"`
}

type StockTransactionListResponse struct {
	Data  []StockTransactionResponse `json:"data"`
	Total int64                      `json:"total"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}
