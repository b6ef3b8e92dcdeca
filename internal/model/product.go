package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinStockLevel applies when a product is created without an explicit threshold.
const DefaultMinStockLevel = 5

// Product is a catalog entry. CurrentStock is only ever changed through the
// stock ledger or sale items, never overwritten.
type Product struct {
	ID            uint            `gorm:"primaryKey"`
	Name          string          `gorm:"type:varchar(100);not null;index"`
	SKU           *string         `gorm:"type:varchar(50);uniqueIndex"`
	Description   string          `gorm:"type:text"`
	Category      string          `gorm:"type:varchar(50);index"`
	BuyingPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CurrentStock  int             `gorm:"not null;check:current_stock >= 0"`
	MinStockLevel int             `gorm:"not null"`
	IsActive      bool            `gorm:"not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock reports whether the counter sits at or below the configured minimum.
func (p Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStockLevel
}

// SKUValue returns the SKU or "" when unassigned.
func (p Product) SKUValue() string {
	if p.SKU == nil {
		return ""
	}
	return *p.SKU
}
