package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted on a sale.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentDigital  = "digital"
)

// PaymentMethods maps each method to its display label, in display order.
var PaymentMethods = []struct {
	Value string
	Label string
}{
	{PaymentCash, "Cash"},
	{PaymentCard, "Credit/Debit Card"},
	{PaymentTransfer, "Bank Transfer"},
	{PaymentDigital, "Digital Wallet"},
}

// IsValidPaymentMethod reports whether m is one of the accepted methods.
func IsValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm.Value == m {
			return true
		}
	}
	return false
}

// PaymentMethodLabel returns the display label of m, or m itself when unknown.
func PaymentMethodLabel(m string) string {
	for _, pm := range PaymentMethods {
		if pm.Value == m {
			return pm.Label
		}
	}
	return m
}

// Sale is a sale header. TotalAmount is always the sum of its item subtotals.
type Sale struct {
	ID            uint            `gorm:"primaryKey"`
	SaleNumber    string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	Date          time.Time       `gorm:"not null;index"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(20);not null;index"`
	Notes         string          `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:RESTRICT"`
}

// SaleItem is a line of a sale. A product appears at most once per sale.
type SaleItem struct {
	ID        uint            `gorm:"primaryKey"`
	SaleID    uint            `gorm:"not null;uniqueIndex:idx_sale_items_sale_product"`
	ProductID uint            `gorm:"not null;uniqueIndex:idx_sale_items_sale_product;index"`
	Quantity  int             `gorm:"not null;check:quantity >= 1"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

// Subtotal is quantity × unit price.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumSubtotals adds up the subtotals of items.
func SumSubtotals(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
