package model

import "time"

// Stock transaction types.
const (
	StockIn     = "in"
	StockOut    = "out"
	StockAdjust = "adjust"
)

// StockTransaction is an append-only ledger row. Quantity is signed: positive
// adds stock, negative removes it. Rows are never updated.
type StockTransaction struct {
	ID          uint      `gorm:"primaryKey"`
	ProductID   uint      `gorm:"not null;index"`
	Type        string    `gorm:"type:varchar(10);not null;index"`
	Quantity    int       `gorm:"not null"`
	StockBefore int       `gorm:"not null"`
	StockAfter  int       `gorm:"not null"`
	Reference   string    `gorm:"type:varchar(100)"`
	Notes       string    `gorm:"type:text"`
	Timestamp   time.Time `gorm:"not null;autoCreateTime;index"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// IsValidStockType reports whether t is in, out or adjust.
func IsValidStockType(t string) bool {
	return t == StockIn || t == StockOut || t == StockAdjust
}
