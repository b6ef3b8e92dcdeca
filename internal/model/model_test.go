package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductIsLowStock(t *testing.T) {
	cases := []struct {
		stock, min int
		want       bool
	}{
		{stock: 3, min: 5, want: true},
		{stock: 5, min: 5, want: true},
		{stock: 6, min: 5, want: false},
		{stock: 0, min: 0, want: true},
	}
	for _, tc := range cases {
		p := Product{CurrentStock: tc.stock, MinStockLevel: tc.min}
		assert.Equal(t, tc.want, p.IsLowStock(), "stock=%d min=%d", tc.stock, tc.min)
	}
}

func TestSaleItemSubtotal(t *testing.T) {
	items := []SaleItem{
		{Quantity: 4, UnitPrice: decimal.RequireFromString("12.50")},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("0.99")},
	}
	assert.Equal(t, "50", items[0].Subtotal().String())
	assert.Equal(t, "50.99", SumSubtotals(items).String())
	assert.True(t, SumSubtotals(nil).IsZero())
}

func TestEnums(t *testing.T) {
	assert.True(t, IsValidPaymentMethod(PaymentDigital))
	assert.False(t, IsValidPaymentMethod("cheque"))
	assert.True(t, IsValidStockType(StockAdjust))
	assert.False(t, IsValidStockType("transfer"))
	assert.Equal(t, "Bank Transfer", PaymentMethodLabel(PaymentTransfer))
	assert.Equal(t, "cheque", PaymentMethodLabel("cheque"))
}

func TestSKUValue(t *testing.T) {
	sku := "SKU-7"
	assert.Equal(t, "SKU-7", Product{SKU: &sku}.SKUValue())
	assert.Equal(t, "", Product{}.SKUValue())
}
