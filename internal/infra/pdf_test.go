package infra

import (
	"bytes"
	"testing"
	"time"

	"stockwise/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReceiptPDF(t *testing.T) {
	sale := &model.Sale{
		SaleNumber:    "SALE-000042",
		Date:          time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
		PaymentMethod: model.PaymentCard,
		TotalAmount:   decimal.RequireFromString("37.50"),
		Items: []model.SaleItem{
			{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("10.00"), Product: &model.Product{Name: "Ground coffee 500g"}},
			{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("7.50")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReceiptPDF(&buf, sale, "Corner Store", nil))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestTruncateAndASCII(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 22))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "Caf? ole", asciiOnly("Café ole"))
}

func TestGormLoggerLevels(t *testing.T) {
	assert.NotNil(t, gormLogger("debug"))
	assert.NotNil(t, gormLogger(""))
}
