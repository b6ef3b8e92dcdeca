package service

import (
	"context"
	"testing"
	"time"

	"stockwise/internal/dto"
	"stockwise/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowStockReport(t *testing.T) {
	f := newFixture(t)
	f.store.SeedProduct(model.Product{Name: "Plenty", CurrentStock: 50, MinStockLevel: 5, IsActive: true})
	f.store.SeedProduct(model.Product{Name: "Edge", CurrentStock: 5, MinStockLevel: 5, IsActive: true})
	f.store.SeedProduct(model.Product{Name: "Empty", CurrentStock: 0, MinStockLevel: 5, IsActive: true})
	f.store.SeedProduct(model.Product{Name: "Retired", CurrentStock: 0, MinStockLevel: 5, IsActive: false})

	res, err := f.reports.LowStock(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.Total)
	assert.Equal(t, "Empty", res.Data[0].Name)
	assert.Equal(t, "Edge", res.Data[1].Name)
}

func TestSalesReport_TopProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seed("Apple", "1.00", 100)
	b := f.seed("Banana", "0.50", 100)
	discount := dec("0.40")

	day := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	_, err := f.sales.Create(ctx, dto.CreateSaleRequest{Date: &day, Items: []dto.SaleItemRequest{
		{ProductID: a.ID, Quantity: 3},
		{ProductID: b.ID, Quantity: 5},
	}})
	require.NoError(t, err)
	_, err = f.sales.Create(ctx, dto.CreateSaleRequest{Date: &day, PaymentMethod: "digital", Items: []dto.SaleItemRequest{
		{ProductID: b.ID, Quantity: 5, UnitPrice: &discount},
	}})
	require.NoError(t, err)

	res, err := f.reports.Sales(ctx, dto.SalesReportFilter{DateFrom: "2024-02-01", DateTo: "2024-02-01"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Summary.TotalSales)
	assert.True(t, dec("7.50").Equal(res.Summary.TotalRevenue), res.Summary.TotalRevenue.String())
	assert.Len(t, res.Sales, 2)

	require.Len(t, res.TopProducts, 2)
	assert.Equal(t, "Banana", res.TopProducts[0].Name)
	assert.EqualValues(t, 10, res.TopProducts[0].TotalSold)
	// Revenue sums each line at its own price: 5 * 0.50 + 5 * 0.40.
	assert.True(t, dec("4.50").Equal(res.TopProducts[0].TotalRevenue), res.TopProducts[0].TotalRevenue.String())

	digital, err := f.reports.Sales(ctx, dto.SalesReportFilter{PaymentMethod: "digital"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, digital.Summary.TotalSales)

	_, err = f.reports.Sales(ctx, dto.SalesReportFilter{PaymentMethod: "barter"})
	requireFieldError(t, err, "payment_method")
}

func TestDashboard_TodayUsesBusinessTimeZone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	reports := NewReportService(f.store.Products(), f.store.Sales(), loc).(*reportService)
	reports.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, loc) }

	p := f.seed("Bagel", "2.00", 3) // low stock: 3 <= 5
	// 23:30 New York on June 1 is June 2 in UTC but still "today" locally.
	late := time.Date(2024, 6, 1, 23, 30, 0, 0, loc)
	yesterday := time.Date(2024, 5, 31, 23, 0, 0, 0, loc)
	for _, d := range []time.Time{late, yesterday} {
		d := d
		_, err := f.sales.Create(ctx, dto.CreateSaleRequest{Date: &d, Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 1}}})
		require.NoError(t, err)
	}

	dash, err := reports.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, dash.TotalProducts)
	assert.Equal(t, 1, dash.TotalLowStock)
	assert.True(t, dec("2.00").Equal(dash.TodaySales), dash.TodaySales.String())
	assert.Len(t, dash.RecentSales, 2)
	require.Len(t, dash.TopProducts, 1)
	assert.EqualValues(t, 2, dash.TopProducts[0].TotalSold)
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	from, to := dayBounds(time.Date(2024, 6, 2, 3, 0, 0, 0, time.UTC), loc)
	assert.True(t, from.Equal(time.Date(2024, 6, 1, 5, 0, 0, 0, time.UTC)), from.String())
	assert.True(t, to.Equal(time.Date(2024, 6, 2, 5, 0, 0, 0, time.UTC)), to.String())
}
