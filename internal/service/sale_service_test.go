package service

import (
	"context"
	"testing"
	"time"

	"stockwise/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSaleNumber(t *testing.T) {
	tests := []struct {
		last string
		want string
	}{
		{"", "SALE-000001"},
		{"SALE-000001", "SALE-000002"},
		{"SALE-000041", "SALE-000042"},
		{"SALE-999999", "SALE-1000000"},
		{"SALE-abc", "SALE-000001"},
		{"INV-000007", "SALE-000001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextSaleNumber(tt.last), tt.last)
	}
}

func TestCreateSale_DecrementsStockAndDeleteRestores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed("Coffee", "2.50", 10)

	sale, err := f.sales.Create(ctx, dto.CreateSaleRequest{
		PaymentMethod: "card",
		Items:         []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SALE-000001", sale.SaleNumber)
	assert.Equal(t, "Credit/Debit Card", sale.PaymentMethodLabel)
	assert.True(t, dec("10.00").Equal(sale.TotalAmount), sale.TotalAmount.String())
	require.Len(t, sale.Items, 1)
	assert.True(t, dec("2.50").Equal(sale.Items[0].UnitPrice))
	assert.Equal(t, 6, f.store.Stock(p.ID))

	require.NoError(t, f.sales.Delete(ctx, sale.ID))
	assert.Equal(t, 10, f.store.Stock(p.ID))
	_, err = f.sales.Get(ctx, sale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSale_NumbersIncrease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed("Tea", "1.00", 10)

	var numbers []string
	for i := 0; i < 3; i++ {
		s, err := f.sales.Create(ctx, dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 1}}})
		require.NoError(t, err)
		assert.Equal(t, "cash", s.PaymentMethod)
		numbers = append(numbers, s.SaleNumber)
	}
	assert.Equal(t, []string{"SALE-000001", "SALE-000002", "SALE-000003"}, numbers)
}

func TestCreateSale_TotalIsSumOfSubtotals(t *testing.T) {
	f := newFixture(t)
	a := f.seed("Apple", "0.40", 100)
	b := f.seed("Bread", "3.10", 100)
	custom := dec("2.00")

	sale, err := f.sales.Create(context.Background(), dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: a.ID, Quantity: 7},
			{ProductID: b.ID, Quantity: 2, UnitPrice: &custom},
		},
	})
	require.NoError(t, err)
	// 7 * 0.40 + 2 * 2.00
	assert.True(t, dec("6.80").Equal(sale.TotalAmount), sale.TotalAmount.String())
	assert.Equal(t, 93, f.store.Stock(a.ID))
	assert.Equal(t, 98, f.store.Stock(b.ID))
}

func TestCreateSale_InsufficientStockChangesNothing(t *testing.T) {
	f := newFixture(t)
	p := f.seed("Wine", "9.00", 2)

	_, err := f.sales.Create(context.Background(), dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 5}},
	})
	verr := requireFieldError(t, err, "items[0].quantity")
	assert.Equal(t, "Insufficient stock for Wine. Available: 2, Requested: 5", verr.Fields["items[0].quantity"])
	assert.Equal(t, 2, f.store.Stock(p.ID))

	list, err := f.sales.List(context.Background(), dto.SaleFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestCreateSale_ValidatesLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	active := f.seed("Soap", "1.50", 10)
	inactive := f.seed("Old soap", "1.50", 10)
	require.NoError(t, f.store.Products().SetActive(ctx, inactive.ID, false))
	negative := dec("-1")

	_, err := f.sales.Create(ctx, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: active.ID, Quantity: 1},
			{ProductID: active.ID, Quantity: 1},
			{ProductID: inactive.ID, Quantity: 1},
			{ProductID: 0, Quantity: 1},
			{ProductID: 9999, Quantity: 1},
			{ProductID: active.ID, Quantity: 0, UnitPrice: &negative},
		},
	})
	verr := requireFieldError(t, err, "items[1].product_id")
	assert.Contains(t, verr.Fields["items[1].product_id"], "already on item 1")
	assert.Contains(t, verr.Fields["items[2].product_id"], "inactive")
	assert.Equal(t, "Sale item must have a product.", verr.Fields["items[3].product_id"])
	assert.Equal(t, "Product not found.", verr.Fields["items[4].product_id"])
	assert.Equal(t, "Quantity must be at least 1.", verr.Fields["items[5].quantity"])
	assert.Contains(t, verr.Fields, "items[5].unit_price")
	assert.Equal(t, 10, f.store.Stock(active.ID))
}

func TestCreateSale_RequiresItemsAndKnownMethod(t *testing.T) {
	f := newFixture(t)
	p := f.seed("Milk", "1.00", 5)

	_, err := f.sales.Create(context.Background(), dto.CreateSaleRequest{})
	requireFieldError(t, err, "items")

	_, err = f.sales.Create(context.Background(), dto.CreateSaleRequest{
		PaymentMethod: "cheque",
		Items:         []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	requireFieldError(t, err, "payment_method")
}

func TestUpdateSale_ReconcilesQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed("Rice", "2.00", 10)

	sale, err := f.sales.Create(ctx, dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 4}}})
	require.NoError(t, err)
	itemID := sale.Items[0].ID
	assert.Equal(t, 6, f.store.Stock(p.ID))

	updated, err := f.sales.Update(ctx, sale.ID, dto.UpdateSaleRequest{
		Items: []dto.SaleItemRequest{{ID: &itemID, ProductID: p.ID, Quantity: 7}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, f.store.Stock(p.ID))
	assert.True(t, dec("14.00").Equal(updated.TotalAmount))

	_, err = f.sales.Update(ctx, sale.ID, dto.UpdateSaleRequest{
		Items: []dto.SaleItemRequest{{ID: &itemID, ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 9, f.store.Stock(p.ID))
}

func TestUpdateSale_StockCheckCountsOwnQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed("Eggs", "0.30", 5)

	sale, err := f.sales.Create(ctx, dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 5}}})
	require.NoError(t, err)
	require.Zero(t, f.store.Stock(p.ID))
	itemID := sale.Items[0].ID

	// Re-saving the same quantity with zero stock left is fine.
	_, err = f.sales.Update(ctx, sale.ID, dto.UpdateSaleRequest{
		Items: []dto.SaleItemRequest{{ID: &itemID, ProductID: p.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	assert.Zero(t, f.store.Stock(p.ID))

	_, err = f.sales.Update(ctx, sale.ID, dto.UpdateSaleRequest{
		Items: []dto.SaleItemRequest{{ID: &itemID, ProductID: p.ID, Quantity: 6}},
	})
	verr := requireFieldError(t, err, "items[0].quantity")
	assert.Contains(t, verr.Fields["items[0].quantity"], "Available: 5, Requested: 6")
	assert.Zero(t, f.store.Stock(p.ID))
}

func TestUpdateSale_ChangeProductAddAndRemoveLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seed("Apple", "1.00", 10)
	b := f.seed("Banana", "2.00", 10)
	c := f.seed("Cherry", "3.00", 10)

	sale, err := f.sales.Create(ctx, dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
		{ProductID: a.ID, Quantity: 3},
		{ProductID: b.ID, Quantity: 2},
	}})
	require.NoError(t, err)
	first, second := sale.Items[0].ID, sale.Items[1].ID

	notes := "customer swapped fruit"
	updated, err := f.sales.Update(ctx, sale.ID, dto.UpdateSaleRequest{
		Notes: &notes,
		Items: []dto.SaleItemRequest{
			{ID: &first, ProductID: c.ID, Quantity: 1},
			{ID: &second, Delete: true},
			{ProductID: a.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, 8, f.store.Stock(a.ID))
	assert.Equal(t, 10, f.store.Stock(b.ID))
	assert.Equal(t, 9, f.store.Stock(c.ID))
	require.Len(t, updated.Items, 2)
	assert.True(t, dec("5.00").Equal(updated.TotalAmount), updated.TotalAmount.String())
}

func TestUpdateSale_RejectsProductAlreadyOnSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seed("Apple", "1.00", 10)
	b := f.seed("Banana", "2.00", 10)

	sale, err := f.sales.Create(ctx, dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
		{ProductID: a.ID, Quantity: 1},
		{ProductID: b.ID, Quantity: 1},
	}})
	require.NoError(t, err)

	_, err = f.sales.Update(ctx, sale.ID, dto.UpdateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: a.ID, Quantity: 1}},
	})
	verr := requireFieldError(t, err, "items[0].product_id")
	assert.Contains(t, verr.Fields["items[0].product_id"], "already on this sale")
}

func TestUpdateSale_CannotRemoveEveryItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed("Salt", "0.50", 10)

	sale, err := f.sales.Create(ctx, dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 2}}})
	require.NoError(t, err)
	itemID := sale.Items[0].ID

	_, err = f.sales.Update(ctx, sale.ID, dto.UpdateSaleRequest{Items: []dto.SaleItemRequest{{ID: &itemID, Delete: true}}})
	requireFieldError(t, err, "items")
	assert.Equal(t, 8, f.store.Stock(p.ID))
}

func TestUpdateSale_UnknownSaleAndForeignItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed("Salt", "0.50", 10)

	_, err := f.sales.Update(ctx, 4242, dto.UpdateSaleRequest{})
	assert.ErrorIs(t, err, ErrNotFound)

	sale, err := f.sales.Create(ctx, dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)
	foreign := uint(777)
	_, err = f.sales.Update(ctx, sale.ID, dto.UpdateSaleRequest{
		Items: []dto.SaleItemRequest{{ID: &foreign, ProductID: p.ID, Quantity: 1}},
	})
	requireFieldError(t, err, "items[0].id")
}

func TestSaleMutationsInvalidateLookupCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed("Juice", "1.20", 10)

	_, err := f.products.Lookup(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, f.cache.Has(p.ID))

	_, err = f.sales.Create(ctx, dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)
	assert.False(t, f.cache.Has(p.ID))

	v, err := f.products.Lookup(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, v.Stock)
}

func TestListSales_FiltersAndSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed("Flour", "5.00", 100)

	mk := func(date time.Time, method string, qty int) {
		_, err := f.sales.Create(ctx, dto.CreateSaleRequest{
			Date:          &date,
			PaymentMethod: method,
			Items:         []dto.SaleItemRequest{{ProductID: p.ID, Quantity: qty}},
		})
		require.NoError(t, err)
	}
	mk(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), "cash", 1)
	mk(time.Date(2024, 1, 11, 23, 59, 0, 0, time.UTC), "card", 2)
	mk(time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC), "card", 3)

	all, err := f.sales.List(ctx, dto.SaleFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	assert.Equal(t, "SALE-000003", all.Data[0].SaleNumber)
	assert.True(t, dec("30").Equal(all.Summary.TotalRevenue))
	assert.True(t, dec("10").Equal(all.Summary.AvgSale))
	assert.Len(t, all.PaymentMethods, 4)

	// date_to is inclusive of the whole day.
	ranged, err := f.sales.List(ctx, dto.SaleFilter{DateFrom: "2024-01-11", DateTo: "2024-01-11"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, ranged.Total)
	assert.True(t, dec("10").Equal(ranged.Summary.TotalRevenue))

	cards, err := f.sales.List(ctx, dto.SaleFilter{PaymentMethod: "card", MinAmount: "12"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, cards.Total)

	paged, err := f.sales.List(ctx, dto.SaleFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, paged.Data, 1)
	assert.Equal(t, 2, paged.TotalPages)

	_, err = f.sales.List(ctx, dto.SaleFilter{DateFrom: "11/01/2024"})
	requireFieldError(t, err, "date_from")
}
