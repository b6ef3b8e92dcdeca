package service

import (
	"errors"
	"testing"
	"time"

	"stockwise/internal/model"
	"stockwise/internal/repository/repotest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t        *testing.T
	store    *repotest.Store
	cache    *repotest.Cache
	products ProductService
	stock    StockService
	sales    SaleService
	reports  ReportService
}

func newFixture(t *testing.T) *fixture {
	st := repotest.NewStore()
	c := repotest.NewCache()
	stock := NewStockService(st.Products(), st.Ledger(), c)
	return &fixture{
		t:        t,
		store:    st,
		cache:    c,
		stock:    stock,
		products: NewProductService(st.Products(), st.Sales(), st.Ledger(), stock, c),
		sales:    NewSaleService(st.Sales(), st.Products(), c, time.UTC),
		reports:  NewReportService(st.Products(), st.Sales(), time.UTC),
	}
}

// seed inserts a product straight into the store. The buying price is 1.00,
// capped at the selling price, and the row must pass the same checks as
// products created through the service.
func (f *fixture) seed(name, price string, stock int) model.Product {
	f.t.Helper()
	p := model.Product{
		Name:          name,
		BuyingPrice:   decimal.Min(decimal.RequireFromString("1.00"), decimal.RequireFromString(price)),
		SellingPrice:  decimal.RequireFromString(price),
		CurrentStock:  stock,
		MinStockLevel: 5,
		IsActive:      true,
	}
	require.Nil(f.t, validateProduct(&p), "invalid fixture product %q", name)
	return f.store.SeedProduct(p)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireFieldError(t *testing.T, err error, field string) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	require.Contains(t, verr.Fields, field, "fields: %v", verr.Fields)
	return verr
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
