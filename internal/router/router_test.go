package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockwise/internal/config"
	"stockwise/internal/dto"
	"stockwise/internal/model"
	"stockwise/internal/repository/repotest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type apiFixture struct {
	store  *repotest.Store
	engine *gin.Engine
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	st := repotest.NewStore()
	svc := NewServices(st.Products(), st.Sales(), st.Ledger(), repotest.NewCache(), time.UTC)
	cfg := &config.Config{Env: "test", StoreName: "Test Store", RateLimitPerMinute: 1000}
	health := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	return &apiFixture{store: st, engine: Build(cfg, svc, health)}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (f *apiFixture) createProduct(t *testing.T, body map[string]interface{}) dto.ProductResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, "/v1/products", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.ProductResponse](t, w)
}

func TestHealth(t *testing.T) {
	f := newAPI(t)
	w := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSwagger_ServesGeneratedDoc(t *testing.T) {
	f := newAPI(t)
	w := f.do(t, http.MethodGet, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, w.Code)

	doc := decode[struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]interface{} `json:"paths"`
	}](t, w)
	assert.Equal(t, "Stockwise API", doc.Info.Title)
	assert.Contains(t, doc.Paths, "/v1/sales/{id}/receipt")
	assert.Contains(t, doc.Paths, "/api/product/{id}/price")
}

func TestProducts_CreateAssignsSKU(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, map[string]interface{}{
		"name": "Coffee", "buying_price": "2.00", "selling_price": "4.50", "current_stock": 10,
	})
	assert.Equal(t, fmt.Sprintf("SKU-%d", p.ID), p.SKU)
	assert.True(t, p.IsActive)
	assert.Equal(t, model.DefaultMinStockLevel, p.MinStockLevel)
}

func TestProducts_SellingBelowBuyingIs422(t *testing.T) {
	f := newAPI(t)
	w := f.do(t, http.MethodPost, "/v1/products", map[string]interface{}{
		"name": "Tea", "buying_price": "5", "selling_price": "3",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[struct {
		Detail string            `json:"detail"`
		Fields map[string]string `json:"fields"`
	}](t, w)
	assert.Equal(t, "Selling price cannot be less than buying price.", body.Fields["selling_price"])
}

func TestProducts_BadRequests(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodPost, "/v1/products", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/v1/products", map[string]interface{}{"buying_price": "1", "selling_price": "2"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"detail": "Please correct the errors below.", "fields": {"name": "This field is required."}}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/v1/products/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidationErrors_UseClientFieldNames(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodPost, "/v1/products", map[string]interface{}{
		"name": "Jam", "buying_price": "-1", "selling_price": "2", "current_stock": -3,
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, w)
	assert.Equal(t, map[string]string{
		"buying_price":  "Ensure this value is greater than or equal to 0.",
		"current_stock": "Ensure this value is greater than or equal to 0.",
	}, body.Fields)

	w = f.do(t, http.MethodPost, "/v1/stock-transactions", map[string]interface{}{
		"product_id": 1, "type": "lost", "quantity": 1,
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"Select one of: in, out, adjust."`)
}

func TestListFilters_OutOfRangePagingIs422(t *testing.T) {
	f := newAPI(t)

	for _, path := range []string{
		"/v1/products?limit=101",
		"/v1/products?page=0",
		"/v1/sales?limit=201",
		"/v1/stock-transactions?limit=0",
	} {
		w := f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, path)
	}

	w := f.do(t, http.MethodGet, "/v1/products?page=1&limit=100", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProducts_DeactivateHidesFromDefaultList(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, map[string]interface{}{"name": "Soap", "buying_price": "1", "selling_price": "2"})

	w := f.do(t, http.MethodPatch, fmt.Sprintf("/v1/products/%d/deactivate", p.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	list := decode[dto.ProductListResponse](t, f.do(t, http.MethodGet, "/v1/products", nil))
	assert.Empty(t, list.Data)

	list = decode[dto.ProductListResponse](t, f.do(t, http.MethodGet, "/v1/products?active=all", nil))
	assert.Len(t, list.Data, 1)

	w = f.do(t, http.MethodPatch, fmt.Sprintf("/v1/products/%d/reactivate", p.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	list = decode[dto.ProductListResponse](t, f.do(t, http.MethodGet, "/v1/products", nil))
	assert.Len(t, list.Data, 1)
}

func TestLookup_PriceAndStock(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, map[string]interface{}{
		"name": "Milk", "buying_price": "1.00", "selling_price": "2.50", "current_stock": 7,
	})

	w := f.do(t, http.MethodGet, fmt.Sprintf("/api/product/%d/price", p.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"price": 2.5, "stock": 7}`, w.Body.String())

	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/product/%d/stock", p.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stock": 7}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/product/999/price", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Product not found"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/product/nope/stock", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSales_LifecycleOverHTTP(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, map[string]interface{}{
		"name": "Bread", "buying_price": "1.00", "selling_price": "3.00", "current_stock": 10,
	})

	w := f.do(t, http.MethodPost, "/v1/sales", map[string]interface{}{
		"payment_method": "card",
		"items":          []map[string]interface{}{{"product_id": p.ID, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := decode[dto.SaleResponse](t, w)
	assert.Equal(t, "SALE-000001", sale.SaleNumber)
	assert.Equal(t, "12", sale.TotalAmount.String())
	assert.Equal(t, 6, f.store.Stock(p.ID))

	w = f.do(t, http.MethodGet, fmt.Sprintf("/v1/sales/%d/receipt", sale.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	// Hard delete of a sold product is refused.
	w = f.do(t, http.MethodDelete, fmt.Sprintf("/v1/products/%d", p.ID), nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "because it has sales records")

	w = f.do(t, http.MethodDelete, fmt.Sprintf("/v1/sales/%d", sale.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 10, f.store.Stock(p.ID))

	w = f.do(t, http.MethodGet, fmt.Sprintf("/v1/sales/%d", sale.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSales_InsufficientStockIs422(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, map[string]interface{}{
		"name": "Eggs", "buying_price": "1", "selling_price": "2", "current_stock": 2,
	})

	w := f.do(t, http.MethodPost, "/v1/sales", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": p.ID, "quantity": 3}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "items[0].quantity")
	assert.Contains(t, w.Body.String(), "Available: 2, Requested: 3")
	assert.Equal(t, 2, f.store.Stock(p.ID))
}

func TestSales_BadFilterIs422(t *testing.T) {
	f := newAPI(t)
	w := f.do(t, http.MethodGet, "/v1/sales?date_from=2024-13-45", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "date_from")
}

func TestStockTransactions_RecordAndList(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, map[string]interface{}{
		"name": "Rice", "buying_price": "1", "selling_price": "2", "current_stock": 5,
	})

	w := f.do(t, http.MethodPost, "/v1/stock-transactions", map[string]interface{}{
		"product_id": p.ID, "type": "in", "quantity": 20, "reference": "PO-1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tx := decode[dto.StockTransactionResponse](t, w)
	assert.Equal(t, 5, tx.StockBefore)
	assert.Equal(t, 25, tx.StockAfter)

	w = f.do(t, http.MethodPost, "/v1/stock-transactions", map[string]interface{}{
		"product_id": p.ID, "type": "out", "quantity": -30,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	list := decode[dto.StockTransactionListResponse](t,
		f.do(t, http.MethodGet, fmt.Sprintf("/v1/stock-transactions?product_id=%d", p.ID), nil))
	require.Len(t, list.Data, 2)
	assert.Equal(t, "PO-1", list.Data[0].Reference)
	assert.Equal(t, "INIT-"+p.SKU, list.Data[1].Reference)
}

func TestReports_And_Dashboard(t *testing.T) {
	f := newAPI(t)
	f.createProduct(t, map[string]interface{}{
		"name": "Flour", "buying_price": "1", "selling_price": "2", "current_stock": 1, "min_stock_level": 5,
	})

	low := decode[dto.LowStockReportResponse](t, f.do(t, http.MethodGet, "/v1/reports/low-stock", nil))
	assert.Equal(t, 1, low.Total)

	w := f.do(t, http.MethodGet, "/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[dto.DashboardResponse](t, w)
	assert.Equal(t, int64(1), dash.TotalProducts)
	assert.Equal(t, 1, dash.TotalLowStock)

	w = f.do(t, http.MethodGet, "/v1/reports/sales?payment_method=cash", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
