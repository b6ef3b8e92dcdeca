// Package repotest provides in-memory repositories for service and handler
// tests. The three repositories share one Store so joins such as "has this
// product been sold" behave like the database. Transactions are not
// emulated: tx arguments are ignored and DB() returns nil.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"stockwise/internal/dto"
	"stockwise/internal/model"
	"stockwise/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Store struct {
	mu       sync.Mutex
	products map[uint]model.Product
	sales    map[uint]model.Sale
	items    map[uint]model.SaleItem
	ledger   []model.StockTransaction
	nextID   uint
}

func NewStore() *Store {
	return &Store{
		products: make(map[uint]model.Product),
		sales:    make(map[uint]model.Sale),
		items:    make(map[uint]model.SaleItem),
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) Products() *ProductRepo { return &ProductRepo{s} }
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s} }
func (s *Store) Ledger() *StockTransactionRepo { return &StockTransactionRepo{s} }

// Stock returns the current stock of a product, or -1 when it does not exist.
func (s *Store) Stock(productID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return -1
	}
	return p.CurrentStock
}

// LedgerRows returns every ledger row in insertion order.
func (s *Store) LedgerRows() []model.StockTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.StockTransaction(nil), s.ledger...)
}

// SeedProduct stores p as-is (assigning an ID) and returns the stored copy.
func (s *Store) SeedProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.products[p.ID] = p
	return p
}

// ── Products ─────────────────────────────────────────────────────────────────

type ProductRepo struct{ s *Store }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(_ context.Context, _ *gorm.DB, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.SKU != nil && r.skuTaken(*p.SKU, 0) {
		return gorm.ErrDuplicatedKey
	}
	p.ID = r.s.id()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) FindByID(_ context.Context, id uint) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *ProductRepo) FindByIDTx(_ *gorm.DB, id uint) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *ProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.SKU != nil && *p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *ProductRepo) skuTaken(sku string, exceptID uint) bool {
	for _, p := range r.s.products {
		if p.ID != exceptID && p.SKU != nil && *p.SKU == sku {
			return true
		}
	}
	return false
}

func (r *ProductRepo) SKUTakenTx(_ *gorm.DB, sku string, exceptID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.skuTaken(sku, exceptID), nil
}

func (r *ProductRepo) List(_ context.Context, f dto.ProductFilter) ([]model.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []model.Product
	for _, p := range r.s.products {
		switch f.Active {
		case "false":
			if p.IsActive {
				continue
			}
		case "all":
		default:
			if !p.IsActive {
				continue
			}
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKUValue()), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.LowStockOnly() && !p.IsLowStock() {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (r *ProductRepo) ListLowStock(_ context.Context) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Product
	for _, p := range r.s.products {
		if p.IsActive && p.IsLowStock() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentStock != out[j].CurrentStock {
			return out[i].CurrentStock < out[j].CurrentStock
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *ProductRepo) CountActive(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.products {
		if p.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *ProductRepo) Categories(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, p := range r.s.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *ProductRepo) HasSales(_ context.Context, id uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.ProductID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *ProductRepo) SetActive(_ context.Context, id uint, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil
	}
	p.IsActive = active
	r.s.products[id] = p
	return nil
}

func (r *ProductRepo) Update(_ context.Context, _ *gorm.DB, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok {
		return nil
	}
	if p.SKU != nil && r.skuTaken(*p.SKU, p.ID) {
		return gorm.ErrDuplicatedKey
	}
	stock := cur.CurrentStock
	cur = *p
	cur.CurrentStock = stock
	cur.UpdatedAt = time.Now().UTC()
	r.s.products[p.ID] = cur
	return nil
}

func (r *ProductRepo) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.products, id)
	kept := r.s.ledger[:0]
	for _, t := range r.s.ledger {
		if t.ProductID != id {
			kept = append(kept, t)
		}
	}
	r.s.ledger = kept
	return nil
}

func (r *ProductRepo) UpdateStockTx(_ *gorm.DB, id uint, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if p.CurrentStock+delta < 0 {
		return repository.ErrStockUnderflow
	}
	p.CurrentStock += delta
	r.s.products[id] = p
	return nil
}

func (r *ProductRepo) DB() *gorm.DB { return nil }

// ── Stock ledger ─────────────────────────────────────────────────────────────

type StockTransactionRepo struct{ s *Store }

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

func (r *StockTransactionRepo) CreateTx(_ *gorm.DB, t *model.StockTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC()
	}
	r.s.ledger = append(r.s.ledger, *t)
	return nil
}

func (r *StockTransactionRepo) List(_ context.Context, f repository.StockTransactionFilter) ([]model.StockTransaction, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.StockTransaction
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		t := r.s.ledger[i]
		if f.ProductID != 0 && t.ProductID != f.ProductID {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if p, ok := r.s.products[t.ProductID]; ok {
			t.Product = &p
		}
		out = append(out, t)
	}
	limit := f.Limit
	if limit < 1 || limit > 500 {
		limit = 50
	}
	return paginate(out, f.Page, limit), int64(len(out)), nil
}

func (r *StockTransactionRepo) ListByProduct(ctx context.Context, productID uint, limit int) ([]model.StockTransaction, error) {
	rows, _, err := r.List(ctx, repository.StockTransactionFilter{ProductID: productID, Page: 1, Limit: limit})
	return rows, err
}

// ── Sales ────────────────────────────────────────────────────────────────────

type SaleRepo struct{ s *Store }

var _ repository.SaleRepository = (*SaleRepo)(nil)

func (r *SaleRepo) Create(_ context.Context, _ *gorm.DB, sale *model.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.sales {
		if other.SaleNumber == sale.SaleNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	sale.ID = r.s.id()
	now := time.Now().UTC()
	sale.CreatedAt, sale.UpdatedAt = now, now
	header := *sale
	header.Items = nil
	r.s.sales[sale.ID] = header
	return nil
}

// load returns the sale with its items and products attached. Caller holds mu.
func (r *SaleRepo) load(id uint) (model.Sale, bool) {
	sale, ok := r.s.sales[id]
	if !ok {
		return model.Sale{}, false
	}
	sale.Items = r.itemsOf(id)
	return sale, true
}

func (r *SaleRepo) itemsOf(saleID uint) []model.SaleItem {
	var items []model.SaleItem
	for _, it := range r.s.items {
		if it.SaleID != saleID {
			continue
		}
		if p, ok := r.s.products[it.ProductID]; ok {
			it.Product = &p
		}
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (r *SaleRepo) FindByID(_ context.Context, id uint) (*model.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.load(id)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &sale, nil
}

func (r *SaleRepo) LastSaleNumber(_ context.Context, _ *gorm.DB) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	last := ""
	for _, sale := range r.s.sales {
		n := sale.SaleNumber
		if !strings.HasPrefix(n, "SALE-") {
			continue
		}
		if len(n) > len(last) || (len(n) == len(last) && n > last) {
			last = n
		}
	}
	return last, nil
}

func (r *SaleRepo) UpdateHeaderTx(_ *gorm.DB, sale *model.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.sales[sale.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cur.Date = sale.Date
	cur.PaymentMethod = sale.PaymentMethod
	cur.Notes = sale.Notes
	cur.UpdatedAt = time.Now().UTC()
	r.s.sales[sale.ID] = cur
	return nil
}

func (r *SaleRepo) UpdateTotalTx(_ *gorm.DB, id uint, total decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cur.TotalAmount = total
	r.s.sales[id] = cur
	return nil
}

func (r *SaleRepo) DeleteTx(_ *gorm.DB, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for itemID, it := range r.s.items {
		if it.SaleID == id {
			delete(r.s.items, itemID)
		}
	}
	delete(r.s.sales, id)
	return nil
}

func (r *SaleRepo) ListItemsTx(_ *gorm.DB, saleID uint) ([]model.SaleItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.itemsOf(saleID), nil
}

func (r *SaleRepo) CreateItemTx(_ *gorm.DB, item *model.SaleItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.SaleID == item.SaleID && it.ProductID == item.ProductID {
			return gorm.ErrDuplicatedKey
		}
	}
	item.ID = r.s.id()
	stored := *item
	stored.Product = nil
	r.s.items[item.ID] = stored
	return nil
}

func (r *SaleRepo) UpdateItemTx(_ *gorm.DB, item *model.SaleItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.items[item.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cur.ProductID = item.ProductID
	cur.Quantity = item.Quantity
	cur.UnitPrice = item.UnitPrice
	r.s.items[item.ID] = cur
	return nil
}

func (r *SaleRepo) DeleteItemTx(_ *gorm.DB, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.items, id)
	return nil
}

func (r *SaleRepo) matches(sale model.Sale, q repository.SaleQuery) bool {
	if q.From != nil && sale.Date.Before(*q.From) {
		return false
	}
	if q.To != nil && !sale.Date.Before(*q.To) {
		return false
	}
	if q.PaymentMethod != "" && sale.PaymentMethod != q.PaymentMethod {
		return false
	}
	if q.MinAmount != nil && sale.TotalAmount.LessThan(*q.MinAmount) {
		return false
	}
	if q.MaxAmount != nil && sale.TotalAmount.GreaterThan(*q.MaxAmount) {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
		if strings.Contains(strings.ToLower(sale.SaleNumber), s) || strings.Contains(strings.ToLower(sale.Notes), s) {
			return true
		}
		for _, it := range r.itemsOf(sale.ID) {
			if it.Product != nil && strings.Contains(strings.ToLower(it.Product.Name), s) {
				return true
			}
		}
		return false
	}
	return true
}

func (r *SaleRepo) filtered(q repository.SaleQuery) []model.Sale {
	var out []model.Sale
	for id, sale := range r.s.sales {
		if r.matches(sale, q) {
			full, _ := r.load(id)
			out = append(out, full)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *SaleRepo) List(_ context.Context, q repository.SaleQuery) ([]model.Sale, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.filtered(q)
	if q.Limit <= 0 {
		return out, int64(len(out)), nil
	}
	return paginate(out, q.Page, q.Limit), int64(len(out)), nil
}

func (r *SaleRepo) Totals(_ context.Context, q repository.SaleQuery) (repository.SaleTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := repository.SaleTotals{Revenue: decimal.Zero}
	for _, sale := range r.filtered(q) {
		totals.Count++
		totals.Revenue = totals.Revenue.Add(sale.TotalAmount)
	}
	return totals, nil
}

func (r *SaleRepo) TopProducts(_ context.Context, q repository.SaleQuery, limit int) ([]repository.TopProductRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byProduct := map[uint]*repository.TopProductRow{}
	for _, sale := range r.filtered(q) {
		for _, it := range sale.Items {
			row, ok := byProduct[it.ProductID]
			if !ok {
				row = &repository.TopProductRow{ProductID: it.ProductID, TotalRevenue: decimal.Zero}
				if it.Product != nil {
					row.Name = it.Product.Name
					row.SKU = it.Product.SKU
				}
				byProduct[it.ProductID] = row
			}
			row.TotalSold += int64(it.Quantity)
			row.TotalRevenue = row.TotalRevenue.Add(it.Subtotal())
		}
	}
	out := make([]repository.TopProductRow, 0, len(byProduct))
	for _, row := range byProduct {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSold != out[j].TotalSold {
			return out[i].TotalSold > out[j].TotalSold
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *SaleRepo) ListByProduct(_ context.Context, productID uint, limit int) ([]repository.ProductSaleRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repository.ProductSaleRow
	for _, it := range r.s.items {
		if it.ProductID != productID {
			continue
		}
		sale := r.s.sales[it.SaleID]
		out = append(out, repository.ProductSaleRow{
			SaleID: sale.ID, SaleNumber: sale.SaleNumber, Date: sale.Date,
			Quantity: it.Quantity, UnitPrice: it.UnitPrice,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *SaleRepo) DB() *gorm.DB { return nil }

func paginate[T any](rows []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return rows
	}
	start := (page - 1) * limit
	if start >= len(rows) {
		return []T{}
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
