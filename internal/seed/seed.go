// Package seed fills a database with fake products, sales and stock
// movements for demos and manual testing. Everything goes through the
// services, so seeded data obeys the same rules as data entered by hand.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockwise/internal/dto"
	"stockwise/internal/model"
	"stockwise/internal/service"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var categories = []string{
	"Electronics", "Computers & Laptops", "Mobile Phones", "Tablets",
	"Accessories", "Software", "Books", "Office Supplies",
	"Home Appliances", "Gaming", "Networking", "Storage",
}

var suffixes = []string{"Pro", "Elite", "Max", "Plus", "Standard", "Basic"}

// Options controls how much data Run creates.
type Options struct {
	Products   int
	Sales      int
	ActiveOnly bool
	// Seed makes the generated data reproducible; 0 picks a random seed.
	Seed uint64
}

// Result counts what was created.
type Result struct {
	Products          int
	Sales             int
	StockTransactions int
}

type Seeder struct {
	products service.ProductService
	stock    service.StockService
	sales    service.SaleService
	now      func() time.Time
}

func New(products service.ProductService, stock service.StockService, sales service.SaleService) *Seeder {
	return &Seeder{products: products, stock: stock, sales: sales, now: time.Now}
}

// Run creates opts.Products products, then opts.Sales sales over the last 90
// days, then a few extra stock movements per product. A sale that fails
// validation is logged and skipped.
func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	fake := gofakeit.New(opts.Seed)

	created := make([]*dto.ProductResponse, 0, opts.Products)
	for i := 0; i < opts.Products; i++ {
		p, err := s.createProduct(ctx, fake, opts.ActiveOnly)
		if err != nil {
			return res, fmt.Errorf("seed product %d: %w", i+1, err)
		}
		created = append(created, p)
		res.Products++
		res.StockTransactions++
	}
	if len(created) == 0 {
		log.Warn().Msg("no products created, skipping sales")
		return res, nil
	}

	stock := make(map[uint]int, len(created))
	for _, p := range created {
		stock[p.ID] = p.CurrentStock
	}

	for i := 0; i < opts.Sales; i++ {
		ok, err := s.createSale(ctx, fake, created, stock)
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				log.Warn().Err(err).Int("sale", i+1).Msg("seed sale skipped")
				continue
			}
			return res, fmt.Errorf("seed sale %d: %w", i+1, err)
		}
		if ok {
			res.Sales++
		}
	}

	for _, p := range created {
		n, err := s.extraMovements(ctx, fake, p, stock)
		if err != nil {
			return res, fmt.Errorf("seed stock for %s: %w", p.SKU, err)
		}
		res.StockTransactions += n
	}
	return res, nil
}

// createProduct creates a product with 10 to 200 units of opening stock,
// which the product service books as an "in" movement.
func (s *Seeder) createProduct(ctx context.Context, fake *gofakeit.Faker, activeOnly bool) (*dto.ProductResponse, error) {
	buying := decimal.NewFromFloat(fake.Float64Range(500, 50000)).Round(2)
	markup := decimal.NewFromFloat(fake.Float64Range(1.2, 2.0))
	selling := buying.Mul(markup).Round(2)

	name := fmt.Sprintf("%s %s", fake.ProductName(), fake.RandomString(suffixes))
	if len(name) > 100 {
		name = strings.TrimSpace(name[:100])
	}
	minLevel := fake.IntRange(5, 20)
	active := activeOnly || fake.IntRange(1, 4) != 1

	return s.products.Create(ctx, dto.CreateProductRequest{
		Name:          name,
		Description:   fake.ProductDescription(),
		Category:      fake.RandomString(categories),
		BuyingPrice:   buying,
		SellingPrice:  selling,
		CurrentStock:  fake.IntRange(10, 200),
		MinStockLevel: &minLevel,
		IsActive:      &active,
	})
}

// createSale sells one to four distinct active products. It reports false
// when nothing is left to sell.
func (s *Seeder) createSale(ctx context.Context, fake *gofakeit.Faker, products []*dto.ProductResponse, stock map[uint]int) (bool, error) {
	var available []*dto.ProductResponse
	for _, p := range products {
		if p.IsActive && stock[p.ID] > 0 {
			available = append(available, p)
		}
	}
	if len(available) == 0 {
		return false, nil
	}

	count := fake.IntRange(1, min(4, len(available)))
	fake.ShuffleAnySlice(available)

	items := make([]dto.SaleItemRequest, 0, count)
	for _, p := range available[:count] {
		qty := fake.IntRange(1, min(stock[p.ID], 3))
		items = append(items, dto.SaleItemRequest{ProductID: p.ID, Quantity: qty})
	}

	now := s.now()
	date := fake.DateRange(now.AddDate(0, 0, -90), now).UTC()
	notes := ""
	if fake.Bool() {
		notes = fake.Sentence(8)
	}
	methods := make([]string, 0, len(model.PaymentMethods))
	for _, pm := range model.PaymentMethods {
		methods = append(methods, pm.Value)
	}

	if _, err := s.sales.Create(ctx, dto.CreateSaleRequest{
		Date:          &date,
		PaymentMethod: fake.RandomString(methods),
		Notes:         notes,
		Items:         items,
	}); err != nil {
		return false, err
	}
	for _, it := range items {
		stock[it.ProductID] -= it.Quantity
	}
	return true, nil
}

// extraMovements records zero to three random in/out/adjust movements.
// Movements that would take stock below zero are skipped.
func (s *Seeder) extraMovements(ctx context.Context, fake *gofakeit.Faker, p *dto.ProductResponse, stock map[uint]int) (int, error) {
	n := 0
	for i := fake.IntRange(0, 3); i > 0; i-- {
		typ := fake.RandomString([]string{model.StockIn, model.StockOut, model.StockAdjust})
		var qty int
		switch typ {
		case model.StockIn:
			qty = fake.IntRange(10, 50)
		case model.StockOut:
			qty = -fake.IntRange(1, 20)
		default:
			qty = fake.IntRange(-5, 5)
		}
		if qty == 0 || stock[p.ID]+qty < 0 {
			continue
		}
		t, err := s.stock.Record(ctx, dto.RecordStockRequest{
			ProductID: p.ID,
			Type:      typ,
			Quantity:  qty,
			Reference: fmt.Sprintf("%s-%04d", strings.ToUpper(typ), fake.IntRange(0, 9999)),
			Notes:     fake.Sentence(6),
		})
		if err != nil {
			return n, err
		}
		stock[p.ID] = t.StockAfter
		n++
	}
	return n, nil
}
