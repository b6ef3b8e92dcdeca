package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stockwise/internal/cache"
	"stockwise/internal/dto"
	"stockwise/internal/model"
	"stockwise/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Reference written on the ledger row when stock is edited on the product itself.
const productEditReference = "product-edit"

const openingStockNotes = "Initial stock"

func openingStockReference(p *model.Product) string { return "INIT-" + p.SKUValue() }

const detailHistoryLimit = 10

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uint) (*dto.ProductDetailResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id uint, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uint) error
	Reactivate(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error

	// Lookup serves the price/stock JSON endpoints through the cache.
	Lookup(ctx context.Context, id uint) (*cache.ProductLookup, error)
}

type productService struct {
	repo   repository.ProductRepository
	sales  repository.SaleRepository
	ledger repository.StockTransactionRepository
	stock  StockService
	cache  cache.ProductCache
}

func NewProductService(
	repo repository.ProductRepository,
	sales repository.SaleRepository,
	ledger repository.StockTransactionRepository,
	stock StockService,
	c cache.ProductCache,
) ProductService {
	if c == nil {
		c = cache.NoopProductCache{}
	}
	return &productService{repo: repo, sales: sales, ledger: ledger, stock: stock, cache: c}
}

// validateProduct applies the catalog rules shared by create and update.
func validateProduct(p *model.Product) *ValidationError {
	verr := newValidation(ValidationMessage)
	if p.Name == "" {
		verr.add("name", "Name is required.")
	} else if len(p.Name) > 100 {
		verr.add("name", "Name cannot exceed 100 characters.")
	}
	if p.SKU != nil && len(*p.SKU) > 50 {
		verr.add("sku", "SKU cannot exceed 50 characters.")
	}
	if len(p.Category) > 50 {
		verr.add("category", "Category cannot exceed 50 characters.")
	}
	if p.BuyingPrice.IsNegative() {
		verr.add("buying_price", "Buying price cannot be negative.")
	}
	if p.SellingPrice.IsNegative() {
		verr.add("selling_price", "Selling price cannot be negative.")
	} else if p.SellingPrice.LessThan(p.BuyingPrice) {
		verr.add("selling_price", "Selling price cannot be less than buying price.")
	}
	if p.CurrentStock < 0 {
		verr.add("current_stock", "Stock cannot be negative.")
	}
	if p.MinStockLevel < 0 {
		verr.add("min_stock_level", "Minimum stock level cannot be negative.")
	}
	if verr.empty() {
		return nil
	}
	return verr
}

func normalizeSKU(sku *string) *string {
	if sku == nil {
		return nil
	}
	v := strings.TrimSpace(*sku)
	if v == "" {
		return nil
	}
	return &v
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		Name:          strings.TrimSpace(req.Name),
		SKU:           normalizeSKU(req.SKU),
		Description:   req.Description,
		Category:      strings.TrimSpace(req.Category),
		BuyingPrice:   req.BuyingPrice,
		SellingPrice:  req.SellingPrice,
		CurrentStock:  req.CurrentStock,
		MinStockLevel: model.DefaultMinStockLevel,
		IsActive:      true,
	}
	if req.MinStockLevel != nil {
		p.MinStockLevel = *req.MinStockLevel
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if verr := validateProduct(p); verr != nil {
		return nil, verr
	}

	// The product starts empty and its opening stock is booked as an "in"
	// movement, so the ledger accounts for the counter from creation on.
	opening := p.CurrentStock
	p.CurrentStock = 0

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if p.SKU != nil {
			taken, err := s.repo.SKUTakenTx(tx, *p.SKU, 0)
			if err != nil {
				return err
			}
			if taken {
				return fieldError("sku", "A product with this SKU already exists.")
			}
		}
		if err := s.repo.Create(ctx, tx, p); err != nil {
			return err
		}
		if p.SKU == nil {
			sku, err := s.autoSKU(tx, p.ID)
			if err != nil {
				return err
			}
			p.SKU = &sku
			if err := s.repo.Update(ctx, tx, p); err != nil {
				return err
			}
		}
		if opening == 0 {
			return nil
		}
		row, err := s.stock.ApplyTx(tx, p.ID, model.StockIn, opening, openingStockReference(p), openingStockNotes)
		if err != nil {
			return err
		}
		p.CurrentStock = row.StockAfter
		return nil
	})
	if err != nil {
		return nil, translateProductErr(err)
	}

	log.Info().Uint("product_id", p.ID).Str("sku", p.SKUValue()).Msg("product created")
	resp := productToResponse(p)
	return &resp, nil
}

// autoSKU derives SKU-<id>, adding a numeric suffix if a product was given
// that code by hand.
func (s *productService) autoSKU(tx *gorm.DB, id uint) (string, error) {
	base := fmt.Sprintf("SKU-%d", id)
	candidate := base
	for n := 2; ; n++ {
		taken, err := s.repo.SKUTakenTx(tx, candidate, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func translateProductErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fieldError("sku", "A product with this SKU already exists.")
	}
	return err
}

func (s *productService) Get(ctx context.Context, id uint) (*dto.ProductDetailResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	rows, err := s.ledger.ListByProduct(ctx, id, detailHistoryLimit)
	if err != nil {
		return nil, err
	}
	lines, err := s.sales.ListByProduct(ctx, id, detailHistoryLimit)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProductDetailResponse{
		ProductResponse:    productToResponse(p),
		RecentTransactions: make([]dto.StockTransactionResponse, 0, len(rows)),
		SalesHistory:       make([]dto.ProductSaleLine, 0, len(lines)),
	}
	for i := range rows {
		resp.RecentTransactions = append(resp.RecentTransactions, stockTxToResponse(&rows[i]))
	}
	for _, l := range lines {
		resp.SalesHistory = append(resp.SalesHistory, dto.ProductSaleLine{
			SaleID:     l.SaleID,
			SaleNumber: l.SaleNumber,
			Date:       l.Date.UTC().Format(timeLayout),
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Subtotal:   model.SaleItem{Quantity: l.Quantity, UnitPrice: l.UnitPrice}.Subtotal(),
		})
	}
	return resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	cats, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []string{}
	}
	return &dto.ProductListResponse{
		Data:       productsToResponse(products),
		Categories: cats,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *productService) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.repo.Categories(ctx)
	if cats == nil {
		cats = []string{}
	}
	return cats, err
}

func (s *productService) Update(ctx context.Context, id uint, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	skuCleared := false
	if req.SKU != nil {
		p.SKU = normalizeSKU(req.SKU)
		skuCleared = p.SKU == nil
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.BuyingPrice != nil {
		p.BuyingPrice = *req.BuyingPrice
	}
	if req.SellingPrice != nil {
		p.SellingPrice = *req.SellingPrice
	}
	if req.MinStockLevel != nil {
		p.MinStockLevel = *req.MinStockLevel
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	delta := 0
	if req.CurrentStock != nil {
		if *req.CurrentStock < 0 {
			return nil, fieldError("current_stock", "Stock cannot be negative.")
		}
		delta = *req.CurrentStock - p.CurrentStock
	}
	if verr := validateProduct(p); verr != nil {
		return nil, verr
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if p.SKU != nil {
			taken, err := s.repo.SKUTakenTx(tx, *p.SKU, p.ID)
			if err != nil {
				return err
			}
			if taken {
				return fieldError("sku", "A product with this SKU already exists.")
			}
		} else if skuCleared {
			sku, err := s.autoSKU(tx, p.ID)
			if err != nil {
				return err
			}
			p.SKU = &sku
		}
		if err := s.repo.Update(ctx, tx, p); err != nil {
			return err
		}
		if delta != 0 {
			row, err := s.stock.ApplyTx(tx, p.ID, model.StockAdjust, delta, productEditReference, "Stock edited on product")
			if err != nil {
				return err
			}
			p.CurrentStock = row.StockAfter
		}
		return nil
	})
	if err != nil {
		return nil, translateProductErr(err)
	}
	invalidate(ctx, s.cache, p.ID)

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	resp := productToResponse(updated)
	return &resp, nil
}

func (s *productService) Deactivate(ctx context.Context, id uint) error {
	return s.setActive(ctx, id, false)
}

func (s *productService) Reactivate(ctx context.Context, id uint) error {
	return s.setActive(ctx, id, true)
}

func (s *productService) setActive(ctx context.Context, id uint, active bool) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapNotFound(err)
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	invalidate(ctx, s.cache, id)
	return nil
}

// Delete removes a product for good. Products that appear on any sale are
// refused with ProductHasSalesError; deactivate those instead.
func (s *productService) Delete(ctx context.Context, id uint) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}
	has, err := s.repo.HasSales(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return &ProductHasSalesError{Name: p.Name}
	}

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, id)
	}); err != nil {
		return mapNotFound(err)
	}
	invalidate(ctx, s.cache, id)
	log.Info().Uint("product_id", id).Msg("product deleted")
	return nil
}

func (s *productService) Lookup(ctx context.Context, id uint) (*cache.ProductLookup, error) {
	v, ok, err := s.cache.Get(ctx, id)
	switch {
	case errors.Is(err, cache.ErrBreakerOpen):
	case err != nil:
		log.Warn().Err(err).Uint("product_id", id).Msg("product cache read failed")
	case ok:
		return v, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	v = &cache.ProductLookup{Price: p.SellingPrice, Stock: p.CurrentStock}
	if err := s.cache.Set(ctx, id, v); err != nil && !errors.Is(err, cache.ErrBreakerOpen) {
		log.Warn().Err(err).Uint("product_id", id).Msg("product cache write failed")
	}
	return v, nil
}
