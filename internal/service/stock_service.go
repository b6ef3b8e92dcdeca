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

	"gorm.io/gorm"
)

// StockService owns the stock ledger. Every manual stock change goes through
// ApplyTx, which moves the counter and appends the ledger row in one step.
type StockService interface {
	Record(ctx context.Context, req dto.RecordStockRequest) (*dto.StockTransactionResponse, error)
	List(ctx context.Context, filter dto.StockTransactionFilter) (*dto.StockTransactionListResponse, error)
	ApplyTx(tx *gorm.DB, productID uint, txType string, quantity int, reference, notes string) (*model.StockTransaction, error)
}

type stockService struct {
	products repository.ProductRepository
	ledger   repository.StockTransactionRepository
	cache    cache.ProductCache
}

func NewStockService(products repository.ProductRepository, ledger repository.StockTransactionRepository, c cache.ProductCache) StockService {
	if c == nil {
		c = cache.NoopProductCache{}
	}
	return &stockService{products: products, ledger: ledger, cache: c}
}

// validateStockChange checks that the sign of quantity matches the type:
// in adds, out removes, adjust may go either way but cannot be zero.
func validateStockChange(txType string, quantity int, reference string) *ValidationError {
	verr := newValidation("Invalid stock transaction")
	switch txType {
	case model.StockIn:
		if quantity <= 0 {
			verr.add("quantity", "Stock in quantity must be positive.")
		}
	case model.StockOut:
		if quantity >= 0 {
			verr.add("quantity", "Stock out quantity must be negative.")
		}
	case model.StockAdjust:
		if quantity == 0 {
			verr.add("quantity", "Adjustment quantity cannot be zero.")
		}
	default:
		verr.add("type", "Type must be one of in, out, adjust.")
	}
	if len(reference) > 100 {
		verr.add("reference", "Reference cannot exceed 100 characters.")
	}
	if verr.empty() {
		return nil
	}
	return verr
}

func (s *stockService) Record(ctx context.Context, req dto.RecordStockRequest) (*dto.StockTransactionResponse, error) {
	ref := strings.TrimSpace(req.Reference)
	if verr := validateStockChange(req.Type, req.Quantity, ref); verr != nil {
		return nil, verr
	}
	if _, err := s.products.FindByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fieldError("product_id", "Product not found.")
		}
		return nil, err
	}

	var row *model.StockTransaction
	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		var err error
		row, err = s.ApplyTx(tx, req.ProductID, req.Type, req.Quantity, ref, req.Notes)
		return err
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, req.ProductID)

	resp := stockTxToResponse(row)
	return &resp, nil
}

// ApplyTx moves a product's stock by quantity and appends the ledger row
// recording the before and after values. A change that would take stock
// below zero is refused with a ValidationError and nothing is written.
func (s *stockService) ApplyTx(tx *gorm.DB, productID uint, txType string, quantity int, reference, notes string) (*model.StockTransaction, error) {
	p, err := s.products.FindByIDTx(tx, productID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	before := p.CurrentStock
	after := before + quantity
	if after < 0 {
		return nil, fieldError("quantity", insufficientStockMsg(p.Name, before, -quantity))
	}
	if err := s.products.UpdateStockTx(tx, productID, quantity); err != nil {
		if errors.Is(err, repository.ErrStockUnderflow) {
			return nil, fieldError("quantity", insufficientStockMsg(p.Name, before, -quantity))
		}
		return nil, mapNotFound(err)
	}

	row := &model.StockTransaction{
		ProductID:   productID,
		Type:        txType,
		Quantity:    quantity,
		StockBefore: before,
		StockAfter:  after,
		Reference:   reference,
		Notes:       notes,
		Product:     p,
	}
	if err := s.ledger.CreateTx(tx, row); err != nil {
		return nil, fmt.Errorf("record stock transaction: %w", err)
	}
	return row, nil
}

func (s *stockService) List(ctx context.Context, filter dto.StockTransactionFilter) (*dto.StockTransactionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 50
	}
	rows, total, err := s.ledger.List(ctx, repository.StockTransactionFilter{
		ProductID: filter.ProductID,
		Type:      filter.Type,
		Page:      filter.Page,
		Limit:     filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	data := make([]dto.StockTransactionResponse, 0, len(rows))
	for i := range rows {
		data = append(data, stockTxToResponse(&rows[i]))
	}
	return &dto.StockTransactionListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func insufficientStockMsg(name string, available, requested int) string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d", name, available, requested)
}
