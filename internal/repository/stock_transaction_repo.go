package repository

import (
	"context"

	"stockwise/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockTransactionFilter defines filters for listing ledger rows.
type StockTransactionFilter struct {
	ProductID uint // 0 = any product
	Type      string
	Page      int
	Limit     int
}

type StockTransactionRepository interface {
	CreateTx(tx *gorm.DB, t *model.StockTransaction) error
	List(ctx context.Context, filter StockTransactionFilter) ([]model.StockTransaction, int64, error)
	ListByProduct(ctx context.Context, productID uint, limit int) ([]model.StockTransaction, error)
}

type stockTransactionRepo struct{ db *gorm.DB }

func NewStockTransactionRepository(db *gorm.DB) StockTransactionRepository {
	return &stockTransactionRepo{db: db}
}

func (r *stockTransactionRepo) CreateTx(tx *gorm.DB, t *model.StockTransaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Omit(clause.Associations).Create(t).Error
}

func (r *stockTransactionRepo) List(ctx context.Context, filter StockTransactionFilter) ([]model.StockTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockTransaction{})
	if filter.ProductID != 0 {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	offset := (page - 1) * limit

	var rows []model.StockTransaction
	err := q.Preload("Product").Order("timestamp DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

func (r *stockTransactionRepo) ListByProduct(ctx context.Context, productID uint, limit int) ([]model.StockTransaction, error) {
	var rows []model.StockTransaction
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
