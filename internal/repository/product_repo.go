package repository

import (
	"context"
	"errors"
	"strings"

	"stockwise/internal/dto"
	"stockwise/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockUnderflow is returned by UpdateStockTx when the delta would take a
// product's stock below zero. The row is left untouched.
var ErrStockUnderflow = errors.New("repository: stock would go negative")

// ProductRepository defines the data access contract for products.
// Methods taking a tx run on it when non-nil; services must use those inside
// a transaction.
type ProductRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	ListLowStock(ctx context.Context) ([]model.Product, error)
	CountActive(ctx context.Context) (int64, error)
	Categories(ctx context.Context) ([]string, error)
	HasSales(ctx context.Context, id uint) (bool, error)
	SetActive(ctx context.Context, id uint, active bool) error

	// Update writes every column except current_stock, which only moves
	// through UpdateStockTx.
	Update(ctx context.Context, tx *gorm.DB, p *model.Product) error

	// Delete removes the product and its ledger rows.
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Used inside transactions
	FindByIDTx(tx *gorm.DB, id uint) (*model.Product, error)
	SKUTakenTx(tx *gorm.DB, sku string, exceptID uint) (bool, error)
	UpdateStockTx(tx *gorm.DB, id uint, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// txConn keeps the context the transaction was opened with.
func (r *productRepo) txConn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *productRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Product) error {
	return r.conn(ctx, tx).Omit(clause.Associations).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.Product, error) {
	var p model.Product
	err := r.txConn(tx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	return &p, err
}

func (r *productRepo) SKUTakenTx(tx *gorm.DB, sku string, exceptID uint) (bool, error) {
	var n int64
	err := r.txConn(tx).Model(&model.Product{}).
		Where("sku = ? AND id <> ?", sku, exceptID).Count(&n).Error
	return n > 0, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	// Active filter: "false" = inactive, "all" = everything, anything else = active only
	switch filter.Active {
	case "false":
		q = q.Where("is_active = ?", false)
	case "all":
	default:
		q = q.Where("is_active = ?", true)
	}

	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(COALESCE(sku, '')) LIKE ? OR LOWER(description) LIKE ?)", like, like, like)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.LowStockOnly() {
		q = q.Where("current_stock <= min_stock_level")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Order("id ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) ListLowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND current_stock <= min_stock_level", true).
		Order("current_stock ASC").Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (r *productRepo) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("category <> ''").
		Distinct("category").Order("category ASC").
		Pluck("category", &cats).Error
	return cats, err
}

func (r *productRepo) HasSales(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SaleItem{}).Where("product_id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *productRepo) SetActive(ctx context.Context, id uint, active bool) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("is_active", active).Error
}

func (r *productRepo) Update(ctx context.Context, tx *gorm.DB, p *model.Product) error {
	return r.conn(ctx, tx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":            p.Name,
		"sku":             p.SKU,
		"description":     p.Description,
		"category":        p.Category,
		"buying_price":    p.BuyingPrice,
		"selling_price":   p.SellingPrice,
		"min_stock_level": p.MinStockLevel,
		"is_active":       p.IsActive,
	}).Error
}

func (r *productRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.conn(ctx, tx)
	if err := db.Where("product_id = ?", id).Delete(&model.StockTransaction{}).Error; err != nil {
		return err
	}
	res := db.Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStockTx applies a signed delta in a single statement guarded against
// underflow, so concurrent writers can never drive the counter negative.
func (r *productRepo) UpdateStockTx(tx *gorm.DB, id uint, delta int) error {
	db := r.txConn(tx)
	res := db.Model(&model.Product{}).
		Where("id = ? AND current_stock + ? >= 0", id, delta).
		Update("current_stock", gorm.Expr("current_stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := db.Model(&model.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrStockUnderflow
}

func (r *productRepo) DB() *gorm.DB { return r.db }
