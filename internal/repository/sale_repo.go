package repository

import (
	"context"
	"strings"
	"time"

	"stockwise/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleQuery narrows sales for listing and reporting. From is inclusive and
// To exclusive; a zero Limit returns every matching row.
type SaleQuery struct {
	From          *time.Time
	To            *time.Time
	PaymentMethod string
	Search        string
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	Page          int
	Limit         int
}

// SaleTotals is the count and revenue of the sales matching a SaleQuery.
type SaleTotals struct {
	Count   int64
	Revenue decimal.Decimal
}

// TopProductRow is one line of the best-sellers aggregate.
type TopProductRow struct {
	ProductID    uint
	Name         string
	SKU          *string
	TotalSold    int64
	TotalRevenue decimal.Decimal
}

// ProductSaleRow is a sale line of a single product, newest first.
type ProductSaleRow struct {
	SaleID     uint
	SaleNumber string
	Date       time.Time
	Quantity   int
	UnitPrice  decimal.Decimal
}

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uint) (*model.Sale, error)
	List(ctx context.Context, q SaleQuery) ([]model.Sale, int64, error)
	Totals(ctx context.Context, q SaleQuery) (SaleTotals, error)
	TopProducts(ctx context.Context, q SaleQuery, limit int) ([]TopProductRow, error)
	ListByProduct(ctx context.Context, productID uint, limit int) ([]ProductSaleRow, error)

	// LastSaleNumber returns the sale number with the highest numeric
	// suffix, or "" when there are no sales yet.
	LastSaleNumber(ctx context.Context, tx *gorm.DB) (string, error)

	// Used inside transactions
	UpdateHeaderTx(tx *gorm.DB, s *model.Sale) error
	UpdateTotalTx(tx *gorm.DB, id uint, total decimal.Decimal) error
	DeleteTx(tx *gorm.DB, id uint) error
	ListItemsTx(tx *gorm.DB, saleID uint) ([]model.SaleItem, error)
	CreateItemTx(tx *gorm.DB, item *model.SaleItem) error
	UpdateItemTx(tx *gorm.DB, item *model.SaleItem) error
	DeleteItemTx(tx *gorm.DB, id uint) error

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) txConn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return r.txConn(tx).WithContext(ctx).Omit(clause.Associations).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uint) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sale_items.id ASC") }).
		Preload("Items.Product").
		First(&s, id).Error
	return &s, err
}

func (r *saleRepo) LastSaleNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	var numbers []string
	err := r.txConn(tx).WithContext(ctx).Model(&model.Sale{}).
		Where("sale_number LIKE ?", "SALE-%").
		Order("LENGTH(sale_number) DESC").Order("sale_number DESC").
		Limit(1).
		Pluck("sale_number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}

func (r *saleRepo) UpdateHeaderTx(tx *gorm.DB, s *model.Sale) error {
	res := r.txConn(tx).Model(&model.Sale{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"date":           s.Date,
		"payment_method": s.PaymentMethod,
		"notes":          s.Notes,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *saleRepo) UpdateTotalTx(tx *gorm.DB, id uint, total decimal.Decimal) error {
	return r.txConn(tx).Model(&model.Sale{}).Where("id = ?", id).Update("total_amount", total).Error
}

// DeleteTx removes the sale and its items. Stock is restored by the caller.
func (r *saleRepo) DeleteTx(tx *gorm.DB, id uint) error {
	db := r.txConn(tx)
	if err := db.Where("sale_id = ?", id).Delete(&model.SaleItem{}).Error; err != nil {
		return err
	}
	res := db.Delete(&model.Sale{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *saleRepo) ListItemsTx(tx *gorm.DB, saleID uint) ([]model.SaleItem, error) {
	var items []model.SaleItem
	err := r.txConn(tx).Where("sale_id = ?", saleID).Order("id ASC").Find(&items).Error
	return items, err
}

func (r *saleRepo) CreateItemTx(tx *gorm.DB, item *model.SaleItem) error {
	return r.txConn(tx).Omit(clause.Associations).Create(item).Error
}

func (r *saleRepo) UpdateItemTx(tx *gorm.DB, item *model.SaleItem) error {
	return r.txConn(tx).Model(&model.SaleItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
		"unit_price": item.UnitPrice,
	}).Error
}

func (r *saleRepo) DeleteItemTx(tx *gorm.DB, id uint) error {
	return r.txConn(tx).Delete(&model.SaleItem{}, id).Error
}

// applySaleQuery adds the SaleQuery conditions. Columns are qualified so the
// same conditions work on joins with sale_items.
func (r *saleRepo) applySaleQuery(q *gorm.DB, sq SaleQuery) *gorm.DB {
	if sq.From != nil {
		q = q.Where("sales.date >= ?", *sq.From)
	}
	if sq.To != nil {
		q = q.Where("sales.date < ?", *sq.To)
	}
	if sq.PaymentMethod != "" {
		q = q.Where("sales.payment_method = ?", sq.PaymentMethod)
	}
	if sq.MinAmount != nil {
		q = q.Where("sales.total_amount >= ?", *sq.MinAmount)
	}
	if sq.MaxAmount != nil {
		q = q.Where("sales.total_amount <= ?", *sq.MaxAmount)
	}
	if s := strings.TrimSpace(sq.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		byProduct := r.db.Table("sale_items").
			Select("sale_items.sale_id").
			Joins("JOIN products ON products.id = sale_items.product_id").
			Where("LOWER(products.name) LIKE ?", like)
		q = q.Where("(LOWER(sales.sale_number) LIKE ? OR LOWER(sales.notes) LIKE ? OR sales.id IN (?))", like, like, byProduct)
	}
	return q
}

func (r *saleRepo) List(ctx context.Context, sq SaleQuery) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	q := r.applySaleQuery(r.db.WithContext(ctx).Model(&model.Sale{}), sq)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sale_items.id ASC") }).
		Preload("Items.Product").
		Order("sales.date DESC").Order("sales.id DESC")
	if sq.Limit > 0 {
		page := sq.Page
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * sq.Limit).Limit(sq.Limit)
	}
	err := q.Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) Totals(ctx context.Context, sq SaleQuery) (SaleTotals, error) {
	var row SaleTotals
	err := r.applySaleQuery(r.db.WithContext(ctx).Model(&model.Sale{}), sq).
		Select("COUNT(*) AS count, COALESCE(SUM(sales.total_amount), 0) AS revenue").
		Scan(&row).Error
	return row, err
}

// TopProducts ranks products by units sold within the sales matching sq.
// Revenue is the sum of each line's quantity times its unit price.
func (r *saleRepo) TopProducts(ctx context.Context, sq SaleQuery, limit int) ([]TopProductRow, error) {
	q := r.db.WithContext(ctx).Table("sale_items").
		Select("products.id AS product_id, products.name AS name, products.sku AS sku, " +
			"SUM(sale_items.quantity) AS total_sold, " +
			"SUM(sale_items.quantity * sale_items.unit_price) AS total_revenue").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Joins("JOIN products ON products.id = sale_items.product_id")
	q = r.applySaleQuery(q, sq)

	var rows []TopProductRow
	err := q.Group("products.id, products.name, products.sku").
		Order("total_sold DESC").Order("products.name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *saleRepo) ListByProduct(ctx context.Context, productID uint, limit int) ([]ProductSaleRow, error) {
	var rows []ProductSaleRow
	err := r.db.WithContext(ctx).Table("sale_items").
		Select("sales.id AS sale_id, sales.sale_number AS sale_number, sales.date AS date, " +
			"sale_items.quantity AS quantity, sale_items.unit_price AS unit_price").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sale_items.product_id = ?", productID).
		Order("sales.date DESC").Order("sales.id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
