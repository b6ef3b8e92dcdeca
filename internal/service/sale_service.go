package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stockwise/internal/cache"
	"stockwise/internal/dto"
	"stockwise/internal/model"
	"stockwise/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const saleNumberPrefix = "SALE-"

type SaleService interface {
	Create(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uint) (*dto.SaleResponse, error)
	// Load returns the sale model with items and products, for receipts.
	Load(ctx context.Context, id uint) (*model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateSaleRequest) (*dto.SaleResponse, error)
	Delete(ctx context.Context, id uint) error
}

type saleService struct {
	repo     repository.SaleRepository
	products repository.ProductRepository
	cache    cache.ProductCache
	loc      *time.Location
	now      func() time.Time
}

func NewSaleService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	c cache.ProductCache,
	loc *time.Location,
) SaleService {
	if c == nil {
		c = cache.NoopProductCache{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &saleService{repo: repo, products: products, cache: c, loc: loc, now: time.Now}
}

// NextSaleNumber returns the number following last, e.g. SALE-000041 ->
// SALE-000042. An empty or unparsable last number starts at SALE-000001.
func NextSaleNumber(last string) string {
	n := 0
	if strings.HasPrefix(last, saleNumberPrefix) {
		if v, err := strconv.Atoi(strings.TrimPrefix(last, saleNumberPrefix)); err == nil && v > 0 {
			n = v
		}
	}
	return fmt.Sprintf("%s%06d", saleNumberPrefix, n+1)
}

// ── Item planning ────────────────────────────────────────────────────────────

// itemPlan is one validated line change, ready to apply inside the transaction.
type itemPlan struct {
	index     int
	existing  *model.SaleItem // nil for a new line
	remove    bool
	product   *model.Product
	quantity  int
	unitPrice decimal.Decimal
}

func itemField(i int, name string) string {
	return fmt.Sprintf("items[%d].%s", i, name)
}

// planItems validates the requested line changes against current stock,
// collecting every failure before anything is written. existing holds the
// sale's current lines by ID (empty on create). Stock released by lines that
// are removed or edited counts as available to the new quantities.
func (s *saleService) planItems(ctx context.Context, reqs []dto.SaleItemRequest, existing map[uint]model.SaleItem) ([]itemPlan, error) {
	verr := newValidation(ValidationMessage)

	released := map[uint]int{}
	referenced := map[uint]bool{}
	for i, it := range reqs {
		if it.ID == nil {
			continue
		}
		ex, ok := existing[*it.ID]
		if !ok {
			verr.add(itemField(i, "id"), "Item does not belong to this sale.")
			continue
		}
		if referenced[ex.ID] {
			verr.add(itemField(i, "id"), "Item is listed more than once.")
			continue
		}
		referenced[ex.ID] = true
		released[ex.ProductID] += ex.Quantity
	}

	// Lines left untouched keep their product on the sale.
	onSale := map[uint]int{}
	for id, ex := range existing {
		if !referenced[id] {
			onSale[ex.ProductID] = -1
		}
	}

	plans := make([]itemPlan, 0, len(reqs))
	for i, it := range reqs {
		var ex *model.SaleItem
		if it.ID != nil {
			e, ok := existing[*it.ID]
			if !ok {
				continue
			}
			ex = &e
		}
		if it.Delete {
			if ex != nil {
				plans = append(plans, itemPlan{index: i, existing: ex, remove: true})
			}
			continue
		}
		if it.ProductID == 0 {
			verr.add(itemField(i, "product_id"), "Sale item must have a product.")
			continue
		}
		p, err := s.products.FindByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				verr.add(itemField(i, "product_id"), "Product not found.")
				continue
			}
			return nil, err
		}
		if !p.IsActive && (ex == nil || ex.ProductID != p.ID) {
			verr.add(itemField(i, "product_id"), fmt.Sprintf("%s is inactive and cannot be sold.", p.Name))
		}
		if j, dup := onSale[p.ID]; dup {
			if j < 0 {
				verr.add(itemField(i, "product_id"), fmt.Sprintf("%s is already on this sale.", p.Name))
			} else {
				verr.add(itemField(i, "product_id"), fmt.Sprintf("%s is already on item %d.", p.Name, j+1))
			}
		} else {
			onSale[p.ID] = i
		}

		if it.Quantity < 1 {
			verr.add(itemField(i, "quantity"), "Quantity must be at least 1.")
		} else if available := p.CurrentStock + released[p.ID]; it.Quantity > available {
			verr.add(itemField(i, "quantity"), insufficientStockMsg(p.Name, available, it.Quantity))
		}

		price := p.SellingPrice
		if it.UnitPrice != nil {
			price = *it.UnitPrice
		}
		if price.IsNegative() {
			verr.add(itemField(i, "unit_price"), "Unit price cannot be negative.")
		}

		plans = append(plans, itemPlan{index: i, existing: ex, product: p, quantity: it.Quantity, unitPrice: price})
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return plans, nil
}

// applyPlans restores stock held by edited and removed lines first, then
// takes stock for the new quantities. The underflow guard in UpdateStockTx
// catches stock that moved since planItems ran.
func (s *saleService) applyPlans(tx *gorm.DB, saleID uint, plans []itemPlan) error {
	for _, pl := range plans {
		if pl.existing == nil {
			continue
		}
		if err := s.products.UpdateStockTx(tx, pl.existing.ProductID, pl.existing.Quantity); err != nil {
			return fmt.Errorf("restore stock for item %d: %w", pl.existing.ID, err)
		}
		if pl.remove {
			if err := s.repo.DeleteItemTx(tx, pl.existing.ID); err != nil {
				return err
			}
		}
	}

	for _, pl := range plans {
		if pl.remove {
			continue
		}
		if err := s.products.UpdateStockTx(tx, pl.product.ID, -pl.quantity); err != nil {
			if errors.Is(err, repository.ErrStockUnderflow) {
				current, ferr := s.products.FindByIDTx(tx, pl.product.ID)
				available := 0
				if ferr == nil {
					available = current.CurrentStock
				}
				return fieldError(itemField(pl.index, "quantity"), insufficientStockMsg(pl.product.Name, available, pl.quantity))
			}
			return mapNotFound(err)
		}

		item := &model.SaleItem{
			SaleID:    saleID,
			ProductID: pl.product.ID,
			Quantity:  pl.quantity,
			UnitPrice: pl.unitPrice,
		}
		if pl.existing != nil {
			item.ID = pl.existing.ID
			if err := s.repo.UpdateItemTx(tx, item); err != nil {
				return err
			}
			continue
		}
		if err := s.repo.CreateItemTx(tx, item); err != nil {
			return err
		}
	}
	return nil
}

// refreshTotalTx recomputes the header total from the stored lines.
func (s *saleService) refreshTotalTx(tx *gorm.DB, saleID uint) error {
	items, err := s.repo.ListItemsTx(tx, saleID)
	if err != nil {
		return err
	}
	return s.repo.UpdateTotalTx(tx, saleID, model.SumSubtotals(items))
}

// errSaleNumberTaken means a concurrent sale inserted the same number first.
// The transaction is aborted and reported as a generic failure.
var errSaleNumberTaken = errors.New("sale number already taken")

// translateSaleErr reports the (sale, product) unique index as a validation
// failure. Planning catches duplicates up front; this covers line swaps that
// collide while being applied.
func translateSaleErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fieldError("items", "Each product can appear only once per sale.")
	}
	return err
}

func touchedProducts(plans []itemPlan) []uint {
	seen := map[uint]bool{}
	var ids []uint
	add := func(id uint) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, pl := range plans {
		if pl.existing != nil {
			add(pl.existing.ProductID)
		}
		if pl.product != nil {
			add(pl.product.ID)
		}
	}
	return ids
}

// ── Create ───────────────────────────────────────────────────────────────────
// In one transaction:
//   1. take the next sale number
//   2. insert the header
//   3. for each line: guarded stock decrement, insert line
//   4. store the total as the sum of line subtotals

func (s *saleService) Create(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	method := req.PaymentMethod
	if method == "" {
		method = model.PaymentCash
	}
	if !model.IsValidPaymentMethod(method) {
		return nil, fieldError("payment_method", "Unknown payment method.")
	}
	if len(req.Items) == 0 {
		return nil, fieldError("items", "At least one item is required.")
	}

	plans, err := s.planItems(ctx, req.Items, nil)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, fieldError("items", "At least one item is required.")
	}

	date := s.now()
	if req.Date != nil {
		date = *req.Date
	}
	sale := &model.Sale{
		Date:          date.UTC(),
		PaymentMethod: method,
		Notes:         req.Notes,
		TotalAmount:   decimal.Zero,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		last, err := s.repo.LastSaleNumber(ctx, tx)
		if err != nil {
			return err
		}
		sale.SaleNumber = NextSaleNumber(last)
		if err := s.repo.Create(ctx, tx, sale); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", errSaleNumberTaken, sale.SaleNumber)
			}
			return err
		}
		if err := s.applyPlans(tx, sale.ID, plans); err != nil {
			return err
		}
		return s.refreshTotalTx(tx, sale.ID)
	})
	if err != nil {
		return nil, translateSaleErr(err)
	}
	invalidate(ctx, s.cache, touchedProducts(plans)...)

	log.Info().Str("sale_number", sale.SaleNumber).Int("items", len(plans)).Msg("sale created")
	return s.Get(ctx, sale.ID)
}

func (s *saleService) Load(ctx context.Context, id uint) (*model.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return sale, nil
}

func (s *saleService) Get(ctx context.Context, id uint) (*dto.SaleResponse, error) {
	sale, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := saleToResponse(sale, s.loc)
	return &resp, nil
}

// ── Update ───────────────────────────────────────────────────────────────────

func (s *saleService) Update(ctx context.Context, id uint, req dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if req.PaymentMethod != nil {
		if !model.IsValidPaymentMethod(*req.PaymentMethod) {
			return nil, fieldError("payment_method", "Unknown payment method.")
		}
		sale.PaymentMethod = *req.PaymentMethod
	}
	if req.Date != nil {
		sale.Date = req.Date.UTC()
	}
	if req.Notes != nil {
		sale.Notes = *req.Notes
	}

	existing := make(map[uint]model.SaleItem, len(sale.Items))
	for _, it := range sale.Items {
		existing[it.ID] = it
	}
	plans, err := s.planItems(ctx, req.Items, existing)
	if err != nil {
		return nil, err
	}

	removed := 0
	for _, pl := range plans {
		if pl.remove {
			removed++
		}
	}
	added := 0
	for _, pl := range plans {
		if pl.existing == nil && !pl.remove {
			added++
		}
	}
	if len(existing)-removed+added == 0 {
		return nil, fieldError("items", "A sale must keep at least one item. Delete the sale instead.")
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateHeaderTx(tx, sale); err != nil {
			return mapNotFound(err)
		}
		if err := s.applyPlans(tx, sale.ID, plans); err != nil {
			return err
		}
		return s.refreshTotalTx(tx, sale.ID)
	})
	if err != nil {
		return nil, translateSaleErr(err)
	}
	invalidate(ctx, s.cache, touchedProducts(plans)...)

	return s.Get(ctx, id)
}

// ── Delete ───────────────────────────────────────────────────────────────────

// Delete removes the sale and returns every line's quantity to stock.
func (s *saleService) Delete(ctx context.Context, id uint) error {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	ids := make([]uint, 0, len(sale.Items))
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, it := range sale.Items {
			if err := s.products.UpdateStockTx(tx, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("restore stock for item %d: %w", it.ID, err)
			}
			ids = append(ids, it.ProductID)
		}
		return mapNotFound(s.repo.DeleteTx(tx, id))
	})
	if err != nil {
		return err
	}
	invalidate(ctx, s.cache, ids...)

	log.Info().Str("sale_number", sale.SaleNumber).Msg("sale deleted")
	return nil
}

// ── List ─────────────────────────────────────────────────────────────────────

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 20
	}
	q, err := buildSaleQuery(saleQueryInput{
		Search:        filter.Search,
		DateFrom:      filter.DateFrom,
		DateTo:        filter.DateTo,
		PaymentMethod: filter.PaymentMethod,
		MinAmount:     filter.MinAmount,
		MaxAmount:     filter.MaxAmount,
	}, s.loc)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.Totals(ctx, q)
	if err != nil {
		return nil, err
	}

	q.Page, q.Limit = filter.Page, filter.Limit
	sales, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	return &dto.SaleListResponse{
		Data:           salesToResponse(sales, s.loc),
		Summary:        summarize(totals),
		PaymentMethods: paymentMethodOptions(),
		Total:          total,
		Page:           filter.Page,
		Limit:          filter.Limit,
		TotalPages:     totalPages(total, filter.Limit),
	}, nil
}

func summarize(t repository.SaleTotals) dto.SalesSummary {
	avg := decimal.Zero
	if t.Count > 0 {
		avg = t.Revenue.Div(decimal.NewFromInt(t.Count)).Round(2)
	}
	return dto.SalesSummary{TotalSales: t.Count, TotalRevenue: t.Revenue, AvgSale: avg}
}
