package service

import (
	"context"
	"time"

	"stockwise/internal/dto"
	"stockwise/internal/repository"
)

const (
	reportTopProducts    = 10
	dashboardTopProducts = 5
	dashboardRecentSales = 5
)

type ReportService interface {
	LowStock(ctx context.Context) (*dto.LowStockReportResponse, error)
	Sales(ctx context.Context, filter dto.SalesReportFilter) (*dto.SalesReportResponse, error)
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

type reportService struct {
	products repository.ProductRepository
	sales    repository.SaleRepository
	loc      *time.Location
	now      func() time.Time
}

func NewReportService(products repository.ProductRepository, sales repository.SaleRepository, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{products: products, sales: sales, loc: loc, now: time.Now}
}

// LowStock lists active products at or below their minimum level, emptiest first.
func (s *reportService) LowStock(ctx context.Context) (*dto.LowStockReportResponse, error) {
	products, err := s.products.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.LowStockReportResponse{Data: productsToResponse(products), Total: len(products)}, nil
}

func (s *reportService) Sales(ctx context.Context, filter dto.SalesReportFilter) (*dto.SalesReportResponse, error) {
	q, err := buildSaleQuery(saleQueryInput{
		DateFrom:      filter.DateFrom,
		DateTo:        filter.DateTo,
		PaymentMethod: filter.PaymentMethod,
	}, s.loc)
	if err != nil {
		return nil, err
	}

	totals, err := s.sales.Totals(ctx, q)
	if err != nil {
		return nil, err
	}
	top, err := s.sales.TopProducts(ctx, q, reportTopProducts)
	if err != nil {
		return nil, err
	}
	sales, _, err := s.sales.List(ctx, q)
	if err != nil {
		return nil, err
	}

	return &dto.SalesReportResponse{
		DateFrom:       filter.DateFrom,
		DateTo:         filter.DateTo,
		PaymentMethod:  filter.PaymentMethod,
		Summary:        summarize(totals),
		TopProducts:    topProductsToResponse(top),
		Sales:          salesToResponse(sales, s.loc),
		PaymentMethods: paymentMethodOptions(),
	}, nil
}

// Dashboard builds the overview page. "Today" is the current calendar day in
// the business time zone.
func (s *reportService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	count, err := s.products.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	low, err := s.products.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.sales.List(ctx, repository.SaleQuery{Page: 1, Limit: dashboardRecentSales})
	if err != nil {
		return nil, err
	}

	from, to := dayBounds(s.now(), s.loc)
	today, err := s.sales.Totals(ctx, repository.SaleQuery{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	top, err := s.sales.TopProducts(ctx, repository.SaleQuery{}, dashboardTopProducts)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		TotalProducts:    count,
		TotalLowStock:    len(low),
		LowStockProducts: productsToResponse(low),
		RecentSales:      salesToResponse(recent, s.loc),
		TodaySales:       today.Revenue,
		TopProducts:      topProductsToResponse(top),
	}, nil
}
