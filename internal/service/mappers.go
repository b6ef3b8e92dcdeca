package service

import (
	"time"

	"stockwise/internal/dto"
	"stockwise/internal/model"
	"stockwise/internal/repository"
)

const timeLayout = time.RFC3339

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		SKU:           p.SKUValue(),
		Description:   p.Description,
		Category:      p.Category,
		BuyingPrice:   p.BuyingPrice,
		SellingPrice:  p.SellingPrice,
		CurrentStock:  p.CurrentStock,
		MinStockLevel: p.MinStockLevel,
		IsActive:      p.IsActive,
		IsLowStock:    p.IsLowStock(),
		CreatedAt:     p.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:     p.UpdatedAt.UTC().Format(timeLayout),
	}
}

func productsToResponse(ps []model.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(ps))
	for i := range ps {
		out = append(out, productToResponse(&ps[i]))
	}
	return out
}

func stockTxToResponse(t *model.StockTransaction) dto.StockTransactionResponse {
	resp := dto.StockTransactionResponse{
		ID:          t.ID,
		ProductID:   t.ProductID,
		Type:        t.Type,
		Quantity:    t.Quantity,
		StockBefore: t.StockBefore,
		StockAfter:  t.StockAfter,
		Reference:   t.Reference,
		Notes:       t.Notes,
		Timestamp:   t.Timestamp.UTC().Format(timeLayout),
	}
	if t.Product != nil {
		resp.ProductName = t.Product.Name
	}
	return resp
}

func saleToResponse(s *model.Sale, loc *time.Location) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		items = append(items, dto.SaleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal(),
		})
	}
	return dto.SaleResponse{
		ID:                 s.ID,
		SaleNumber:         s.SaleNumber,
		Date:               s.Date.In(loc).Format(timeLayout),
		TotalAmount:        s.TotalAmount,
		PaymentMethod:      s.PaymentMethod,
		PaymentMethodLabel: model.PaymentMethodLabel(s.PaymentMethod),
		Notes:              s.Notes,
		Items:              items,
		CreatedAt:          s.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:          s.UpdatedAt.UTC().Format(timeLayout),
	}
}

func salesToResponse(sales []model.Sale, loc *time.Location) []dto.SaleResponse {
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, saleToResponse(&sales[i], loc))
	}
	return out
}

func topProductsToResponse(rows []repository.TopProductRow) []dto.TopProductResponse {
	out := make([]dto.TopProductResponse, 0, len(rows))
	for _, r := range rows {
		sku := ""
		if r.SKU != nil {
			sku = *r.SKU
		}
		out = append(out, dto.TopProductResponse{
			ProductID:    r.ProductID,
			Name:         r.Name,
			SKU:          sku,
			TotalSold:    r.TotalSold,
			TotalRevenue: r.TotalRevenue,
		})
	}
	return out
}

func paymentMethodOptions() []dto.PaymentMethodOption {
	out := make([]dto.PaymentMethodOption, 0, len(model.PaymentMethods))
	for _, pm := range model.PaymentMethods {
		out = append(out, dto.PaymentMethodOption{Value: pm.Value, Label: pm.Label})
	}
	return out
}
