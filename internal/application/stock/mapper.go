package stock

import (
	"fmt"

	"github.com/jhoicas/crm-lite/internal/application/dto"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/ledger"
)

const dateLayout = "2006-01-02"

func toLines(in []dto.LineRequest) []ledger.Line {
	out := make([]ledger.Line, 0, len(in))
	for _, l := range in {
		out = append(out, ledger.Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

func toSupplyResponse(s *entity.Supply) *dto.SupplyResponse {
	lines := make([]dto.SupplyLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, dto.SupplyLineResponse{
			ID:            l.ID,
			ProductID:     l.ProductID,
			SKU:           l.ProductSKU,
			ProductName:   l.ProductName,
			Quantity:      l.Quantity,
			PurchasePrice: l.PurchasePrice,
			Subtotal:      l.Subtotal().Round(2),
		})
	}
	return &dto.SupplyResponse{
		ID:            s.ID,
		SupplierID:    s.SupplierID,
		SupplierName:  s.SupplierName,
		DeliveryDate:  s.DeliveryDate.Format(dateLayout),
		InvoiceNumber: s.InvoiceNumber,
		Notes:         s.Notes,
		CreatedBy:     s.CreatedBy,
		CreatedByName: s.CreatedByName,
		CreatedAt:     s.CreatedAt,
		Products:      lines,
		TotalCost:     s.TotalCost(),
	}
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	lines := make([]dto.SaleLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, dto.SaleLineResponse{
			ID:            l.ID,
			ProductID:     l.ProductID,
			SKU:           l.ProductSKU,
			ProductName:   l.ProductName,
			Quantity:      l.Quantity,
			SalePrice:     l.SalePrice,
			PurchasePrice: l.PurchasePrice,
			Subtotal:      l.Subtotal().Round(2),
		})
	}
	t := s.Totals()
	return &dto.SaleResponse{
		ID:                s.ID,
		BuyerName:         s.BuyerName,
		SaleDate:          s.SaleDate,
		Discount:          s.Discount,
		CreatedBy:         s.CreatedBy,
		CreatedByName:     s.CreatedByName,
		CreatedAt:         s.CreatedAt,
		Products:          lines,
		TotalAmount:       t.TotalAmount,
		DiscountAmount:    t.DiscountAmount,
		TotalWithDiscount: t.TotalWithDiscount,
		TotalCost:         t.TotalCost,
		Profit:            t.Profit,
	}
}

func toWarnings(clamps []ledger.Clamp) []dto.StockWarning {
	out := make([]dto.StockWarning, 0, len(clamps))
	for _, c := range clamps {
		out = append(out, dto.StockWarning{
			ProductID: c.ProductID,
			Reverted:  c.Reverted,
			Available: c.Available,
			Message: fmt.Sprintf("se revertían %d unidades pero solo había %d; la cantidad quedó en 0 (%d unidades no descontadas)",
				c.Reverted, c.Available, c.Lost()),
		})
	}
	return out
}
