package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Sale venta de una empresa que decrementa el stock.
type Sale struct {
	ID        string
	CompanyID string
	BuyerName string
	SaleDate  time.Time
	Discount  decimal.Decimal // porcentaje 0..100
	CreatedBy string          // UserID
	CreatedAt time.Time

	CreatedByName string // solo lectura

	Lines []SaleLine
}

// SaleLine producto vendido. SalePrice y PurchasePrice quedan congelados al momento de la venta.
type SaleLine struct {
	ID            string
	SaleID        string
	ProductID     string
	Quantity      int64
	SalePrice     decimal.Decimal
	PurchasePrice decimal.Decimal

	ProductSKU  string // solo lectura
	ProductName string // solo lectura
}

// Subtotal = SalePrice * Quantity.
func (l SaleLine) Subtotal() decimal.Decimal {
	return l.SalePrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Cost = PurchasePrice * Quantity.
func (l SaleLine) Cost() decimal.Decimal {
	return l.PurchasePrice.Mul(decimal.NewFromInt(l.Quantity))
}

// SaleTotals importes derivados de una venta.
type SaleTotals struct {
	TotalAmount       decimal.Decimal
	DiscountAmount    decimal.Decimal
	TotalWithDiscount decimal.Decimal
	TotalCost         decimal.Decimal
	Profit            decimal.Decimal
}

// Totals calcula importe bruto, descuento, neto, costo y ganancia (neto - costo), redondeados a 2 decimales.
func (s *Sale) Totals() SaleTotals {
	total, cost := decimal.Zero, decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
		cost = cost.Add(l.Cost())
	}
	discount := total.Mul(s.Discount).Div(hundred).Round(2)
	net := total.Sub(discount)
	return SaleTotals{
		TotalAmount:       total.Round(2),
		DiscountAmount:    discount,
		TotalWithDiscount: net.Round(2),
		TotalCost:         cost.Round(2),
		Profit:            net.Sub(cost).Round(2),
	}
}
