package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supply entrega de un proveedor que incrementa el stock.
type Supply struct {
	ID            string
	SupplierID    string
	CompanyID     string // resuelto vía suppliers.company_id
	DeliveryDate  time.Time
	InvoiceNumber string
	Notes         string
	CreatedBy     string // UserID
	CreatedAt     time.Time

	// Solo lectura (joins).
	SupplierName  string
	CreatedByName string

	Lines []SupplyLine
}

// SupplyLine producto recibido con el precio de compra congelado al momento de la entrega.
type SupplyLine struct {
	ID            string
	SupplyID      string
	ProductID     string
	Quantity      int64
	PurchasePrice decimal.Decimal

	ProductSKU  string // solo lectura
	ProductName string // solo lectura
}

// Subtotal = PurchasePrice * Quantity.
func (l SupplyLine) Subtotal() decimal.Decimal {
	return l.PurchasePrice.Mul(decimal.NewFromInt(l.Quantity))
}

// TotalCost suma de subtotales de las líneas.
func (s *Supply) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}
