package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineRequest par (producto, cantidad) de un suministro o una venta.
type LineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int64  `json:"quantity" validate:"min=1,max=2147483647"`
}

// CreateSupplyRequest body para POST /api/supplies.
// DeliveryDate en formato YYYY-MM-DD.
type CreateSupplyRequest struct {
	SupplierID    string        `json:"supplier_id" validate:"required,uuid"`
	DeliveryDate  string        `json:"delivery_date" validate:"required,datetime=2006-01-02"`
	InvoiceNumber string        `json:"invoice_number" validate:"required,min=1,max=100"`
	Notes         string        `json:"notes" validate:"max=2000"`
	Products      []LineRequest `json:"products" validate:"required,min=1,dive"`
}

// UpdateSupplyRequest body para PATCH /api/supplies/:id. Solo cabecera; las líneas son inmutables.
type UpdateSupplyRequest struct {
	DeliveryDate  *string `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	InvoiceNumber *string `json:"invoice_number" validate:"omitempty,min=1,max=100"`
	Notes         *string `json:"notes" validate:"omitempty,max=2000"`
}

// SupplyLineResponse línea de suministro con su precio de compra congelado.
type SupplyLineResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku,omitempty"`
	ProductName   string          `json:"product_name,omitempty"`
	Quantity      int64           `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// SupplyResponse suministro con líneas y costo total.
type SupplyResponse struct {
	ID            string               `json:"id"`
	SupplierID    string               `json:"supplier_id"`
	SupplierName  string               `json:"supplier_name,omitempty"`
	DeliveryDate  string               `json:"delivery_date"`
	InvoiceNumber string               `json:"invoice_number"`
	Notes         string               `json:"notes"`
	CreatedBy     string               `json:"created_by"`
	CreatedByName string               `json:"created_by_name,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	Products      []SupplyLineResponse `json:"products"`
	TotalCost     decimal.Decimal      `json:"total_cost"`
}

// SupplyListResponse lista paginada de suministros.
type SupplyListResponse struct {
	Items []SupplyResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// StockWarning aviso de una reversión recortada en cero.
type StockWarning struct {
	ProductID string `json:"product_id"`
	Reverted  int64  `json:"reverted"`
	Available int64  `json:"available"`
	Message   string `json:"message"`
}

// DeleteSupplyResponse respuesta de DELETE /api/supplies/:id cuando hubo recortes.
type DeleteSupplyResponse struct {
	ID       string         `json:"id"`
	Warnings []StockWarning `json:"warnings"`
}
