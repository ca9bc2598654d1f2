package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body para POST /api/sales.
// SaleDate es opcional (por defecto ahora); Discount es un porcentaje 0..100.
type CreateSaleRequest struct {
	BuyerName string          `json:"buyer_name" validate:"required,min=1,max=255"`
	SaleDate  *time.Time      `json:"sale_date"`
	Discount  decimal.Decimal `json:"discount"`
	Products  []LineRequest   `json:"products" validate:"required,min=1,dive"`
}

// SaleLineResponse línea de venta con precios congelados.
type SaleLineResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku,omitempty"`
	ProductName   string          `json:"product_name,omitempty"`
	Quantity      int64           `json:"quantity"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta con líneas e importes calculados.
type SaleResponse struct {
	ID                string             `json:"id"`
	BuyerName         string             `json:"buyer_name"`
	SaleDate          time.Time          `json:"sale_date"`
	Discount          decimal.Decimal    `json:"discount"`
	CreatedBy         string             `json:"created_by"`
	CreatedByName     string             `json:"created_by_name,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	Products          []SaleLineResponse `json:"products"`
	TotalAmount       decimal.Decimal    `json:"total_amount"`
	DiscountAmount    decimal.Decimal    `json:"discount_amount"`
	TotalWithDiscount decimal.Decimal    `json:"total_with_discount"`
	TotalCost         decimal.Decimal    `json:"total_cost"`
	Profit            decimal.Decimal    `json:"profit"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
