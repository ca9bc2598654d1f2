package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del almacén de una empresa.
// Quantity inicia en 0 y solo cambia vía el libro de stock (suministros y ventas).
type Product struct {
	ID            string
	StorageID     string
	CompanyID     string // resuelto vía storages.company_id, no se persiste en products
	SKU           string // único
	Name          string
	Description   string
	Quantity      int64
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
