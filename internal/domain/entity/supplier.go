package entity

import "time"

// Supplier proveedor de una empresa; (CompanyID, TaxID) es único.
type Supplier struct {
	ID        string
	CompanyID string
	Name      string
	TaxID     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
