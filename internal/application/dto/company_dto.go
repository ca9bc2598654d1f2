package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa. El usuario que la crea queda como propietario.
type CreateCompanyRequest struct {
	TaxID string `json:"tax_id" validate:"required,taxid"`
	Name  string `json:"name" validate:"required,min=1,max=200"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	TaxID *string `json:"tax_id" validate:"omitempty,taxid"`
	Name  *string `json:"name" validate:"omitempty,min=1,max=200"`
}

// CompanyResponse salida de una empresa.
// Owner se muestra como "Nombre Apellido (email)".
type CompanyResponse struct {
	ID        string    `json:"id"`
	TaxID     string    `json:"tax_id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
