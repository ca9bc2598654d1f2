package dto

import "time"

// CreateStorageRequest entrada para crear el almacén de la empresa.
type CreateStorageRequest struct {
	Address string `json:"address" validate:"required,min=1,max=255"`
}

// UpdateStorageRequest entrada para actualizar el almacén.
type UpdateStorageRequest struct {
	Address *string `json:"address" validate:"omitempty,min=1,max=255"`
}

// StorageResponse salida de un almacén.
type StorageResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
