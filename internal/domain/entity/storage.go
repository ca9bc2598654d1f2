package entity

import "time"

// Storage representa el almacén único de una empresa.
type Storage struct {
	ID        string
	CompanyID string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
