package entity

import "time"

// Company representa una empresa/tenant del sistema. Posee exactamente un Storage (1:1).
type Company struct {
	ID        string
	TaxID     string // identificador fiscal de 10 o 12 dígitos, único
	Name      string // único
	CreatedAt time.Time
	UpdatedAt time.Time
}
