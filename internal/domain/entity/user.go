package entity

import (
	"strings"
	"time"
)

// User representa un usuario del sistema. CompanyID vacío = sin empresa.
// Una empresa tiene como máximo un usuario con IsCompanyOwner = true.
type User struct {
	ID             string
	Email          string // identificador único
	PasswordHash   string // bcrypt hash, nunca plano en dominio después de persistir
	FirstName      string
	LastName       string
	CompanyID      string
	IsCompanyOwner bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName devuelve "Nombre Apellido" (o el email si ambos están vacíos).
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Affiliated informa si el usuario pertenece a alguna empresa.
func (u *User) Affiliated() bool {
	return u.CompanyID != ""
}
