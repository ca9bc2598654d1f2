package dto

import "time"

// RegisterRequest entrada para registro (auth). El usuario queda sin empresa.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name" validate:"omitempty,max=150"`
}

// UserResponse salida de un usuario (sin password).
// Role: "owner" | "employee" | "" (sin empresa).
type UserResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	CompanyID      string    `json:"company_id,omitempty"`
	IsCompanyOwner bool      `json:"is_company_owner"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT e información del usuario.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// AddEmployeeRequest entrada para afiliar un usuario existente como empleado.
type AddEmployeeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// EmployeeResponse empleado de la empresa.
type EmployeeResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
