package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrProductInactive    = errors.New("producto inactivo")
	ErrQuantityLimit      = errors.New("la cantidad excede el máximo permitido")

	// Ciclo usuario ↔ empresa.
	ErrNoCompany         = errors.New("el usuario no pertenece a ninguna empresa")
	ErrAlreadyAffiliated = errors.New("el usuario ya pertenece a una empresa")
	ErrOwnerNotRemovable = errors.New("el propietario de la empresa no puede ser eliminado como empleado")
	ErrStorageMissing    = errors.New("la empresa no tiene almacén")
	ErrStorageExists     = errors.New("la empresa ya tiene almacén")
)

// StockError agrupa los conflictos por producto de una operación de stock.
// Items: product_id -> motivo. Cada producto tiene además su tipo de conflicto
// (ErrInsufficientStock, ErrProductInactive o ErrQuantityLimit) y errors.Is responde
// true para cada tipo presente.
type StockError struct {
	Items map[string]string
	kinds map[string]error
}

// NewStockError construye un StockError vacío.
func NewStockError() *StockError {
	return &StockError{Items: make(map[string]string), kinds: make(map[string]error)}
}

// Add registra el tipo y el motivo del conflicto para un producto.
func (e *StockError) Add(productID string, kind error, reason string) {
	e.Items[productID] = reason
	e.kinds[productID] = kind
}

// Empty indica si no se registró ningún conflicto.
func (e *StockError) Empty() bool {
	return e == nil || len(e.Items) == 0
}

// Kind devuelve el tipo de conflicto dominante: falta de stock primero, luego producto
// inactivo, luego límite de cantidad.
func (e *StockError) Kind() error {
	for _, k := range []error{ErrInsufficientStock, ErrProductInactive, ErrQuantityLimit} {
		for _, kind := range e.kinds {
			if kind == k {
				return k
			}
		}
	}
	return ErrInsufficientStock
}

func (e *StockError) Error() string {
	ids := make([]string, 0, len(e.Items))
	for id := range e.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s: %s", id, e.Items[id]))
	}
	return fmt.Sprintf("%s (%s)", e.Kind().Error(), strings.Join(parts, "; "))
}

func (e *StockError) Unwrap() []error {
	var out []error
	for _, k := range []error{ErrInsufficientStock, ErrProductInactive, ErrQuantityLimit} {
		for _, kind := range e.kinds {
			if kind == k {
				out = append(out, k)
				break
			}
		}
	}
	return out
}

// ValidationError errores de entrada por campo. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError construye un ValidationError con un único campo.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s (%s)", ErrInvalidInput.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
