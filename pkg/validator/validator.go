// Package validator envuelve go-playground/validator y traduce sus errores a un
// *domain.ValidationError indexado por el nombre JSON del campo.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/crm-lite/internal/domain"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// NIT / tax id: 10 o 12 dígitos.
	_ = v.RegisterValidation("taxid", func(fl validator.FieldLevel) bool {
		return IsTaxID(fl.Field().String())
	})
	return v
}

// IsTaxID indica si s tiene exactamente 10 o 12 dígitos.
func IsTaxID(s string) bool {
	if len(s) != 10 && len(s) != 12 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Struct valida data según sus tags `validate`. Devuelve nil o un *domain.ValidationError.
func Struct(data interface{}) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	out := &domain.ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fieldPath(fe.Namespace())] = message(fe)
	}
	return out
}

// fieldPath quita el nombre del struct raíz: "CreateSaleRequest.products[0].quantity" → "products[0].quantity".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "requerido"
	case "email":
		return "email inválido"
	case "taxid":
		return "debe tener 10 o 12 dígitos"
	case "uuid", "uuid4":
		return "debe ser un UUID válido"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return "longitud mínima " + fe.Param()
		}
		return "debe ser mayor o igual a " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return "longitud máxima " + fe.Param()
		}
		return "debe ser menor o igual a " + fe.Param()
	case "gte":
		return "debe ser mayor o igual a " + fe.Param()
	case "lte":
		return "debe ser menor o igual a " + fe.Param()
	case "eqfield":
		return "no coincide con " + strings.ToLower(fe.Param())
	case "datetime":
		return "fecha inválida, formato esperado " + fe.Param()
	default:
		return "no cumple la regla " + fe.Tag()
	}
}

// NormalizeName recorta, colapsa espacios internos y normaliza a NFC.
// "Café" escrito con tilde combinada y precompuesta produce el mismo valor.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
