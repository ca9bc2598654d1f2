// Package access resuelve la autorización por empresa y rol.
package access

import (
	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
)

// Roles derivados de la afiliación del usuario.
const (
	RoleNone     = ""
	RoleEmployee = "employee"
	RoleOwner    = "owner"
)

// Capability operación que requiere autorización.
type Capability int

const (
	// Operate operaciones del día a día: proveedores, productos, suministros, ventas.
	Operate Capability = iota + 1
	// Administer administración de la empresa: almacén, empleados, datos de la empresa.
	Administer
)

func (c Capability) String() string {
	switch c {
	case Operate:
		return "operate"
	case Administer:
		return "administer"
	default:
		return "unknown"
	}
}

// Actor usuario autenticado con empresa y rol ya resueltos.
type Actor struct {
	UserID    string
	CompanyID string
	Role      string
}

// ActorFromUser deriva el actor a partir del estado persistido del usuario.
func ActorFromUser(u *entity.User) Actor {
	return Actor{UserID: u.ID, CompanyID: u.CompanyID, Role: RoleOf(u)}
}

// RoleOf devuelve owner, employee o vacío según la afiliación.
func RoleOf(u *entity.User) string {
	switch {
	case u == nil || u.CompanyID == "":
		return RoleNone
	case u.IsCompanyOwner:
		return RoleOwner
	default:
		return RoleEmployee
	}
}

// Decision resultado de una verificación de capacidad.
type Decision struct {
	Allowed bool
	Reason  string
	Err     error // error de dominio a devolver cuando Allowed es false
}

func allow() Decision { return Decision{Allowed: true} }

func deny(err error, reason string) Decision {
	return Decision{Allowed: false, Reason: reason, Err: err}
}

// Can verifica si el actor tiene la capacidad a nivel de empresa (sin objeto concreto).
func Can(a Actor, c Capability) Decision {
	if a.UserID == "" {
		return deny(domain.ErrUnauthorized, "usuario no autenticado")
	}
	if a.CompanyID == "" || a.Role == RoleNone {
		return deny(domain.ErrNoCompany, "el usuario no pertenece a ninguna empresa")
	}
	switch c {
	case Operate:
		if a.Role == RoleOwner || a.Role == RoleEmployee {
			return allow()
		}
	case Administer:
		if a.Role == RoleOwner {
			return allow()
		}
		return deny(domain.ErrForbidden, "se requiere ser propietario de la empresa")
	}
	return deny(domain.ErrForbidden, "capacidad desconocida: "+c.String())
}

// CanOn verifica la capacidad sobre un recurso cuya empresa ya fue resuelta.
// Un recurso de otra empresa se reporta como ErrNotFound para no revelar su existencia.
func CanOn(a Actor, c Capability, resourceCompanyID string) Decision {
	if d := Can(a, c); !d.Allowed {
		return d
	}
	if resourceCompanyID == "" || resourceCompanyID != a.CompanyID {
		return deny(domain.ErrNotFound, "el recurso no pertenece a la empresa del usuario")
	}
	return allow()
}

// Require es un atajo que devuelve el error de la decisión (nil si está permitido).
func Require(a Actor, c Capability) error {
	return Can(a, c).Err
}

// RequireOn atajo de CanOn.
func RequireOn(a Actor, c Capability, resourceCompanyID string) error {
	return CanOn(a, c, resourceCompanyID).Err
}
