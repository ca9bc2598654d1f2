// Package ledger implementa el libro de stock: las cuatro operaciones que mueven
// products.quantity (entrada por suministro, salida por venta y sus reversiones).
//
// Las funciones trabajan sobre productos ya bloqueados (SELECT ... FOR UPDATE) por el
// caller dentro de una transacción. Todas validan primero y mutan después: si alguna
// línea falla, ningún producto queda modificado.
package ledger

import (
	"fmt"
	"math"

	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
)

// MaxQuantity límite de products.quantity y de la cantidad de una línea (columnas INTEGER).
const MaxQuantity int64 = math.MaxInt32

// Line par (producto, cantidad) de una solicitud de suministro o venta.
type Line struct {
	ProductID string
	Quantity  int64
}

// Products índice por ID de los productos bloqueados para la operación.
type Products map[string]*entity.Product

// Index construye el índice a partir de una lista.
func Index(list []*entity.Product) Products {
	out := make(Products, len(list))
	for _, p := range list {
		out[p.ID] = p
	}
	return out
}

// Clamp describe una reversión de suministro recortada en cero:
// se pidió restar Reverted pero solo había Available.
type Clamp struct {
	ProductID string
	Reverted  int64
	Available int64
}

// Lost unidades que no pudieron descontarse.
func (c Clamp) Lost() int64 { return c.Reverted - c.Available }

// ProductIDs devuelve los IDs de producto de las líneas (en el orden recibido).
func ProductIDs(lines []Line) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// validateLines exige al menos una línea, cantidades positivas y productos no repetidos.
func validateLines(lines []Line) error {
	if len(lines) == 0 {
		return domain.NewValidationError("products", "se requiere al menos un producto")
	}
	seen := make(map[string]struct{}, len(lines))
	for i, l := range lines {
		if l.ProductID == "" {
			return domain.NewValidationError(fmt.Sprintf("products[%d].product_id", i), "requerido")
		}
		if l.Quantity < 1 {
			return domain.NewValidationError(fmt.Sprintf("products[%d].quantity", i), "debe ser mayor o igual a 1")
		}
		if l.Quantity > MaxQuantity {
			return domain.NewValidationError(fmt.Sprintf("products[%d].quantity", i), fmt.Sprintf("debe ser menor o igual a %d", MaxQuantity))
		}
		if _, dup := seen[l.ProductID]; dup {
			return domain.NewValidationError(fmt.Sprintf("products[%d].product_id", i), "producto repetido")
		}
		seen[l.ProductID] = struct{}{}
	}
	return nil
}

// lookup resuelve el producto de la línea dentro del alcance de la empresa.
// Un producto ausente o de otra empresa es ErrNotFound (no se revela su existencia).
func lookup(products Products, companyID, productID string) (*entity.Product, error) {
	p, ok := products[productID]
	if !ok || p == nil || p.CompanyID != companyID {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	return p, nil
}

// exceedsLimit indica si sumar add a current supera MaxQuantity. Ambos son >= 0.
func exceedsLimit(current, add int64) bool {
	return add > MaxQuantity-current
}

func limitReason(current, add int64) string {
	return fmt.Sprintf("la cantidad resultante excede %d: actual %d, a sumar %d", MaxQuantity, current, add)
}

// ApplySupply suma la cantidad de cada línea al producto y congela el precio de compra
// vigente en la línea devuelta. Un resultado mayor a MaxQuantity es un conflicto del producto.
func ApplySupply(companyID string, products Products, lines []Line) ([]entity.SupplyLine, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	conflicts := domain.NewStockError()
	for _, l := range lines {
		p, err := lookup(products, companyID, l.ProductID)
		if err != nil {
			return nil, err
		}
		switch {
		case !p.IsActive:
			conflicts.Add(l.ProductID, domain.ErrProductInactive, "producto inactivo")
		case exceedsLimit(p.Quantity, l.Quantity):
			conflicts.Add(l.ProductID, domain.ErrQuantityLimit, limitReason(p.Quantity, l.Quantity))
		}
	}
	if !conflicts.Empty() {
		return nil, conflicts
	}

	out := make([]entity.SupplyLine, 0, len(lines))
	for _, l := range lines {
		p := products[l.ProductID]
		p.Quantity += l.Quantity
		out = append(out, entity.SupplyLine{
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			PurchasePrice: p.PurchasePrice,
			ProductSKU:    p.SKU,
			ProductName:   p.Name,
		})
	}
	return out, nil
}

// ReverseSupply resta la cantidad registrada en cada línea, recortando en cero.
// Devuelve las líneas recortadas para que el caller las reporte; no es un error.
func ReverseSupply(companyID string, products Products, lines []entity.SupplyLine) ([]Clamp, error) {
	for _, l := range lines {
		if _, err := lookup(products, companyID, l.ProductID); err != nil {
			return nil, err
		}
	}
	var clamps []Clamp
	for _, l := range lines {
		p := products[l.ProductID]
		if p.Quantity < l.Quantity {
			clamps = append(clamps, Clamp{ProductID: l.ProductID, Reverted: l.Quantity, Available: p.Quantity})
			p.Quantity = 0
			continue
		}
		p.Quantity -= l.Quantity
	}
	return clamps, nil
}

// CheckSale verifica todas las precondiciones de una venta sin mutar nada.
// Devuelve *domain.StockError con una entrada por cada producto sin stock suficiente.
func CheckSale(companyID string, products Products, lines []Line) error {
	if err := validateLines(lines); err != nil {
		return err
	}
	conflicts := domain.NewStockError()
	for _, l := range lines {
		p, err := lookup(products, companyID, l.ProductID)
		if err != nil {
			return err
		}
		switch {
		case !p.IsActive:
			conflicts.Add(l.ProductID, domain.ErrProductInactive, "producto inactivo")
		case p.Quantity < l.Quantity:
			conflicts.Add(l.ProductID, domain.ErrInsufficientStock, fmt.Sprintf("stock insuficiente: disponible %d, solicitado %d", p.Quantity, l.Quantity))
		}
	}
	if !conflicts.Empty() {
		return conflicts
	}
	return nil
}

// ApplySale descuenta cada línea del stock si todas las precondiciones se cumplen;
// si alguna falla no se modifica ningún producto. Congela precio de venta y de compra.
func ApplySale(companyID string, products Products, lines []Line) ([]entity.SaleLine, error) {
	if err := CheckSale(companyID, products, lines); err != nil {
		return nil, err
	}
	out := make([]entity.SaleLine, 0, len(lines))
	for _, l := range lines {
		p := products[l.ProductID]
		p.Quantity -= l.Quantity
		if p.Quantity < 0 {
			p.Quantity = 0
		}
		out = append(out, entity.SaleLine{
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			SalePrice:     p.SalePrice,
			PurchasePrice: p.PurchasePrice,
			ProductSKU:    p.SKU,
			ProductName:   p.Name,
		})
	}
	return out, nil
}

// ReverseSale devuelve al stock la cantidad de cada línea vendida. Si algún producto
// superaría MaxQuantity la reversión completa se rechaza sin modificar nada.
func ReverseSale(companyID string, products Products, lines []entity.SaleLine) error {
	conflicts := domain.NewStockError()
	for _, l := range lines {
		p, err := lookup(products, companyID, l.ProductID)
		if err != nil {
			return err
		}
		if exceedsLimit(p.Quantity, l.Quantity) {
			conflicts.Add(l.ProductID, domain.ErrQuantityLimit, limitReason(p.Quantity, l.Quantity))
		}
	}
	if !conflicts.Empty() {
		return conflicts
	}
	for _, l := range lines {
		products[l.ProductID].Quantity += l.Quantity
	}
	return nil
}
