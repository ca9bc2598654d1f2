package stock

import (
	"context"

	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback: ninguna cantidad ni fila queda modificada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		supplyRepo repository.SupplyRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// ReceiptGenerator genera el comprobante imprimible de una venta.
type ReceiptGenerator interface {
	SaleReceipt(ctx context.Context, company *entity.Company, sale *entity.Sale) ([]byte, error)
}
