package stock

import (
	"context"
	"fmt"

	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
)

// ReceiptUseCase genera el comprobante PDF de una venta.
type ReceiptUseCase struct {
	saleRepo    repository.SaleRepository
	companyRepo repository.CompanyRepository
	generator   ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(saleRepo repository.SaleRepository, companyRepo repository.CompanyRepository, generator ReceiptGenerator) *ReceiptUseCase {
	return &ReceiptUseCase{saleRepo: saleRepo, companyRepo: companyRepo, generator: generator}
}

// SaleReceipt devuelve los bytes del PDF y el nombre de archivo sugerido.
func (uc *ReceiptUseCase) SaleReceipt(ctx context.Context, actor access.Actor, saleID string) ([]byte, string, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, "", err
	}
	sale, err := uc.saleRepo.GetByID(ctx, actor.CompanyID, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener venta: %w", err)
	}
	if err := access.RequireOn(actor, access.Operate, saleCompany(sale)); err != nil {
		return nil, "", err
	}
	company, err := uc.companyRepo.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}
	pdf, err := uc.generator.SaleReceipt(ctx, company, sale)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("venta_%s.pdf", sale.ID[:min(8, len(sale.ID))]), nil
}
