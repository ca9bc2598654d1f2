package stock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crm-lite/internal/application/dto"
	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/ledger"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
	"github.com/jhoicas/crm-lite/pkg/logger"
	"github.com/jhoicas/crm-lite/pkg/validator"
)

// SupplyUseCase registra entregas de proveedores. Crear y eliminar un suministro mueven el
// stock dentro de una única transacción con los productos bloqueados (SELECT FOR UPDATE).
type SupplyUseCase struct {
	txRunner     TxRunner
	supplyRepo   repository.SupplyRepository
	supplierRepo repository.SupplierRepository
	log          *logger.Logger
}

// NewSupplyUseCase construye el caso de uso.
func NewSupplyUseCase(
	txRunner TxRunner,
	supplyRepo repository.SupplyRepository,
	supplierRepo repository.SupplierRepository,
	log *logger.Logger,
) *SupplyUseCase {
	return &SupplyUseCase{
		txRunner:     txRunner,
		supplyRepo:   supplyRepo,
		supplierRepo: supplierRepo,
		log:          log,
	}
}

// Create valida la entrada, verifica el proveedor y aplica el suministro al stock.
// El precio de compra de cada línea se congela con el valor vigente del producto.
func (uc *SupplyUseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateSupplyRequest) (*dto.SupplyResponse, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	deliveryDate, err := time.Parse(dateLayout, in.DeliveryDate)
	if err != nil {
		return nil, domain.NewValidationError("delivery_date", "fecha inválida")
	}

	supplier, err := uc.supplierRepo.GetByID(ctx, actor.CompanyID, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, in.SupplierID)
	}

	lines := toLines(in.Products)
	supply := &entity.Supply{
		ID:            uuid.New().String(),
		SupplierID:    supplier.ID,
		CompanyID:     actor.CompanyID,
		DeliveryDate:  deliveryDate,
		InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
		Notes:         in.Notes,
		CreatedBy:     actor.UserID,
		CreatedAt:     time.Now(),
	}

	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		supplyRepo repository.SupplyRepository,
		_ repository.SaleRepository,
	) error {
		ids := ledger.ProductIDs(lines)
		products, err := lockProducts(ctx, productRepo, actor.CompanyID, ids)
		if err != nil {
			return err
		}
		applied, err := ledger.ApplySupply(actor.CompanyID, products, lines)
		if err != nil {
			return err
		}
		if err := saveQuantities(ctx, productRepo, products, ids); err != nil {
			return err
		}
		for i := range applied {
			applied[i].ID = uuid.New().String()
			applied[i].SupplyID = supply.ID
		}
		supply.Lines = applied
		return supplyRepo.Create(ctx, supply)
	})
	if err != nil {
		return nil, err
	}

	actorLog(ctx, uc.log, actor).Info().
		Str("supply_id", supply.ID).
		Int("lines", len(supply.Lines)).
		Str("total_cost", supply.TotalCost().String()).
		Msg("suministro registrado")

	return uc.reload(ctx, actor.CompanyID, supply)
}

// GetByID obtiene un suministro de la empresa del actor con sus líneas.
func (uc *SupplyUseCase) GetByID(ctx context.Context, actor access.Actor, id string) (*dto.SupplyResponse, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	s, err := uc.supplyRepo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOn(actor, access.Operate, supplyCompany(s)); err != nil {
		return nil, err
	}
	return toSupplyResponse(s), nil
}

// List lista los suministros de la empresa (más recientes primero).
func (uc *SupplyUseCase) List(ctx context.Context, actor access.Actor, page dto.PageRequest) (*dto.SupplyListResponse, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.supplyRepo.ListByCompany(ctx, actor.CompanyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplyResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplyResponse(s))
	}
	return &dto.SupplyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// UpdateHeader modifica fecha de entrega, número de factura o notas. Las líneas no se tocan.
func (uc *SupplyUseCase) UpdateHeader(ctx context.Context, actor access.Actor, id string, in dto.UpdateSupplyRequest) (*dto.SupplyResponse, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	s, err := uc.supplyRepo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOn(actor, access.Operate, supplyCompany(s)); err != nil {
		return nil, err
	}
	if in.DeliveryDate != nil {
		d, err := time.Parse(dateLayout, *in.DeliveryDate)
		if err != nil {
			return nil, domain.NewValidationError("delivery_date", "fecha inválida")
		}
		s.DeliveryDate = d
	}
	if in.InvoiceNumber != nil {
		s.InvoiceNumber = strings.TrimSpace(*in.InvoiceNumber)
	}
	if in.Notes != nil {
		s.Notes = *in.Notes
	}
	if err := uc.supplyRepo.UpdateHeader(ctx, s); err != nil {
		return nil, err
	}
	return toSupplyResponse(s), nil
}

// Delete revierte el suministro en el stock y elimina cabecera y líneas en una sola transacción.
// Si un producto ya no tiene las unidades recibidas (se vendieron), su cantidad queda en 0 y
// el recorte se devuelve como advertencia; no es un error.
func (uc *SupplyUseCase) Delete(ctx context.Context, actor access.Actor, id string) (*dto.DeleteSupplyResponse, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	var clamps []ledger.Clamp
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		supplyRepo repository.SupplyRepository,
		_ repository.SaleRepository,
	) error {
		s, err := supplyRepo.GetForUpdate(ctx, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if err := access.RequireOn(actor, access.Operate, supplyCompany(s)); err != nil {
			return err
		}
		ids := supplyProductIDs(s.Lines)
		products, err := lockProducts(ctx, productRepo, actor.CompanyID, ids)
		if err != nil {
			return err
		}
		clamps, err = ledger.ReverseSupply(actor.CompanyID, products, s.Lines)
		if err != nil {
			return err
		}
		if err := saveQuantities(ctx, productRepo, products, ids); err != nil {
			return err
		}
		return supplyRepo.Delete(ctx, s.ID)
	})
	if err != nil {
		return nil, err
	}

	log := actorLog(ctx, uc.log, actor)
	for _, c := range clamps {
		log.Warn().
			Str("supply_id", id).
			Str("product_id", c.ProductID).
			Int64("reverted", c.Reverted).
			Int64("available", c.Available).
			Int64("lost", c.Lost()).
			Msg("reversión de suministro recortada en cero")
	}
	log.Info().Str("supply_id", id).Msg("suministro eliminado")

	if len(clamps) == 0 {
		return nil, nil
	}
	return &dto.DeleteSupplyResponse{ID: id, Warnings: toWarnings(clamps)}, nil
}

// reload relee el suministro para incluir nombres de proveedor, creador y productos.
func (uc *SupplyUseCase) reload(ctx context.Context, companyID string, s *entity.Supply) (*dto.SupplyResponse, error) {
	stored, err := uc.supplyRepo.GetByID(ctx, companyID, s.ID)
	if err != nil || stored == nil {
		return toSupplyResponse(s), nil
	}
	return toSupplyResponse(stored), nil
}

func supplyCompany(s *entity.Supply) string {
	if s == nil {
		return ""
	}
	return s.CompanyID
}

func supplyProductIDs(lines []entity.SupplyLine) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}
