package stock

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-lite/internal/application/dto"
	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/ledger"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
	"github.com/jhoicas/crm-lite/pkg/logger"
	"github.com/jhoicas/crm-lite/pkg/validator"
)

var maxDiscount = decimal.NewFromInt(100)

// SaleUseCase registra ventas. La verificación de stock y el descuento ocurren en la misma
// transacción, con los productos bloqueados, para que dos ventas concurrentes no dejen
// cantidades negativas.
type SaleUseCase struct {
	txRunner TxRunner
	saleRepo repository.SaleRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(txRunner TxRunner, saleRepo repository.SaleRepository, log *logger.Logger) *SaleUseCase {
	return &SaleUseCase{txRunner: txRunner, saleRepo: saleRepo, log: log, now: time.Now}
}

// Create valida la venta y la aplica al stock. Si algún producto no tiene stock suficiente la
// venta completa se rechaza con *domain.StockError (una entrada por producto) y nada se modifica.
func (uc *SaleUseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	if in.Discount.IsNegative() || in.Discount.GreaterThan(maxDiscount) {
		return nil, domain.NewValidationError("discount", "debe estar entre 0 y 100")
	}

	now := uc.now()
	saleDate := now
	if in.SaleDate != nil {
		saleDate = *in.SaleDate
	}
	lines := toLines(in.Products)
	sale := &entity.Sale{
		ID:        uuid.New().String(),
		CompanyID: actor.CompanyID,
		BuyerName: strings.TrimSpace(in.BuyerName),
		SaleDate:  saleDate,
		Discount:  in.Discount.Round(2),
		CreatedBy: actor.UserID,
		CreatedAt: now,
	}

	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.SupplyRepository,
		saleRepo repository.SaleRepository,
	) error {
		ids := ledger.ProductIDs(lines)
		products, err := lockProducts(ctx, productRepo, actor.CompanyID, ids)
		if err != nil {
			return err
		}
		applied, err := ledger.ApplySale(actor.CompanyID, products, lines)
		if err != nil {
			return err
		}
		if err := saveQuantities(ctx, productRepo, products, ids); err != nil {
			return err
		}
		for i := range applied {
			applied[i].ID = uuid.New().String()
			applied[i].SaleID = sale.ID
		}
		sale.Lines = applied
		return saleRepo.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	totals := sale.Totals()
	actorLog(ctx, uc.log, actor).Info().
		Str("sale_id", sale.ID).
		Int("lines", len(sale.Lines)).
		Str("total_with_discount", totals.TotalWithDiscount.String()).
		Str("profit", totals.Profit.String()).
		Msg("venta registrada")

	if stored, err := uc.saleRepo.GetByID(ctx, actor.CompanyID, sale.ID); err == nil && stored != nil {
		return toSaleResponse(stored), nil
	}
	return toSaleResponse(sale), nil
}

// GetByID obtiene una venta de la empresa del actor con sus líneas e importes.
func (uc *SaleUseCase) GetByID(ctx context.Context, actor access.Actor, id string) (*dto.SaleResponse, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	s, err := uc.saleRepo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOn(actor, access.Operate, saleCompany(s)); err != nil {
		return nil, err
	}
	return toSaleResponse(s), nil
}

// List lista las ventas de la empresa (más recientes primero).
func (uc *SaleUseCase) List(ctx context.Context, actor access.Actor, page dto.PageRequest) (*dto.SaleListResponse, error) {
	if err := access.Require(actor, access.Operate); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.saleRepo.ListByCompany(ctx, actor.CompanyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSaleResponse(s))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete devuelve al stock las cantidades vendidas y elimina la venta en una sola transacción.
func (uc *SaleUseCase) Delete(ctx context.Context, actor access.Actor, id string) error {
	if err := access.Require(actor, access.Operate); err != nil {
		return err
	}
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.SupplyRepository,
		saleRepo repository.SaleRepository,
	) error {
		s, err := saleRepo.GetForUpdate(ctx, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if err := access.RequireOn(actor, access.Operate, saleCompany(s)); err != nil {
			return err
		}
		ids := saleProductIDs(s.Lines)
		products, err := lockProducts(ctx, productRepo, actor.CompanyID, ids)
		if err != nil {
			return err
		}
		if err := ledger.ReverseSale(actor.CompanyID, products, s.Lines); err != nil {
			return err
		}
		if err := saveQuantities(ctx, productRepo, products, ids); err != nil {
			return err
		}
		return saleRepo.Delete(ctx, s.ID)
	})
	if err != nil {
		return err
	}
	actorLog(ctx, uc.log, actor).Info().Str("sale_id", id).Msg("venta eliminada")
	return nil
}

func saleCompany(s *entity.Sale) string {
	if s == nil {
		return ""
	}
	return s.CompanyID
}

func saleProductIDs(lines []entity.SaleLine) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}
