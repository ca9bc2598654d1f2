package stock

import (
	"context"

	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/domain/ledger"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
	"github.com/jhoicas/crm-lite/pkg/logger"
)

// actorLog logger de la petición (o base si ctx no trae uno) con el usuario y la empresa del actor.
func actorLog(ctx context.Context, base *logger.Logger, actor access.Actor) *logger.Logger {
	return logger.FromContext(ctx, base).ForActor(actor.UserID, actor.CompanyID)
}

// lockProducts bloquea los productos de la empresa (orden por ID) y los indexa para el libro.
func lockProducts(ctx context.Context, repo repository.ProductRepository, companyID string, ids []string) (ledger.Products, error) {
	list, err := repo.LockByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	return ledger.Index(list), nil
}

// saveQuantities persiste la cantidad resultante de cada producto tocado por la operación.
func saveQuantities(ctx context.Context, repo repository.ProductRepository, products ledger.Products, ids []string) error {
	for _, id := range ids {
		p, ok := products[id]
		if !ok {
			continue
		}
		if err := repo.UpdateQuantity(ctx, id, p.Quantity); err != nil {
			return err
		}
	}
	return nil
}
