package stock

import (
	"context"

	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de stock y
// del ciclo de vida de órdenes: credit/debit individuales, aprobaciones de
// traslado y completaciones multi-renglón comparten este límite transaccional.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		movementRepo repository.StockMovementRepository,
		orderRepo repository.PurchaseOrderRepository,
	) error) error
}
