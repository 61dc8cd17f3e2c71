package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
	domainstock "github.com/tu-usuario/gestion-pro/internal/domain/stock"
)

// LedgerUseCase es el primitivo de mutación de existencias por sucursal+producto.
// Toda suma/resta de stock del sistema pasa por aquí, dentro de una transacción
// con bloqueo de fila (SELECT FOR UPDATE), de modo que operaciones concurrentes
// sobre el mismo par sucursal+producto se serializan y la cantidad nunca queda
// negativa.
type LedgerUseCase struct {
	txRunner  TxRunner
	stockRepo repository.StockRepository
}

// NewLedgerUseCase construye el caso de uso. stockRepo va atado al pool y solo
// se usa para lecturas; las mutaciones reciben el repo atado a la tx.
func NewLedgerUseCase(txRunner TxRunner, stockRepo repository.StockRepository) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, stockRepo: stockRepo}
}

// CreditInput entrada para Credit.
type CreditInput struct {
	BranchID    string
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
}

// Credit aumenta la existencia del par sucursal+producto, creando la fila si no
// existe. Falla con ErrInvalidQuantity si la cantidad es <= 0.
func (uc *LedgerUseCase) Credit(ctx context.Context, in CreditInput) (*entity.StockItem, error) {
	var out *entity.StockItem
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		_ repository.StockMovementRepository,
		_ repository.PurchaseOrderRepository,
	) error {
		item, err := uc.CreditInTx(stockRepo, in, time.Now())
		if err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreditInTx ejecuta un credit usando el repositorio proporcionado (misma
// transacción del caller). Lo usan la aprobación de traslados y la completación
// de órdenes para componer varios movimientos de forma atómica.
func (uc *LedgerUseCase) CreditInTx(stockRepo repository.StockRepository, in CreditInput, now time.Time) (*entity.StockItem, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	// Bloquea la fila (o fila en cero si es el primer credit del par)
	item, err := stockRepo.GetForUpdate(in.BranchID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if in.ProductName != "" {
		item.ProductName = in.ProductName
	}
	item.UnitPrice = domainstock.WeightedAverageCost(item.Quantity, item.UnitPrice, in.Quantity, in.UnitCost)
	item.Quantity = item.Quantity.Add(in.Quantity)
	item.UpdatedAt = now
	if err := stockRepo.Upsert(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Debit disminuye la existencia del par sucursal+producto. Falla con
// ErrInsufficientStock si la cantidad solicitada supera la disponible al
// momento de la llamada (verificado bajo bloqueo de fila, no best-effort).
func (uc *LedgerUseCase) Debit(ctx context.Context, branchID, productID string, quantity decimal.Decimal) (*entity.StockItem, error) {
	var out *entity.StockItem
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		_ repository.StockMovementRepository,
		_ repository.PurchaseOrderRepository,
	) error {
		item, err := uc.DebitInTx(stockRepo, branchID, productID, quantity, time.Now())
		if err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DebitInTx ejecuta un debit usando el repositorio proporcionado (misma
// transacción del caller).
func (uc *LedgerUseCase) DebitInTx(stockRepo repository.StockRepository, branchID, productID string, quantity decimal.Decimal, now time.Time) (*entity.StockItem, error) {
	if !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	item, err := stockRepo.GetForUpdate(branchID, productID)
	if err != nil {
		return nil, err
	}
	if item.Quantity.LessThan(quantity) {
		return nil, domain.ErrInsufficientStock
	}
	item.Quantity = item.Quantity.Sub(quantity)
	item.UpdatedAt = now
	if err := stockRepo.Upsert(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get devuelve la existencia actual del par sucursal+producto.
// Falla con ErrNotFound si nunca se ha registrado stock para el par.
func (uc *LedgerUseCase) Get(ctx context.Context, branchID, productID string) (*entity.StockItem, error) {
	item, err := uc.stockRepo.Get(branchID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// ListByBranch lista las existencias de una sucursal con paginación.
func (uc *LedgerUseCase) ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.StockItem, error) {
	return uc.stockRepo.ListByBranch(branchID, limit, offset)
}
