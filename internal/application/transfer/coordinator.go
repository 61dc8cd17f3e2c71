package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/gestion-pro/internal/application/stock"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// CoordinatorUseCase gestiona traslados de stock entre sucursales con la
// máquina de estados pending -> approved | rejected.
//
// Política de reserva optimista: la solicitud NO descuenta stock; solo valida
// disponibilidad como cortesía. El descuento autoritativo ocurre en Approve
// bajo bloqueo de fila, por lo que dos solicitudes pendientes pueden parecer
// válidas contra la misma existencia y solo la primera aprobación gana; la
// perdedora falla con ErrInsufficientStock y el movimiento sigue pending.
type CoordinatorUseCase struct {
	txRunner     stock.TxRunner
	ledger       *stock.LedgerUseCase
	stockRepo    repository.StockRepository
	movementRepo repository.StockMovementRepository
	branchRepo   repository.BranchRepository
}

// NewCoordinatorUseCase construye el caso de uso.
func NewCoordinatorUseCase(
	txRunner stock.TxRunner,
	ledger *stock.LedgerUseCase,
	stockRepo repository.StockRepository,
	movementRepo repository.StockMovementRepository,
	branchRepo repository.BranchRepository,
) *CoordinatorUseCase {
	return &CoordinatorUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		branchRepo:   branchRepo,
	}
}

// RequestInput entrada para solicitar un traslado.
type RequestInput struct {
	ProductID    string
	FromBranchID string
	ToBranchID   string
	Quantity     decimal.Decimal
	Reason       string
	RequestedBy  string
}

// Request crea una solicitud de traslado en estado pending sin mover stock.
// Valida ruta (origen != destino), cantidad positiva, existencia de las
// sucursales y disponibilidad en origen al momento de la solicitud.
func (uc *CoordinatorUseCase) Request(ctx context.Context, in RequestInput) (*entity.StockMovement, error) {
	if in.FromBranchID == in.ToBranchID {
		return nil, domain.ErrInvalidRoute
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	fromBranch, err := uc.branchRepo.GetByID(in.FromBranchID)
	if err != nil {
		return nil, err
	}
	toBranch, err := uc.branchRepo.GetByID(in.ToBranchID)
	if err != nil {
		return nil, err
	}
	if fromBranch == nil || toBranch == nil {
		return nil, domain.ErrNotFound
	}

	item, err := uc.stockRepo.Get(in.FromBranchID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.Quantity.LessThan(in.Quantity) {
		return nil, domain.ErrInsufficientStock
	}

	movement := &entity.StockMovement{
		ID:           uuid.New().String(),
		Kind:         entity.MovementKindTransfer,
		ProductID:    in.ProductID,
		ProductName:  item.ProductName,
		FromBranchID: in.FromBranchID,
		ToBranchID:   in.ToBranchID,
		Quantity:     in.Quantity,
		Status:       entity.MovementStatusPending,
		Reason:       in.Reason,
		RequestedBy:  in.RequestedBy,
		CreatedAt:    time.Now(),
	}
	if err := uc.movementRepo.Create(movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// Approve transiciona pending -> approved y ejecuta debit en origen seguido de
// credit en destino como una sola unidad transaccional. Si el debit falla
// (el stock cambió desde la solicitud) la aprobación falla con
// ErrInsufficientStock, nada se descuenta y el movimiento permanece pending.
func (uc *CoordinatorUseCase) Approve(ctx context.Context, movementID string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.PurchaseOrderRepository,
	) error {
		movement, err := movementRepo.GetForUpdate(movementID)
		if err != nil {
			return err
		}
		if movement == nil {
			return domain.ErrMovementNotFound
		}
		if !movement.CanTransitionTo(entity.MovementStatusApproved) {
			return domain.ErrInvalidTransition
		}

		now := time.Now()
		source, err := uc.ledger.DebitInTx(stockRepo, movement.FromBranchID, movement.ProductID, movement.Quantity, now)
		if err != nil {
			return err
		}
		_, err = uc.ledger.CreditInTx(stockRepo, stock.CreditInput{
			BranchID:    movement.ToBranchID,
			ProductID:   movement.ProductID,
			ProductName: source.ProductName,
			Quantity:    movement.Quantity,
			UnitCost:    source.UnitPrice,
		}, now)
		if err != nil {
			return err
		}

		movement.Status = entity.MovementStatusApproved
		movement.ResolvedAt = &now
		if err := movementRepo.Update(movement); err != nil {
			return err
		}
		out = movement
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject transiciona pending -> rejected sin efectos sobre el stock.
func (uc *CoordinatorUseCase) Reject(ctx context.Context, movementID string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		_ repository.StockRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.PurchaseOrderRepository,
	) error {
		movement, err := movementRepo.GetForUpdate(movementID)
		if err != nil {
			return err
		}
		if movement == nil {
			return domain.ErrMovementNotFound
		}
		if !movement.CanTransitionTo(entity.MovementStatusRejected) {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		movement.Status = entity.MovementStatusRejected
		movement.ResolvedAt = &now
		if err := movementRepo.Update(movement); err != nil {
			return err
		}
		out = movement
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID devuelve un movimiento por ID.
func (uc *CoordinatorUseCase) GetByID(ctx context.Context, movementID string) (*entity.StockMovement, error) {
	movement, err := uc.movementRepo.GetByID(movementID)
	if err != nil {
		return nil, err
	}
	if movement == nil {
		return nil, domain.ErrMovementNotFound
	}
	return movement, nil
}

// List lista movimientos, opcionalmente filtrados por estado.
func (uc *CoordinatorUseCase) List(ctx context.Context, status string, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movementRepo.List(status, limit, offset)
}

// ListByBranch lista los movimientos donde la sucursal participa como origen o
// destino (traslados y entradas por orden de compra).
func (uc *CoordinatorUseCase) ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movementRepo.ListByBranch(branchID, limit, offset)
}

// ListByProduct lista el historial de movimientos de un producto.
func (uc *CoordinatorUseCase) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movementRepo.ListByProduct(productID, limit, offset)
}
