package order

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

// LifecycleUseCase orquesta el ciclo de vida de la orden de compra:
// creación, registro de pagos, entrega y completación con abono al stock.
// Pagos y completaciones sobre la misma orden se serializan con bloqueo de
// fila sobre el encabezado (SELECT FOR UPDATE).
type LifecycleUseCase struct {
	txRunner   stock.TxRunner
	ledger     *stock.LedgerUseCase
	orderRepo  repository.PurchaseOrderRepository
	branchRepo repository.BranchRepository
}

// NewLifecycleUseCase construye el caso de uso.
func NewLifecycleUseCase(
	txRunner stock.TxRunner,
	ledger *stock.LedgerUseCase,
	orderRepo repository.PurchaseOrderRepository,
	branchRepo repository.BranchRepository,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		txRunner:   txRunner,
		ledger:     ledger,
		orderRepo:  orderRepo,
		branchRepo: branchRepo,
	}
}

// ItemInput renglón para crear una orden. BranchDestinationID puede quedar
// vacío y resolverse en la completación.
type ItemInput struct {
	ProductID           string
	ProductName         string
	Quantity            decimal.Decimal
	PurchasePrice       decimal.Decimal
	BranchDestinationID string
}

// CreateInput entrada para crear una orden de compra.
type CreateInput struct {
	SupplierName         string
	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time
	Items                []ItemInput
}

// Create valida y persiste una nueva orden en estado ordered.
// TotalAmount se deriva de la suma de subtotales de los renglones.
func (uc *LifecycleUseCase) Create(ctx context.Context, in CreateInput) (*entity.PurchaseOrder, error) {
	if in.SupplierName == "" || in.OrderDate.IsZero() || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.ProductName == "" {
			return nil, domain.ErrInvalidInput
		}
		if !it.Quantity.GreaterThan(decimal.Zero) || !it.PurchasePrice.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if it.BranchDestinationID != "" {
			branch, err := uc.branchRepo.GetByID(it.BranchDestinationID)
			if err != nil {
				return nil, err
			}
			if branch == nil {
				return nil, domain.ErrNotFound
			}
		}
	}

	now := time.Now()
	order := &entity.PurchaseOrder{
		ID:                   uuid.New().String(),
		SupplierName:         in.SupplierName,
		OrderDate:            in.OrderDate,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		Status:               entity.OrderStatusOrdered,
		AmountPaid:           decimal.Zero,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	for _, it := range in.Items {
		order.Items = append(order.Items, entity.OrderItem{
			ID:                  uuid.New().String(),
			OrderID:             order.ID,
			ProductID:           it.ProductID,
			ProductName:         it.ProductName,
			QuantityOrdered:     it.Quantity,
			QuantityReceived:    decimal.Zero,
			PurchasePrice:       it.PurchasePrice,
			BranchDestinationID: it.BranchDestinationID,
		})
	}
	order.ComputeTotal()

	if err := uc.orderRepo.Create(order); err != nil {
		return nil, err
	}
	return order, nil
}

// RecordPayment abona un pago a la orden. Precondición estricta:
// 0 < amount <= BalanceRemaining; el sobrepago se rechaza con
// ErrInvalidPayment, nunca se recorta. El estado sube a partially_paid o paid
// pero jamás regresa (pagar una orden ya entregada la deja en delivered).
func (uc *LifecycleUseCase) RecordPayment(ctx context.Context, orderID string, amount decimal.Decimal) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(
		_ repository.StockRepository,
		_ repository.StockMovementRepository,
		orderRepo repository.PurchaseOrderRepository,
	) error {
		order, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if !amount.GreaterThan(decimal.Zero) || amount.GreaterThan(order.BalanceRemaining()) {
			return domain.ErrInvalidPayment
		}

		order.AmountPaid = order.AmountPaid.Add(amount)
		if order.BalanceRemaining().IsZero() {
			order.AdvanceStatus(entity.OrderStatusPaid)
		} else {
			order.AdvanceStatus(entity.OrderStatusPartiallyPaid)
		}
		order.UpdatedAt = time.Now()
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReceivedLine cantidad recibida para un renglón en la entrega.
type ReceivedLine struct {
	ItemID           string
	QuantityReceived decimal.Decimal
}

// MarkDelivered registra las cantidades recibidas y marca la orden como
// delivered. Solo es válido desde partially_paid o paid. La entrega parcial es
// legal (recibido <= pedido). No toca el stock: la entrega es un evento
// documental; el stock se abona únicamente en la completación.
func (uc *LifecycleUseCase) MarkDelivered(ctx context.Context, orderID string, lines []ReceivedLine) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(
		_ repository.StockRepository,
		_ repository.StockMovementRepository,
		orderRepo repository.PurchaseOrderRepository,
	) error {
		order, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if order.Status != entity.OrderStatusPartiallyPaid && order.Status != entity.OrderStatusPaid {
			return domain.ErrInvalidTransition
		}

		byID := make(map[string]*entity.OrderItem, len(order.Items))
		for i := range order.Items {
			byID[order.Items[i].ID] = &order.Items[i]
		}
		if len(lines) == 0 {
			// Sin detalle de recepción: se asume entrega completa
			for i := range order.Items {
				order.Items[i].QuantityReceived = order.Items[i].QuantityOrdered
			}
		}
		for _, line := range lines {
			item, ok := byID[line.ItemID]
			if !ok {
				return domain.ErrInvalidInput
			}
			if line.QuantityReceived.LessThan(decimal.Zero) || line.QuantityReceived.GreaterThan(item.QuantityOrdered) {
				return domain.ErrInvalidQuantity
			}
			item.QuantityReceived = line.QuantityReceived
		}
		for i := range order.Items {
			if err := orderRepo.UpdateItem(&order.Items[i]); err != nil {
				return err
			}
		}

		order.AdvanceStatus(entity.OrderStatusDelivered)
		order.UpdatedAt = time.Now()
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ManualLine renglón sustituto para completar una orden sin renglones
// estructurados. Todos los campos son obligatorios.
type ManualLine struct {
	ProductID           string
	ProductName         string
	Quantity            decimal.Decimal
	PurchasePrice       decimal.Decimal
	BranchDestinationID string
}

// CompleteInput entrada para completar una orden. Destinations permite resolver
// sucursales destino diferidas por renglón (itemID -> branchID) en el momento
// de la completación. Manual solo aplica cuando la orden no tiene renglones.
type CompleteInput struct {
	OrderID      string
	Destinations map[string]string
	Manual       *ManualLine
}

// creditPlan renglón ya validado listo para abonar stock.
type creditPlan struct {
	itemID      string // vacío para el renglón manual
	productID   string
	productName string
	branchID    string
	quantity    decimal.Decimal
	unitCost    decimal.Decimal
}

// Complete es la operación crítica del ciclo de vida. Bajo el bloqueo del
// encabezado: verifica idempotencia (una orden completed falla con
// ErrAlreadyCompleted antes de cualquier abono), resuelve y valida TODOS los
// destinos antes del primer credit, abona cada renglón exactamente una vez,
// registra un movimiento de auditoría por abono y recién entonces marca la
// orden como completed. Todo dentro de una sola transacción: si un renglón
// falla, ningún abono queda aplicado y la orden conserva su estado previo.
func (uc *LifecycleUseCase) Complete(ctx context.Context, in CompleteInput) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		movementRepo repository.StockMovementRepository,
		orderRepo repository.PurchaseOrderRepository,
	) error {
		order, err := orderRepo.GetForUpdate(in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if order.IsCompleted() {
			return domain.ErrAlreadyCompleted
		}

		plan, err := uc.buildCreditPlan(order, in)
		if err != nil {
			return err
		}

		now := time.Now()
		for _, p := range plan {
			if _, err := uc.ledger.CreditInTx(stockRepo, stock.CreditInput{
				BranchID:    p.branchID,
				ProductID:   p.productID,
				ProductName: p.productName,
				Quantity:    p.quantity,
				UnitCost:    p.unitCost,
			}, now); err != nil {
				return err
			}
			audit := &entity.StockMovement{
				ID:          uuid.New().String(),
				Kind:        entity.MovementKindOrderReceipt,
				ProductID:   p.productID,
				ProductName: p.productName,
				ToBranchID:  p.branchID,
				Quantity:    p.quantity,
				Status:      entity.MovementStatusApproved,
				Reference:   order.ID,
				CreatedAt:   now,
				ResolvedAt:  &now,
			}
			if err := movementRepo.Create(audit); err != nil {
				return err
			}
		}

		// Persistir destinos resueltos durante la completación
		for i := range order.Items {
			if dest, ok := in.Destinations[order.Items[i].ID]; ok && order.Items[i].BranchDestinationID == "" {
				order.Items[i].BranchDestinationID = dest
				if err := orderRepo.UpdateItem(&order.Items[i]); err != nil {
					return err
				}
			}
		}

		order.AdvanceStatus(entity.OrderStatusCompleted)
		order.UpdatedAt = now
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// buildCreditPlan resuelve destino y cantidad por renglón y valida todo antes
// de mutar nada (todo-o-nada). Con renglones estructurados se abona la
// cantidad recibida si se registró entrega, si no la pedida. Sin renglones se
// exige el sustituto manual completo.
func (uc *LifecycleUseCase) buildCreditPlan(order *entity.PurchaseOrder, in CompleteInput) ([]creditPlan, error) {
	var plan []creditPlan

	if len(order.Items) == 0 {
		manual := in.Manual
		if manual == nil || manual.BranchDestinationID == "" {
			return nil, domain.ErrMissingDestination
		}
		if manual.ProductName == "" {
			return nil, domain.ErrInvalidInput
		}
		if !manual.Quantity.GreaterThan(decimal.Zero) || !manual.PurchasePrice.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if err := uc.requireBranch(manual.BranchDestinationID); err != nil {
			return nil, err
		}
		productID := manual.ProductID
		if productID == "" {
			productID = uuid.New().String()
		}
		return []creditPlan{{
			productID:   productID,
			productName: manual.ProductName,
			branchID:    manual.BranchDestinationID,
			quantity:    manual.Quantity,
			unitCost:    manual.PurchasePrice,
		}}, nil
	}

	for i := range order.Items {
		item := &order.Items[i]
		dest := item.BranchDestinationID
		if dest == "" {
			dest = in.Destinations[item.ID]
		}
		if dest == "" {
			return nil, domain.ErrMissingDestination
		}
		if err := uc.requireBranch(dest); err != nil {
			return nil, err
		}
		quantity := item.QuantityOrdered
		if item.QuantityReceived.GreaterThan(decimal.Zero) {
			quantity = item.QuantityReceived
		}
		productID := item.ProductID
		if productID == "" {
			productID = item.ID
		}
		plan = append(plan, creditPlan{
			itemID:      item.ID,
			productID:   productID,
			productName: item.ProductName,
			branchID:    dest,
			quantity:    quantity,
			unitCost:    item.PurchasePrice,
		})
	}
	return plan, nil
}

// requireBranch valida que la sucursal exista.
func (uc *LifecycleUseCase) requireBranch(branchID string) error {
	branch, err := uc.branchRepo.GetByID(branchID)
	if err != nil {
		return err
	}
	if branch == nil {
		return domain.ErrMissingDestination
	}
	return nil
}

// GetByID devuelve la orden con sus renglones.
func (uc *LifecycleUseCase) GetByID(ctx context.Context, orderID string) (*entity.PurchaseOrder, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// List lista órdenes, opcionalmente filtradas por estado.
func (uc *LifecycleUseCase) List(ctx context.Context, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	return uc.orderRepo.List(status, limit, offset)
}
