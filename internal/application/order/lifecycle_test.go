package order_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/gestion-pro/internal/application/order"
	"github.com/tu-usuario/gestion-pro/internal/application/stock"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/infrastructure/memory"
)

const (
	branchBodega = "00000000-0000-0000-0000-0000000000d1"
	branchTienda = "00000000-0000-0000-0000-0000000000d2"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fixture agrupa el caso de uso con los repos que los tests inspeccionan.
type fixture struct {
	lifecycle    *order.LifecycleUseCase
	ledger       *stock.LedgerUseCase
	orderRepo    *memory.PurchaseOrderRepo
	movementRepo *memory.StockMovementRepo
}

// newFixture construye el ciclo de vida sobre el store en memoria con dos
// sucursales registradas.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	txRunner := memory.NewTxRunner(store)
	branchRepo := memory.NewBranchRepository(store)

	now := time.Now()
	for _, b := range []*entity.Branch{
		{ID: branchBodega, Name: "Bodega Central", CreatedAt: now, UpdatedAt: now},
		{ID: branchTienda, Name: "Tienda Principal", CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, branchRepo.Create(b))
	}

	ledger := stock.NewLedgerUseCase(txRunner, memory.NewStockRepository(store))
	orderRepo := memory.NewPurchaseOrderRepository(store)
	return &fixture{
		lifecycle:    order.NewLifecycleUseCase(txRunner, ledger, orderRepo, branchRepo),
		ledger:       ledger,
		orderRepo:    orderRepo,
		movementRepo: memory.NewStockMovementRepository(store),
	}
}

// createOrder crea una orden de un renglón: 10 unidades a 100 (total 1000).
func (f *fixture) createOrder(t *testing.T, destination string) *entity.PurchaseOrder {
	t.Helper()
	o, err := f.lifecycle.Create(context.Background(), order.CreateInput{
		SupplierName: "Distribuidora El Sol",
		OrderDate:    time.Now(),
		Items: []order.ItemInput{{
			ProductID:           "SKU-200",
			ProductName:         "Pintura blanca 1gal",
			Quantity:            dec("10"),
			PurchasePrice:       dec("100"),
			BranchDestinationID: destination,
		}},
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) quantityAt(t *testing.T, branchID, productID string) decimal.Decimal {
	t.Helper()
	item, err := f.ledger.Get(context.Background(), branchID, productID)
	if err != nil {
		require.ErrorIs(t, err, domain.ErrNotFound)
		return decimal.Zero
	}
	return item.Quantity
}

// payUntilPaid deja la orden en estado paid.
func (f *fixture) payUntilPaid(t *testing.T, orderID string) {
	t.Helper()
	o, err := f.lifecycle.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	_, err = f.lifecycle.RecordPayment(context.Background(), orderID, o.BalanceRemaining())
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Create
// ──────────────────────────────────────────────────────────────────────────────

func TestLifecycle_Create_OrdenNueva(t *testing.T) {
	f := newFixture(t)

	o := f.createOrder(t, branchBodega)

	assert.Equal(t, entity.OrderStatusOrdered, o.Status)
	assert.True(t, dec("1000").Equal(o.TotalAmount),
		"el total debe derivarse de los renglones")
	assert.True(t, o.AmountPaid.IsZero())
	require.Len(t, o.Items, 1)
	assert.NotEmpty(t, o.Items[0].ID)
	assert.True(t, o.Items[0].QuantityReceived.IsZero())
}

func TestLifecycle_Create_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Sin proveedor
	_, err := f.lifecycle.Create(ctx, order.CreateInput{
		OrderDate: time.Now(),
		Items:     []order.ItemInput{{ProductName: "x", Quantity: dec("1"), PurchasePrice: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Sin renglones
	_, err = f.lifecycle.Create(ctx, order.CreateInput{SupplierName: "Proveedor", OrderDate: time.Now()})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Cantidad no positiva
	_, err = f.lifecycle.Create(ctx, order.CreateInput{
		SupplierName: "Proveedor",
		OrderDate:    time.Now(),
		Items:        []order.ItemInput{{ProductName: "x", Quantity: decimal.Zero, PurchasePrice: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Sucursal destino inexistente
	_, err = f.lifecycle.Create(ctx, order.CreateInput{
		SupplierName: "Proveedor",
		OrderDate:    time.Now(),
		Items: []order.ItemInput{{
			ProductName: "x", Quantity: dec("1"), PurchasePrice: dec("1"),
			BranchDestinationID: "00000000-0000-0000-0000-0000000000ff",
		}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RecordPayment
// ──────────────────────────────────────────────────────────────────────────────

// Secuencia completa de pagos: 300 sobre 1000 deja partially_paid, un pago que
// excede el saldo se rechaza sin recortar, y el pago exacto del saldo deja paid.
func TestLifecycle_RecordPayment_Secuencia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, branchBodega)

	paid, err := f.lifecycle.RecordPayment(ctx, o.ID, dec("300"))
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPartiallyPaid, paid.Status)
	assert.True(t, dec("700").Equal(paid.BalanceRemaining()))

	// Sobrepago: se rechaza entero, jamás se recorta
	_, err = f.lifecycle.RecordPayment(ctx, o.ID, dec("800"))
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)

	current, err := f.lifecycle.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, dec("300").Equal(current.AmountPaid),
		"el pago rechazado no debe haber mutado la orden")

	paid, err = f.lifecycle.RecordPayment(ctx, o.ID, dec("700"))
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, paid.Status)
	assert.True(t, paid.BalanceRemaining().IsZero())

	// Orden saldada: cualquier pago adicional es inválido
	_, err = f.lifecycle.RecordPayment(ctx, o.ID, dec("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
}

func TestLifecycle_RecordPayment_MontoInvalido(t *testing.T) {
	f := newFixture(t)
	o := f.createOrder(t, branchBodega)

	for _, amount := range []decimal.Decimal{decimal.Zero, dec("-100")} {
		_, err := f.lifecycle.RecordPayment(context.Background(), o.ID, amount)
		assert.ErrorIs(t, err, domain.ErrInvalidPayment)
	}
}

func TestLifecycle_RecordPayment_OrdenInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.lifecycle.RecordPayment(context.Background(), "no-existe", dec("100"))
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

// Pagos concurrentes sobre la misma orden se serializan: nada se pierde ni se
// aplica dos veces.
func TestLifecycle_RecordPayment_Concurrentes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, branchBodega) // total 1000

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.lifecycle.RecordPayment(ctx, o.ID, dec("100"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := f.lifecycle.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(final.AmountPaid),
		"10 pagos de 100 deben sumar exactamente 1000")
	assert.Equal(t, entity.OrderStatusPaid, final.Status)
}

// El estado es monótono: pagar el saldo de una orden ya entregada no la regresa
// a paid.
func TestLifecycle_RecordPayment_DespuesDeEntregaNoRegresa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, branchBodega)

	_, err := f.lifecycle.RecordPayment(ctx, o.ID, dec("300"))
	require.NoError(t, err)
	_, err = f.lifecycle.MarkDelivered(ctx, o.ID, nil)
	require.NoError(t, err)

	paid, err := f.lifecycle.RecordPayment(ctx, o.ID, dec("700"))
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, paid.Status,
		"la orden entregada debe permanecer delivered aunque se salde")
	assert.True(t, paid.BalanceRemaining().IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests MarkDelivered
// ──────────────────────────────────────────────────────────────────────────────

func TestLifecycle_MarkDelivered_DesdeOrderedEsInvalido(t *testing.T) {
	f := newFixture(t)
	o := f.createOrder(t, branchBodega)

	_, err := f.lifecycle.MarkDelivered(context.Background(), o.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestLifecycle_MarkDelivered_SinDetalleAsumeRecepcionCompleta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, branchBodega)
	f.payUntilPaid(t, o.ID)

	delivered, err := f.lifecycle.MarkDelivered(ctx, o.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusDelivered, delivered.Status)
	assert.True(t, dec("10").Equal(delivered.Items[0].QuantityReceived))

	// La entrega es documental: el stock no se toca hasta la completación
	assert.True(t, f.quantityAt(t, branchBodega, "SKU-200").IsZero(),
		"la entrega no debe abonar stock")
}

func TestLifecycle_MarkDelivered_RecepcionParcial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, branchBodega)
	f.payUntilPaid(t, o.ID)

	delivered, err := f.lifecycle.MarkDelivered(ctx, o.ID, []order.ReceivedLine{
		{ItemID: o.Items[0].ID, QuantityReceived: dec("7")},
	})
	require.NoError(t, err)
	assert.True(t, dec("7").Equal(delivered.Items[0].QuantityReceived),
		"recibir menos de lo pedido es legal")
}

func TestLifecycle_MarkDelivered_RecibidoMayorAlPedido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, branchBodega)
	f.payUntilPaid(t, o.ID)

	_, err := f.lifecycle.MarkDelivered(ctx, o.ID, []order.ReceivedLine{
		{ItemID: o.Items[0].ID, QuantityReceived: dec("11")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestLifecycle_MarkDelivered_RenglonDesconocido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, branchBodega)
	f.payUntilPaid(t, o.ID)

	_, err := f.lifecycle.MarkDelivered(ctx, o.ID, []order.ReceivedLine{
		{ItemID: "renglon-fantasma", QuantityReceived: dec("1")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Complete
// ──────────────────────────────────────────────────────────────────────────────

func TestLifecycle_Complete_AbonaStockYRegistraAuditoria(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, branchBodega)
	f.payUntilPaid(t, o.ID)
	_, err := f.lifecycle.MarkDelivered(ctx, o.ID, nil)
	require.NoError(t, err)

	completed, err := f.lifecycle.Complete(ctx, order.CompleteInput{OrderID: o.ID})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusCompleted, completed.Status)
	assert.True(t, dec("10").Equal(f.quantityAt(t, branchBodega, "SKU-200")))

	// El costo de entrada es el precio de compra del renglón
	item, err := f.ledger.Get(ctx, branchBodega, "SKU-200")
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(item.UnitPrice))

	// Cada abono deja un movimiento de auditoría referenciando la orden
	audits, err := f.movementRepo.ListByProduct("SKU-200", 20, 0)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, entity.MovementKindOrderReceipt, audits[0].Kind)
	assert.Equal(t, entity.MovementStatusApproved, audits[0].Status)
	assert.Equal(t, o.ID, audits[0].Reference)
	assert.Empty(t, audits[0].FromBranchID, "una entrada por orden no tiene sucursal origen")
}

// Con entrega parcial registrada se abona lo recibido, no lo pedido.
func TestLifecycle_Complete_AbonaCantidadRecibida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, branchBodega)
	f.payUntilPaid(t, o.ID)
	_, err := f.lifecycle.MarkDelivered(ctx, o.ID, []order.ReceivedLine{
		{ItemID: o.Items[0].ID, QuantityReceived: dec("7")},
	})
	require.NoError(t, err)

	_, err = f.lifecycle.Complete(ctx, order.CompleteInput{OrderID: o.ID})
	require.NoError(t, err)

	assert.True(t, dec("7").Equal(f.quantityAt(t, branchBodega, "SKU-200")),
		"debe abonarse la cantidad recibida registrada en la entrega")
}

// Idempotencia: completar dos veces abona el stock exactamente una vez; la
// segunda llamada falla con ErrAlreadyCompleted antes de cualquier abono.
func TestLifecycle_Complete_Idempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, branchBodega)
	f.payUntilPaid(t, o.ID)
	_, err := f.lifecycle.MarkDelivered(ctx, o.ID, nil)
	require.NoError(t, err)

	_, err = f.lifecycle.Complete(ctx, order.CompleteInput{OrderID: o.ID})
	require.NoError(t, err)

	_, err = f.lifecycle.Complete(ctx, order.CompleteInput{OrderID: o.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	assert.True(t, dec("10").Equal(f.quantityAt(t, branchBodega, "SKU-200")),
		"el stock debe abonarse exactamente una vez")

	audits, err := f.movementRepo.ListByProduct("SKU-200", 20, 0)
	require.NoError(t, err)
	assert.Len(t, audits, 1, "no debe duplicarse el movimiento de auditoría")
}

// Todo-o-nada: si un renglón no tiene destino resoluble, ningún renglón se
// abona y la orden conserva su estado previo.
func TestLifecycle_Complete_AtomicaConDestinoFaltante(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.lifecycle.Create(ctx, order.CreateInput{
		SupplierName: "Distribuidora El Sol",
		OrderDate:    time.Now(),
		Items: []order.ItemInput{
			{ProductID: "SKU-300", ProductName: "Taladro", Quantity: dec("5"), PurchasePrice: dec("200"), BranchDestinationID: branchBodega},
			{ProductID: "SKU-301", ProductName: "Lijadora", Quantity: dec("3"), PurchasePrice: dec("150")}, // sin destino
		},
	})
	require.NoError(t, err)
	f.payUntilPaid(t, o.ID)
	_, err = f.lifecycle.MarkDelivered(ctx, o.ID, nil)
	require.NoError(t, err)

	_, err = f.lifecycle.Complete(ctx, order.CompleteInput{OrderID: o.ID})
	assert.ErrorIs(t, err, domain.ErrMissingDestination)

	// Ningún abono aplicado, ni siquiera el del renglón válido
	assert.True(t, f.quantityAt(t, branchBodega, "SKU-300").IsZero(),
		"la completación fallida no debe abonar ningún renglón")

	current, err := f.lifecycle.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, current.Status,
		"la orden debe conservar su estado previo")
}

// Los destinos diferidos se resuelven en la completación y quedan persistidos.
func TestLifecycle_Complete_ResuelveDestinosDiferidos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, "") // renglón sin destino
	f.payUntilPaid(t, o.ID)
	_, err := f.lifecycle.MarkDelivered(ctx, o.ID, nil)
	require.NoError(t, err)

	completed, err := f.lifecycle.Complete(ctx, order.CompleteInput{
		OrderID:      o.ID,
		Destinations: map[string]string{o.Items[0].ID: branchTienda},
	})
	require.NoError(t, err)

	assert.Equal(t, branchTienda, completed.Items[0].BranchDestinationID,
		"el destino resuelto debe quedar en el renglón")
	assert.True(t, dec("10").Equal(f.quantityAt(t, branchTienda, "SKU-200")))

	stored, err := f.lifecycle.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, branchTienda, stored.Items[0].BranchDestinationID,
		"el destino resuelto debe persistirse")
}

// Destino apuntando a una sucursal inexistente cuenta como destino faltante.
func TestLifecycle_Complete_DestinoInexistente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, "")
	f.payUntilPaid(t, o.ID)

	_, err := f.lifecycle.Complete(ctx, order.CompleteInput{
		OrderID:      o.ID,
		Destinations: map[string]string{o.Items[0].ID: "00000000-0000-0000-0000-0000000000ff"},
	})
	assert.ErrorIs(t, err, domain.ErrMissingDestination)
}

func TestLifecycle_Complete_OrdenInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.lifecycle.Complete(context.Background(), order.CompleteInput{OrderID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Complete con renglón manual (órdenes sin renglones estructurados)
// ──────────────────────────────────────────────────────────────────────────────

// seedLegacyOrder persiste directamente una orden sin renglones, como las que
// quedaron de flujos anteriores a los renglones estructurados.
func seedLegacyOrder(t *testing.T, f *fixture) *entity.PurchaseOrder {
	t.Helper()
	now := time.Now()
	o := &entity.PurchaseOrder{
		ID:           uuid.New().String(),
		SupplierName: "Proveedor Legado",
		OrderDate:    now,
		Status:       entity.OrderStatusPaid,
		AmountPaid:   dec("500"),
		TotalAmount:  dec("500"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.orderRepo.Create(o))
	return o
}

func TestLifecycle_Complete_RenglonManual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := seedLegacyOrder(t, f)

	completed, err := f.lifecycle.Complete(ctx, order.CompleteInput{
		OrderID: o.ID,
		Manual: &order.ManualLine{
			ProductID:           "SKU-900",
			ProductName:         "Manguera 10m",
			Quantity:            dec("25"),
			PurchasePrice:       dec("20"),
			BranchDestinationID: branchBodega,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusCompleted, completed.Status)
	assert.True(t, dec("25").Equal(f.quantityAt(t, branchBodega, "SKU-900")))
}

func TestLifecycle_Complete_ManualSinDestino(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := seedLegacyOrder(t, f)

	// Sin renglón manual
	_, err := f.lifecycle.Complete(ctx, order.CompleteInput{OrderID: o.ID})
	assert.ErrorIs(t, err, domain.ErrMissingDestination)

	// Renglón manual sin destino
	_, err = f.lifecycle.Complete(ctx, order.CompleteInput{
		OrderID: o.ID,
		Manual:  &order.ManualLine{ProductName: "Manguera", Quantity: dec("5"), PurchasePrice: dec("10")},
	})
	assert.ErrorIs(t, err, domain.ErrMissingDestination)

	current, err := f.lifecycle.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, current.Status,
		"los intentos fallidos no deben cambiar el estado")
}

func TestLifecycle_Complete_ManualIncompleto(t *testing.T) {
	f := newFixture(t)
	o := seedLegacyOrder(t, f)

	// Destino presente pero sin nombre de producto
	_, err := f.lifecycle.Complete(context.Background(), order.CompleteInput{
		OrderID: o.ID,
		Manual: &order.ManualLine{
			Quantity:            dec("5"),
			PurchasePrice:       dec("10"),
			BranchDestinationID: branchBodega,
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
