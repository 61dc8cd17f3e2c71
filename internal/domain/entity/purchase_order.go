package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. El estado es monótono: nunca regresa.
const (
	OrderStatusOrdered       = "ordered"
	OrderStatusPartiallyPaid = "partially_paid"
	OrderStatusPaid          = "paid"
	OrderStatusDelivered     = "delivered"
	OrderStatusCompleted     = "completed"
)

// orderStatusRank define el orden total de los estados para garantizar monotonía.
var orderStatusRank = map[string]int{
	OrderStatusOrdered:       0,
	OrderStatusPartiallyPaid: 1,
	OrderStatusPaid:          2,
	OrderStatusDelivered:     3,
	OrderStatusCompleted:     4,
}

// OrderStatusRank devuelve el rango del estado (-1 si es desconocido).
func OrderStatusRank(status string) int {
	if r, ok := orderStatusRank[status]; ok {
		return r
	}
	return -1
}

// PurchaseOrder representa una orden de compra a proveedor con sus renglones,
// pagos acumulados y estado del ciclo de vida.
// Invariantes: 0 <= AmountPaid <= TotalAmount; BalanceRemaining() >= 0.
type PurchaseOrder struct {
	ID                   string
	SupplierName         string
	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time
	Status               string
	AmountPaid           decimal.Decimal
	TotalAmount          decimal.Decimal
	Items                []OrderItem
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// BalanceRemaining devuelve el saldo pendiente (TotalAmount - AmountPaid).
func (o *PurchaseOrder) BalanceRemaining() decimal.Decimal {
	return o.TotalAmount.Sub(o.AmountPaid)
}

// IsCompleted indica si la orden alcanzó el estado terminal.
func (o *PurchaseOrder) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// AdvanceStatus sube el estado solo si el destino tiene rango mayor al actual.
// Devuelve true si hubo cambio. Mantiene la monotonía: pagar una orden ya
// entregada no la regresa a paid.
func (o *PurchaseOrder) AdvanceStatus(target string) bool {
	if OrderStatusRank(target) > OrderStatusRank(o.Status) {
		o.Status = target
		return true
	}
	return false
}

// ComputeTotal recalcula TotalAmount como la suma de subtotales de los renglones.
func (o *PurchaseOrder) ComputeTotal() {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Subtotal())
	}
	o.TotalAmount = total
}

// OrderItem es un renglón de la orden: producto, cantidad pedida y precio de
// compra. La sucursal destino puede quedar pendiente hasta la completación.
type OrderItem struct {
	ID                  string
	OrderID             string
	ProductID           string
	ProductName         string
	QuantityOrdered     decimal.Decimal
	QuantityReceived    decimal.Decimal
	PurchasePrice       decimal.Decimal
	BranchDestinationID string // vacío = destino sin resolver
}

// Subtotal devuelve QuantityOrdered * PurchasePrice.
func (it *OrderItem) Subtotal() decimal.Decimal {
	return it.QuantityOrdered.Mul(it.PurchasePrice)
}
