package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un movimiento de stock.
const (
	MovementStatusPending  = "pending"
	MovementStatusApproved = "approved"
	MovementStatusRejected = "rejected"
)

// Clases de movimiento: traslado entre sucursales o entrada por recepción de orden.
const (
	MovementKindTransfer     = "transfer"
	MovementKindOrderReceipt = "order_receipt"
)

// StockMovement representa una solicitud de traslado entre sucursales o el
// registro de auditoría de una entrada por orden de compra completada.
// Una vez approved o rejected el movimiento es terminal e inmutable.
type StockMovement struct {
	ID           string
	Kind         string
	ProductID    string
	ProductName  string
	FromBranchID string // vacío en entradas por orden de compra
	ToBranchID   string
	Quantity     decimal.Decimal
	Status       string
	Reason       string
	Reference    string // ID de la orden de compra en entradas order_receipt
	RequestedBy  string
	CreatedAt    time.Time
	ResolvedAt   *time.Time
}

// IsTerminal indica si el movimiento ya no admite transiciones.
func (m *StockMovement) IsTerminal() bool {
	return m.Status == MovementStatusApproved || m.Status == MovementStatusRejected
}

// CanTransitionTo valida la máquina de estados: solo pending admite transición
// y solo hacia approved o rejected.
func (m *StockMovement) CanTransitionTo(target string) bool {
	if m.Status != MovementStatusPending {
		return false
	}
	return target == MovementStatusApproved || target == MovementStatusRejected
}
