package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest renglón para crear una orden de compra.
type OrderItemRequest struct {
	ProductID           string          `json:"product_id,omitempty"`
	ProductName         string          `json:"product_name"`
	Quantity            decimal.Decimal `json:"quantity"`
	PurchasePrice       decimal.Decimal `json:"purchase_price"`
	BranchDestinationID string          `json:"branch_destination_id,omitempty"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	SupplierName         string             `json:"supplier_name"`
	OrderDate            time.Time          `json:"order_date"`
	ExpectedDeliveryDate *time.Time         `json:"expected_delivery_date,omitempty"`
	Items                []OrderItemRequest `json:"items"`
}

// RecordPaymentRequest body para POST /api/orders/{id}/payments.
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ReceivedLineRequest cantidad recibida por renglón en la entrega.
type ReceivedLineRequest struct {
	ItemID           string          `json:"item_id"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
}

// MarkDeliveredRequest body para POST /api/orders/{id}/delivery.
// Sin renglones se asume entrega completa.
type MarkDeliveredRequest struct {
	Lines []ReceivedLineRequest `json:"lines,omitempty"`
}

// ManualLineRequest renglón sustituto para completar órdenes sin renglones
// estructurados. Todos los campos son obligatorios.
type ManualLineRequest struct {
	ProductID           string          `json:"product_id,omitempty"`
	ProductName         string          `json:"product_name"`
	Quantity            decimal.Decimal `json:"quantity"`
	PurchasePrice       decimal.Decimal `json:"purchase_price"`
	BranchDestinationID string          `json:"branch_destination_id"`
}

// CompleteOrderRequest body para POST /api/orders/{id}/complete.
// Destinations resuelve sucursales destino diferidas (item_id -> branch_id).
type CompleteOrderRequest struct {
	Destinations map[string]string  `json:"destinations,omitempty"`
	Manual       *ManualLineRequest `json:"manual,omitempty"`
}

// OrderItemResponse representación HTTP de un renglón.
type OrderItemResponse struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"product_id,omitempty"`
	ProductName         string          `json:"product_name"`
	QuantityOrdered     decimal.Decimal `json:"quantity_ordered"`
	QuantityReceived    decimal.Decimal `json:"quantity_received"`
	PurchasePrice       decimal.Decimal `json:"purchase_price"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	BranchDestinationID string          `json:"branch_destination_id,omitempty"`
}

// OrderResponse representación HTTP de una orden de compra.
type OrderResponse struct {
	ID                   string              `json:"id"`
	SupplierName         string              `json:"supplier_name"`
	OrderDate            time.Time           `json:"order_date"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date,omitempty"`
	Status               string              `json:"status"`
	AmountPaid           decimal.Decimal     `json:"amount_paid"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	BalanceRemaining     decimal.Decimal     `json:"balance_remaining"`
	Items                []OrderItemResponse `json:"items"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// OrderListResponse listado paginado de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
