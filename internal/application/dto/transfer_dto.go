package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestTransferRequest body para POST /api/transfers.
// La sucursal destino se normaliza a un escalar en esta frontera: encodings
// tipo lista del lado del cliente no llegan al dominio.
type RequestTransferRequest struct {
	ProductID    string          `json:"product_id"`
	FromBranchID string          `json:"from_branch_id"`
	ToBranchID   string          `json:"to_branch_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reason       string          `json:"reason,omitempty"`
	RequestedBy  string          `json:"requested_by,omitempty"`
}

// StockMovementResponse representación HTTP de un movimiento de stock.
type StockMovementResponse struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	FromBranchID string          `json:"from_branch_id,omitempty"`
	ToBranchID   string          `json:"to_branch_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Status       string          `json:"status"`
	Reason       string          `json:"reason,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	RequestedBy  string          `json:"requested_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	ResolvedAt   *time.Time      `json:"resolved_at,omitempty"`
}

// MovementListResponse listado paginado de movimientos.
type MovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
