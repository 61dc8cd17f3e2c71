package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditStockRequest body para POST /api/stock/credit.
type CreditStockRequest struct {
	BranchID    string          `json:"branch_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// DebitStockRequest body para POST /api/stock/debit.
type DebitStockRequest struct {
	BranchID  string          `json:"branch_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// StockItemResponse representación HTTP de una existencia por sucursal+producto.
type StockItemResponse struct {
	ID           string          `json:"id"`
	BranchID     string          `json:"branch_id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	BelowReorder bool            `json:"below_reorder"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StockListResponse listado paginado de existencias de una sucursal.
type StockListResponse struct {
	Items []StockItemResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
