package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem representa la existencia y valoración de un producto en una sucursal
// (fila materializada por par sucursal+producto). Invariante: Quantity >= 0 siempre;
// solo se muta a través del ledger (credit/debit), nunca directo desde otra capa.
type StockItem struct {
	ID           string
	BranchID     string
	ProductID    string
	ProductName  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal // costo promedio ponderado
	ReorderLevel decimal.Decimal
	UpdatedAt    time.Time
}

// BelowReorder indica si la existencia está en o por debajo del punto de reorden.
func (s *StockItem) BelowReorder() bool {
	return s.Quantity.LessThanOrEqual(s.ReorderLevel)
}
