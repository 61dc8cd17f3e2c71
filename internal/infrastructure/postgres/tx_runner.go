package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/gestion-pro/internal/application/stock"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// Ensure TxRunner implements stock.TxRunner.
var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Los bloqueos FOR UPDATE tomados dentro de fn viven hasta
// el cierre de la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	movementRepo repository.StockMovementRepository,
	orderRepo repository.PurchaseOrderRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stockRepo := NewStockRepository(tx)
	movementRepo := NewStockMovementRepository(tx)
	orderRepo := NewPurchaseOrderRepository(tx)

	if err := fn(stockRepo, movementRepo, orderRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
