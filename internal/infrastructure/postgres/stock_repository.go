package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de existencias. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `id, branch_id, product_id, product_name, quantity, unit_price, reorder_level, updated_at`

func scanStockItem(row pgx.Row) (*entity.StockItem, error) {
	var s entity.StockItem
	err := row.Scan(
		&s.ID, &s.BranchID, &s.ProductID, &s.ProductName,
		&s.Quantity, &s.UnitPrice, &s.ReorderLevel, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get obtiene la existencia actual del par sucursal+producto. Devuelve nil si
// el par no tiene fila aún.
func (r *StockRepo) Get(branchID, productID string) (*entity.StockItem, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_items WHERE branch_id = $1 AND product_id = $2`
	item, err := scanStockItem(r.q.QueryRow(context.Background(), query, branchID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return item, nil
}

// GetForUpdate obtiene la existencia y bloquea la fila (SELECT FOR UPDATE).
// Si no existe devuelve una fila en cero lista para el primer credit.
func (r *StockRepo) GetForUpdate(branchID, productID string) (*entity.StockItem, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_items WHERE branch_id = $1 AND product_id = $2
		FOR UPDATE`
	item, err := scanStockItem(r.q.QueryRow(context.Background(), query, branchID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockItem{
				BranchID:     branchID,
				ProductID:    productID,
				Quantity:     decimal.Zero,
				UnitPrice:    decimal.Zero,
				ReorderLevel: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("get stock item for update: %w", err)
	}
	return item, nil
}

// Upsert inserta o actualiza la existencia (por sucursal y producto).
func (r *StockRepo) Upsert(item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (id, branch_id, product_id, product_name, quantity, unit_price, reorder_level, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (branch_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
		              unit_price = EXCLUDED.unit_price,
		              product_name = EXCLUDED.product_name,
		              updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.BranchID, item.ProductID, item.ProductName,
		item.Quantity, item.UnitPrice, item.ReorderLevel,
	)
	if err != nil {
		return fmt.Errorf("upsert stock item: %w", err)
	}
	return nil
}

// ListByBranch lista las existencias de una sucursal con paginación.
func (r *StockRepo) ListByBranch(branchID string, limit, offset int) ([]*entity.StockItem, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_items WHERE branch_id = $1
		ORDER BY product_name
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, branchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()

	var items []*entity.StockItem
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
