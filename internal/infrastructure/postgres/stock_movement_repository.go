package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación de StockMovementRepository sobre PostgreSQL
// (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador de movimientos.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, kind, product_id, product_name, from_branch_id, to_branch_id,
		quantity, status, reason, reference, requested_by, created_at, resolved_at`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.Kind, &m.ProductID, &m.ProductName, &m.FromBranchID, &m.ToBranchID,
		&m.Quantity, &m.Status, &m.Reason, &m.Reference, &m.RequestedBy, &m.CreatedAt, &m.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste un nuevo movimiento.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, kind, product_id, product_name, from_branch_id, to_branch_id,
			quantity, status, reason, reference, requested_by, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.Kind, movement.ProductID, movement.ProductName,
		movement.FromBranchID, movement.ToBranchID, movement.Quantity, movement.Status,
		movement.Reason, movement.Reference, movement.RequestedBy, movement.CreatedAt, movement.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID. Devuelve nil si no existe.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// GetForUpdate obtiene un movimiento y bloquea la fila (SELECT FOR UPDATE)
// para serializar aprobaciones/rechazos concurrentes.
func (r *StockMovementRepo) GetForUpdate(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1 FOR UPDATE`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement for update: %w", err)
	}
	return m, nil
}

// Update actualiza estado y resolución. Solo aplica sobre movimientos pending:
// los terminales son inmutables a nivel de SQL.
func (r *StockMovementRepo) Update(movement *entity.StockMovement) error {
	query := `
		UPDATE stock_movements
		SET status = $2, resolved_at = $3
		WHERE id = $1 AND status = 'pending'`
	_, err := r.q.Exec(context.Background(), query, movement.ID, movement.Status, movement.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update stock movement: %w", err)
	}
	return nil
}

// List lista movimientos, opcionalmente filtrados por estado.
func (r *StockMovementRepo) List(status string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	return r.list(query, status, limit, offset)
}

// ListByBranch lista movimientos donde la sucursal participa como origen o destino.
func (r *StockMovementRepo) ListByBranch(branchID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE from_branch_id = $1 OR to_branch_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	return r.list(query, branchID, limit, offset)
}

// ListByProduct lista movimientos de un producto.
func (r *StockMovementRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	return r.list(query, productID, limit, offset)
}

func (r *StockMovementRepo) list(query string, key string, limit, offset int) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(context.Background(), query, key, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var movements []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
