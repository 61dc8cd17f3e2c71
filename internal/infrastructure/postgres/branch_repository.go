package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo implementación del puerto BranchRepository sobre PostgreSQL.
type BranchRepo struct {
	pool *pgxpool.Pool
}

// NewBranchRepository construye el adaptador de persistencia para sucursales.
func NewBranchRepository(pool *pgxpool.Pool) *BranchRepo {
	return &BranchRepo{pool: pool}
}

// Create persiste una nueva sucursal.
func (r *BranchRepo) Create(branch *entity.Branch) error {
	query := `
		INSERT INTO branches (id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(context.Background(), query,
		branch.ID, branch.Name, branch.Address, branch.CreatedAt, branch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert branch: %w", err)
	}
	return nil
}

// GetByID obtiene una sucursal por ID. Devuelve nil si no existe.
func (r *BranchRepo) GetByID(id string) (*entity.Branch, error) {
	query := `
		SELECT id, name, address, created_at, updated_at
		FROM branches WHERE id = $1`
	var b entity.Branch
	err := r.pool.QueryRow(context.Background(), query, id).Scan(
		&b.ID, &b.Name, &b.Address, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return &b, nil
}

// List lista sucursales con paginación.
func (r *BranchRepo) List(limit, offset int) ([]*entity.Branch, error) {
	query := `
		SELECT id, name, address, created_at, updated_at
		FROM branches
		ORDER BY name
		LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()

	var branches []*entity.Branch
	for rows.Next() {
		var b entity.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		branches = append(branches, &b)
	}
	return branches, rows.Err()
}

// Delete elimina una sucursal por ID.
func (r *BranchRepo) Delete(id string) error {
	_, err := r.pool.Exec(context.Background(), `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	return nil
}
