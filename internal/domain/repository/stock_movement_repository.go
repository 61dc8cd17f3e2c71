package repository

import "github.com/tu-usuario/gestion-pro/internal/domain/entity"

// StockMovementRepository define el puerto de persistencia para movimientos de
// stock (traslados y entradas de auditoría). Los movimientos terminales son
// inmutables: Update solo aplica sobre movimientos pending.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	// GetForUpdate bloquea la fila del movimiento para serializar aprobaciones
	// concurrentes. Devuelve nil si no existe.
	GetForUpdate(id string) (*entity.StockMovement, error)
	Update(movement *entity.StockMovement) error
	List(status string, limit, offset int) ([]*entity.StockMovement, error)
	ListByBranch(branchID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error)
}
