package repository

import "github.com/tu-usuario/gestion-pro/internal/domain/entity"

// StockRepository define el puerto para consultar/actualizar existencias por
// sucursal+producto. Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve nil si el par sucursal+producto no tiene fila aún.
	Get(branchID, productID string) (*entity.StockItem, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE). Si no existe
	// devuelve una fila en cero lista para el primer credit.
	GetForUpdate(branchID, productID string) (*entity.StockItem, error)
	Upsert(item *entity.StockItem) error
	ListByBranch(branchID string, limit, offset int) ([]*entity.StockItem, error)
}
