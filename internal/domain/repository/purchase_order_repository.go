package repository

import "github.com/tu-usuario/gestion-pro/internal/domain/entity"

// PurchaseOrderRepository define el puerto de persistencia para órdenes de
// compra y sus renglones.
type PurchaseOrderRepository interface {
	// Create persiste el encabezado y todos los renglones.
	Create(order *entity.PurchaseOrder) error
	// GetByID devuelve la orden con renglones, o nil si no existe.
	GetByID(id string) (*entity.PurchaseOrder, error)
	// GetForUpdate bloquea el encabezado (SELECT FOR UPDATE) y carga renglones.
	// Serializa pagos y completaciones concurrentes sobre la misma orden.
	GetForUpdate(id string) (*entity.PurchaseOrder, error)
	// Update actualiza el encabezado (pagos, estado).
	Update(order *entity.PurchaseOrder) error
	// UpdateItem actualiza un renglón (cantidad recibida, sucursal destino).
	UpdateItem(item *entity.OrderItem) error
	List(status string, limit, offset int) ([]*entity.PurchaseOrder, error)
}
