package entity

import "time"

// Branch representa una sucursal o sede que mantiene su propio inventario.
type Branch struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
