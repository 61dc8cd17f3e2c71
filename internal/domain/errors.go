package domain

import "errors"

// Errores de dominio (sin dependencias externas). El motor los devuelve de
// forma síncrona y nunca deja estado parcialmente aplicado al reportarlos.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrOrderNotFound      = errors.New("orden de compra no encontrada")
	ErrMovementNotFound   = errors.New("movimiento de stock no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidQuantity    = errors.New("cantidad inválida")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidPayment     = errors.New("pago inválido")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrInvalidRoute       = errors.New("sucursal origen y destino deben ser distintas")
	ErrMissingDestination = errors.New("sucursal destino sin resolver")
	ErrAlreadyCompleted   = errors.New("la orden ya fue completada")
)
