package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/domain"
)

// domainError mapea errores de dominio a respuestas HTTP con código específico,
// de modo que la capa de presentación siempre reciba un kind accionable y no un
// fallo genérico.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: "cantidad inválida"})
	case errors.Is(err, domain.ErrInvalidPayment):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PAYMENT", Message: "pago no positivo o mayor al saldo"})
	case errors.Is(err, domain.ErrInvalidRoute):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ROUTE", Message: "sucursal origen y destino deben ser distintas"})
	case errors.Is(err, domain.ErrMissingDestination):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_DESTINATION", Message: "sucursal destino sin resolver"})
	case errors.Is(err, domain.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "ORDER_NOT_FOUND", Message: "orden de compra no encontrada"})
	case errors.Is(err, domain.ErrMovementNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "MOVEMENT_NOT_FOUND", Message: "movimiento no encontrado"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición de estado inválida"})
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_COMPLETED", Message: "la orden ya fue completada"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// pageParams lee limit/offset con defaults y topes.
func pageParams(c *fiber.Ctx) (limit, offset int) {
	var p dto.PageRequest
	if err := c.QueryParser(&p); err != nil {
		p = dto.PageRequest{}
	}
	p.DefaultPage()
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p.Limit, p.Offset
}
