package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/application/transfer"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
)

// TransferHandler maneja las peticiones HTTP de traslados entre sucursales.
type TransferHandler struct {
	uc *transfer.CoordinatorUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.CoordinatorUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Request godoc
// @Summary      Solicitar traslado de stock entre sucursales
// @Description  Crea la solicitud en estado pending sin mover stock; el
//               descuento ocurre en la aprobación.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RequestTransferRequest  true  "product_id, from_branch_id, to_branch_id, quantity"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Request(c *fiber.Ctx) error {
	var in dto.RequestTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movement, err := h.uc.Request(c.Context(), transfer.RequestInput{
		ProductID:    in.ProductID,
		FromBranchID: in.FromBranchID,
		ToBranchID:   in.ToBranchID,
		Quantity:     in.Quantity,
		Reason:       in.Reason,
		RequestedBy:  in.RequestedBy,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(movement))
}

// Approve godoc
// @Summary      Aprobar traslado pendiente
// @Description  Descuenta en origen y abona en destino como unidad atómica.
// @Tags         transfers
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	movement, err := h.uc.Approve(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toMovementResponse(movement))
}

// Reject godoc
// @Summary      Rechazar traslado pendiente
// @Tags         transfers
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/reject [post]
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	movement, err := h.uc.Reject(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toMovementResponse(movement))
}

// GetByID godoc
// @Summary      Obtener movimiento por ID
// @Tags         transfers
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	movement, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toMovementResponse(movement))
}

// List godoc
// @Summary      Listar movimientos de stock
// @Description  Historial consultable por la capa de auditoría/reportes.
// @Tags         transfers
// @Produce      json
// @Param        status      query  string  false  "pending, approved o rejected"
// @Param        branch_id   query  string  false  "Movimientos donde la sucursal es origen o destino"
// @Param        product_id  query  string  false  "Historial de un producto"
// @Param        limit       query  int     false  "Límite"   default(20)
// @Param        offset      query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	var (
		movements []*entity.StockMovement
		err       error
	)
	switch {
	case c.Query("branch_id") != "":
		movements, err = h.uc.ListByBranch(c.Context(), c.Query("branch_id"), limit, offset)
	case c.Query("product_id") != "":
		movements, err = h.uc.ListByProduct(c.Context(), c.Query("product_id"), limit, offset)
	default:
		movements, err = h.uc.List(c.Context(), c.Query("status"), limit, offset)
	}
	if err != nil {
		return domainError(c, err)
	}
	out := dto.MovementListResponse{
		Items: make([]dto.StockMovementResponse, 0, len(movements)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, m := range movements {
		out.Items = append(out.Items, toMovementResponse(m))
	}
	return c.JSON(out)
}

func toMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:           m.ID,
		Kind:         m.Kind,
		ProductID:    m.ProductID,
		ProductName:  m.ProductName,
		FromBranchID: m.FromBranchID,
		ToBranchID:   m.ToBranchID,
		Quantity:     m.Quantity,
		Status:       m.Status,
		Reason:       m.Reason,
		Reference:    m.Reference,
		RequestedBy:  m.RequestedBy,
		CreatedAt:    m.CreatedAt,
		ResolvedAt:   m.ResolvedAt,
	}
}
