package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/application/stock"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del ledger de existencias.
type StockHandler struct {
	ledger *stock.LedgerUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *stock.LedgerUseCase) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// Credit godoc
// @Summary      Abonar stock a una sucursal
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreditStockRequest  true  "branch_id, product_id, quantity, unit_cost"
// @Success      200   {object}  dto.StockItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/credit [post]
func (h *StockHandler) Credit(c *fiber.Ctx) error {
	var in dto.CreditStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.ledger.Credit(c.Context(), stock.CreditInput{
		BranchID:    in.BranchID,
		ProductID:   in.ProductID,
		ProductName: in.ProductName,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toStockItemResponse(item))
}

// Debit godoc
// @Summary      Descontar stock de una sucursal
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DebitStockRequest  true  "branch_id, product_id, quantity"
// @Success      200   {object}  dto.StockItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/debit [post]
func (h *StockHandler) Debit(c *fiber.Ctx) error {
	var in dto.DebitStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.ledger.Debit(c.Context(), in.BranchID, in.ProductID, in.Quantity)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toStockItemResponse(item))
}

// Get godoc
// @Summary      Existencia de un producto en una sucursal
// @Tags         stock
// @Produce      json
// @Param        branch_id   path  string  true  "ID de la sucursal"
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{branch_id}/{product_id} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	item, err := h.ledger.Get(c.Context(), c.Params("branch_id"), c.Params("product_id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toStockItemResponse(item))
}

// ListByBranch godoc
// @Summary      Existencias de una sucursal
// @Tags         stock
// @Produce      json
// @Param        branch_id  path   string  true   "ID de la sucursal"
// @Param        limit      query  int     false  "Límite"   default(20)
// @Param        offset     query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/stock/{branch_id} [get]
func (h *StockHandler) ListByBranch(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	items, err := h.ledger.ListByBranch(c.Context(), c.Params("branch_id"), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	out := dto.StockListResponse{
		Items: make([]dto.StockItemResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, item := range items {
		out.Items = append(out.Items, toStockItemResponse(item))
	}
	return c.JSON(out)
}

func toStockItemResponse(s *entity.StockItem) dto.StockItemResponse {
	return dto.StockItemResponse{
		ID:           s.ID,
		BranchID:     s.BranchID,
		ProductID:    s.ProductID,
		ProductName:  s.ProductName,
		Quantity:     s.Quantity,
		UnitPrice:    s.UnitPrice,
		ReorderLevel: s.ReorderLevel,
		BelowReorder: s.BelowReorder(),
		UpdatedAt:    s.UpdatedAt,
	}
}
