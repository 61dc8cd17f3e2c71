package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/application/usecase"
)

// BranchHandler maneja las peticiones HTTP para sucursales.
type BranchHandler struct {
	uc *usecase.BranchUseCase
}

// NewBranchHandler construye el handler.
func NewBranchHandler(uc *usecase.BranchUseCase) *BranchHandler {
	return &BranchHandler{uc: uc}
}

// Create godoc
// @Summary      Crear sucursal
// @Tags         branches
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBranchRequest  true  "Datos de la sucursal"
// @Success      201   {object}  dto.BranchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/branches [post]
func (h *BranchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBranchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name es requerido"})
	}
	out, err := h.uc.Create(in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener sucursal por ID
// @Tags         branches
// @Produce      json
// @Param        id   path  string  true  "ID de la sucursal"
// @Success      200  {object}  dto.BranchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/branches/{id} [get]
func (h *BranchHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetByID(id)
	if err != nil {
		return domainError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sucursal no encontrada"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar sucursales
// @Tags         branches
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.BranchListResponse
// @Router       /api/branches [get]
func (h *BranchHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar sucursal
// @Tags         branches
// @Param        id   path  string  true  "ID de la sucursal"
// @Success      204
// @Router       /api/branches/{id} [delete]
func (h *BranchHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.uc.Delete(id); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
