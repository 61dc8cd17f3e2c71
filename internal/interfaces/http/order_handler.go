package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/application/order"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
)

// OrderHandler maneja las peticiones HTTP del ciclo de vida de órdenes de compra.
type OrderHandler struct {
	uc *order.LifecycleUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.LifecycleUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "supplier_name, order_date, items"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := order.CreateInput{
		SupplierName:         in.SupplierName,
		OrderDate:            in.OrderDate,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
	}
	for _, it := range in.Items {
		input.Items = append(input.Items, order.ItemInput{
			ProductID:           it.ProductID,
			ProductName:         it.ProductName,
			Quantity:            it.Quantity,
			PurchasePrice:       it.PurchasePrice,
			BranchDestinationID: it.BranchDestinationID,
		})
	}
	out, err := h.uc.Create(c.Context(), input)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(out))
}

// RecordPayment godoc
// @Summary      Registrar pago de una orden
// @Description  Rechaza pagos no positivos o mayores al saldo pendiente.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la orden"
// @Param        body  body  dto.RecordPaymentRequest  true  "amount"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/payments [post]
func (h *OrderHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.RecordPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.RecordPayment(c.Context(), c.Params("id"), in.Amount)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toOrderResponse(out))
}

// MarkDelivered godoc
// @Summary      Marcar orden como entregada
// @Description  Registra cantidades recibidas por renglón (entrega parcial
//               legal). No toca el stock: el abono ocurre en la completación.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true   "ID de la orden"
// @Param        body  body  dto.MarkDeliveredRequest  false  "lines (vacío = entrega completa)"
// @Success      200   {object}  dto.OrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/delivery [post]
func (h *OrderHandler) MarkDelivered(c *fiber.Ctx) error {
	var in dto.MarkDeliveredRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	lines := make([]order.ReceivedLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, order.ReceivedLine{ItemID: l.ItemID, QuantityReceived: l.QuantityReceived})
	}
	out, err := h.uc.MarkDelivered(c.Context(), c.Params("id"), lines)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toOrderResponse(out))
}

// Complete godoc
// @Summary      Completar orden y abonar stock
// @Description  Abona cada renglón exactamente una vez en su sucursal destino
//               y marca la orden completed; la reejecución falla con
//               ALREADY_COMPLETED sin volver a abonar.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true   "ID de la orden"
// @Param        body  body  dto.CompleteOrderRequest  false  "destinations y/o renglón manual"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/complete [post]
func (h *OrderHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompleteOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	input := order.CompleteInput{
		OrderID:      c.Params("id"),
		Destinations: in.Destinations,
	}
	if in.Manual != nil {
		input.Manual = &order.ManualLine{
			ProductID:           in.Manual.ProductID,
			ProductName:         in.Manual.ProductName,
			Quantity:            in.Manual.Quantity,
			PurchasePrice:       in.Manual.PurchasePrice,
			BranchDestinationID: in.Manual.BranchDestinationID,
		}
	}
	out, err := h.uc.Complete(c.Context(), input)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toOrderResponse(out))
}

// GetByID godoc
// @Summary      Obtener orden por ID
// @Tags         orders
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toOrderResponse(out))
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         orders
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	orders, err := h.uc.List(c.Context(), c.Query("status"), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	out := dto.OrderListResponse{
		Items: make([]dto.OrderResponse, 0, len(orders)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, o := range orders {
		out.Items = append(out.Items, toOrderResponse(o))
	}
	return c.JSON(out)
}

func toOrderResponse(o *entity.PurchaseOrder) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:                   o.ID,
		SupplierName:         o.SupplierName,
		OrderDate:            o.OrderDate,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		Status:               o.Status,
		AmountPaid:           o.AmountPaid,
		TotalAmount:          o.TotalAmount,
		BalanceRemaining:     o.BalanceRemaining(),
		Items:                make([]dto.OrderItemResponse, 0, len(o.Items)),
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
	for i := range o.Items {
		it := &o.Items[i]
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ID:                  it.ID,
			ProductID:           it.ProductID,
			ProductName:         it.ProductName,
			QuantityOrdered:     it.QuantityOrdered,
			QuantityReceived:    it.QuantityReceived,
			PurchasePrice:       it.PurchasePrice,
			Subtotal:            it.Subtotal(),
			BranchDestinationID: it.BranchDestinationID,
		})
	}
	return resp
}
