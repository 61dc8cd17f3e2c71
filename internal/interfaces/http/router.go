package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/order"
	"github.com/tu-usuario/gestion-pro/internal/application/stock"
	"github.com/tu-usuario/gestion-pro/internal/application/transfer"
	"github.com/tu-usuario/gestion-pro/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	BranchUC  *usecase.BranchUseCase
	Ledger    *stock.LedgerUseCase
	Transfers *transfer.CoordinatorUseCase
	Orders    *order.LifecycleUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Branches
	branches := api.Group("/branches")
	branchHandler := NewBranchHandler(deps.BranchUC)
	branches.Post("/", branchHandler.Create)
	branches.Get("/", branchHandler.List)
	branches.Get("/:id", branchHandler.GetByID)
	branches.Delete("/:id", branchHandler.Delete)

	// Stock ledger
	stockGroup := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Ledger)
	stockGroup.Post("/credit", stockHandler.Credit)
	stockGroup.Post("/debit", stockHandler.Debit)
	stockGroup.Get("/:branch_id", stockHandler.ListByBranch)
	stockGroup.Get("/:branch_id/:product_id", stockHandler.Get)

	// Transfers entre sucursales
	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfers)
	transfers.Post("/", transferHandler.Request)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/approve", transferHandler.Approve)
	transfers.Post("/:id/reject", transferHandler.Reject)

	// Órdenes de compra
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/:id/payments", orderHandler.RecordPayment)
	orders.Post("/:id/delivery", orderHandler.MarkDelivered)
	orders.Post("/:id/complete", orderHandler.Complete)
}
