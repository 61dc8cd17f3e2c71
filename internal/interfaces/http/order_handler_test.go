package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/application/order"
	"github.com/tu-usuario/gestion-pro/internal/application/stock"
	"github.com/tu-usuario/gestion-pro/internal/application/transfer"
	"github.com/tu-usuario/gestion-pro/internal/application/usecase"
	"github.com/tu-usuario/gestion-pro/internal/infrastructure/memory"
	apphttp "github.com/tu-usuario/gestion-pro/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp levanta la API completa sobre el store en memoria.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	txRunner := memory.NewTxRunner(store)
	branchRepo := memory.NewBranchRepository(store)
	stockRepo := memory.NewStockRepository(store)
	movementRepo := memory.NewStockMovementRepository(store)
	orderRepo := memory.NewPurchaseOrderRepository(store)

	ledgerUC := stock.NewLedgerUseCase(txRunner, stockRepo)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		BranchUC:  usecase.NewBranchUseCase(branchRepo),
		Ledger:    ledgerUC,
		Transfers: transfer.NewCoordinatorUseCase(txRunner, ledgerUC, stockRepo, movementRepo, branchRepo),
		Orders:    order.NewLifecycleUseCase(txRunner, ledgerUC, orderRepo, branchRepo),
	})
	return app
}

// doJSON lanza una petición con body JSON y decodifica la respuesta en out.
func doJSON(t *testing.T, app *fiber.App, method, path string, body, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// createBranch registra una sucursal vía API y devuelve su ID.
func createBranch(t *testing.T, app *fiber.App, name string) string {
	t.Helper()
	var resp dto.BranchResponse
	status := doJSON(t, app, http.MethodPost, "/api/branches/", dto.CreateBranchRequest{Name: name}, &resp)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo: crear orden → pagos → entrega → completación → stock
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_FlujoCompletoOrdenDeCompra(t *testing.T) {
	app := buildTestApp(t)
	branchID := createBranch(t, app, "Bodega Central")

	// Crear orden: 10 unidades a 100 (total 1000)
	var created dto.OrderResponse
	status := doJSON(t, app, http.MethodPost, "/api/orders/", dto.CreateOrderRequest{
		SupplierName: "Distribuidora El Sol",
		OrderDate:    time.Now(),
		Items: []dto.OrderItemRequest{{
			ProductID:           "SKU-200",
			ProductName:         "Pintura blanca 1gal",
			Quantity:            dec("10"),
			PurchasePrice:       dec("100"),
			BranchDestinationID: branchID,
		}},
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "ordered", created.Status)
	assert.True(t, dec("1000").Equal(created.TotalAmount))

	// Pago parcial
	var paid dto.OrderResponse
	status = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/orders/%s/payments", created.ID),
		dto.RecordPaymentRequest{Amount: dec("300")}, &paid)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "partially_paid", paid.Status)
	assert.True(t, dec("700").Equal(paid.BalanceRemaining))

	// Sobrepago: rechazado con 400 INVALID_PAYMENT
	var errResp dto.ErrorResponse
	status = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/orders/%s/payments", created.ID),
		dto.RecordPaymentRequest{Amount: dec("800")}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PAYMENT", errResp.Code)

	// Saldar
	status = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/orders/%s/payments", created.ID),
		dto.RecordPaymentRequest{Amount: dec("700")}, &paid)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "paid", paid.Status)

	// Entrega sin detalle: recepción completa
	var delivered dto.OrderResponse
	status = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/orders/%s/delivery", created.ID), nil, &delivered)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "delivered", delivered.Status)

	// Completación: abona el stock en la sucursal destino
	var completed dto.OrderResponse
	status = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/orders/%s/complete", created.ID), nil, &completed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "completed", completed.Status)

	var item dto.StockItemResponse
	status = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/stock/%s/SKU-200", branchID), nil, &item)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, dec("10").Equal(item.Quantity))
	assert.True(t, dec("100").Equal(item.UnitPrice))

	// Reejecutar la completación: 409 ALREADY_COMPLETED, sin doble abono
	status = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/orders/%s/complete", created.ID), nil, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_COMPLETED", errResp.Code)

	status = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/stock/%s/SKU-200", branchID), nil, &item)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, dec("10").Equal(item.Quantity), "el stock no debe abonarse dos veces")
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de traslados entre sucursales
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_FlujoTraslado(t *testing.T) {
	app := buildTestApp(t)
	origen := createBranch(t, app, "Sucursal Centro")
	destino := createBranch(t, app, "Sucursal Norte")

	// Stock inicial en origen
	var item dto.StockItemResponse
	status := doJSON(t, app, http.MethodPost, "/api/stock/credit", dto.CreditStockRequest{
		BranchID:    origen,
		ProductID:   "SKU-100",
		ProductName: "Cemento 50kg",
		Quantity:    dec("50"),
		UnitCost:    dec("20"),
	}, &item)
	require.Equal(t, http.StatusOK, status)

	// Solicitar traslado
	var movement dto.StockMovementResponse
	status = doJSON(t, app, http.MethodPost, "/api/transfers/", dto.RequestTransferRequest{
		ProductID:    "SKU-100",
		FromBranchID: origen,
		ToBranchID:   destino,
		Quantity:     dec("30"),
		Reason:       "reposición",
	}, &movement)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "pending", movement.Status)

	// La solicitud no mueve stock
	status = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/stock/%s/SKU-100", origen), nil, &item)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, dec("50").Equal(item.Quantity))

	// Aprobar: debit origen + credit destino
	status = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/transfers/%s/approve", movement.ID), nil, &movement)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "approved", movement.Status)

	status = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/stock/%s/SKU-100", origen), nil, &item)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, dec("20").Equal(item.Quantity))

	status = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/stock/%s/SKU-100", destino), nil, &item)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, dec("30").Equal(item.Quantity))

	// Aprobar de nuevo: 409 INVALID_TRANSITION
	var errResp dto.ErrorResponse
	status = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/transfers/%s/approve", movement.ID), nil, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", errResp.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores de dominio a códigos HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ErroresDeDominio(t *testing.T) {
	app := buildTestApp(t)
	branchID := createBranch(t, app, "Única")

	var errResp dto.ErrorResponse

	// Orden inexistente → 404 ORDER_NOT_FOUND
	status := doJSON(t, app, http.MethodPost, "/api/orders/no-existe/payments",
		dto.RecordPaymentRequest{Amount: dec("100")}, &errResp)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ORDER_NOT_FOUND", errResp.Code)

	// Traslado con origen == destino → 400 INVALID_ROUTE
	status = doJSON(t, app, http.MethodPost, "/api/transfers/", dto.RequestTransferRequest{
		ProductID:    "SKU-1",
		FromBranchID: branchID,
		ToBranchID:   branchID,
		Quantity:     dec("1"),
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ROUTE", errResp.Code)

	// Debit sin existencia → 409 INSUFFICIENT_STOCK
	status = doJSON(t, app, http.MethodPost, "/api/stock/debit", dto.DebitStockRequest{
		BranchID:  branchID,
		ProductID: "SKU-1",
		Quantity:  dec("5"),
	}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)

	// Existencia nunca registrada → 404 NOT_FOUND
	status = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/stock/%s/SKU-1", branchID), nil, &errResp)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errResp.Code)
}
