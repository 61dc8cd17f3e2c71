package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación de PurchaseOrderRepository sobre PostgreSQL
// (usable con pool o tx).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador de órdenes de compra.
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const orderColumns = `id, supplier_name, order_date, expected_delivery_date, status,
		amount_paid, total_amount, created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	err := row.Scan(
		&o.ID, &o.SupplierName, &o.OrderDate, &o.ExpectedDeliveryDate, &o.Status,
		&o.AmountPaid, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste el encabezado y todos los renglones.
func (r *PurchaseOrderRepo) Create(order *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, supplier_name, order_date, expected_delivery_date, status,
			amount_paid, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.SupplierName, order.OrderDate, order.ExpectedDeliveryDate, order.Status,
		order.AmountPaid, order.TotalAmount, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for i := range order.Items {
		if err := r.insertItem(&order.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *PurchaseOrderRepo) insertItem(item *entity.OrderItem) error {
	query := `
		INSERT INTO purchase_order_items (id, order_id, product_id, product_name,
			quantity_ordered, quantity_received, purchase_price, branch_destination_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrderID, item.ProductID, item.ProductName,
		item.QuantityOrdered, item.QuantityReceived, item.PurchasePrice, item.BranchDestinationID,
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// GetByID devuelve la orden con renglones, o nil si no existe.
func (r *PurchaseOrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE id = $1`
	return r.getWith(query, id)
}

// GetForUpdate bloquea el encabezado (SELECT FOR UPDATE) y carga renglones.
func (r *PurchaseOrderRepo) GetForUpdate(id string) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE id = $1 FOR UPDATE`
	return r.getWith(query, id)
}

func (r *PurchaseOrderRepo) getWith(query, id string) (*entity.PurchaseOrder, error) {
	order, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	items, err := r.loadItems(order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *PurchaseOrderRepo) loadItems(orderID string) ([]entity.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, quantity_ordered, quantity_received,
			purchase_price, COALESCE(branch_destination_id, '')
		FROM purchase_order_items WHERE order_id = $1
		ORDER BY product_name`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.QuantityOrdered, &it.QuantityReceived, &it.PurchasePrice, &it.BranchDestinationID,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Update actualiza el encabezado (pagos, estado).
func (r *PurchaseOrderRepo) Update(order *entity.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders
		SET status = $2, amount_paid = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Status, order.AmountPaid, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	return nil
}

// UpdateItem actualiza cantidad recibida y sucursal destino de un renglón.
func (r *PurchaseOrderRepo) UpdateItem(item *entity.OrderItem) error {
	query := `
		UPDATE purchase_order_items
		SET quantity_received = $2, branch_destination_id = NULLIF($3, '')
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.QuantityReceived, item.BranchDestinationID,
	)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	return nil
}

// List lista órdenes con renglones, opcionalmente filtradas por estado.
func (r *PurchaseOrderRepo) List(status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM purchase_orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []*entity.PurchaseOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, order := range orders {
		items, err := r.loadItems(order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}
