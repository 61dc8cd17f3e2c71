// Package memory implementa los puertos de persistencia sobre mapas en memoria
// protegidos por mutex, con un TxRunner que serializa transacciones completas y
// restaura un snapshot ante error. Sirve para tests y para correr la API local
// sin PostgreSQL; la semántica (filas clonadas, movimientos terminales
// inmutables, fila en cero en el primer credit) replica la del adaptador pgx.
package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/gestion-pro/internal/application/stock"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// Store contenedor único de estado compartido por los repositorios en memoria.
type Store struct {
	mu        sync.Mutex
	txMu      sync.Mutex
	branches  map[string]*entity.Branch
	stock     map[string]*entity.StockItem // key: branchID + "/" + productID
	movements map[string]*entity.StockMovement
	orders    map[string]*entity.PurchaseOrder
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		branches:  make(map[string]*entity.Branch),
		stock:     make(map[string]*entity.StockItem),
		movements: make(map[string]*entity.StockMovement),
		orders:    make(map[string]*entity.PurchaseOrder),
	}
}

func stockKey(branchID, productID string) string {
	return branchID + "/" + productID
}

// ── Clones: el store nunca entrega punteros a su estado interno ──────────────

func cloneBranch(b *entity.Branch) *entity.Branch {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

func cloneStockItem(s *entity.StockItem) *entity.StockItem {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	if m == nil {
		return nil
	}
	c := *m
	if m.ResolvedAt != nil {
		t := *m.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}

func cloneOrder(o *entity.PurchaseOrder) *entity.PurchaseOrder {
	if o == nil {
		return nil
	}
	c := *o
	if o.ExpectedDeliveryDate != nil {
		t := *o.ExpectedDeliveryDate
		c.ExpectedDeliveryDate = &t
	}
	c.Items = append([]entity.OrderItem(nil), o.Items...)
	return &c
}

// snapshot copia todo el estado para rollback.
func (s *Store) snapshot() *Store {
	snap := NewStore()
	for k, v := range s.branches {
		snap.branches[k] = cloneBranch(v)
	}
	for k, v := range s.stock {
		snap.stock[k] = cloneStockItem(v)
	}
	for k, v := range s.movements {
		snap.movements[k] = cloneMovement(v)
	}
	for k, v := range s.orders {
		snap.orders[k] = cloneOrder(v)
	}
	return snap
}

func (s *Store) restore(snap *Store) {
	s.branches = snap.branches
	s.stock = snap.stock
	s.movements = snap.movements
	s.orders = snap.orders
}

// ── TxRunner ─────────────────────────────────────────────────────────────────

var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner serializa transacciones sobre el store: toma snapshot, ejecuta fn y
// restaura el snapshot si fn falla. Equivale al par Begin/Commit-Rollback del
// adaptador PostgreSQL con un bloqueo de grano grueso.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con los repositorios del store; transacciones concurrentes se
// serializan con txMu, con lo que pagos o aprobaciones simultáneos nunca se
// pierden ni se aplican dos veces.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	movementRepo repository.StockMovementRepository,
	orderRepo repository.PurchaseOrderRepository,
) error) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	r.store.mu.Lock()
	snap := r.store.snapshot()
	r.store.mu.Unlock()

	err := fn(NewStockRepository(r.store), NewStockMovementRepository(r.store), NewPurchaseOrderRepository(r.store))
	if err != nil {
		r.store.mu.Lock()
		r.store.restore(snap)
		r.store.mu.Unlock()
		return err
	}
	return nil
}

// ── BranchRepository ─────────────────────────────────────────────────────────

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo repositorio de sucursales en memoria.
type BranchRepo struct{ store *Store }

// NewBranchRepository construye el repositorio.
func NewBranchRepository(store *Store) *BranchRepo {
	return &BranchRepo{store: store}
}

func (r *BranchRepo) Create(branch *entity.Branch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.branches[branch.ID] = cloneBranch(branch)
	return nil
}

func (r *BranchRepo) GetByID(id string) (*entity.Branch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return cloneBranch(r.store.branches[id]), nil
}

func (r *BranchRepo) List(limit, offset int) ([]*entity.Branch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var all []*entity.Branch
	for _, b := range r.store.branches {
		all = append(all, cloneBranch(b))
	}
	return page(all, limit, offset), nil
}

func (r *BranchRepo) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.branches, id)
	return nil
}

// ── StockRepository ──────────────────────────────────────────────────────────

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo repositorio de existencias en memoria.
type StockRepo struct{ store *Store }

// NewStockRepository construye el repositorio.
func NewStockRepository(store *Store) *StockRepo {
	return &StockRepo{store: store}
}

func (r *StockRepo) Get(branchID, productID string) (*entity.StockItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return cloneStockItem(r.store.stock[stockKey(branchID, productID)]), nil
}

func (r *StockRepo) GetForUpdate(branchID, productID string) (*entity.StockItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if item, ok := r.store.stock[stockKey(branchID, productID)]; ok {
		return cloneStockItem(item), nil
	}
	return &entity.StockItem{
		BranchID:     branchID,
		ProductID:    productID,
		Quantity:     decimal.Zero,
		UnitPrice:    decimal.Zero,
		ReorderLevel: decimal.Zero,
	}, nil
}

func (r *StockRepo) Upsert(item *entity.StockItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.stock[stockKey(item.BranchID, item.ProductID)] = cloneStockItem(item)
	return nil
}

func (r *StockRepo) ListByBranch(branchID string, limit, offset int) ([]*entity.StockItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var all []*entity.StockItem
	for _, s := range r.store.stock {
		if s.BranchID == branchID {
			all = append(all, cloneStockItem(s))
		}
	}
	return page(all, limit, offset), nil
}

// ── StockMovementRepository ──────────────────────────────────────────────────

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo repositorio de movimientos en memoria.
type StockMovementRepo struct{ store *Store }

// NewStockMovementRepository construye el repositorio.
func NewStockMovementRepository(store *Store) *StockMovementRepo {
	return &StockMovementRepo{store: store}
}

func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.movements[movement.ID] = cloneMovement(movement)
	return nil
}

func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return cloneMovement(r.store.movements[id]), nil
}

func (r *StockMovementRepo) GetForUpdate(id string) (*entity.StockMovement, error) {
	return r.GetByID(id)
}

func (r *StockMovementRepo) Update(movement *entity.StockMovement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.movements[movement.ID]
	if !ok || current.Status != entity.MovementStatusPending {
		// Terminales inmutables, igual que el WHERE status='pending' en SQL
		return nil
	}
	r.store.movements[movement.ID] = cloneMovement(movement)
	return nil
}

func (r *StockMovementRepo) List(status string, limit, offset int) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool {
		return status == "" || m.Status == status
	}, limit, offset)
}

func (r *StockMovementRepo) ListByBranch(branchID string, limit, offset int) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool {
		return m.FromBranchID == branchID || m.ToBranchID == branchID
	}, limit, offset)
}

func (r *StockMovementRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool {
		return m.ProductID == productID
	}, limit, offset)
}

func (r *StockMovementRepo) filter(keep func(*entity.StockMovement) bool, limit, offset int) ([]*entity.StockMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var all []*entity.StockMovement
	for _, m := range r.store.movements {
		if keep(m) {
			all = append(all, cloneMovement(m))
		}
	}
	return page(all, limit, offset), nil
}

// ── PurchaseOrderRepository ──────────────────────────────────────────────────

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo repositorio de órdenes en memoria.
type PurchaseOrderRepo struct{ store *Store }

// NewPurchaseOrderRepository construye el repositorio.
func NewPurchaseOrderRepository(store *Store) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{store: store}
}

func (r *PurchaseOrderRepo) Create(order *entity.PurchaseOrder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *PurchaseOrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return cloneOrder(r.store.orders[id]), nil
}

func (r *PurchaseOrderRepo) GetForUpdate(id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(id)
}

func (r *PurchaseOrderRepo) Update(order *entity.PurchaseOrder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.orders[order.ID]
	if !ok {
		return nil
	}
	stored.Status = order.Status
	stored.AmountPaid = order.AmountPaid
	stored.UpdatedAt = order.UpdatedAt
	return nil
}

func (r *PurchaseOrderRepo) UpdateItem(item *entity.OrderItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	order, ok := r.store.orders[item.OrderID]
	if !ok {
		return nil
	}
	for i := range order.Items {
		if order.Items[i].ID == item.ID {
			order.Items[i].QuantityReceived = item.QuantityReceived
			order.Items[i].BranchDestinationID = item.BranchDestinationID
		}
	}
	return nil
}

func (r *PurchaseOrderRepo) List(status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var all []*entity.PurchaseOrder
	for _, o := range r.store.orders {
		if status == "" || o.Status == status {
			all = append(all, cloneOrder(o))
		}
	}
	return page(all, limit, offset), nil
}

// page aplica limit/offset sobre un slice ya filtrado.
func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
