// Package orders implements the order line-item manager: the per-order
// aggregate that keeps orden.total consistent with the visible lines
// of orden_detalle.
package orders

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"mercadito/internal/core/apperror"
	"mercadito/internal/domain"
	"mercadito/pkg/logger"
)

// State is the lifecycle of an open line-item manager.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateMutating State = "mutating"
	StateClosed   State = "closed"
)

// Manager drives the line items of one order at a time. Every mutation
// runs the same strict sequence: fetch the lines, sum quantity times
// unit price over the visible ones, persist the new total, and only
// then project the refreshed view.
type Manager struct {
	lines    domain.Repository
	orders   domain.Repository
	products domain.Repository

	mu      sync.Mutex
	state   State
	orderID string
	details []domain.Record
	catalog []domain.Record
	total   decimal.Decimal
}

// NewManager wires the three repositories the aggregate spans.
func NewManager(lines, orders, products domain.Repository) *Manager {
	return &Manager{
		lines:    lines,
		orders:   orders,
		products: products,
		state:    StateIdle,
	}
}

// Open loads the manager for one order: the visible product catalog
// for the add-line select, then a full recalculation.
func (m *Manager) Open(ctx context.Context, orderID string) (View, error) {
	m.mu.Lock()
	m.state = StateLoading
	m.orderID = orderID
	m.mu.Unlock()

	catalog, err := m.products.FetchVisible(ctx)
	if err != nil {
		return View{}, err
	}
	m.mu.Lock()
	m.catalog = catalog
	m.mu.Unlock()

	return m.Recalculate(ctx)
}

// Close drops the per-order state.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateClosed
	m.orderID = ""
	m.details = nil
	m.catalog = nil
	m.total = decimal.Zero
}

// Recalculate runs the aggregate sequence. If persisting the total
// fails, the fetched lines are kept but the total stays at its last
// persisted value; the caller sees the error.
func (m *Manager) Recalculate(ctx context.Context) (View, error) {
	m.mu.Lock()
	orderID := m.orderID
	m.mu.Unlock()
	if orderID == "" {
		return View{}, apperror.NewValidation("no hay una orden abierta")
	}

	details, err := m.lines.FetchByParent(ctx, orderID)
	if err != nil {
		return View{}, err
	}

	total := sumVisible(details)

	m.mu.Lock()
	m.details = details
	m.mu.Unlock()

	if err := m.orders.Update(ctx, orderID, domain.Payload{"total": total.Round(2)}); err != nil {
		logger.Error(ctx, "actualizar total de orden falló",
			"orden", orderID, "error", err)
		return View{}, err
	}

	m.mu.Lock()
	m.total = total
	m.state = StateReady
	view := m.buildViewLocked()
	m.mu.Unlock()
	return view, nil
}

// AddLine appends a product to the order. The unit price is read from
// the product at selection time and frozen into the line.
func (m *Manager) AddLine(ctx context.Context, productID string, cantidad int64) (View, error) {
	m.mu.Lock()
	if m.state != StateReady {
		m.mu.Unlock()
		return View{}, apperror.NewConflict("la orden no está lista para modificaciones")
	}
	m.state = StateMutating
	orderID := m.orderID
	product := findByID(m.catalog, "id", productID)
	m.mu.Unlock()
	defer m.settle()

	if product == nil {
		return View{}, apperror.NewValidation("Por favor, seleccione un producto válido.")
	}
	if cantidad <= 0 {
		return View{}, apperror.NewValidation("Por favor, ingrese una cantidad válida.")
	}
	precio := product.GetDecimal("precio")
	if precio.Sign() <= 0 {
		return View{}, apperror.NewValidation("El producto no tiene un precio válido.")
	}

	payload := domain.Payload{
		"id_orden":        orderID,
		"id_producto":     productID,
		"cantidad":        cantidad,
		"precio_unitario": precio,
		"visible":         true,
	}
	if err := m.lines.Create(ctx, payload); err != nil {
		return View{}, err
	}
	return m.Recalculate(ctx)
}

// UpdateQuantity changes the quantity of one line. The unit price is
// read-only and never rewritten.
func (m *Manager) UpdateQuantity(ctx context.Context, lineID string, cantidad int64) (View, error) {
	m.mu.Lock()
	if m.state != StateReady {
		m.mu.Unlock()
		return View{}, apperror.NewConflict("la orden no está lista para modificaciones")
	}
	m.state = StateMutating
	m.mu.Unlock()
	defer m.settle()

	if cantidad <= 0 {
		return View{}, apperror.NewValidation("La cantidad debe ser mayor a cero.")
	}
	if err := m.lines.Update(ctx, lineID, domain.Payload{"cantidad": cantidad}); err != nil {
		return View{}, err
	}
	return m.Recalculate(ctx)
}

// RemoveLine hides one line and recalculates.
func (m *Manager) RemoveLine(ctx context.Context, lineID string) (View, error) {
	m.mu.Lock()
	if m.state != StateReady {
		m.mu.Unlock()
		return View{}, apperror.NewConflict("la orden no está lista para modificaciones")
	}
	m.state = StateMutating
	m.mu.Unlock()
	defer m.settle()

	if _, err := m.lines.SetVisibility(ctx, lineID, false); err != nil {
		return View{}, err
	}
	return m.Recalculate(ctx)
}

// ClearAll hides every visible line of an order in parallel and resets
// the persisted total to 0.00. Works on any order, open or not; an
// order with no visible lines only gets the total reset.
func (m *Manager) ClearAll(ctx context.Context, orderID string) error {
	details, err := m.lines.FetchByParent(ctx, orderID)
	if err != nil {
		return err
	}

	var visible []domain.Record
	for _, det := range details {
		if det.Visible() {
			visible = append(visible, det)
		}
	}

	if len(visible) > 0 {
		var wg sync.WaitGroup
		errs := make([]error, len(visible))
		for i, det := range visible {
			wg.Add(1)
			go func(i int, lineID string) {
				defer wg.Done()
				_, errs[i] = m.lines.SetVisibility(ctx, lineID, false)
			}(i, det.GetString("id"))
		}
		wg.Wait()
		for _, e := range errs {
			if e != nil {
				return e
			}
		}
	}

	if err := m.orders.Update(ctx, orderID, domain.Payload{"total": decimal.Zero.Round(2)}); err != nil {
		return err
	}
	logger.Info(ctx, "orden vaciada", "orden", orderID, "lineas", len(visible))
	return nil
}

// View projects the current state without touching storage.
func (m *Manager) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buildViewLocked()
}

func (m *Manager) settle() {
	m.mu.Lock()
	if m.state == StateMutating {
		m.state = StateReady
	}
	m.mu.Unlock()
}

// sumVisible computes the order total: quantity times unit price over
// the visible lines only.
func sumVisible(details []domain.Record) decimal.Decimal {
	total := decimal.Zero
	for _, det := range details {
		if !det.Visible() {
			continue
		}
		cantidad := decimal.NewFromInt(det.GetInt("cantidad"))
		total = total.Add(cantidad.Mul(det.GetDecimal("precio_unitario")))
	}
	return total
}

func findByID(records []domain.Record, idField, id string) domain.Record {
	for _, rec := range records {
		if rec.GetString(idField) == id {
			return rec
		}
	}
	return nil
}

// PreviewSubtotal is the local line preview shown while the admin edits
// a quantity: computed client-side from the line values, distinct from
// the persisted order total.
func PreviewSubtotal(cantidad int64, precioUnitario decimal.Decimal) string {
	return fmt.Sprintf("Bs. %s",
		decimal.NewFromInt(cantidad).Mul(precioUnitario).StringFixed(2))
}
