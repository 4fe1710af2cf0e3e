package orders

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"mercadito/internal/core/apperror"
	"mercadito/internal/domain"
)

// lineStore keeps order lines in memory, keyed like the real table.
type lineStore struct {
	mu      sync.Mutex
	rows    map[string]domain.Record
	nextID  int
	hideErr error
}

func newLineStore(rows ...domain.Record) *lineStore {
	s := &lineStore{rows: make(map[string]domain.Record), nextID: 1}
	for _, r := range rows {
		s.rows[r.GetString("id")] = r
		s.nextID++
	}
	return s
}

func (s *lineStore) FetchVisible(ctx context.Context) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Record
	for _, r := range s.rows {
		if r.Visible() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *lineStore) FetchByParent(ctx context.Context, parentID string) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Record
	for _, r := range s.rows {
		if r.GetString("id_orden") == parentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *lineStore) GetByID(ctx context.Context, id string) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok {
		return r, nil
	}
	return nil, apperror.NewNotFound("orden_detalle", id)
}

func (s *lineStore) Create(ctx context.Context, payload domain.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := domain.Record{"id": fmt.Sprintf("%d", s.nextID)}
	s.nextID++
	for k, v := range payload {
		rec[k] = v
	}
	s.rows[rec.GetString("id")] = rec
	return nil
}

func (s *lineStore) Update(ctx context.Context, id string, payload domain.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[id]
	if !ok {
		return apperror.NewNotFound("orden_detalle", id)
	}
	for k, v := range payload {
		rec[k] = v
	}
	return nil
}

func (s *lineStore) SetVisibility(ctx context.Context, id string, targetVisible bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hideErr != nil {
		return false, s.hideErr
	}
	rec, ok := s.rows[id]
	if !ok {
		return false, apperror.NewNotFound("orden_detalle", id)
	}
	rec["visible"] = targetVisible
	return targetVisible, nil
}

func (s *lineStore) ListOptions(ctx context.Context, filterParentID string) ([]domain.Option, error) {
	return nil, nil
}

func (s *lineStore) visibleCount(orderID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rows {
		if r.GetString("id_orden") == orderID && r.Visible() {
			n++
		}
	}
	return n
}

// orderStore records total updates and can fail them on demand.
type orderStore struct {
	lineStore
	totals    map[string]decimal.Decimal
	updateErr error
}

func newOrderStore() *orderStore {
	return &orderStore{
		lineStore: *newLineStore(),
		totals:    make(map[string]decimal.Decimal),
	}
}

func (s *orderStore) Update(ctx context.Context, id string, payload domain.Payload) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if total, ok := payload["total"].(decimal.Decimal); ok {
		s.mu.Lock()
		s.totals[id] = total
		s.mu.Unlock()
	}
	return nil
}

func productCatalog() *lineStore {
	return newLineStore(
		domain.Record{"id": "p1", "nombre": "Quinua Real", "precio": "10.00", "visible": true},
		domain.Record{"id": "p2", "nombre": "Miel de Abeja", "precio": "25.00", "visible": true},
		domain.Record{"id": "p3", "nombre": "Descontinuado", "precio": "0", "visible": true},
	)
}

func line(id, orden, producto string, cantidad int64, precio string, visible bool) domain.Record {
	return domain.Record{
		"id": id, "id_orden": orden, "id_producto": producto,
		"cantidad": cantidad, "precio_unitario": precio, "visible": visible,
	}
}

func TestRecalculate_SumsVisibleLinesAndPersists(t *testing.T) {
	ctx := context.Background()
	lines := newLineStore(
		line("1", "o1", "p1", 2, "10.00", true),
		line("2", "o1", "p2", 1, "25.00", true),
		line("3", "o1", "p1", 9, "10.00", false), // hidden, must not count
		line("4", "o2", "p1", 5, "10.00", true),  // otra orden
	)
	orders := newOrderStore()
	m := NewManager(lines, orders, productCatalog())

	view, err := m.Open(ctx, "o1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if view.Total != "Bs. 45.00" {
		t.Errorf("Total = %q, want Bs. 45.00", view.Total)
	}
	if len(view.Lines) != 2 {
		t.Errorf("rendered %d lines, want 2 visible", len(view.Lines))
	}
	if got := orders.totals["o1"]; !got.Equal(decimal.RequireFromString("45.00")) {
		t.Errorf("persisted total = %s, want 45.00", got)
	}
	if view.State != StateReady {
		t.Errorf("state = %s, want ready", view.State)
	}
	if len(view.Products) != 3 {
		t.Errorf("catalog options = %d, want 3", len(view.Products))
	}
}

func TestRecalculate_PersistFailureKeepsLastTotal(t *testing.T) {
	ctx := context.Background()
	lines := newLineStore(line("1", "o1", "p1", 2, "10.00", true))
	orders := newOrderStore()
	m := NewManager(lines, orders, productCatalog())

	if _, err := m.Open(ctx, "o1"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// The next write fails; the shown total must stay at 20.00.
	orders.updateErr = apperror.NewInternal(nil)
	_ = lines.Create(ctx, domain.Payload{
		"id_orden": "o1", "id_producto": "p2", "cantidad": int64(1),
		"precio_unitario": "25.00", "visible": true,
	})
	if _, err := m.Recalculate(ctx); err == nil {
		t.Fatal("Recalculate must surface the persist failure")
	}

	view := m.View()
	if view.Total != "Bs. 20.00" {
		t.Errorf("Total = %q, want last persisted Bs. 20.00", view.Total)
	}
	if got := orders.totals["o1"]; !got.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("stored total = %s, want untouched 20.00", got)
	}
}

func TestAddLine_FreezesCatalogPrice(t *testing.T) {
	ctx := context.Background()
	lines := newLineStore()
	orders := newOrderStore()
	m := NewManager(lines, orders, productCatalog())

	if _, err := m.Open(ctx, "o1"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	view, err := m.AddLine(ctx, "p2", 3)
	if err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}

	if len(view.Lines) != 1 {
		t.Fatalf("rendered %d lines, want 1", len(view.Lines))
	}
	got := view.Lines[0]
	if got.PrecioUnitario != "Bs. 25.00" {
		t.Errorf("unit price = %q, want the catalog price at selection time", got.PrecioUnitario)
	}
	if got.Subtotal != "Bs. 75.00" {
		t.Errorf("subtotal = %q, want Bs. 75.00", got.Subtotal)
	}
	if view.Total != "Bs. 75.00" {
		t.Errorf("Total = %q, want Bs. 75.00", view.Total)
	}
}

func TestAddLine_Rejections(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newLineStore(), newOrderStore(), productCatalog())

	// Before Open the aggregate refuses mutations.
	if _, err := m.AddLine(ctx, "p1", 1); err == nil {
		t.Error("AddLine before Open must fail")
	}

	if _, err := m.Open(ctx, "o1"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	tests := []struct {
		name      string
		productID string
		cantidad  int64
	}{
		{"unknown product", "p99", 1},
		{"zero quantity", "p1", 0},
		{"negative quantity", "p1", -2},
		{"product without price", "p3", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.AddLine(ctx, tt.productID, tt.cantidad)
			appErr, ok := apperror.AsAppError(err)
			if !ok || appErr.Code != apperror.CodeValidation {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}

	// Rejections settle the state; a valid add still works after.
	if _, err := m.AddLine(ctx, "p1", 1); err != nil {
		t.Fatalf("AddLine after rejection failed: %v", err)
	}
}

func TestUpdateQuantity_RewritesOnlyQuantity(t *testing.T) {
	ctx := context.Background()
	lines := newLineStore(line("1", "o1", "p1", 2, "10.00", true))
	orders := newOrderStore()
	m := NewManager(lines, orders, productCatalog())

	if _, err := m.Open(ctx, "o1"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	view, err := m.UpdateQuantity(ctx, "1", 5)
	if err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}

	if view.Total != "Bs. 50.00" {
		t.Errorf("Total = %q, want Bs. 50.00", view.Total)
	}
	rec, _ := lines.GetByID(ctx, "1")
	if rec.GetString("precio_unitario") != "10.00" {
		t.Errorf("unit price must stay frozen, got %v", rec["precio_unitario"])
	}

	if _, err := m.UpdateQuantity(ctx, "1", 0); err == nil {
		t.Error("zero quantity must fail")
	}
}

func TestRemoveLine_HidesAndRecalculates(t *testing.T) {
	ctx := context.Background()
	lines := newLineStore(
		line("1", "o1", "p1", 2, "10.00", true),
		line("2", "o1", "p2", 1, "25.00", true),
	)
	orders := newOrderStore()
	m := NewManager(lines, orders, productCatalog())

	if _, err := m.Open(ctx, "o1"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	view, err := m.RemoveLine(ctx, "2")
	if err != nil {
		t.Fatalf("RemoveLine failed: %v", err)
	}

	if len(view.Lines) != 1 || view.Total != "Bs. 20.00" {
		t.Errorf("after removal: %d lines, total %q", len(view.Lines), view.Total)
	}
	if lines.visibleCount("o1") != 1 {
		t.Errorf("line 2 must be hidden, not deleted")
	}
}

func TestClearAll_HidesEveryLineAndZeroesTotal(t *testing.T) {
	ctx := context.Background()
	lines := newLineStore(
		line("1", "o1", "p1", 2, "10.00", true),
		line("2", "o1", "p2", 1, "25.00", true),
		line("3", "o1", "p1", 4, "10.00", false),
	)
	orders := newOrderStore()
	m := NewManager(lines, orders, productCatalog())

	if err := m.ClearAll(ctx, "o1"); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	if lines.visibleCount("o1") != 0 {
		t.Errorf("%d lines still visible", lines.visibleCount("o1"))
	}
	if got := orders.totals["o1"]; !got.Equal(decimal.Zero) {
		t.Errorf("total = %s, want 0.00", got)
	}
}

func TestClearAll_NoLinesStillResetsTotal(t *testing.T) {
	ctx := context.Background()
	orders := newOrderStore()
	m := NewManager(newLineStore(), orders, productCatalog())

	if err := m.ClearAll(ctx, "o9"); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	if got, ok := orders.totals["o9"]; !ok || !got.Equal(decimal.Zero) {
		t.Errorf("total must be reset to 0.00 even without lines, got %s", got)
	}
}

func TestSummaries_AggregatesUnitsPerOrder(t *testing.T) {
	ctx := context.Background()
	lines := newLineStore(
		line("1", "o1", "p1", 2, "10.00", true),
		line("2", "o1", "p2", 3, "25.00", true),
		line("3", "o2", "p1", 7, "10.00", true),
	)
	orders := newOrderStore()
	orders.rows["o1"] = domain.Record{"id": "o1", "total": "95.00", "estado": "PENDIENTE", "visible": true}
	orders.rows["o2"] = domain.Record{"id": "o2", "total": "70.00", "estado": "ENTREGADO", "visible": true}
	m := NewManager(lines, orders, productCatalog())

	summaries, err := m.Summaries(ctx)
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}

	byOrder := make(map[string]Summary)
	for _, s := range summaries {
		byOrder[s.OrderID] = s
	}
	if got := byOrder["o1"]; got.TotalProductos != 5 || got.Total != "Bs. 95.00" {
		t.Errorf("o1 summary wrong: %+v", got)
	}
	if got := byOrder["o2"]; got.TotalProductos != 7 || got.Estado != "ENTREGADO" {
		t.Errorf("o2 summary wrong: %+v", got)
	}
}

func TestPreviewSubtotal(t *testing.T) {
	got := PreviewSubtotal(3, decimal.RequireFromString("12.5"))
	if got != "Bs. 37.50" {
		t.Errorf("PreviewSubtotal = %q, want Bs. 37.50", got)
	}
}
