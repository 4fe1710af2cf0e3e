package orders

import (
	"context"
	"fmt"
)

// LineView is one rendered order line.
type LineView struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Cantidad       int64  `json:"cantidad"`
	PrecioUnitario string `json:"precio_unitario"`
	Subtotal       string `json:"subtotal"`
}

// ProductOption is one entry of the add-line product select, carrying
// the price frozen into the line on selection.
type ProductOption struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Precio string `json:"precio"`
}

// View is the rendered state of the open order.
type View struct {
	OrderID  string          `json:"order_id"`
	State    State           `json:"state"`
	Lines    []LineView      `json:"lines"`
	Total    string          `json:"total"`
	Products []ProductOption `json:"products"`
}

// Summary is one row of the per-order aggregated table: how many
// product units each order carries across its visible lines.
type Summary struct {
	OrderID        string `json:"order_id"`
	TotalProductos int64  `json:"total_productos"`
	Total          string `json:"total"`
	Estado         string `json:"estado"`
}

// buildViewLocked projects lines and total. Hidden lines never render;
// the total shown is the last successfully persisted one.
func (m *Manager) buildViewLocked() View {
	view := View{
		OrderID: m.orderID,
		State:   m.state,
		Total:   fmt.Sprintf("Bs. %s", m.total.StringFixed(2)),
	}

	for _, det := range m.details {
		if !det.Visible() {
			continue
		}
		cantidad := det.GetInt("cantidad")
		precio := det.GetDecimal("precio_unitario")
		view.Lines = append(view.Lines, LineView{
			ID:             det.GetString("id"),
			ProductID:      det.GetString("id_producto"),
			ProductName:    det.GetString("producto.nombre"),
			Cantidad:       cantidad,
			PrecioUnitario: fmt.Sprintf("Bs. %s", precio.StringFixed(2)),
			Subtotal:       PreviewSubtotal(cantidad, precio),
		})
	}

	for _, p := range m.catalog {
		precio := p.GetDecimal("precio")
		view.Products = append(view.Products, ProductOption{
			ID:     p.GetString("id"),
			Label:  fmt.Sprintf("%s (Bs. %s)", p.GetString("nombre"), precio.StringFixed(2)),
			Precio: precio.StringFixed(2),
		})
	}
	return view
}

// Summaries builds the aggregated per-order table: every visible order
// with the unit count of its visible lines.
func (m *Manager) Summaries(ctx context.Context) ([]Summary, error) {
	ordersList, err := m.orders.FetchVisible(ctx)
	if err != nil {
		return nil, err
	}
	lines, err := m.lines.FetchVisible(ctx)
	if err != nil {
		return nil, err
	}

	units := make(map[string]int64)
	for _, det := range lines {
		if !det.Visible() {
			continue
		}
		units[det.GetString("id_orden")] += det.GetInt("cantidad")
	}

	out := make([]Summary, 0, len(ordersList))
	for _, o := range ordersList {
		oid := o.GetString("id")
		out = append(out, Summary{
			OrderID:        oid,
			TotalProductos: units[oid],
			Total:          fmt.Sprintf("Bs. %s", o.GetDecimal("total").StringFixed(2)),
			Estado:         o.GetString("estado"),
		})
	}
	return out, nil
}
