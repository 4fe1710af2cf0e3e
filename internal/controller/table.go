// Package controller implements the generic table controller: one
// implementation drives every entity's list view from its schema
// definition. Search, pagination, secondary filtering and the
// soft-delete actions all live here.
package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"mercadito/internal/core/apperror"
	"mercadito/internal/core/appctx"
	"mercadito/internal/domain"
	"mercadito/internal/schema"
	"mercadito/pkg/logger"
)

// DefaultDebounce is the pause after the last keystroke before a
// non-empty search term is applied.
const DefaultDebounce = 300 * time.Millisecond

// Renderer receives the table view whenever controller state changes.
// The HTTP layer implements it by capturing the view for the response.
type Renderer interface {
	Render(view TableView)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(view TableView)

func (f RendererFunc) Render(view TableView) { f(view) }

// TableController owns the list-view state of one entity: the fetched
// dataset, the active search term and secondary filter, and the current
// page. Rendering is always a projection of that state; every state
// change re-renders from scratch.
type TableController struct {
	entity   *schema.Entity
	registry *schema.Registry
	repo     domain.Repository
	renderer Renderer

	debounce time.Duration

	mu          sync.Mutex
	rows        []domain.Record
	filtered    []domain.Record
	page        int
	term        string
	filterValue string
	timer       *time.Timer
}

// NewTableController wires a controller for one entity. The debounce
// interval is configurable so tests do not have to sleep.
func NewTableController(e *schema.Entity, reg *schema.Registry, repo domain.Repository, r Renderer, debounce time.Duration) *TableController {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	c := &TableController{
		entity:   e,
		registry: reg,
		repo:     repo,
		renderer: r,
		debounce: debounce,
		page:     1,
	}
	if e.Filter != nil {
		c.filterValue = e.Filter.All
	}
	return c
}

// Load fetches the visible dataset and re-renders from a clean slate:
// the search term, secondary filter and page all reset, so a reload
// after a mutation always lands on the first unfiltered page.
// Concurrent loads are not serialized against each other: the load
// that finishes last wins.
func (c *TableController) Load(ctx context.Context) error {
	rows, err := c.repo.FetchVisible(ctx)
	if err != nil {
		logger.Error(ctx, "cargar tabla falló",
			"entity", c.entity.Name, "error", err)
		return err
	}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.rows = rows
	c.term = ""
	if c.entity.Filter != nil {
		c.filterValue = c.entity.Filter.All
	}
	c.page = 1
	c.applyFilterLocked()
	view := c.buildViewLocked()
	r := c.renderer
	c.mu.Unlock()

	r.Render(view)
	return nil
}

// SetSearchTerm updates the search term. Non-empty terms wait out the
// debounce interval so intermediate keystrokes never trigger a render;
// clearing the term applies immediately and also resets the secondary
// filter to its "all" value.
func (c *TableController) SetSearchTerm(term string) {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	if strings.TrimSpace(term) == "" {
		c.term = ""
		if c.entity.Filter != nil {
			c.filterValue = c.entity.Filter.All
		}
		c.page = 1
		c.applyFilterLocked()
		view := c.buildViewLocked()
		r := c.renderer
		c.mu.Unlock()
		r.Render(view)
		return
	}

	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		c.term = term
		c.page = 1
		c.applyFilterLocked()
		view := c.buildViewLocked()
		r := c.renderer
		c.mu.Unlock()
		r.Render(view)
	})
	c.mu.Unlock()
}

// SetFilter applies a secondary-filter value (the usuario role filter)
// immediately, clearing the search term and resetting to the first
// page; the reset is mutual with SetSearchTerm's empty-term case.
// Unknown values fall back to the "all" sentinel.
func (c *TableController) SetFilter(value string) {
	if c.entity.Filter == nil {
		return
	}
	valid := value == c.entity.Filter.All
	for _, v := range c.entity.Filter.Values {
		if v == value {
			valid = true
		}
	}
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if !valid {
		value = c.entity.Filter.All
	}
	c.term = ""
	c.filterValue = value
	c.page = 1
	c.applyFilterLocked()
	view := c.buildViewLocked()
	r := c.renderer
	c.mu.Unlock()
	r.Render(view)
}

// GoToPage navigates to the given page. Out-of-range requests are
// ignored; only a dataset shrink self-corrects the current page.
func (c *TableController) GoToPage(page int) {
	c.mu.Lock()
	totalPages := (len(c.filtered) + PageSize - 1) / PageSize
	if page < 1 || (totalPages > 0 && page > totalPages) {
		c.mu.Unlock()
		return
	}
	c.page = page
	view := c.buildViewLocked()
	r := c.renderer
	c.mu.Unlock()
	r.Render(view)
}

// Hide soft-deletes a record and reloads the table. Hiding an already
// hidden record is a no-op at the repository.
func (c *TableController) Hide(ctx context.Context, recordID string) error {
	if c.entity.SelfDeleteGuard {
		if uid := appctx.GetSessionUserID(ctx); uid != "" && uid == recordID {
			return apperror.NewForbidden("No puedes eliminar tu propia cuenta de administrador.")
		}
	}
	if _, err := c.repo.SetVisibility(ctx, recordID, false); err != nil {
		logger.Error(ctx, "ocultar registro falló",
			"entity", c.entity.Name, "id", recordID, "error", err)
		return err
	}
	return c.Load(ctx)
}

// Restore makes a hidden record visible again. Only entities that allow
// restore expose it.
func (c *TableController) Restore(ctx context.Context, recordID string) error {
	if !c.entity.AllowRestore {
		return apperror.NewForbidden(
			fmt.Sprintf("la tabla %s no permite restaurar registros", c.entity.Name))
	}
	if _, err := c.repo.SetVisibility(ctx, recordID, true); err != nil {
		return err
	}
	return c.Load(ctx)
}

// View renders the current state without changing it.
func (c *TableController) View() TableView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildViewLocked()
}

// applyFilterLocked recomputes the filtered dataset from the search
// term and secondary filter. Both must match; matching is substring,
// case-insensitive, across the configured search fields.
func (c *TableController) applyFilterLocked() {
	term := strings.ToLower(strings.TrimSpace(c.term))

	c.filtered = c.filtered[:0]
	for _, rec := range c.rows {
		if !c.matchesFilter(rec) {
			continue
		}
		if term != "" && !c.matchesTerm(rec, term) {
			continue
		}
		c.filtered = append(c.filtered, rec)
	}
}

func (c *TableController) matchesFilter(rec domain.Record) bool {
	f := c.entity.Filter
	if f == nil || c.filterValue == "" || c.filterValue == f.All {
		return true
	}
	return strings.EqualFold(rec.GetString(f.Field), c.filterValue)
}

func (c *TableController) matchesTerm(rec domain.Record, term string) bool {
	for _, path := range c.entity.SearchFields {
		if strings.Contains(strings.ToLower(rec.GetString(path)), term) {
			return true
		}
	}
	return false
}

// buildViewLocked projects the current state into a TableView. A page
// beyond the end of the shrunk dataset self-corrects to the last page.
func (c *TableController) buildViewLocked() TableView {
	total := len(c.filtered)
	totalPages := (total + PageSize - 1) / PageSize

	if totalPages == 0 {
		c.page = 1
	} else if c.page > totalPages {
		c.page = totalPages
	} else if c.page < 1 {
		c.page = 1
	}

	view := TableView{
		Entity:      c.entity.Name,
		TotalRows:   total,
		Pager:       buildPager(c.page, totalPages),
		AllowCreate: c.entity.AllowCreate,
	}
	for _, col := range c.entity.Columns {
		view.Headers = append(view.Headers, col.Header)
	}

	if total == 0 {
		view.Empty = true
		if strings.TrimSpace(c.term) != "" {
			view.EmptyMessage = fmt.Sprintf("No se encontraron registros para %q.", c.term)
		} else {
			view.EmptyMessage = "No hay registros para mostrar."
		}
		return view
	}

	start := (c.page - 1) * PageSize
	end := start + PageSize
	if end > total {
		end = total
	}
	for _, rec := range c.filtered[start:end] {
		view.Rows = append(view.Rows, c.buildRow(rec))
	}
	return view
}

func (c *TableController) buildRow(rec domain.Record) Row {
	row := Row{
		ID:         rec.GetString(c.entity.IDField),
		CanRestore: c.entity.AllowRestore && !rec.Visible(),
	}
	for _, col := range c.entity.Columns {
		cell := Cell{Header: col.Header, Image: col.Format == schema.FormatImage}
		if col.Expr != "" {
			value, err := c.registry.EvalColumn(c.entity.Name, col.Header, rec)
			if err != nil {
				value = ""
			}
			cell.Value = value
		} else {
			cell.Value = formatCell(rec, col)
		}
		row.Cells = append(row.Cells, cell)
	}
	return row
}
