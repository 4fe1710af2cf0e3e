package controller

import (
	"context"
	"sync"
	"time"

	"mercadito/internal/core/apperror"
	"mercadito/internal/domain"
	"mercadito/internal/schema"
)

// Manager activates one table controller per entity on demand and
// tears it down when the view is left. A missing schema or repository
// for an entity fails that activation only; other views keep working.
type Manager struct {
	schemas  *schema.Registry
	repos    domain.RepositorySet
	debounce time.Duration

	mu     sync.Mutex
	active map[string]*TableController
}

// NewManager builds the controller manager.
func NewManager(schemas *schema.Registry, repos domain.RepositorySet) *Manager {
	return &Manager{
		schemas:  schemas,
		repos:    repos,
		debounce: DefaultDebounce,
		active:   make(map[string]*TableController),
	}
}

// SetDebounce overrides the search debounce interval (tests).
func (m *Manager) SetDebounce(d time.Duration) { m.debounce = d }

// Activate builds (or returns) the controller for an entity and loads
// its initial page.
func (m *Manager) Activate(ctx context.Context, entity string, r Renderer) (*TableController, error) {
	def, ok := m.schemas.Get(entity)
	if !ok {
		return nil, apperror.NewConfigMissing(entity)
	}
	repo, ok := m.repos.Repo(entity)
	if !ok {
		return nil, apperror.NewConfigMissing(entity)
	}

	m.mu.Lock()
	c, exists := m.active[entity]
	if !exists {
		c = NewTableController(def, m.schemas, repo, r, m.debounce)
		m.active[entity] = c
	} else {
		c.mu.Lock()
		c.renderer = r
		c.mu.Unlock()
	}
	m.mu.Unlock()

	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the active controller for an entity.
func (m *Manager) Get(entity string) (*TableController, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.active[entity]
	return c, ok
}

// Deactivate drops an entity's controller, cancelling any pending
// debounced search.
func (m *Manager) Deactivate(entity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.active[entity]; ok {
		c.mu.Lock()
		if c.timer != nil {
			c.timer.Stop()
			c.timer = nil
		}
		c.mu.Unlock()
		delete(m.active, entity)
	}
}
