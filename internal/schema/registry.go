package schema

import (
	"fmt"
)

// Registry stores entity definitions and their compiled column
// expressions. Built once at startup; read-only afterwards.
type Registry struct {
	entities map[string]*Entity
	order    []string
	exprs    map[string]map[string]*compiledExpr
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*Entity),
		exprs:    make(map[string]map[string]*compiledExpr),
	}
}

// Register adds an entity definition, compiling its derived column
// expressions. It enforces the schema invariants:
//   - the id field is never exposed as an editable form field
//   - derived columns must compile
func (r *Registry) Register(e *Entity) error {
	if e.Name == "" || e.Table == "" || e.IDField == "" {
		return fmt.Errorf("entity definition incomplete: %+v", e.Name)
	}
	if e.EditableIDField() {
		return fmt.Errorf("entity %s exposes its id field as editable", e.Name)
	}
	if _, dup := r.entities[e.Name]; dup {
		return fmt.Errorf("entity %s registered twice", e.Name)
	}

	env, err := newExprEnv()
	if err != nil {
		return fmt.Errorf("build expression env: %w", err)
	}

	compiled := make(map[string]*compiledExpr)
	for _, col := range e.Columns {
		if col.Expr == "" {
			continue
		}
		if col.Path != "" {
			return fmt.Errorf("entity %s column %q sets both Path and Expr", e.Name, col.Header)
		}
		prg, err := compileExpr(env, col.Expr)
		if err != nil {
			return fmt.Errorf("entity %s: %w", e.Name, err)
		}
		compiled[col.Header] = prg
	}

	r.entities[e.Name] = e
	r.order = append(r.order, e.Name)
	r.exprs[e.Name] = compiled
	return nil
}

// MustRegister panics on registration failure. Entity definitions are
// static; a failure here is a programming error caught at startup.
func (r *Registry) MustRegister(e *Entity) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Get returns the entity definition by name.
func (r *Registry) Get(name string) (*Entity, bool) {
	e, ok := r.entities[name]
	return e, ok
}

// List returns all entities in registration order.
func (r *Registry) List() []*Entity {
	out := make([]*Entity, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entities[name])
	}
	return out
}

// EvalColumn renders a derived column for one row. Returns "" with a
// nil error for columns that have no expression.
func (r *Registry) EvalColumn(entity, header string, row map[string]any) (string, error) {
	exprs, ok := r.exprs[entity]
	if !ok {
		return "", fmt.Errorf("unknown entity %s", entity)
	}
	prg, ok := exprs[header]
	if !ok {
		return "", nil
	}
	return prg.eval(row)
}
