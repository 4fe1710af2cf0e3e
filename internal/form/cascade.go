package form

import (
	"context"

	"mercadito/internal/core/apperror"
	"mercadito/internal/domain"
	"mercadito/internal/schema"
)

// Cascading selects: a dependent select (municipio on the localidad
// form, or the departamento → municipio → localidad chain on the zona
// form) is disabled and empty until its parent has a value; choosing a
// parent repopulates it scoped to that parent, keeping a previous
// selection only if it is still in the new option list.

// resolveParents fills in transient ancestor values on edit. The stored
// row only carries the deepest foreign key (a zona row knows its
// localidad); each ancestor is recovered from the child's own record,
// walking the chain upward until every parent value is known.
func (s *Session) resolveParents(ctx context.Context) error {
	// Walk repeatedly; each pass can resolve one more level up.
	for range s.entity.FormFields {
		progressed := false
		for _, f := range s.entity.FormFields {
			if f.Source == nil || f.Source.DependsOn == "" {
				continue
			}
			childValue := s.values[f.Name]
			if childValue == "" || s.values[f.Source.DependsOn] != "" {
				continue
			}
			repo, ok := s.repos.Repo(f.Source.Entity)
			if !ok {
				return apperror.NewConfigMissing(f.Source.Entity)
			}
			rec, err := repo.GetByID(ctx, childValue)
			if err != nil {
				return err
			}
			s.values[f.Source.DependsOn] = rec.GetString(f.Source.DependsOn)
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return nil
}

// populateSelects loads option lists in form order. Unscoped selects
// always load; dependent selects load only when their parent has a
// value, otherwise they start disabled and empty.
func (s *Session) populateSelects(ctx context.Context) error {
	for _, f := range s.entity.FormFields {
		switch {
		case len(f.Enum) > 0:
			state := &SelectState{Enabled: !f.Disabled}
			for _, v := range f.Enum {
				state.Options = append(state.Options, domain.Option{Value: v, Label: v})
			}
			s.selects[f.Name] = state

		case f.Source != nil:
			parentID := ""
			if f.Source.DependsOn != "" {
				parentID = s.values[f.Source.DependsOn]
				if parentID == "" {
					s.selects[f.Name] = &SelectState{Enabled: false}
					continue
				}
			}
			options, err := s.loadOptions(ctx, f, parentID)
			if err != nil {
				return err
			}
			s.selects[f.Name] = &SelectState{Options: options, Enabled: !f.Disabled}
		}
	}
	return nil
}

// cascadeFrom reacts to a parent field change: each direct dependent is
// repopulated (or cleared and disabled when the parent was cleared),
// and the effect propagates down the chain.
func (s *Session) cascadeFrom(ctx context.Context, field string) error {
	for _, child := range s.entity.CascadeChildren(field) {
		parentID := s.values[field]

		if parentID == "" {
			s.values[child.Name] = ""
			s.selects[child.Name] = &SelectState{Enabled: false}
			if err := s.cascadeFrom(ctx, child.Name); err != nil {
				return err
			}
			continue
		}

		options, err := s.loadOptions(ctx, child, parentID)
		if err != nil {
			return err
		}
		s.selects[child.Name] = &SelectState{Options: options, Enabled: !child.Disabled}

		// Keep the current selection only if it survived the rescope.
		if prev := s.values[child.Name]; prev != "" && !hasOption(options, prev) {
			s.values[child.Name] = ""
			if err := s.cascadeFrom(ctx, child.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) loadOptions(ctx context.Context, f schema.Field, parentID string) ([]domain.Option, error) {
	repo, ok := s.repos.Repo(f.Source.Entity)
	if !ok {
		return nil, apperror.NewConfigMissing(f.Source.Entity)
	}
	return repo.ListOptions(ctx, parentID)
}

func hasOption(options []domain.Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}
