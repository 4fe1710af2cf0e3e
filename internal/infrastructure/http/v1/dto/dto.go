// Package dto provides request/response shapes for the admin API.
package dto

import (
	"mercadito/internal/form"
	"mercadito/internal/schema"
)

// LoginRequest is the sign-in body.
type LoginRequest struct {
	Correo     string `json:"correo" binding:"required"`
	Contrasena string `json:"contrasena" binding:"required"`
}

// SearchRequest updates the table search term.
type SearchRequest struct {
	Term string `json:"term"`
}

// FilterRequest applies the secondary filter.
type FilterRequest struct {
	Value string `json:"value" binding:"required"`
}

// OpenFormRequest opens a form session.
type OpenFormRequest struct {
	RecordID string `json:"record_id"`
}

// SetValueRequest changes one form field, triggering cascades.
type SetValueRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// SubmitRequest carries all form values for a plain (non-file) submit.
type SubmitRequest struct {
	Values map[string]string `json:"values" binding:"required"`
}

// AddLineRequest appends a product to an order.
type AddLineRequest struct {
	ProductID string `json:"id_producto" binding:"required"`
	Cantidad  int64  `json:"cantidad" binding:"required"`
}

// UpdateLineRequest changes a line quantity.
type UpdateLineRequest struct {
	Cantidad int64 `json:"cantidad" binding:"required"`
}

// FieldView is one rendered form field.
type FieldView struct {
	Name      string            `json:"name"`
	Label     string            `json:"label"`
	Kind      schema.FieldKind  `json:"kind"`
	Required  bool              `json:"required"`
	Disabled  bool              `json:"disabled"`
	MaxLength int               `json:"max_length,omitempty"`
	Value     string            `json:"value"`
	Select    *form.SelectState `json:"select,omitempty"`
}

// FormView is the rendered state of an open form session.
type FormView struct {
	SessionID string      `json:"session_id"`
	Entity    string      `json:"entity"`
	Label     string      `json:"label"`
	Mode      form.Mode   `json:"mode"`
	Fields    []FieldView `json:"fields"`
}

// NewFormView projects a session.
func NewFormView(sessionID string, s *form.Session) FormView {
	def := s.Entity()
	view := FormView{
		SessionID: sessionID,
		Entity:    def.Name,
		Label:     def.Label,
		Mode:      s.Mode(),
	}
	for _, f := range def.FormFields {
		view.Fields = append(view.Fields, FieldView{
			Name:      f.Name,
			Label:     f.Label,
			Kind:      f.Kind,
			Required:  f.Required,
			Disabled:  f.Disabled,
			MaxLength: f.MaxLength,
			Value:     s.Value(f.Name),
			Select:    s.Select(f.Name),
		})
	}
	return view
}
