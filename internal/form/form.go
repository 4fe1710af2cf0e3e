// Package form implements the generic record form: a schema-driven
// session holding field values and select options, with cascading
// selects, pre-submit validation and payload building.
package form

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"mercadito/internal/core/apperror"
	"mercadito/internal/core/id"
	"mercadito/internal/domain"
	"mercadito/internal/schema"
	"mercadito/pkg/logger"
)

// Mode distinguishes creation from editing. Some rules only apply on
// edit (the empty-password-keeps-current rule).
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Upload carries a submitted file.
type Upload struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// SelectState is the rendered state of one select field: its option
// list and whether it currently accepts input.
type SelectState struct {
	Options []domain.Option `json:"options"`
	Enabled bool            `json:"enabled"`
}

// Session is one open form for one record. It is not safe for
// concurrent use; each admin interaction owns its session.
type Session struct {
	entity *schema.Entity
	repos  domain.RepositorySet
	files  domain.FileStore

	mode     Mode
	recordID string
	values   map[string]string
	selects  map[string]*SelectState
}

// NewSession builds an unopened session for an entity.
func NewSession(e *schema.Entity, repos domain.RepositorySet, files domain.FileStore) *Session {
	return &Session{
		entity:  e,
		repos:   repos,
		files:   files,
		values:  make(map[string]string),
		selects: make(map[string]*SelectState),
	}
}

// Open initializes the session. An empty recordID opens in create mode
// with defaults; otherwise the record is loaded and the cascade chain
// is resolved top-down so every dependent select shows the stored
// selection inside its correctly scoped option list.
func (s *Session) Open(ctx context.Context, recordID string) error {
	if recordID == "" {
		s.mode = ModeCreate
		for _, f := range s.entity.FormFields {
			if f.Default != nil {
				s.values[f.Name] = toString(f.Default)
			}
		}
	} else {
		s.mode = ModeEdit
		s.recordID = recordID

		repo, ok := s.repos.Repo(s.entity.Name)
		if !ok {
			return apperror.NewConfigMissing(s.entity.Name)
		}
		rec, err := repo.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		for _, f := range s.entity.FormFields {
			if f.Kind == schema.KindPassword || f.Transient {
				continue
			}
			s.values[f.Name] = rec.GetString(f.Name)
		}
		if err := s.resolveParents(ctx); err != nil {
			return err
		}
	}

	return s.populateSelects(ctx)
}

// Mode reports whether the session creates or edits.
func (s *Session) Mode() Mode { return s.mode }

// Entity returns the schema definition backing the session.
func (s *Session) Entity() *schema.Entity { return s.entity }

// Value returns the current value of a field.
func (s *Session) Value(field string) string { return s.values[field] }

// Select returns the state of a select field.
func (s *Session) Select(field string) *SelectState { return s.selects[field] }

// SetValue updates a field and, for cascade parents, repopulates the
// dependent selects.
func (s *Session) SetValue(ctx context.Context, field, value string) error {
	f, ok := s.entity.FindField(field)
	if !ok {
		return apperror.NewValidation("campo desconocido: " + field).WithDetail("field", field)
	}
	if f.Disabled {
		return apperror.NewValidation("el campo no es editable: " + field).WithDetail("field", field)
	}
	s.values[field] = value
	return s.cascadeFrom(ctx, field)
}

// ApplyValues stores submitted values in one pass, without cascade
// side effects; used when the whole form arrives at submit time.
// Disabled and unknown fields are ignored.
func (s *Session) ApplyValues(values map[string]string) {
	for _, f := range s.entity.FormFields {
		if f.Disabled {
			continue
		}
		if v, ok := values[f.Name]; ok {
			s.values[f.Name] = v
		}
	}
}

// Validate checks every submitted field in form order and returns the
// first violation.
func (s *Session) Validate() error {
	isEdit := s.mode == ModeEdit
	for _, f := range s.entity.FormFields {
		if f.Disabled || f.Kind == schema.KindHidden || f.Kind == schema.KindFile {
			continue
		}
		if err := validateField(f, s.values[f.Name], isEdit); err != nil {
			return err
		}
	}
	return nil
}

// Submit validates and persists the form. A file, when present, is
// uploaded first and its public URL replaces the URL field before the
// row is written.
func (s *Session) Submit(ctx context.Context, file *Upload) error {
	if err := s.Validate(); err != nil {
		return err
	}
	repo, ok := s.repos.Repo(s.entity.Name)
	if !ok {
		return apperror.NewConfigMissing(s.entity.Name)
	}

	payload, err := s.buildPayload()
	if err != nil {
		return err
	}

	if file != nil && s.entity.FileField != "" {
		if s.files == nil {
			return apperror.NewUpload(nil)
		}
		url, err := s.files.UploadFile(ctx, file.Name, file.Size, file.Reader)
		if err != nil {
			return err
		}
		payload[s.entity.FileURLField] = url
	}

	if s.mode == ModeCreate {
		if s.entity.UUIDKey {
			payload[s.entity.IDField] = id.New().String()
		}
		payload["visible"] = true
		if err := repo.Create(ctx, payload); err != nil {
			return err
		}
		logger.Info(ctx, "registro creado", "entity", s.entity.Name)
		return nil
	}

	if err := repo.Update(ctx, s.recordID, payload); err != nil {
		return err
	}
	logger.Info(ctx, "registro actualizado",
		"entity", s.entity.Name, "id", s.recordID)
	return nil
}

// buildPayload converts the session values into a typed write payload.
// Transient, hidden-id and file fields never reach the row; disabled
// fields only do when the schema declares a stored default (the usuario
// rol), so display-only fields like order dates stay read-only. An
// empty keep-current password is omitted so the stored hash stands.
func (s *Session) buildPayload() (domain.Payload, error) {
	payload := make(domain.Payload)
	for _, f := range s.entity.FormFields {
		if f.Transient || f.Kind == schema.KindFile || f.Name == s.entity.IDField {
			continue
		}
		if f.Disabled && f.Default == nil {
			continue
		}
		if f.Name == s.entity.FileURLField {
			// Carried over unchanged unless a new file replaces it.
			if v := strings.TrimSpace(s.values[f.Name]); v != "" {
				payload[f.Name] = v
			}
			continue
		}

		value := strings.TrimSpace(s.values[f.Name])
		if value == "" {
			if f.KeepCurrentWhenEmpty && s.mode == ModeEdit {
				continue
			}
			if !f.Required {
				payload[f.Name] = nil
				continue
			}
		}

		switch f.Kind {
		case schema.KindNumber:
			d, err := decimal.NewFromString(value)
			if err != nil {
				return nil, apperror.NewValidation(
					"El campo "+f.Label+" debe ser numérico.").WithDetail("field", f.Name)
			}
			payload[f.Name] = d
		case schema.KindPassword:
			hash, err := bcrypt.GenerateFromPassword([]byte(value), bcrypt.DefaultCost)
			if err != nil {
				return nil, apperror.NewInternal(err)
			}
			payload[f.Name] = string(hash)
		case schema.KindCheckbox:
			payload[f.Name] = value == "true" || value == "on"
		default:
			payload[f.Name] = value
		}
	}
	return payload, nil
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
