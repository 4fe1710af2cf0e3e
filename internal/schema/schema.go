// Package schema is the static registry describing every managed entity:
// its table, identifier, list columns, search fields, joins, and form
// field descriptors. Pure configuration; all per-entity behavioural
// quirks live here instead of in controller branches.
package schema

// FieldKind defines how a form field is rendered and validated.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindNumber   FieldKind = "number"
	KindTextarea FieldKind = "textarea"
	KindEmail    FieldKind = "email"
	KindPassword FieldKind = "password"
	KindFile     FieldKind = "file"
	KindHidden   FieldKind = "hidden"
	KindCheckbox FieldKind = "checkbox"
	KindSelect   FieldKind = "select"
	KindDatetime FieldKind = "datetime"
)

// Pattern identifies a client-side validation rule. Validation stops at
// the first violated rule and surfaces a single message.
type Pattern string

const (
	PatternNone Pattern = ""
	// Letters (including accented) and spaces only.
	PatternLetters Pattern = "letters"
	// Digits only, of exactly Len digits.
	PatternDigits Pattern = "digits"
	// Standard email shape.
	PatternEmail Pattern = "email"
	// Min 8 chars with uppercase, digit and special (@$!%*?&).
	PatternPassword Pattern = "password"
)

// ColumnFormat controls list-cell presentation.
type ColumnFormat string

const (
	FormatNone ColumnFormat = ""
	// Money renders "Bs. %.2f".
	FormatMoney ColumnFormat = "money"
	// Image marks the cell value as an image URL.
	FormatImage ColumnFormat = "image"
	// Truncate cuts long text at TruncateAt runes with an ellipsis.
	FormatTruncate ColumnFormat = "truncate"
)

// Column describes one table-view column: either a source field path
// (dotted access into joined records) or a derived CEL expression.
type Column struct {
	Header string
	// Path is a dotted source field path, e.g. "categoria.nombre".
	Path string
	// Expr is a CEL expression over `row` for derived columns
	// (full name, composed address). Mutually exclusive with Path.
	Expr string
	// Format selects cell presentation.
	Format ColumnFormat
	// TruncateAt applies with FormatTruncate.
	TruncateAt int
}

// OptionSource describes where a select field loads its options from.
type OptionSource struct {
	// Entity whose ListOptions operation backs this select.
	Entity string
	// DependsOn names a sibling field whose current value scopes the
	// option list (cascading selects). Empty means unscoped.
	DependsOn string
}

// Field describes one form field.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	Disabled bool
	// MaxLength limits text input (0 = unlimited).
	MaxLength int
	// Pattern and PatternLen drive pre-submit validation.
	Pattern    Pattern
	PatternLen int
	// Message overrides the default validation message for Pattern.
	Message string
	// Enum holds static options for enum selects.
	Enum []string
	// Source holds the dynamic option source for reference selects.
	Source *OptionSource
	// Default value applied on create when the field is left empty.
	Default any
	// KeepCurrentWhenEmpty skips the field on edit when submitted empty
	// (password semantics: "leave blank to keep the current one").
	KeepCurrentWhenEmpty bool
	// Transient fields exist only to drive a cascade (e.g. the
	// departamento select on the zona form); they are never submitted.
	Transient bool
}

// Join describes an embedded parent row in the select specification.
// Joined columns appear as a nested record under Alias.
type Join struct {
	Table      string
	Alias      string
	LocalKey   string
	ForeignKey string
	Columns    []string
	// Nested joins walk further up the hierarchy
	// (zona → localidad → municipio → departamento).
	Joins []Join
}

// SecondaryFilter is an optional categorical filter intersected with
// the search term (the usuario role filter).
type SecondaryFilter struct {
	Field  string
	Values []string
	// All is the sentinel value meaning "no filtering".
	All string
}

// Entity describes one managed record type.
type Entity struct {
	Name  string
	Label string
	Table string

	// IDField is the unique identifier column. Not the same name across
	// entities (id, id_direccion, id_departamento, ...).
	IDField string
	// UUIDKey marks entities keyed by UUID instead of a serial.
	UUIDKey bool

	// Columns is the ordered table view definition.
	Columns []Column
	// SearchFields are the dotted paths matched by substring search.
	SearchFields []string
	// Filter is the optional secondary categorical filter.
	Filter *SecondaryFilter

	// SelectColumns are the entity's own columns fetched for listing
	// and editing. The id field and "visible" are always included.
	SelectColumns []string
	// Joins embed parent rows into fetched records.
	Joins []Join

	// FormFields is the ordered form definition.
	FormFields []Field

	// OptionLabelFields are the columns joined (space-separated) into
	// the label in ListOptions.
	OptionLabelFields []string
	// OptionParentKey scopes ListOptions to a parent id (municipio
	// lists by id_departamento). Empty means no scoping supported.
	OptionParentKey string

	// AllowCreate exposes the create action in the generic table view.
	AllowCreate bool
	// SelfDeleteGuard refuses hiding the signed-in account's own row.
	// The refusal happens before any write is attempted.
	SelfDeleteGuard bool
	// AllowRestore makes the visibility toggle reversible from the
	// admin UI (categoria, departamento). Others hard-disable.
	AllowRestore bool
	// FileField names the form's upload field; FileURLField receives
	// the uploaded file's public URL. Empty for non-file entities.
	FileField    string
	FileURLField string
}

// EditableIDField reports whether the form exposes the id field as an
// editable input. Must always be false: the id may appear hidden or
// disabled but never user-editable.
func (e *Entity) EditableIDField() bool {
	for _, f := range e.FormFields {
		if f.Name == e.IDField && f.Kind != KindHidden && !f.Disabled {
			return true
		}
	}
	return false
}

// FindField returns the form field descriptor by name.
func (e *Entity) FindField(name string) (Field, bool) {
	for _, f := range e.FormFields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// CascadeChildren returns the fields whose options depend on the given
// field, in form order.
func (e *Entity) CascadeChildren(parent string) []Field {
	var out []Field
	for _, f := range e.FormFields {
		if f.Source != nil && f.Source.DependsOn == parent {
			out = append(out, f)
		}
	}
	return out
}
