package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"mercadito/internal/core/apperror"
	"mercadito/internal/domain"
	"mercadito/internal/schema"
)

// baseAlias is the alias of the entity's own table in every query.
const baseAlias = "t"

// EntityRepo is the generic repository: one implementation serves
// every configured entity, driven entirely by its schema definition.
// Joined parent columns are selected under dotted aliases
// ("categoria.nombre") and nested into the record after scanning.
type EntityRepo struct {
	def   *schema.Entity
	tx    *TxManager
	audit *AuditLog
}

var _ domain.Repository = (*EntityRepo)(nil)

// NewEntityRepo builds the repository for one entity definition.
func NewEntityRepo(def *schema.Entity, tx *TxManager, audit *AuditLog) *EntityRepo {
	return &EntityRepo{def: def, tx: tx, audit: audit}
}

func (r *EntityRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// baseSelect builds the SELECT with the entity's own columns and every
// configured join, ordered by identifier ascending.
func (r *EntityRepo) baseSelect() squirrel.SelectBuilder {
	cols := []string{
		fmt.Sprintf(`%s.%s AS "%s"`, baseAlias, r.def.IDField, r.def.IDField),
		fmt.Sprintf(`%s.visible AS "visible"`, baseAlias),
	}
	for _, c := range r.def.SelectColumns {
		cols = append(cols, fmt.Sprintf(`%s.%s AS "%s"`, baseAlias, c, c))
	}
	cols = append(cols, joinColumns("", r.def.Joins)...)

	q := r.builder().
		Select(cols...).
		From(fmt.Sprintf("%s AS %s", r.def.Table, baseAlias))
	return appendJoins(q, baseAlias, "", r.def.Joins)
}

// joinColumns lists the joined columns under their dotted aliases,
// recursing into nested joins.
func joinColumns(prefix string, joins []schema.Join) []string {
	var cols []string
	for _, j := range joins {
		path := j.Alias
		if prefix != "" {
			path = prefix + "." + j.Alias
		}
		for _, c := range j.Columns {
			cols = append(cols, fmt.Sprintf(`"%s".%s AS "%s.%s"`, path, c, path, c))
		}
		cols = append(cols, joinColumns(path, j.Joins)...)
	}
	return cols
}

// appendJoins adds LEFT JOINs for the whole join tree. Aliases carry
// the dotted path so the same table can appear at different depths.
func appendJoins(q squirrel.SelectBuilder, parentAlias, prefix string, joins []schema.Join) squirrel.SelectBuilder {
	for _, j := range joins {
		path := j.Alias
		if prefix != "" {
			path = prefix + "." + j.Alias
		}
		q = q.LeftJoin(fmt.Sprintf(`%s AS "%s" ON "%s".%s = %s.%s`,
			j.Table, path, path, j.ForeignKey, quoteAlias(parentAlias), j.LocalKey))
		q = appendJoins(q, path, path, j.Joins)
	}
	return q
}

func quoteAlias(alias string) string {
	if alias == baseAlias {
		return baseAlias
	}
	return `"` + alias + `"`
}

// FetchVisible returns all rows where visible = true.
func (r *EntityRepo) FetchVisible(ctx context.Context) ([]domain.Record, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{baseAlias + ".visible": true}).
		OrderBy(fmt.Sprintf("%s.%s ASC", baseAlias, r.def.IDField))
	return r.selectRecords(ctx, q)
}

// FetchByParent returns all rows scoped to the parent key, hidden rows
// included.
func (r *EntityRepo) FetchByParent(ctx context.Context, parentID string) ([]domain.Record, error) {
	if r.def.OptionParentKey == "" {
		return nil, apperror.NewConfigMissing(r.def.Name)
	}
	q := r.baseSelect().
		Where(squirrel.Eq{baseAlias + "." + r.def.OptionParentKey: parentID}).
		OrderBy(fmt.Sprintf("%s.%s ASC", baseAlias, r.def.IDField))
	return r.selectRecords(ctx, q)
}

// GetByID retrieves a single record.
func (r *EntityRepo) GetByID(ctx context.Context, id string) (domain.Record, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{baseAlias + "." + r.def.IDField: id}).
		Limit(1)
	records, err := r.selectRecords(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperror.NewNotFound(r.def.Name, id)
	}
	return records[0], nil
}

// Create inserts a new row.
func (r *EntityRepo) Create(ctx context.Context, payload domain.Payload) error {
	data := normalizePayload(payload)
	if len(data) == 0 {
		return apperror.NewValidation("no hay datos para insertar")
	}

	sql, args, err := r.builder().
		Insert(r.def.Table).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return r.mapWriteError(err)
	}

	r.audit.Record(ctx, r.def.Name, "create", "", payload)
	return nil
}

// Update modifies an existing row.
func (r *EntityRepo) Update(ctx context.Context, id string, payload domain.Payload) error {
	data := normalizePayload(payload)
	delete(data, r.def.IDField)
	if len(data) == 0 {
		return apperror.NewValidation("no hay datos para actualizar")
	}

	sql, args, err := r.builder().
		Update(r.def.Table).
		SetMap(data).
		Where(squirrel.Eq{r.def.IDField: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return r.mapWriteError(err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.def.Name, id)
	}

	r.audit.Record(ctx, r.def.Name, "update", id, payload)
	return nil
}

// SetVisibility performs soft delete / restore. Re-applying the
// current state short-circuits without issuing a write.
func (r *EntityRepo) SetVisibility(ctx context.Context, id string, targetVisible bool) (bool, error) {
	state := targetVisible
	err := r.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.tx.GetQuerier(ctx)

		sql, args, err := r.builder().
			Select("visible").
			From(r.def.Table).
			Where(squirrel.Eq{r.def.IDField: id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build select visible: %w", err)
		}

		var current bool
		if err := querier.QueryRow(ctx, sql, args...).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperror.NewNotFound(r.def.Name, id)
			}
			return fmt.Errorf("read visibility: %w", err)
		}

		if current == targetVisible {
			state = current
			return nil
		}

		sql, args, err = r.builder().
			Update(r.def.Table).
			Set("visible", targetVisible).
			Where(squirrel.Eq{r.def.IDField: id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update visible: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("update visibility %s: %w", r.def.Table, err)
		}

		state = targetVisible
		r.audit.Record(ctx, r.def.Name, "visibility", id,
			domain.Payload{"visible": targetVisible})
		return nil
	})
	return state, err
}

// ListOptions returns {value, label} pairs for select fields. The
// label joins the configured label columns with spaces, skipping
// empty parts.
func (r *EntityRepo) ListOptions(ctx context.Context, filterParentID string) ([]domain.Option, error) {
	if len(r.def.OptionLabelFields) == 0 {
		return nil, apperror.NewConfigMissing(r.def.Name)
	}

	cols := append([]string{r.def.IDField}, r.def.OptionLabelFields...)
	q := r.builder().
		Select(dedupe(cols)...).
		From(r.def.Table).
		Where(squirrel.Eq{"visible": true}).
		OrderBy(r.def.OptionLabelFields[0] + " ASC")

	if filterParentID != "" {
		if r.def.OptionParentKey == "" {
			return nil, apperror.NewConfigMissing(r.def.Name)
		}
		q = q.Where(squirrel.Eq{r.def.OptionParentKey: filterParentID})
	}

	records, err := r.selectRecords(ctx, q)
	if err != nil {
		return nil, err
	}

	options := make([]domain.Option, 0, len(records))
	for _, rec := range records {
		var parts []string
		for _, f := range r.def.OptionLabelFields {
			if v := rec.GetString(f); v != "" {
				parts = append(parts, v)
			}
		}
		options = append(options, domain.Option{
			Value: rec.GetString(r.def.IDField),
			Label: strings.Join(parts, " "),
		})
	}
	return options, nil
}

// selectRecords runs a SELECT and nests dotted aliases into records.
func (r *EntityRepo) selectRecords(ctx context.Context, q squirrel.SelectBuilder) ([]domain.Record, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []map[string]any
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.def.Table, err)
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, nestRecord(row))
	}
	return records, nil
}

// nestRecord turns flat dotted keys into nested records and converts
// driver types into the scalar forms the domain layer expects.
func nestRecord(flat map[string]any) domain.Record {
	out := make(domain.Record, len(flat))
	for key, value := range flat {
		parts := strings.Split(key, ".")
		cur := out
		for _, part := range parts[:len(parts)-1] {
			next, ok := cur[part].(domain.Record)
			if !ok {
				next = make(domain.Record)
				cur[part] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = normalizeScanned(value)
	}
	return out
}

// normalizeScanned converts pgx driver values into domain scalars.
func normalizeScanned(v any) any {
	switch n := v.(type) {
	case pgtype.Numeric:
		if dv, err := n.Value(); err == nil {
			if s, ok := dv.(string); ok {
				if d, err := decimal.NewFromString(s); err == nil {
					return d
				}
			}
		}
		return v
	case [16]byte:
		return uuid.UUID(n).String()
	default:
		return v
	}
}

// normalizePayload converts write values into forms pgx encodes
// against the column's wire type.
func normalizePayload(payload domain.Payload) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch d := v.(type) {
		case decimal.Decimal:
			out[k] = d.String()
		default:
			out[k] = v
		}
	}
	return out
}

// mapWriteError translates PostgreSQL constraint violations.
func (r *EntityRepo) mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperror.NewDuplicate(r.def.Name, pgErr.ConstraintName, pgErr.Detail).WithCause(err)
		case "23503":
			return apperror.NewConflict("El registro está referenciado por otros datos.").
				WithDetail("entity", r.def.Name).
				WithCause(err)
		}
	}
	return fmt.Errorf("write %s: %w", r.def.Table, err)
}

func dedupe(cols []string) []string {
	seen := make(map[string]struct{}, len(cols))
	out := cols[:0]
	for _, c := range cols {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
