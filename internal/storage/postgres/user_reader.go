package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mercadito/internal/core/apperror"
	"mercadito/internal/domain"
)

// UserReader resolves panel users by email for sign-in. Kept apart
// from EntityRepo because the password hash is never part of the
// entity's listing projection.
type UserReader struct {
	tx *TxManager
}

// NewUserReader creates the reader.
func NewUserReader(tx *TxManager) *UserReader {
	return &UserReader{tx: tx}
}

// FindByEmail returns the visible user with the given email, password
// hash included.
func (u *UserReader) FindByEmail(ctx context.Context, correo string) (domain.Record, error) {
	sql, args, err := squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select("id", "correo_electronico", "contrasena", "rol", "primer_nombre").
		From("usuario").
		Where(squirrel.Eq{"correo_electronico": correo}).
		Where(squirrel.Eq{"visible": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}

	var rows []map[string]any
	if err := pgxscan.Select(ctx, u.tx.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperror.NewNotFound("usuario", correo)
	}
	return nestRecord(rows[0]), nil
}
