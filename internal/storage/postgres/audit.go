package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/klauspost/compress/zstd"

	"mercadito/internal/core/appctx"
	"mercadito/internal/domain"
	"mercadito/pkg/logger"
)

// AuditLog records every write (create, update, visibility change)
// into audit_log with the payload compressed as zstd-framed JSON.
// Recording is best-effort: a failed audit write is logged, never
// propagated, so it cannot fail the admin's operation.
type AuditLog struct {
	tx      *TxManager
	encoder *zstd.Encoder
}

// NewAuditLog builds the audit writer.
func NewAuditLog(tx *TxManager) (*AuditLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &AuditLog{tx: tx, encoder: encoder}, nil
}

// Record writes one audit entry. Safe on a nil receiver so tests and
// tools can run repositories without auditing.
func (a *AuditLog) Record(ctx context.Context, entity, action, recordID string, payload domain.Payload) {
	if a == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Warn(ctx, "serializar auditoría falló",
			"entity", entity, "action", action, "error", err)
		return
	}
	compressed := a.encoder.EncodeAll(raw, nil)

	sql, args, err := squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Insert("audit_log").
		Columns("entity", "action", "record_id", "actor", "payload").
		Values(entity, action, nullable(recordID), nullable(appctx.GetSessionUserID(ctx)), compressed).
		ToSql()
	if err != nil {
		logger.Warn(ctx, "construir auditoría falló", "error", err)
		return
	}

	if _, err := a.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		logger.Warn(ctx, "registrar auditoría falló",
			"entity", entity, "action", action, "error", err)
	}
}

// Decompress restores an audit payload, for inspection tooling.
func Decompress(compressed []byte) (domain.Payload, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	raw, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress audit payload: %w", err)
	}

	var payload domain.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode audit payload: %w", err)
	}
	return payload, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
