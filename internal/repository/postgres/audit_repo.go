package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nagarrakshak/caseledger/internal/model"
)

// AuditRepo implements AuditRepository using PostgreSQL.
type AuditRepo struct{ db *DB }

// NewAuditRepo constructs an audit log repository.
func NewAuditRepo(db *DB) *AuditRepo { return &AuditRepo{db: db} }

// Append inserts one audit entry.
func (r *AuditRepo) Append(ctx context.Context, e model.AuditLogEntry) error {
	const q = `
INSERT INTO audit_logs (id, action, target_type, target_id, actor, details, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`
	details := "{}"
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		details = string(b)
	}
	_, err := r.db.Pool.Exec(ctx, q, e.ID, e.Action, e.TargetType, e.TargetID, e.Actor, details, e.CreatedAt)
	return classify(err)
}

// List returns entries newest first. Empty filters match everything.
func (r *AuditRepo) List(ctx context.Context, targetType, targetID string, limit int) ([]model.AuditLogEntry, error) {
	const q = `
SELECT id, action, target_type, target_id, actor, details, created_at
FROM audit_logs
WHERE ($1 = '' OR target_type = $1) AND ($2 = '' OR target_id = $2)
ORDER BY created_at DESC LIMIT $3`
	rows, err := r.db.Pool.Query(ctx, q, targetType, targetID, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []model.AuditLogEntry
	for rows.Next() {
		var (
			e   model.AuditLogEntry
			doc []byte
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.TargetType, &e.TargetID, &e.Actor, &doc, &e.CreatedAt); err != nil {
			return nil, classify(err)
		}
		if len(doc) > 0 {
			if err := json.Unmarshal(doc, &e.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, classify(rows.Err())
}
