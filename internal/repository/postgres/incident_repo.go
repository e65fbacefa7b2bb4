package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nagarrakshak/caseledger/internal/errs"
	"github.com/nagarrakshak/caseledger/internal/model"
	"github.com/nagarrakshak/caseledger/internal/officername"
)

// IncidentRepo implements IncidentRepository using PostgreSQL.
type IncidentRepo struct{ db *DB }

// NewIncidentRepo constructs an incident repository.
func NewIncidentRepo(db *DB) *IncidentRepo { return &IncidentRepo{db: db} }

const incidentColumns = `reference_number, victim_name, phone, incident_type, incident_datetime, location,
description, suspects, witnesses, property_details, contact_email, created_at,
assigned_officer, COALESCE(assigned_officer_id, '')`

func scanIncident(row pgx.Row) (model.IncidentRecord, error) {
	var r model.IncidentRecord
	err := row.Scan(
		&r.ReferenceNumber, &r.VictimName, &r.Phone, &r.IncidentType, &r.IncidentDateTime, &r.Location,
		&r.Description, &r.Suspects, &r.Witnesses, &r.PropertyDetails, &r.ContactEmail, &r.CreatedAt,
		&r.AssignedOfficer, &r.AssignedOfficerID,
	)
	return r, err
}

// ListAll returns every live incident ordered by creation time, newest first.
func (r *IncidentRepo) ListAll(ctx context.Context) ([]model.IncidentRecord, error) {
	q := `SELECT ` + incidentColumns + ` FROM incidents ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []model.IncidentRecord
	for rows.Next() {
		rec, err := scanIncident(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, rec)
	}
	return out, classify(rows.Err())
}

// GetByReference loads a single incident.
func (r *IncidentRepo) GetByReference(ctx context.Context, ref string) (*model.IncidentRecord, error) {
	q := `SELECT ` + incidentColumns + ` FROM incidents WHERE reference_number=$1`
	rec, err := scanIncident(r.db.Pool.QueryRow(ctx, q, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, classify(err)
	}
	return &rec, nil
}

// withTx runs fn inside a transaction, committing on success and rolling back otherwise.
func (r *IncidentRepo) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return classify(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = classify(e)
		}
	}()
	return fn(tx)
}

func lockIncident(ctx context.Context, tx pgx.Tx, ref string) (model.IncidentRecord, error) {
	q := `SELECT ` + incidentColumns + ` FROM incidents WHERE reference_number=$1 FOR UPDATE`
	rec, err := scanIncident(tx.QueryRow(ctx, q, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, errs.ErrNotFound
		}
		return rec, classify(err)
	}
	return rec, nil
}

// Delete copies the incident into deleted_incidents and removes the live row atomically.
func (r *IncidentRepo) Delete(ctx context.Context, ref, reason, actor string, at time.Time) error {
	const ins = `INSERT INTO deleted_incidents (reference_number, record, reason, deleted_at, deleted_by) VALUES ($1,$2,$3,$4,$5)`
	const del = `DELETE FROM incidents WHERE reference_number=$1`

	return r.withTx(ctx, func(tx pgx.Tx) error {
		rec, err := lockIncident(ctx, tx, ref)
		if err != nil {
			return err
		}
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode incident %s: %w", ref, err)
		}
		if _, err := tx.Exec(ctx, ins, ref, string(doc), reason, at, actor); err != nil {
			return classify(err)
		}
		if _, err := tx.Exec(ctx, del, ref); err != nil {
			return classify(err)
		}
		return nil
	})
}

// Transfer appends a transfer log entry and reassigns the incident atomically.
func (r *IncidentRepo) Transfer(ctx context.Context, req model.TransferRequest) (from string, err error) {
	const ins = `
INSERT INTO transfer_logs (id, case_id, from_officer, to_officer, reason, transferred_at, performed_by)
VALUES ($1,$2,$3,$4,$5,$6,$7)`
	const upd = `UPDATE incidents SET assigned_officer=$2, assigned_officer_id=NULLIF($3,'') WHERE reference_number=$1`

	err = r.withTx(ctx, func(tx pgx.Tx) error {
		rec, err := lockIncident(ctx, tx, req.CaseID)
		if err != nil {
			return err
		}
		from = rec.AssignedOfficer
		if req.FromOfficer != "" && !officername.Equal(req.FromOfficer, from) {
			return fmt.Errorf("case %s is assigned to %q, not %q: %w", req.CaseID, from, req.FromOfficer, errs.ErrVersionConflict)
		}
		if officername.Equal(from, req.ToOfficer) {
			return errs.Validationf("case %s is already assigned to %s", req.CaseID, from)
		}
		if _, err := tx.Exec(ctx, ins,
			req.LogID, req.CaseID, from, req.ToOfficer, req.Reason, req.TransferredAt, req.PerformedBy,
		); err != nil {
			return classify(err)
		}
		if _, err := tx.Exec(ctx, upd, req.CaseID, req.ToOfficer, req.ToOfficerID); err != nil {
			return classify(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return from, nil
}

// ListTransfers returns the transfer log of a case, oldest first.
func (r *IncidentRepo) ListTransfers(ctx context.Context, caseID string) ([]model.TransferLogEntry, error) {
	const q = `
SELECT id, case_id, from_officer, to_officer, reason, transferred_at, performed_by
FROM transfer_logs WHERE case_id=$1 ORDER BY transferred_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, caseID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []model.TransferLogEntry
	for rows.Next() {
		var e model.TransferLogEntry
		if err := rows.Scan(&e.ID, &e.CaseID, &e.FromOfficer, &e.ToOfficer, &e.Reason, &e.TransferredAt, &e.PerformedBy); err != nil {
			return nil, classify(err)
		}
		out = append(out, e)
	}
	return out, classify(rows.Err())
}

// ListDeleted returns deleted incidents, most recent first.
func (r *IncidentRepo) ListDeleted(ctx context.Context, limit int) ([]model.DeletedRecord, error) {
	const q = `
SELECT record, reason, deleted_at, deleted_by
FROM deleted_incidents ORDER BY deleted_at DESC LIMIT $1`
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []model.DeletedRecord
	for rows.Next() {
		var (
			doc []byte
			d   model.DeletedRecord
		)
		if err := rows.Scan(&doc, &d.Reason, &d.DeletedAt, &d.DeletedBy); err != nil {
			return nil, classify(err)
		}
		if err := json.Unmarshal(doc, &d.Record); err != nil {
			return nil, fmt.Errorf("decode deleted incident: %w", err)
		}
		out = append(out, d)
	}
	return out, classify(rows.Err())
}
