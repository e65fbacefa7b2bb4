package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nagarrakshak/caseledger/internal/errs"
	"github.com/nagarrakshak/caseledger/internal/model"
)

// OfficerRepo implements OfficerRepository using PostgreSQL.
type OfficerRepo struct{ db *DB }

// NewOfficerRepo constructs an officer profile repository.
func NewOfficerRepo(db *DB) *OfficerRepo { return &OfficerRepo{db: db} }

const officerColumns = `id, name, email, role, badge, department, rank, online, status, created_at, last_login_at`

func scanOfficer(row pgx.Row) (model.OfficerProfile, error) {
	var (
		p    model.OfficerProfile
		role string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Email, &role, &p.Badge, &p.Department, &p.Rank,
		&p.Online, &p.Status, &p.CreatedAt, &p.LastLoginAt)
	p.Role = model.Role(role)
	return p, err
}

// UpsertOnLogin inserts the profile on first login; later logins refresh name, email, role
// and last_login_at while keeping directory-managed fields (badge, department, rank, status).
// A login marks the officer online only while their status is active.
func (r *OfficerRepo) UpsertOnLogin(ctx context.Context, id model.Identity, at time.Time) (*model.OfficerProfile, error) {
	const q = `
INSERT INTO officer_profiles (id, name, email, role, online, status, created_at, last_login_at)
VALUES ($1,$2,$3,$4,true,'active',$5,$5)
ON CONFLICT (id) DO UPDATE
SET name=EXCLUDED.name, email=EXCLUDED.email, role=EXCLUDED.role,
    online=(officer_profiles.status = 'active'), last_login_at=EXCLUDED.last_login_at
RETURNING ` + officerColumns
	p, err := scanOfficer(r.db.Pool.QueryRow(ctx, q, id.Subject, id.Name, id.Email, string(id.Role), at))
	if err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

// List returns profiles ordered by name; an empty role lists everyone.
func (r *OfficerRepo) List(ctx context.Context, role model.Role) ([]model.OfficerProfile, error) {
	q := `SELECT ` + officerColumns + ` FROM officer_profiles WHERE ($1 = '' OR role = $1) ORDER BY name ASC`
	rows, err := r.db.Pool.Query(ctx, q, string(role))
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []model.OfficerProfile
	for rows.Next() {
		p, err := scanOfficer(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, p)
	}
	return out, classify(rows.Err())
}

// GetByID loads one profile.
func (r *OfficerRepo) GetByID(ctx context.Context, id string) (*model.OfficerProfile, error) {
	q := `SELECT ` + officerColumns + ` FROM officer_profiles WHERE id=$1`
	p, err := scanOfficer(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, classify(err)
	}
	return &p, nil
}

// SetStatus updates availability flags of a profile.
func (r *OfficerRepo) SetStatus(ctx context.Context, id, status string, online bool) error {
	const q = `UPDATE officer_profiles SET status=$2, online=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, status, online)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
