package repository

import (
	"context"
	"time"

	"github.com/nagarrakshak/caseledger/internal/model"
)

// OfficerRepository stores officer profiles keyed by auth-provider subject.
type OfficerRepository interface {
	// UpsertOnLogin creates the profile on first login and refreshes identity fields afterwards.
	UpsertOnLogin(ctx context.Context, id model.Identity, at time.Time) (*model.OfficerProfile, error)
	// List returns profiles, optionally restricted to one role (empty = all).
	List(ctx context.Context, role model.Role) ([]model.OfficerProfile, error)
	// GetByID loads a profile.
	GetByID(ctx context.Context, id string) (*model.OfficerProfile, error)
	// SetStatus updates availability flags.
	SetStatus(ctx context.Context, id, status string, online bool) error
}

// AuditRepository appends and lists audit entries.
type AuditRepository interface {
	// Append stores one entry.
	Append(ctx context.Context, e model.AuditLogEntry) error
	// List returns entries for a target (empty targetType/targetID = any), newest first.
	List(ctx context.Context, targetType, targetID string, limit int) ([]model.AuditLogEntry, error)
}
