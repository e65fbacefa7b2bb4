// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/nagarrakshak/caseledger/internal/model"
)

// IncidentRepository provides access to live incidents and their deletion/transfer trail.
type IncidentRepository interface {
	// ListAll returns every live incident, newest first.
	ListAll(ctx context.Context) ([]model.IncidentRecord, error)
	// GetByReference loads one incident by reference number.
	GetByReference(ctx context.Context, ref string) (*model.IncidentRecord, error)
	// Delete moves an incident into the deleted store in one transaction.
	Delete(ctx context.Context, ref, reason, actor string, at time.Time) error
	// Transfer reassigns an incident and appends a transfer log entry in one transaction.
	// It returns the officer the case was transferred from.
	Transfer(ctx context.Context, req model.TransferRequest) (string, error)
	// ListTransfers returns the transfer log of a case, oldest first.
	ListTransfers(ctx context.Context, caseID string) ([]model.TransferLogEntry, error)
	// ListDeleted returns the most recently deleted incidents.
	ListDeleted(ctx context.Context, limit int) ([]model.DeletedRecord, error)
}
