package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/nagarrakshak/caseledger/internal/model"
	"github.com/nagarrakshak/caseledger/internal/repository"
)

// AuditRecorder writes audit entries on a best-effort basis: a failed write is logged
// and never fails the action being audited.
type AuditRecorder struct {
	repo    repository.AuditRepository
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewAuditRecorder constructs an AuditRecorder.
func NewAuditRecorder(repo repository.AuditRepository, log *zap.Logger, timeout time.Duration) *AuditRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AuditRecorder{repo: repo, log: log, timeout: timeout, now: time.Now}
}

// Record appends an entry. A nil recorder is a no-op.
func (a *AuditRecorder) Record(ctx context.Context, action, targetType, targetID, actor string, details map[string]any) {
	if a == nil || a.repo == nil {
		return
	}
	id, err := uuid.NewV4()
	if err != nil {
		a.log.Warn("audit id generation failed", zap.String("action", action), zap.Error(err))
		return
	}
	// detach from request cancellation; the action already happened
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()
	e := model.AuditLogEntry{
		ID: id, Action: action, TargetType: targetType, TargetID: targetID,
		Actor: actor, Details: details, CreatedAt: a.now().UTC(),
	}
	if err := a.repo.Append(ctx, e); err != nil {
		a.log.Warn("audit write failed",
			zap.String("action", action), zap.String("target", targetID), zap.Error(err))
	}
}

// List returns audit entries for a target, newest first. limit defaults to 100 and is capped at 500.
func (a *AuditRecorder) List(ctx context.Context, targetType, targetID string, limit int) ([]model.AuditLogEntry, error) {
	switch {
	case limit <= 0:
		limit = 100
	case limit > 500:
		limit = 500
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.repo.List(ctx, targetType, targetID, limit)
}
