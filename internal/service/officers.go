package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nagarrakshak/caseledger/internal/errs"
	"github.com/nagarrakshak/caseledger/internal/model"
	"github.com/nagarrakshak/caseledger/internal/officername"
	"github.com/nagarrakshak/caseledger/internal/repository"
)

// OfficerService defines officer directory operations.
type OfficerService interface {
	// SyncLogin creates or refreshes the caller's profile after a verified login.
	SyncLogin(ctx context.Context, id model.Identity) (*model.OfficerProfile, error)
	// List returns profiles, optionally filtered by role.
	List(ctx context.Context, role model.Role) ([]model.OfficerProfile, error)
	// SetStatus changes an officer's availability. Unknown ids give errs.ErrNotFound.
	SetStatus(ctx context.Context, id, status string, online bool, actor string) error
	// ResolveByName finds the single officer whose name or email matches name.
	ResolveByName(ctx context.Context, name string) (*model.OfficerProfile, error)
}

type OfficerServiceImpl struct {
	repo    repository.OfficerRepository
	audit   *AuditRecorder
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewOfficerService constructs OfficerService.
func NewOfficerService(repo repository.OfficerRepository, audit *AuditRecorder, log *zap.Logger, timeout time.Duration) *OfficerServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OfficerServiceImpl{repo: repo, audit: audit, log: log, timeout: timeout, now: time.Now}
}

// SyncLogin upserts the profile for a verified identity.
func (s *OfficerServiceImpl) SyncLogin(ctx context.Context, id model.Identity) (*model.OfficerProfile, error) {
	if id.Subject == "" {
		return nil, errs.Validationf("empty subject")
	}
	if strings.TrimSpace(id.Name) == "" {
		id.Name, _, _ = strings.Cut(id.Email, "@")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.UpsertOnLogin(ctx, id, s.now().UTC())
}

// List returns directory entries.
func (s *OfficerServiceImpl) List(ctx context.Context, role model.Role) ([]model.OfficerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	out, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.OfficerProfile{}
	}
	return out, nil
}

func validStatus(v string) bool {
	switch v {
	case model.OfficerActive, model.OfficerOnLeave, model.OfficerSuspended:
		return true
	}
	return false
}

// SetStatus validates and stores an availability change. Non-active officers are
// always reported offline.
func (s *OfficerServiceImpl) SetStatus(ctx context.Context, id, status string, online bool, actor string) error {
	if strings.TrimSpace(id) == "" {
		return errs.Validationf("empty officer id")
	}
	if !validStatus(status) {
		return errs.Validationf("unknown status %q", status)
	}
	if status != model.OfficerActive {
		online = false
	}
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	prev, err := s.repo.GetByID(sctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetStatus(sctx, id, status, online); err != nil {
		return err
	}
	s.audit.Record(ctx, "officer.status", "officer", id, actor, map[string]any{
		"status": status, "online": online, "previous": prev.Status,
	})
	return nil
}

// ResolveByName matches officers by case-folded full name, then by email local part.
// It returns nil when nobody, or more than one officer, matches.
func (s *OfficerServiceImpl) ResolveByName(ctx context.Context, name string) (*model.OfficerProfile, error) {
	key := officername.Key(name)
	if key == "" {
		return nil, nil
	}
	officers, err := s.List(ctx, model.RoleOfficer)
	if err != nil {
		return nil, err
	}
	for _, pick := range []func(model.OfficerProfile) string{
		func(p model.OfficerProfile) string { return officername.Key(p.Name) },
		func(p model.OfficerProfile) string { return officername.EmailLocalPart(p.Email) },
	} {
		var found []model.OfficerProfile
		for _, p := range officers {
			if pick(p) == key {
				found = append(found, p)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			return &found[0], nil
		default:
			s.log.Warn("ambiguous officer name", zap.String("name", name), zap.Int("matches", len(found)))
			return nil, nil
		}
	}
	return nil, nil
}
