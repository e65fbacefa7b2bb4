// Package service contains application services for cases, officers, audit and statistics.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/nagarrakshak/caseledger/internal/casetransform"
	"github.com/nagarrakshak/caseledger/internal/errs"
	"github.com/nagarrakshak/caseledger/internal/model"
	"github.com/nagarrakshak/caseledger/internal/officername"
	"github.com/nagarrakshak/caseledger/internal/repository"
)

// Sources a case list can come from.
const (
	SourceStore    = "store"
	SourceFixtures = "fixtures"
)

// CaseList is a transformed set of cases and where the records came from.
type CaseList struct {
	Cases  []model.Case `json:"cases"`
	Source string       `json:"source"`
}

// TransferInput is a reassignment request from a caller.
type TransferInput struct {
	CaseID      string
	ToOfficer   string
	Reason      string
	FromOfficer string // optional expected current owner
	Actor       string
}

// CaseService defines case queries and mutations.
type CaseService interface {
	// LoadAll returns every case, newest first, falling back to fixtures when the store is down.
	LoadAll(ctx context.Context) (CaseList, error)
	// LoadByOfficer returns cases whose assigned officer matches name case-insensitively.
	LoadByOfficer(ctx context.Context, name string) (CaseList, error)
	// GetByID returns a case or nil when it does not exist.
	GetByID(ctx context.Context, id string) (*model.Case, error)
	// Delete moves a case into the deleted store.
	Delete(ctx context.Context, id, reason, actor string) error
	// Transfer reassigns a case and returns the transfer log entry written.
	Transfer(ctx context.Context, in TransferInput) (model.TransferLogEntry, error)
	// ListOfficerNames returns distinct assigned-officer names, sorted.
	ListOfficerNames(ctx context.Context) ([]string, error)
	// Transfers returns the transfer history of a case.
	Transfers(ctx context.Context, id string) ([]model.TransferLogEntry, error)
	// Deleted returns recently deleted cases.
	Deleted(ctx context.Context, limit int) ([]model.DeletedRecord, error)
}

// FixtureSource provides the bundled records used when the store is unreachable.
type FixtureSource interface {
	Load() ([]model.IncidentRecord, error)
}

// OfficerResolver maps a free-text name onto a directory profile.
type OfficerResolver interface {
	ResolveByName(ctx context.Context, name string) (*model.OfficerProfile, error)
}

// CaseOptions tunes CaseServiceImpl.
type CaseOptions struct {
	StoreTimeout    time.Duration // per store call
	CacheTTL        time.Duration // 0 disables the case list cache
	MinReasonLength int
}

type CaseServiceImpl struct {
	repo     repository.IncidentRepository
	fixtures FixtureSource
	officers OfficerResolver
	audit    *AuditRecorder
	log      *zap.Logger
	opts     CaseOptions
	now      func() time.Time

	mu       sync.Mutex
	cached   []model.IncidentRecord
	cachedAt time.Time
	gen      uint64 // bumped by invalidate; a fetch started under an older gen is not cached
}

// NewCaseService constructs CaseService. officers and audit may be nil.
func NewCaseService(
	repo repository.IncidentRepository,
	fixtures FixtureSource,
	officers OfficerResolver,
	audit *AuditRecorder,
	log *zap.Logger,
	opts CaseOptions,
) *CaseServiceImpl {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 10 * time.Second
	}
	if opts.MinReasonLength <= 0 {
		opts.MinReasonLength = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CaseServiceImpl{
		repo: repo, fixtures: fixtures, officers: officers, audit: audit,
		log: log, opts: opts, now: time.Now,
	}
}

func (s *CaseServiceImpl) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}

// liveRecords reads the store through the cache. It never falls back.
func (s *CaseServiceImpl) liveRecords(ctx context.Context) ([]model.IncidentRecord, error) {
	var gen uint64
	if s.opts.CacheTTL > 0 {
		s.mu.Lock()
		if s.cached != nil && s.now().Sub(s.cachedAt) < s.opts.CacheTTL {
			out := s.cached
			s.mu.Unlock()
			return out, nil
		}
		gen = s.gen
		s.mu.Unlock()
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	recs, err := s.repo.ListAll(sctx)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []model.IncidentRecord{}
	}
	if s.opts.CacheTTL > 0 {
		s.mu.Lock()
		if s.gen == gen {
			s.cached, s.cachedAt = recs, s.now()
		}
		s.mu.Unlock()
	}
	return recs, nil
}

// invalidate drops the cached case list; every successful mutation calls it.
func (s *CaseServiceImpl) invalidate() {
	s.mu.Lock()
	s.cached, s.cachedAt = nil, time.Time{}
	s.gen++
	s.mu.Unlock()
}

// records returns live records, or fixtures when the store cannot be reached at all.
func (s *CaseServiceImpl) records(ctx context.Context) ([]model.IncidentRecord, string, error) {
	recs, err := s.liveRecords(ctx)
	if err == nil {
		return recs, SourceStore, nil
	}
	if !errs.StoreUnavailable(err) || s.fixtures == nil {
		return nil, "", err
	}
	s.log.Warn("record store unavailable, serving fixtures", zap.Error(err))
	fx, ferr := s.fixtures.Load()
	if ferr != nil {
		return nil, "", errors.Join(err, ferr)
	}
	return fx, SourceFixtures, nil
}

// LoadAll returns every case, newest first.
func (s *CaseServiceImpl) LoadAll(ctx context.Context) (CaseList, error) {
	recs, src, err := s.records(ctx)
	if err != nil {
		return CaseList{}, err
	}
	return CaseList{Cases: casetransform.TransformAll(recs, s.now()), Source: src}, nil
}

// LoadByOfficer filters the full list client-side so that casing differences in stored
// names never hide a case.
func (s *CaseServiceImpl) LoadByOfficer(ctx context.Context, name string) (CaseList, error) {
	if strings.TrimSpace(name) == "" {
		return CaseList{}, errs.Validationf("empty officer name")
	}
	recs, src, err := s.records(ctx)
	if err != nil {
		return CaseList{}, err
	}
	var mine []model.IncidentRecord
	for _, r := range recs {
		if officername.Key(r.AssignedOfficer) == "" {
			s.log.Warn("case has no officer attribution",
				zap.Error(&errs.DataQualityWarning{CaseID: r.ReferenceNumber, Issue: "no assigned officer"}),
				zap.String("source", src))
			continue
		}
		if officername.Equal(r.AssignedOfficer, name) {
			mine = append(mine, r)
		}
	}
	return CaseList{Cases: casetransform.TransformAll(mine, s.now()), Source: src}, nil
}

// GetByID returns the case, nil when absent.
func (s *CaseServiceImpl) GetByID(ctx context.Context, id string) (*model.Case, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errs.Validationf("empty case id")
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	rec, err := s.repo.GetByReference(sctx, id)
	switch {
	case err == nil:
		c := casetransform.Transform(*rec, s.now())
		return &c, nil
	case errors.Is(err, errs.ErrNotFound):
		return nil, nil
	case errs.StoreUnavailable(err) && s.fixtures != nil:
		s.log.Warn("record store unavailable, searching fixtures", zap.String("case", id), zap.Error(err))
		fx, ferr := s.fixtures.Load()
		if ferr != nil {
			return nil, errors.Join(err, ferr)
		}
		for _, r := range fx {
			if r.ReferenceNumber == id {
				c := casetransform.Transform(r, s.now())
				return &c, nil
			}
		}
		return nil, nil
	default:
		return nil, err
	}
}

func (s *CaseServiceImpl) validReason(reason string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(reason)); n < s.opts.MinReasonLength {
		return errs.Validationf("reason too short (%d < %d characters)", n, s.opts.MinReasonLength)
	}
	return nil
}

// Delete validates the request and moves the case into the deleted store.
func (s *CaseServiceImpl) Delete(ctx context.Context, id, reason, actor string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errs.Validationf("empty case id")
	}
	if err := s.validReason(reason); err != nil {
		return err
	}
	at := s.now().UTC()

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.repo.Delete(sctx, id, strings.TrimSpace(reason), actor, at); err != nil {
		return err
	}
	s.invalidate()
	s.log.Info("case deleted", zap.String("case", id), zap.String("actor", actor))
	s.audit.Record(ctx, "case.delete", "case", id, actor, map[string]any{"reason": strings.TrimSpace(reason)})
	return nil
}

// Transfer validates the request, resolves the receiving officer's stable id when the
// directory knows them, and reassigns the case.
func (s *CaseServiceImpl) Transfer(ctx context.Context, in TransferInput) (model.TransferLogEntry, error) {
	in.CaseID = strings.TrimSpace(in.CaseID)
	in.ToOfficer = strings.Join(strings.Fields(in.ToOfficer), " ")
	in.Reason = strings.TrimSpace(in.Reason)
	if in.CaseID == "" {
		return model.TransferLogEntry{}, errs.Validationf("empty case id")
	}
	if in.ToOfficer == "" {
		return model.TransferLogEntry{}, errs.Validationf("empty target officer")
	}
	if in.FromOfficer != "" && officername.Equal(in.FromOfficer, in.ToOfficer) {
		return model.TransferLogEntry{}, errs.Validationf("case is already assigned to %s", in.ToOfficer)
	}
	if err := s.validReason(in.Reason); err != nil {
		return model.TransferLogEntry{}, err
	}

	var toID string
	if s.officers != nil {
		p, err := s.officers.ResolveByName(ctx, in.ToOfficer)
		switch {
		case err != nil:
			s.log.Warn("officer directory lookup failed, transferring by name only",
				zap.String("officer", in.ToOfficer), zap.Error(err))
		case p != nil:
			toID = p.ID
		}
	}

	logID, err := uuid.NewV4()
	if err != nil {
		return model.TransferLogEntry{}, err
	}
	req := model.TransferRequest{
		CaseID:        in.CaseID,
		ToOfficer:     in.ToOfficer,
		ToOfficerID:   toID,
		FromOfficer:   in.FromOfficer,
		Reason:        in.Reason,
		PerformedBy:   in.Actor,
		TransferredAt: s.now().UTC(),
		LogID:         logID,
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	from, err := s.repo.Transfer(sctx, req)
	if err != nil {
		return model.TransferLogEntry{}, err
	}
	s.invalidate()

	entry := model.TransferLogEntry{
		ID:            logID,
		CaseID:        req.CaseID,
		FromOfficer:   from,
		ToOfficer:     req.ToOfficer,
		Reason:        req.Reason,
		TransferredAt: req.TransferredAt,
		PerformedBy:   req.PerformedBy,
	}
	s.log.Info("case transferred",
		zap.String("case", entry.CaseID), zap.String("from", from), zap.String("to", entry.ToOfficer))
	s.audit.Record(ctx, "case.transfer", "case", entry.CaseID, in.Actor, map[string]any{
		"from": from, "to": entry.ToOfficer, "reason": entry.Reason, "transfer_id": logID.String(),
	})
	return entry, nil
}

// ListOfficerNames infers officers from case assignments. It reads the live store only:
// when the store is down the error is returned rather than a guessed list.
func (s *CaseServiceImpl) ListOfficerNames(ctx context.Context) ([]string, error) {
	recs, err := s.liveRecords(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.AssignedOfficer)
	}
	out := officername.Distinct(names)
	officername.Sort(out)
	return out, nil
}

// Transfers returns the transfer log of a case.
func (s *CaseServiceImpl) Transfers(ctx context.Context, id string) ([]model.TransferLogEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errs.Validationf("empty case id")
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.repo.ListTransfers(sctx, id)
}

// Deleted returns recently deleted cases; limit defaults to 100 and is capped at 500.
func (s *CaseServiceImpl) Deleted(ctx context.Context, limit int) ([]model.DeletedRecord, error) {
	switch {
	case limit <= 0:
		limit = 100
	case limit > 500:
		limit = 500
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.repo.ListDeleted(sctx, limit)
}
