package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nagarrakshak/caseledger/internal/errs"
	"github.com/nagarrakshak/caseledger/internal/model"
	"github.com/nagarrakshak/caseledger/internal/officername"
	"github.com/nagarrakshak/caseledger/internal/repository"
)

type fakeIncidents struct {
	mu        sync.Mutex
	recs      map[string]model.IncidentRecord
	transfers []model.TransferLogEntry
	deleted   []model.DeletedRecord

	listErr   error
	getErr    error
	mutErr    error
	listCall  int
	lastLimit int

	// afterSnapshot, when set, runs once after ListAll has copied the records and
	// released the lock, so a test can interleave a mutation with a slow read.
	afterSnapshot func()
}

var _ repository.IncidentRepository = (*fakeIncidents)(nil)

func newFakeIncidents(recs ...model.IncidentRecord) *fakeIncidents {
	f := &fakeIncidents{recs: map[string]model.IncidentRecord{}}
	for _, r := range recs {
		f.recs[r.ReferenceNumber] = r
	}
	return f
}

func (f *fakeIncidents) ListAll(context.Context) ([]model.IncidentRecord, error) {
	f.mu.Lock()
	f.listCall++
	if f.listErr != nil {
		f.mu.Unlock()
		return nil, f.listErr
	}
	out := make([]model.IncidentRecord, 0, len(f.recs))
	for _, r := range f.recs {
		out = append(out, r)
	}
	hook := f.afterSnapshot
	f.afterSnapshot = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeIncidents) GetByReference(_ context.Context, ref string) (*model.IncidentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.recs[ref]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &r, nil
}

func (f *fakeIncidents) Delete(_ context.Context, ref, reason, actor string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return f.mutErr
	}
	r, ok := f.recs[ref]
	if !ok {
		return errs.ErrNotFound
	}
	f.deleted = append(f.deleted, model.DeletedRecord{Record: r, Reason: reason, DeletedAt: at, DeletedBy: actor})
	delete(f.recs, ref)
	return nil
}

func (f *fakeIncidents) Transfer(_ context.Context, req model.TransferRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return "", f.mutErr
	}
	r, ok := f.recs[req.CaseID]
	if !ok {
		return "", errs.ErrNotFound
	}
	from := r.AssignedOfficer
	if req.FromOfficer != "" && !officername.Equal(req.FromOfficer, from) {
		return "", errs.ErrVersionConflict
	}
	if officername.Equal(from, req.ToOfficer) {
		return "", errs.Validationf("already assigned")
	}
	r.AssignedOfficer, r.AssignedOfficerID = req.ToOfficer, req.ToOfficerID
	f.recs[req.CaseID] = r
	f.transfers = append(f.transfers, model.TransferLogEntry{
		ID: req.LogID, CaseID: req.CaseID, FromOfficer: from, ToOfficer: req.ToOfficer,
		Reason: req.Reason, TransferredAt: req.TransferredAt, PerformedBy: req.PerformedBy,
	})
	return from, nil
}

func (f *fakeIncidents) ListTransfers(_ context.Context, caseID string) ([]model.TransferLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.TransferLogEntry
	for _, t := range f.transfers {
		if t.CaseID == caseID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeIncidents) ListDeleted(_ context.Context, limit int) ([]model.DeletedRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	if len(f.deleted) > limit {
		return f.deleted[:limit], nil
	}
	return f.deleted, nil
}

type fakeFixtures struct {
	recs []model.IncidentRecord
	err  error
}

func (f fakeFixtures) Load() ([]model.IncidentRecord, error) { return f.recs, f.err }

type fakeOfficers struct {
	mu       sync.Mutex
	profiles map[string]model.OfficerProfile
	listErr  error
	upErr    error
}

var _ repository.OfficerRepository = (*fakeOfficers)(nil)

func newFakeOfficers(ps ...model.OfficerProfile) *fakeOfficers {
	f := &fakeOfficers{profiles: map[string]model.OfficerProfile{}}
	for _, p := range ps {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeOfficers) UpsertOnLogin(_ context.Context, id model.Identity, at time.Time) (*model.OfficerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upErr != nil {
		return nil, f.upErr
	}
	p, ok := f.profiles[id.Subject]
	if !ok {
		p = model.OfficerProfile{ID: id.Subject, Status: model.OfficerActive, CreatedAt: at}
	}
	p.Name, p.Email, p.Role, p.LastLoginAt = id.Name, id.Email, id.Role, at
	p.Online = p.Status == model.OfficerActive
	f.profiles[id.Subject] = p
	return &p, nil
}

func (f *fakeOfficers) List(_ context.Context, role model.Role) ([]model.OfficerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.OfficerProfile
	for _, p := range f.profiles {
		if role == "" || p.Role == role {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeOfficers) GetByID(_ context.Context, id string) (*model.OfficerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &p, nil
}

func (f *fakeOfficers) SetStatus(_ context.Context, id, status string, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return errs.ErrNotFound
	}
	p.Status, p.Online = status, online
	f.profiles[id] = p
	return nil
}

type fakeAudit struct {
	mu        sync.Mutex
	entries   []model.AuditLogEntry
	err       error
	lastLimit int
}

var _ repository.AuditRepository = (*fakeAudit)(nil)

func (f *fakeAudit) Append(_ context.Context, e model.AuditLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAudit) List(_ context.Context, targetType, targetID string, limit int) ([]model.AuditLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	var out []model.AuditLogEntry
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := f.entries[i]
		if (targetType == "" || e.TargetType == targetType) && (targetID == "" || e.TargetID == targetID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func rec(ref, typ, officer string, created time.Time) model.IncidentRecord {
	return model.IncidentRecord{
		ReferenceNumber: ref, IncidentType: typ, AssignedOfficer: officer,
		VictimName: "Victim " + ref, Location: "Sector 1", CreatedAt: created,
	}
}
