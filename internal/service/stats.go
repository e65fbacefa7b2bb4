package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nagarrakshak/caseledger/internal/errs"
	"github.com/nagarrakshak/caseledger/internal/model"
	"github.com/nagarrakshak/caseledger/internal/officername"
	"github.com/nagarrakshak/caseledger/internal/stats"
)

// Directory sources for the workload table.
const (
	DirectoryProfiles    = "profiles"
	DirectoryAssignments = "assignments"
)

// Dashboard is the full statistics payload.
type Dashboard struct {
	Global          stats.Global   `json:"global"`
	Workload        stats.Workload `json:"workload"`
	CaseSource      string         `json:"case_source"`
	DirectorySource string         `json:"directory_source"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// StatsService builds dashboards from the case list and the officer directory.
type StatsService struct {
	cases    CaseService
	officers OfficerService
	log      *zap.Logger
	now      func() time.Time
}

// NewStatsService constructs StatsService.
func NewStatsService(cases CaseService, officers OfficerService, log *zap.Logger) *StatsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatsService{cases: cases, officers: officers, log: log, now: time.Now}
}

// Dashboard computes global counters and per-officer workload. When the directory
// cannot be read, officers are inferred from case assignments instead.
func (s *StatsService) Dashboard(ctx context.Context) (Dashboard, error) {
	list, err := s.cases.LoadAll(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	dirSource := DirectoryProfiles
	officers, err := s.officers.List(ctx, model.RoleOfficer)
	if err != nil {
		if !errs.StoreUnavailable(err) {
			return Dashboard{}, err
		}
		s.log.Warn("officer directory unavailable, inferring officers from cases", zap.Error(err))
		officers, dirSource = inferOfficers(list.Cases), DirectoryAssignments
	}

	return Dashboard{
		Global:          stats.ComputeGlobal(list.Cases),
		Workload:        stats.ComputeWorkload(list.Cases, officers),
		CaseSource:      list.Source,
		DirectorySource: dirSource,
		GeneratedAt:     s.now().UTC(),
	}, nil
}

func inferOfficers(cases []model.Case) []model.OfficerProfile {
	names := make([]string, 0, len(cases))
	for _, c := range cases {
		names = append(names, c.AssignedOfficer)
	}
	names = officername.Distinct(names)
	officername.Sort(names)
	out := make([]model.OfficerProfile, 0, len(names))
	for _, n := range names {
		out = append(out, model.OfficerProfile{Name: n, Role: model.RoleOfficer, Status: model.OfficerActive})
	}
	return out
}
