package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nagarrakshak/caseledger/internal/auth"
	"github.com/nagarrakshak/caseledger/internal/errs"
	"github.com/nagarrakshak/caseledger/internal/model"
	"github.com/nagarrakshak/caseledger/internal/officername"
	"github.com/nagarrakshak/caseledger/internal/service"
	"github.com/nagarrakshak/caseledger/internal/stats"
)

var testKey = []byte("http-test-signing-key-0123456789")

type stubCases struct {
	cases     []model.Case
	source    string
	loadErr   error
	deleted   []string
	transfers []service.TransferInput
}

func (s *stubCases) LoadAll(context.Context) (service.CaseList, error) {
	if s.loadErr != nil {
		return service.CaseList{}, s.loadErr
	}
	return service.CaseList{Cases: s.cases, Source: s.source}, nil
}

func (s *stubCases) LoadByOfficer(_ context.Context, name string) (service.CaseList, error) {
	if s.loadErr != nil {
		return service.CaseList{}, s.loadErr
	}
	var out []model.Case
	for _, c := range s.cases {
		if officername.Equal(c.AssignedOfficer, name) {
			out = append(out, c)
		}
	}
	return service.CaseList{Cases: out, Source: s.source}, nil
}

func (s *stubCases) GetByID(_ context.Context, id string) (*model.Case, error) {
	for _, c := range s.cases {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *stubCases) Delete(_ context.Context, id, reason, _ string) error {
	if len(reason) < 10 {
		return errs.Validationf("reason too short")
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubCases) Transfer(_ context.Context, in service.TransferInput) (model.TransferLogEntry, error) {
	if in.FromOfficer == "stale" {
		return model.TransferLogEntry{}, errs.ErrVersionConflict
	}
	s.transfers = append(s.transfers, in)
	return model.TransferLogEntry{CaseID: in.CaseID, FromOfficer: "Officer A", ToOfficer: in.ToOfficer, Reason: in.Reason}, nil
}

func (s *stubCases) ListOfficerNames(context.Context) ([]string, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return []string{"Officer A", "Officer B"}, nil
}

func (s *stubCases) Transfers(context.Context, string) ([]model.TransferLogEntry, error) {
	return nil, nil
}

func (s *stubCases) Deleted(context.Context, int) ([]model.DeletedRecord, error) { return nil, nil }

type stubOfficers struct {
	statuses map[string]string
}

func (s *stubOfficers) SyncLogin(_ context.Context, id model.Identity) (*model.OfficerProfile, error) {
	return &model.OfficerProfile{ID: id.Subject, Name: id.Name}, nil
}

func (s *stubOfficers) List(context.Context, model.Role) ([]model.OfficerProfile, error) {
	return []model.OfficerProfile{{ID: "off-a", Name: "Officer A"}}, nil
}

func (s *stubOfficers) SetStatus(_ context.Context, id, status string, _ bool, _ string) error {
	s.statuses[id] = status
	return nil
}

func (s *stubOfficers) ResolveByName(context.Context, string) (*model.OfficerProfile, error) {
	return nil, nil
}

type stubSessions struct{}

func (stubSessions) Open(_ context.Context, token, _ string) (service.Session, error) {
	id, err := auth.NewVerifier(testKey).Verify(token)
	if err != nil {
		return service.Session{}, err
	}
	return service.Session{Identity: id}, nil
}

type stubStats struct{}

func (stubStats) Dashboard(context.Context) (service.Dashboard, error) {
	return service.Dashboard{
		Global:      stats.Global{Total: 2, ByPriority: map[string]int{}},
		Workload:    stats.Workload{Officers: []stats.OfficerWorkload{{Officer: model.OfficerProfile{Name: "Officer A"}, Load: stats.LoadLight}}},
		CaseSource:  service.SourceStore,
		GeneratedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

type stubAudit struct{}

func (stubAudit) List(context.Context, string, string, int) ([]model.AuditLogEntry, error) {
	return []model.AuditLogEntry{{Action: "case.delete"}}, nil
}

type env struct {
	app      *fiber.App
	cases    *stubCases
	officers *stubOfficers
}

func newEnv(t *testing.T) env {
	t.Helper()
	cs := &stubCases{
		source: service.SourceStore,
		cases: []model.Case{
			{ID: "FIR2024001", AssignedOfficer: "Officer A"},
			{ID: "FIR2024002", AssignedOfficer: "officer a"},
			{ID: "FIR2024003", AssignedOfficer: "Officer B"},
		},
	}
	off := &stubOfficers{statuses: map[string]string{}}
	app := New(Deps{
		Cases: cs, Officers: off, Sessions: stubSessions{}, Stats: stubStats{}, Audit: stubAudit{},
		Ping:   func(context.Context) error { return nil },
		JWTKey: testKey, Log: zaptest.NewLogger(t),
	})
	return env{app: app, cases: cs, officers: off}
}

func tokenFor(t *testing.T, role model.Role, sub, name string) string {
	t.Helper()
	tok, err := auth.Issue(testKey, model.Identity{Subject: sub, Name: name, Role: role}, time.Hour, time.Now())
	require.NoError(t, err)
	return tok
}

func (e env) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `"db":"ok"`)
}

func TestCases_RequiresToken(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodGet, "/api/cases", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, string(body), `"error":true`)

	resp, _ = e.do(t, http.MethodGet, "/api/cases", "not-a-jwt", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCases_AdminSeesAll(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodGet, "/api/cases", tokenFor(t, model.RoleAdmin, "adm", "Admin"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list service.CaseList
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Cases, 3)
	require.Equal(t, service.SourceStore, list.Source)

	resp, body = e.do(t, http.MethodGet, "/api/cases?officer=OFFICER%20A", tokenFor(t, model.RoleAdmin, "adm", "Admin"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Cases, 2)
}

func TestCases_OfficerSeesOwnOnly(t *testing.T) {
	e := newEnv(t)
	tok := tokenFor(t, model.RoleOfficer, "off-a", "Officer A")

	resp, body := e.do(t, http.MethodGet, "/api/cases", tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list service.CaseList
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Cases, 2)

	resp, _ = e.do(t, http.MethodGet, "/api/cases?officer=Officer%20B", tok, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/cases/FIR2024002", tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, "/api/cases/FIR2024003", tok, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCases_CitizenForbidden(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.do(t, http.MethodGet, "/api/cases", tokenFor(t, model.RoleCitizen, "cit", "Citizen"), nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCases_StoreDown_503(t *testing.T) {
	e := newEnv(t)
	e.cases.loadErr = errs.ErrConnectivity
	resp, body := e.do(t, http.MethodGet, "/api/officers/names", tokenFor(t, model.RoleAdmin, "adm", "Admin"), nil)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	require.Contains(t, string(body), "record store unavailable")
}

func TestGetCase_Missing(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.do(t, http.MethodGet, "/api/cases/FIR0000000", tokenFor(t, model.RoleAdmin, "adm", "Admin"), nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteCase(t *testing.T) {
	e := newEnv(t)
	admin := tokenFor(t, model.RoleAdmin, "adm", "Admin")

	resp, _ := e.do(t, http.MethodDelete, "/api/cases/FIR2024001", tokenFor(t, model.RoleOfficer, "off-a", "Officer A"),
		reasonRequest{Reason: "duplicate complaint"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, "/api/cases/FIR2024001", admin, reasonRequest{Reason: "short"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, "/api/cases/FIR2024001", admin, reasonRequest{Reason: "duplicate complaint"})
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, []string{"FIR2024001"}, e.cases.deleted)
}

func TestTransferCase(t *testing.T) {
	e := newEnv(t)
	admin := tokenFor(t, model.RoleAdmin, "adm", "Admin")

	resp, body := e.do(t, http.MethodPost, "/api/cases/FIR2024001/transfer", admin,
		transferRequest{ToOfficer: "Officer B", Reason: "Workload rebalancing"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var entry model.TransferLogEntry
	require.NoError(t, json.Unmarshal(body, &entry))
	require.Equal(t, "Officer A", entry.FromOfficer)
	require.Equal(t, "Officer B", entry.ToOfficer)
	require.Equal(t, "adm", e.cases.transfers[0].Actor)

	resp, _ = e.do(t, http.MethodPost, "/api/cases/FIR2024001/transfer", admin,
		transferRequest{ToOfficer: "Officer B", FromOfficer: "stale", Reason: "Workload rebalancing"})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSetOfficerStatus(t *testing.T) {
	e := newEnv(t)
	self := tokenFor(t, model.RoleOfficer, "off-a", "Officer A")

	resp, _ := e.do(t, http.MethodPatch, "/api/officers/off-a/status", self, statusRequest{Status: model.OfficerOnLeave})
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, model.OfficerOnLeave, e.officers.statuses["off-a"])

	resp, _ = e.do(t, http.MethodPatch, "/api/officers/off-b/status", self, statusRequest{Status: model.OfficerOnLeave})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPatch, "/api/officers/off-b/status", tokenFor(t, model.RoleAdmin, "adm", "Admin"),
		statusRequest{Status: model.OfficerSuspended})
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestListOfficers_BadRole(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.do(t, http.MethodGet, "/api/officers?role=chief", tokenFor(t, model.RoleAdmin, "adm", "Admin"), nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStatsAndReport(t *testing.T) {
	e := newEnv(t)
	admin := tokenFor(t, model.RoleAdmin, "adm", "Admin")

	resp, body := e.do(t, http.MethodGet, "/api/stats", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `"total":2`)

	resp, body = e.do(t, http.MethodGet, "/api/stats/report.pdf", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	require.True(t, strings.HasPrefix(string(body), "%PDF-"))

	resp, _ = e.do(t, http.MethodGet, "/api/stats", tokenFor(t, model.RoleOfficer, "off-a", "Officer A"), nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAuditAndDeleted(t *testing.T) {
	e := newEnv(t)
	admin := tokenFor(t, model.RoleAdmin, "adm", "Admin")

	resp, body := e.do(t, http.MethodGet, "/api/audit?target_type=case", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "case.delete")

	resp, body = e.do(t, http.MethodGet, "/api/deleted", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"deleted":[]}`, string(body))
}

func TestOpenSession(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, http.MethodPost, "/api/session", tokenFor(t, model.RoleOfficer, "off-a", "Officer A"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `"subject":"off-a"`)

	resp, _ = e.do(t, http.MethodPost, "/api/session", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, fiber.StatusTooManyRequests, statusFor(errs.ErrRateLimited))
	require.Equal(t, fiber.StatusServiceUnavailable, statusFor(errs.ErrMissingCollection))
	require.Equal(t, fiber.StatusInternalServerError, statusFor(errs.ErrPermission))
	require.Equal(t, fiber.StatusNotFound, statusFor(fiber.ErrNotFound))
}
