// Package grpcserver exposes the case ledger gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nagarrakshak/caseledger/internal/access"
	"github.com/nagarrakshak/caseledger/internal/convert"
	"github.com/nagarrakshak/caseledger/internal/errs"
	"github.com/nagarrakshak/caseledger/internal/service"
)

// Dashboards builds the statistics payload.
type Dashboards interface {
	Dashboard(ctx context.Context) (service.Dashboard, error)
}

// Server wires services into gRPC handlers.
type Server struct {
	UnimplementedCaseLedgerServer
	cases service.CaseService
	stats Dashboards
}

var _ CaseLedgerServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(cases service.CaseService, stats Dashboards) *Server {
	return &Server{cases: cases, stats: stats}
}

// toStatus maps domain errors onto gRPC status codes.
func toStatus(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "no auth")
	case errors.Is(err, errs.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, errs.ErrVersionConflict):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, errs.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, errs.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, "rate limited")
	case errs.StoreUnavailable(err):
		return status.Error(codes.Unavailable, "record store unavailable")
	default:
		return status.Errorf(codes.Internal, "%s: %v", op, err)
	}
}

func caller(ctx context.Context, need ...access.Capability) (access.Principal, error) {
	p, ok := PrincipalFromCtx(ctx)
	if !ok {
		return p, status.Error(codes.Unauthenticated, "no auth")
	}
	for _, c := range need {
		if !p.Can(c) {
			return p, status.Error(codes.PermissionDenied, "forbidden")
		}
	}
	return p, nil
}

func reply(v any) (*structpb.Struct, error) {
	out, err := convert.ToStruct(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// ListCases returns the cases visible to the caller; {"officer": name} filters.
func (s *Server) ListCases(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	officer, all, err := p.CaseScope(convert.Str(req, "officer"))
	if err != nil {
		return nil, toStatus("list cases", err)
	}
	var list service.CaseList
	if all {
		list, err = s.cases.LoadAll(ctx)
	} else {
		list, err = s.cases.LoadByOfficer(ctx, officer)
	}
	if err != nil {
		return nil, toStatus("list cases", err)
	}
	return reply(list)
}

// GetCase returns a single case by {"id"}.
func (s *Server) GetCase(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.cases.GetByID(ctx, convert.Str(req, "id"))
	if err != nil {
		return nil, toStatus("get case", err)
	}
	if c == nil || !p.CanSeeCase(c.AssignedOfficer) {
		return nil, status.Error(codes.NotFound, "not found")
	}
	return reply(c)
}

// TransferCase reassigns {"id"} to {"to_officer"} with {"reason"}; {"from_officer"} is an
// optional expected current owner.
func (s *Server) TransferCase(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := caller(ctx, access.TransferCase)
	if err != nil {
		return nil, err
	}
	entry, err := s.cases.Transfer(ctx, service.TransferInput{
		CaseID:      convert.Str(req, "id"),
		ToOfficer:   convert.Str(req, "to_officer"),
		FromOfficer: convert.Str(req, "from_officer"),
		Reason:      convert.Str(req, "reason"),
		Actor:       p.Identity.Subject,
	})
	if err != nil {
		return nil, toStatus("transfer case", err)
	}
	return reply(entry)
}

// DeleteCase removes {"id"} with {"reason"}.
func (s *Server) DeleteCase(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := caller(ctx, access.DeleteCase)
	if err != nil {
		return nil, err
	}
	id := convert.Str(req, "id")
	if err := s.cases.Delete(ctx, id, convert.Str(req, "reason"), p.Identity.Subject); err != nil {
		return nil, toStatus("delete case", err)
	}
	return reply(map[string]any{"deleted": id})
}

// ListOfficerNames returns {"names": [...]}.
func (s *Server) ListOfficerNames(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if _, err := caller(ctx, access.ViewAllCases); err != nil {
		return nil, err
	}
	names, err := s.cases.ListOfficerNames(ctx)
	if err != nil {
		return nil, toStatus("list officer names", err)
	}
	return reply(map[string]any{"names": names})
}

// GetStats returns the dashboard.
func (s *Server) GetStats(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if _, err := caller(ctx, access.ViewStats); err != nil {
		return nil, err
	}
	d, err := s.stats.Dashboard(ctx)
	if err != nil {
		return nil, toStatus("get stats", err)
	}
	return reply(d)
}
