package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nagarrakshak/caseledger/internal/errs"
	"github.com/nagarrakshak/caseledger/internal/limiter"
	"github.com/nagarrakshak/caseledger/internal/model"
)

const sessionScope = "session"

// TokenVerifier validates a bearer token issued by the auth provider.
type TokenVerifier interface {
	Verify(token string) (model.Identity, error)
}

// Session is the result of opening a session: the verified caller and, for staff, their profile.
type Session struct {
	Identity model.Identity        `json:"identity"`
	Profile  *model.OfficerProfile `json:"profile,omitempty"`
}

// SessionService turns a provider-issued token into a session.
type SessionService interface {
	// Open verifies the token, applies per-client throttling and syncs the officer profile.
	Open(ctx context.Context, token, clientAddr string) (Session, error)
}

type SessionServiceImpl struct {
	verifier TokenVerifier
	officers OfficerService
	lim      limiter.Limiter
	log      *zap.Logger
}

// NewSessionService constructs SessionService. lim may be nil to disable throttling.
func NewSessionService(verifier TokenVerifier, officers OfficerService, lim limiter.Limiter, log *zap.Logger) *SessionServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionServiceImpl{verifier: verifier, officers: officers, lim: lim, log: log}
}

// Open verifies token for the client at clientAddr. Repeated failures from one client
// lead to ErrRateLimited. Limiter errors are logged and do not block sign-in.
func (s *SessionServiceImpl) Open(ctx context.Context, token, clientAddr string) (Session, error) {
	client := limiter.HashClient(clientAddr)

	if s.lim != nil {
		allowed, _, err := s.lim.Allow(ctx, sessionScope, client)
		switch {
		case err != nil:
			s.log.Warn("session limiter unavailable", zap.Error(err))
		case !allowed:
			return Session{}, errs.ErrRateLimited
		}
	}

	id, err := s.verifier.Verify(token)
	if err != nil {
		if s.lim != nil {
			blocked, _, ferr := s.lim.Failure(ctx, sessionScope, client)
			switch {
			case ferr != nil:
				s.log.Warn("session limiter failure not recorded", zap.Error(ferr))
			case blocked:
				return Session{}, errs.ErrRateLimited
			}
		}
		return Session{}, err
	}
	if s.lim != nil {
		if err := s.lim.Success(ctx, sessionScope, client); err != nil {
			s.log.Debug("session limiter reset failed", zap.Error(err))
		}
	}

	sess := Session{Identity: id}
	if id.Role == model.RoleCitizen || s.officers == nil {
		return sess, nil
	}
	p, err := s.officers.SyncLogin(ctx, id)
	switch {
	case err == nil:
		sess.Profile = p
	case errs.StoreUnavailable(err):
		s.log.Warn("officer profile sync skipped", zap.String("subject", id.Subject), zap.Error(err))
	default:
		return Session{}, fmt.Errorf("sync officer profile: %w", err)
	}
	return sess, nil
}
