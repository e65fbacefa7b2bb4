package limiter

import (
	"context"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PG keeps counters in the session_limiter table. Failures inside window accumulate;
// reaching maxFails blocks the client for blockFor.
type PG struct {
	db       querier
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter. Any pgx pool or transaction satisfies q.
func NewPG(q querier, window time.Duration, maxFails int, blockFor time.Duration) *PG {
	if maxFails <= 0 {
		maxFails = 5
	}
	return &PG{db: q, window: window, maxFails: maxFails, blockFor: blockFor, now: time.Now}
}

// HashClient returns a stable digest of a client address so raw IPs are never stored.
func HashClient(addr string) []byte {
	h := sha256.Sum256([]byte(addr))
	return h[:]
}

// Allow reports whether the client is currently unblocked.
func (l *PG) Allow(ctx context.Context, scope string, client []byte) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM session_limiter WHERE scope=$1 AND client_hash=$2`
	var blockedUntil time.Time
	err := l.db.QueryRow(ctx, q, scope, client).Scan(&blockedUntil)
	switch {
	case err == nil:
		if now := l.now(); blockedUntil.After(now) {
			return false, blockedUntil.Sub(now), nil
		}
		return true, 0, nil
	case errors.Is(err, pgx.ErrNoRows):
		return true, 0, nil
	default:
		return false, 0, err
	}
}

// Success resets the counter for the client.
func (l *PG) Success(ctx context.Context, scope string, client []byte) error {
	const q = `
INSERT INTO session_limiter (scope, client_hash, fail_count, blocked_until, updated_at)
VALUES ($1,$2,0,'epoch',now())
ON CONFLICT (scope, client_hash)
DO UPDATE SET fail_count=0, blocked_until='epoch', updated_at=now()`
	_, err := l.db.Exec(ctx, q, scope, client)
	return err
}

// Failure counts an attempt, restarting the count when the previous one is older than window.
func (l *PG) Failure(ctx context.Context, scope string, client []byte) (bool, time.Duration, error) {
	const q = `
INSERT INTO session_limiter (scope, client_hash, fail_count, blocked_until, updated_at)
VALUES ($1,$2,1,'epoch',now())
ON CONFLICT (scope, client_hash) DO UPDATE
SET
  fail_count = CASE WHEN EXCLUDED.updated_at - session_limiter.updated_at > $3::interval
                    THEN 1 ELSE session_limiter.fail_count + 1 END,
  updated_at = now()
RETURNING fail_count`
	var fails int
	if err := l.db.QueryRow(ctx, q, scope, client, l.window).Scan(&fails); err != nil {
		return false, 0, err
	}
	if fails < l.maxFails {
		return false, 0, nil
	}
	const upd = `UPDATE session_limiter SET blocked_until=$3 WHERE scope=$1 AND client_hash=$2`
	if _, err := l.db.Exec(ctx, upd, scope, client, l.now().Add(l.blockFor)); err != nil {
		return false, 0, err
	}
	return true, l.blockFor, nil
}
