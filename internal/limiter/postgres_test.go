package limiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, maxFails int) (*PG, pgxmock.PgxPoolIface, time.Time) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewPG(mock, 5*time.Minute, maxFails, 10*time.Minute)
	l.now = func() time.Time { return now }
	return l, mock, now
}

func TestAllow_NoRow_Allows(t *testing.T) {
	l, mock, _ := newLimiter(t, 5)
	defer mock.Close()
	client := HashClient("10.0.0.1")

	mock.ExpectQuery(`SELECT blocked_until FROM session_limiter`).
		WithArgs("session", client).WillReturnError(pgx.ErrNoRows)

	ok, wait, err := l.Allow(context.Background(), "session", client)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, wait)
}

func TestAllow_Blocked(t *testing.T) {
	l, mock, now := newLimiter(t, 5)
	defer mock.Close()

	mock.ExpectQuery(`SELECT blocked_until FROM session_limiter`).
		WithArgs("session", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"blocked_until"}).AddRow(now.Add(3 * time.Minute)))

	ok, wait, err := l.Allow(context.Background(), "session", HashClient("10.0.0.1"))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 3*time.Minute, wait)
}

func TestAllow_ExpiredBlock_Allows(t *testing.T) {
	l, mock, now := newLimiter(t, 5)
	defer mock.Close()

	mock.ExpectQuery(`SELECT blocked_until FROM session_limiter`).
		WithArgs("session", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"blocked_until"}).AddRow(now.Add(-time.Minute)))

	ok, _, err := l.Allow(context.Background(), "session", HashClient("10.0.0.1"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAllow_DBError(t *testing.T) {
	l, mock, _ := newLimiter(t, 5)
	defer mock.Close()

	mock.ExpectQuery(`SELECT blocked_until`).WithArgs("session", pgxmock.AnyArg()).
		WillReturnError(errors.New("db down"))
	ok, _, err := l.Allow(context.Background(), "session", HashClient("x"))
	require.Error(t, err)
	require.False(t, ok)
}

func TestSuccess_Resets(t *testing.T) {
	l, mock, _ := newLimiter(t, 5)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO session_limiter .+ ON CONFLICT \(scope, client_hash\)`).
		WithArgs("session", pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, l.Success(context.Background(), "session", HashClient("x")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFailure_BelowThreshold(t *testing.T) {
	l, mock, _ := newLimiter(t, 5)
	defer mock.Close()

	mock.ExpectQuery(`RETURNING fail_count`).
		WithArgs("session", pgxmock.AnyArg(), 5*time.Minute).
		WillReturnRows(pgxmock.NewRows([]string{"fail_count"}).AddRow(2))

	blocked, wait, err := l.Failure(context.Background(), "session", HashClient("x"))
	require.NoError(t, err)
	require.False(t, blocked)
	require.Zero(t, wait)
}

func TestFailure_BlocksAtThreshold(t *testing.T) {
	l, mock, now := newLimiter(t, 3)
	defer mock.Close()

	mock.ExpectQuery(`RETURNING fail_count`).
		WithArgs("session", pgxmock.AnyArg(), 5*time.Minute).
		WillReturnRows(pgxmock.NewRows([]string{"fail_count"}).AddRow(3))
	mock.ExpectExec(`UPDATE session_limiter SET blocked_until=\$3`).
		WithArgs("session", pgxmock.AnyArg(), now.Add(10*time.Minute)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	blocked, wait, err := l.Failure(context.Background(), "session", HashClient("x"))
	require.NoError(t, err)
	require.True(t, blocked)
	require.Equal(t, 10*time.Minute, wait)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHashClient(t *testing.T) {
	a := HashClient("1.2.3.4")
	require.Equal(t, a, HashClient("1.2.3.4"))
	require.NotEqual(t, a, HashClient("5.6.7.8"))
	require.Len(t, a, 32)
}
