package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func TestInitializeIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// A second bootstrap over an existing schema must be a no-op.
	require.NoError(t, s.Initialize(ctx))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.Companies)
	require.Equal(t, int64(0), stats.Facilities)
}

func TestInsertAndQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "INSERT INTO companies (name) VALUES (?)", "Motherson")
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	rows, err := s.Query(ctx, "SELECT name FROM companies WHERE id = ?", id)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var name string
	require.NoError(t, rows.Scan(&name))
	require.Equal(t, "Motherson", name)
}

func TestUniqueConstraint(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "INSERT INTO companies (name) VALUES (?)", "Motherson")
	require.NoError(t, err)

	_, err = s.Insert(ctx, "INSERT INTO companies (name) VALUES (?)", "Motherson")
	require.Error(t, err)
	require.True(t, IsConstraintViolation(err))
}

func TestForeignKeyViolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx,
		"INSERT INTO divisions (company_id, name) VALUES (?, ?)", 9999, "Wiring Systems")
	require.Error(t, err)
	require.True(t, IsConstraintViolation(err))
}

func TestIsConstraintViolationOnOtherErrors(t *testing.T) {
	require.False(t, IsConstraintViolation(nil))

	s := newTestStore(t)
	_, err := s.Query(context.Background(), "SELECT * FROM no_such_table")
	require.Error(t, err)
	require.False(t, IsConstraintViolation(err))
}

func TestBatchInsertIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	companyID, err := s.Insert(ctx, "INSERT INTO companies (name) VALUES (?)", "Motherson")
	require.NoError(t, err)

	// Second tuple references a missing company; the whole batch must roll back.
	err = s.BatchInsert(ctx,
		"INSERT INTO divisions (company_id, name) VALUES (?, ?)",
		[][]any{
			{companyID, "Wiring Systems"},
			{int64(9999), "Polymers"},
		})
	require.Error(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.Divisions)
}

func TestBatchInsertCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	companyID, err := s.Insert(ctx, "INSERT INTO companies (name) VALUES (?)", "Motherson")
	require.NoError(t, err)

	err = s.BatchInsert(ctx,
		"INSERT INTO divisions (company_id, name) VALUES (?, ?)",
		[][]any{
			{companyID, "Wiring Systems"},
			{companyID, "Polymers"},
		})
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Divisions)
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	companyID, err := s.Insert(ctx, "INSERT INTO companies (name) VALUES (?)", "Motherson")
	require.NoError(t, err)
	_, err = s.Insert(ctx,
		"INSERT INTO divisions (company_id, name) VALUES (?, ?)", companyID, "Polymers")
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.Companies)
	require.Equal(t, int64(0), stats.Divisions)
}
