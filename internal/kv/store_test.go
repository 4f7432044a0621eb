package kv_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mascot-survey/internal/db"
	"github.com/mind-engage/mascot-survey/internal/kv"
)

// exercise runs the same contract against every backend.
func exercise(t *testing.T, s kv.Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "surveySubmissions")
	require.NoError(t, err)
	assert.False(t, ok, "unset key must report ok=false")

	require.NoError(t, s.Set(ctx, "surveySubmissions", `{"fp":{}}`))
	require.NoError(t, s.Set(ctx, "lang", "en"))

	v, ok, err := s.Get(ctx, "surveySubmissions")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"fp":{}}`, v)

	require.NoError(t, s.Set(ctx, "lang", "nl"))
	v, _, err = s.Get(ctx, "lang")
	require.NoError(t, err)
	assert.Equal(t, "nl", v)
}

func TestMemoryStore(t *testing.T) {
	exercise(t, kv.NewMemory())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	s, err := kv.NewFile(path)
	require.NoError(t, err)
	exercise(t, s)

	// a second handle on the same file sees the persisted values
	again, err := kv.NewFile(path)
	require.NoError(t, err)
	v, ok, err := again.Get(context.Background(), "lang")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "nl", v)
}

func TestFileStore_RecoversFromCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	s, err := kv.NewFile(path)
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, "surveySubmissions")
	require.NoError(t, err)
	assert.False(t, ok, "unreadable document reads as empty")

	kept, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(kept))

	require.NoError(t, s.Set(ctx, "lang", "en"))
	v, ok, err := s.Get(ctx, "lang")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "en", v)
}

func TestFileStore_NullDocumentReadsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))
	s, err := kv.NewFile(path)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "lang", "nl"))
	v, _, err := s.Get(ctx, "lang")
	require.NoError(t, err)
	assert.Equal(t, "nl", v)
}

func TestSQLStore_SQLite(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "kv.db") + "?_pragma=busy_timeout(5000)"
	conn, err := db.Open(ctx, db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	exercise(t, kv.NewSQL(conn))
}

func TestSQLStore_PostgresStatements(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE name=$1`)).
		WithArgs("lang").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv (name,value,updated_at)`)).
		WithArgs("lang", "en", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE name=$1`)).
		WithArgs("lang").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("en"))

	s := kv.NewSQL(conn)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "lang")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "lang", "en"))

	v, ok, err := s.Get(ctx, "lang")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "en", v)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	s, err := kv.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	key := "test-" + t.Name()
	require.NoError(t, s.Set(ctx, key, "v1"))
	v, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := kv.Open(ctx, kv.DriverMemory, "")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.NoError(t, closeFn())

	s, closeFn, err = kv.Open(ctx, kv.DriverFile, filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, err)
	exercise(t, s)
	assert.NoError(t, closeFn())

	_, closeFn, err = kv.Open(ctx, "etcd", "")
	assert.ErrorIs(t, err, kv.ErrUnsupportedDriver)
	assert.NotNil(t, closeFn)
}
