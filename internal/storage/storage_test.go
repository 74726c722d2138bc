package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseBlobStore runs the behaviour every backend has to share.
func exerciseBlobStore(t *testing.T, s BlobStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	_, err := s.Get(ctx, "places_missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "places", []byte(`[{"id":1,"name":"Mordor","reviews":[]}]`)))
	got, err := s.Get(ctx, "places")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"Mordor","reviews":[]}]`, string(got))

	// last write wins
	require.NoError(t, s.Put(ctx, "places", []byte(`[]`)))
	got, err = s.Get(ctx, "places")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(got))
}

func TestMemoryStore(t *testing.T) {
	exerciseBlobStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	v := []byte(`[]`)
	require.NoError(t, s.Put(ctx, "places", v))
	v[0] = 'x'

	got, err := s.Get(ctx, "places")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseBlobStore(t, s)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "places", []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "places.json", entries[0].Name())
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	err = s.Put(context.Background(), "../escape", []byte(`[]`))
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "places.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseBlobStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	s, err := NewPostgresStore(context.Background(), dbURL)
	require.NoError(t, err)
	defer s.Close()

	exerciseBlobStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Driver: DriverFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(ctx, Options{Driver: "redis"})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Driver: DriverPostgres})
	assert.Error(t, err)
}
