package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func exerciseBackend(t *testing.T, s Snapshots) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Read(ctx, "vitrine.compare")
	require.NoError(t, err)
	require.False(t, ok, "unwritten key should be absent")

	require.NoError(t, s.Write(ctx, "vitrine.compare", []byte(`{"version":1}`)))
	data, ok, err := s.Read(ctx, "vitrine.compare")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"version":1}`, string(data))

	require.NoError(t, s.Write(ctx, "vitrine.compare", []byte(`{"version":2}`)))
	data, _, err = s.Read(ctx, "vitrine.compare")
	require.NoError(t, err)
	require.Equal(t, `{"version":2}`, string(data), "write should overwrite")

	// Keys are independent.
	_, ok, err = s.Read(ctx, "vitrine.wishlist")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Delete(ctx, "vitrine.compare"))
	_, ok, err = s.Read(ctx, "vitrine.compare")
	require.NoError(t, err)
	require.False(t, ok, "deleted key should be absent")
	require.NoError(t, s.Delete(ctx, "vitrine.compare"), "deleting twice is fine")

	require.Error(t, s.Write(ctx, " ", []byte("x")))
}

func TestFileBackend(t *testing.T) {
	s, err := NewFile(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseBackend(t, s)
}

func TestFileBackend_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), "vitrine.wishlist", []byte("[]")))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "vitrine.wishlist.json", entries[0].Name())
}

func TestFileBackend_KeyCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), "../outside", []byte("x")))
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "outside.json"))
	require.True(t, os.IsNotExist(err), "snapshot escaped storage dir")
}

func TestSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vitrine.db")
	s, err := NewSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseBackend(t, s)
}

func TestSQLiteBackend_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vitrine.db")

	s, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, "vitrine.compare", []byte("[1]")))
	require.NoError(t, s.Close())

	s, err = NewSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	data, ok, err := s.Read(ctx, "vitrine.compare")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[1]", string(data))
}

func TestRedisBackend(t *testing.T) {
	url := os.Getenv("VITRINE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("VITRINE_TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	s, err := NewRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Delete(ctx, "vitrine.compare"))
	require.NoError(t, s.Delete(ctx, "vitrine.wishlist"))
	exerciseBackend(t, s)
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemory())
}

func TestMemoryBackend_Hooks(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Set("k", []byte("v"))
	require.Zero(t, m.Writes())

	boom := errors.New("quota exceeded")
	m.FailWrites(boom)
	require.ErrorIs(t, m.Write(ctx, "k", []byte("w")), boom)
	m.FailWrites(nil)

	m.FailReads(boom)
	_, _, err := m.Read(ctx, "k")
	require.ErrorIs(t, err, boom)
	m.FailReads(nil)

	release := m.BlockReads()
	done := make(chan []byte, 1)
	go func() {
		data, _, _ := m.Read(ctx, "k")
		done <- data
	}()

	select {
	case <-done:
		t.Fatal("Read returned while blocked")
	case <-time.After(20 * time.Millisecond):
	}
	release()
	require.Equal(t, "v", string(<-done))
	release()
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, Options{Path: dir})
	require.NoError(t, err)
	require.IsType(t, &File{}, s)

	s, err = Open(ctx, Options{Backend: "SQLite", Path: dir})
	require.NoError(t, err)
	require.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())
	require.FileExists(t, filepath.Join(dir, "vitrine.db"))

	s, err = Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	require.IsType(t, &Memory{}, s)

	_, err = Open(ctx, Options{Backend: "floppy"})
	require.Error(t, err)
}
