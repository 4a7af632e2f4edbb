package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the KV contract against any backend.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, KeyAccountLevel)
	require.NoError(t, err)
	assert.False(t, ok, "missing key should report ok=false")

	require.NoError(t, kv.Set(ctx, KeyAccountLevel, "3"))
	v, ok, err := kv.Get(ctx, KeyAccountLevel)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	require.NoError(t, kv.Set(ctx, KeyAccountLevel, "4"))
	v, _, err = kv.Get(ctx, KeyAccountLevel)
	require.NoError(t, err)
	assert.Equal(t, "4", v, "set should overwrite")

	progress := `{"mission_daily_1":1,"mission_weekly_1":7}`
	require.NoError(t, kv.Set(ctx, KeyMissionProgress, progress))
	v, _, err = kv.Get(ctx, KeyMissionProgress)
	require.NoError(t, err)
	assert.Equal(t, progress, v)

	require.NoError(t, kv.Delete(ctx, KeyAccountLevel))
	_, ok, err = kv.Get(ctx, KeyAccountLevel)
	require.NoError(t, err)
	assert.False(t, ok, "deleted key should be gone")

	require.NoError(t, kv.Delete(ctx, "never-set"), "deleting a missing key is not an error")
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	exerciseKV(t, kv)
	assert.Equal(t, 1, kv.Len())
}

func TestSQLiteKV(t *testing.T) {
	s := openTestStore(t)
	exerciseKV(t, s.KV())
}

func TestSQLiteKVSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.KV().Set(ctx, KeyAccountXP, "42"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.KV().Get(ctx, KeyAccountXP)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", v)
}
