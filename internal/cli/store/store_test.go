package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// общий сценарий для всех реализаций KeyValueStore
func exerciseStore(t *testing.T, s KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	// повторная запись перезаписывает значение
	require.NoError(t, s.Set(ctx, "k", "v2"))
	v, _, _ = s.Get(ctx, "k")
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Remove(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// удаление отсутствующего ключа — не ошибка
	assert.NoError(t, s.Remove(ctx, "k"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Set(context.Background(), "a", "b"))
	require.NoError(t, s.Close())
	_, _, err := s.Get(context.Background(), "a")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Set(context.Background(), "a", "b"), ErrClosed)
}

func TestDurableStore_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "client.sqlite")
	s, err := OpenDurable(path)
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestDurableStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.sqlite")
	s, err := OpenDurable(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "draft:1", `{"title":"x"}`))
	require.NoError(t, s.Close())

	s2, err := OpenDurable(path)
	require.NoError(t, err)
	defer s2.Close()
	v, ok, err := s2.Get(context.Background(), "draft:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"title":"x"}`, v)
}

func TestOpenDurable_EmptyDSN(t *testing.T) {
	_, err := OpenDurable("")
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s := NewRedisStore(mr.Addr(), "sess-1", time.Hour)
	defer s.Close()
	require.NoError(t, s.Ping(context.Background()))
	exerciseStore(t, s)
}

func TestRedisStore_PrefixAndTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s := NewRedisStore(mr.Addr(), "sess-2", 30*time.Minute)
	defer s.Close()
	require.NoError(t, s.Set(context.Background(), "trust", "1"))

	assert.True(t, mr.Exists("session:sess-2:trust"))
	assert.Equal(t, 30*time.Minute, mr.TTL("session:sess-2:trust"))

	// сессия истекла — ключа больше нет
	mr.FastForward(31 * time.Minute)
	_, ok, err := s.Get(context.Background(), "trust")
	require.NoError(t, err)
	assert.False(t, ok)

	// другая сессия не видит чужих ключей
	other := NewRedisStore(mr.Addr(), "sess-3", time.Hour)
	defer other.Close()
	require.NoError(t, s.Set(context.Background(), "trust", "1"))
	_, ok, _ = other.Get(context.Background(), "trust")
	assert.False(t, ok)
}
