package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyssareba/flika-app-sub001/internal/cache"
	"github.com/lyssareba/flika-app-sub001/internal/config"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/prompts"
)

func TestSentMarks_FallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	failing := func(context.Context, config.RedisConnection) (*cache.Cache, error) {
		return nil, errors.New("dial tcp: connection refused")
	}

	store, c := sentMarks(ctx, config.RedisConnection{}, failing, sl.Discard())
	assert.Nil(t, c)
	_, ok := store.(*prompts.MemoryStore)
	require.True(t, ok)

	at := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set(ctx, "u1", "reminder_sent:p1", at))
	got, found, err := store.Get(ctx, "u1", "reminder_sent:p1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, at, got)
}

func TestSentMarks_UsesRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, c := sentMarks(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()}, cache.InitServer, sl.Discard())
	require.NotNil(t, c)
	t.Cleanup(func() { _ = c.Close() })

	_, ok := store.(*cache.DismissalStore)
	assert.True(t, ok)
}
