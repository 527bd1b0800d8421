package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lyssareba/flika-app-sub001/internal/cache"
	"github.com/lyssareba/flika-app-sub001/internal/config"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/models"
	"github.com/lyssareba/flika-app-sub001/internal/prompts"
)

type MockProspects struct {
	mock.Mock
}

func (m *MockProspects) ListProspectSnapshots(ctx context.Context, userID string) ([]models.ProspectSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProspectSnapshot), args.Error(1)
}

type MockMilestones struct {
	mock.Mock
}

func (m *MockMilestones) Add(ctx context.Context, userID string, ev models.MilestoneEvent) error {
	args := m.Called(ctx, userID, ev)
	return args.Error(0)
}

func (m *MockMilestones) List(ctx context.Context, userID string) ([]models.MilestoneEvent, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MilestoneEvent), args.Error(1)
}

func (m *MockMilestones) RemoveProspect(ctx context.Context, userID, prospectID string, upTo time.Time) error {
	args := m.Called(ctx, userID, prospectID, upTo)
	return args.Error(0)
}

var now = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func newService(p *MockProspects, m *MockMilestones, store prompts.DismissalStore) *PromptService {
	rules := prompts.DefaultRules()
	log := sl.Discard()
	s := NewPromptService(p, m, prompts.NewGenerator(rules), prompts.NewScheduler(rules, store, log), log)
	s.now = func() time.Time { return now }
	return s
}

func staleProspect(id string) models.ProspectSnapshot {
	last := now.Add(-15 * 24 * time.Hour)
	return models.ProspectSnapshot{
		Prospect: models.Prospect{
			ID:        id,
			UserID:    "u1",
			Name:      "Jamie",
			Status:    models.ProspectActive,
			CreatedAt: now.Add(-30 * 24 * time.Hour),
		},
		DateCount:  2,
		LastDateAt: &last,
	}
}

func TestPromptService_Next(t *testing.T) {
	ctx := context.Background()

	t.Run("milestone outranks reminder", func(t *testing.T) {
		p, m := new(MockProspects), new(MockMilestones)
		p.On("ListProspectSnapshots", mock.Anything, "u1").Return([]models.ProspectSnapshot{staleProspect("p1")}, nil).Once()
		m.On("List", mock.Anything, "u1").Return([]models.MilestoneEvent{
			{ProspectID: "p1", ProspectName: "Jamie", Kind: "relationship"},
		}, nil).Once()

		got, ok, err := newService(p, m, prompts.NewMemoryStore()).Next(ctx, "u1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, models.PromptMilestone, got.Type)
		p.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("sources failing still yields a tip", func(t *testing.T) {
		p, m := new(MockProspects), new(MockMilestones)
		p.On("ListProspectSnapshots", mock.Anything, "u1").Return(nil, errors.New("db down")).Once()
		m.On("List", mock.Anything, "u1").Return(nil, errors.New("redis down")).Once()

		got, ok, err := newService(p, m, prompts.NewMemoryStore()).Next(ctx, "u1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, models.PromptGeneralTip, got.Type)
	})

	t.Run("recently shown tip is not generated", func(t *testing.T) {
		p, m := new(MockProspects), new(MockMilestones)
		p.On("ListProspectSnapshots", mock.Anything, "u1").Return([]models.ProspectSnapshot{}, nil).Once()
		m.On("List", mock.Anything, "u1").Return([]models.MilestoneEvent{}, nil).Once()

		store := prompts.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "u1", "general_tip", now.Add(-40*24*time.Hour)))
		svc := newService(p, m, store)
		_, ok, err := svc.Next(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok)

		p.On("ListProspectSnapshots", mock.Anything, "u1").Return([]models.ProspectSnapshot{}, nil).Once()
		m.On("List", mock.Anything, "u1").Return([]models.MilestoneEvent{}, nil).Once()
		require.NoError(t, store.Set(ctx, "u1", "general_tip", now.Add(-2*24*time.Hour)))
		_, ok, err = svc.Next(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("no user", func(t *testing.T) {
		_, _, err := newService(new(MockProspects), new(MockMilestones), prompts.NewMemoryStore()).Next(ctx, "")
		assert.ErrorIs(t, err, prompts.ErrNoUser)
	})
}

func TestPromptService_DismissMilestone(t *testing.T) {
	ctx := context.Background()
	p, m := new(MockProspects), new(MockMilestones)
	m.On("RemoveProspect", mock.Anything, "u1", "p1", now).Return(nil).Once()

	store := prompts.NewMemoryStore()
	svc := newService(p, m, store)
	require.NoError(t, svc.Dismiss(ctx, "u1", "milestone:p1"))

	at, ok, err := store.Get(ctx, "u1", "milestone:p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, now, at)
	m.AssertExpectations(t)
}

func TestPromptService_ShownMilestoneKeepsLaterOnes(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	c, err := cache.InitServer(ctx, config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	milestones := cache.NewMilestoneStore(c)
	rules := prompts.DefaultRules()
	log := sl.Discard()
	svc := NewPromptService(new(MockProspects), milestones, prompts.NewGenerator(rules),
		prompts.NewScheduler(rules, prompts.NewMemoryStore(), log), log)
	svc.now = func() time.Time { return now }

	require.NoError(t, milestones.Add(ctx, "u1", models.MilestoneEvent{ProspectID: "p1", ProspectName: "Sam", Kind: "fifth_date", OccurredAt: now.Add(-time.Hour)}))
	require.NoError(t, milestones.Add(ctx, "u1", models.MilestoneEvent{ProspectID: "p1", ProspectName: "Sam", Kind: "relationship", OccurredAt: now.Add(time.Minute)}))

	require.NoError(t, svc.RecordShown(ctx, "u1", "milestone:p1"))

	pending, err := milestones.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "relationship", pending[0].Kind)
}

func TestPromptService_RecordShown(t *testing.T) {
	ctx := context.Background()
	p, m := new(MockProspects), new(MockMilestones)
	store := prompts.NewMemoryStore()
	svc := newService(p, m, store)

	require.NoError(t, svc.RecordShown(ctx, "u1", "date_reminder:p1"))
	_, ok, err := store.Get(ctx, "u1", "date_reminder:p1")
	require.NoError(t, err)
	assert.True(t, ok)
	m.AssertNotCalled(t, "RemoveProspect", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	assert.ErrorIs(t, svc.RecordShown(ctx, "u1", ""), prompts.ErrEmptyKey)
}

func TestPromptService_AddMilestone(t *testing.T) {
	ctx := context.Background()
	p, m := new(MockProspects), new(MockMilestones)
	m.On("Add", mock.Anything, "u1", mock.MatchedBy(func(ev models.MilestoneEvent) bool {
		return ev.ProspectID == "p7" && ev.OccurredAt.Equal(now)
	})).Return(nil).Once()

	got, err := newService(p, m, prompts.NewMemoryStore()).AddMilestone(ctx, "u1", models.MilestoneEvent{
		ProspectID:   "p7",
		ProspectName: "Robin",
		Kind:         "first_date",
	})
	require.NoError(t, err)
	assert.Equal(t, "milestone:p7", got.DismissalKey)
	m.AssertExpectations(t)
}
