package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lyssareba/flika-app-sub001/internal/migrations"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя
func (f *TestDataFactory) CreateUser(t *testing.T, uid, username, email string) {
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, username, email) VALUES ($1, $2, $3)`,
		uid, username, email)
	require.NoError(t, err)
}

// CreateProspect создает тестового проспекта
func (f *TestDataFactory) CreateProspect(t *testing.T, id, userUID, name, status string, archived bool, createdAt time.Time) {
	_, err := f.storage.DB.Exec(`INSERT INTO prospects (id, user_uid, name, status, is_archived, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, userUID, name, status, archived, createdAt)
	require.NoError(t, err)
}

// CreateDate добавляет свидание с проспектом
func (f *TestDataFactory) CreateDate(t *testing.T, prospectID string, at time.Time) {
	_, err := f.storage.DB.Exec(`INSERT INTO dates (prospect_id, occurred_at) VALUES ($1, $2)`,
		prospectID, at)
	require.NoError(t, err)
}

// CreateTrait добавляет черту проспекта
func (f *TestDataFactory) CreateTrait(t *testing.T, prospectID, name string, dealbreaker bool, state string) {
	_, err := f.storage.DB.Exec(`INSERT INTO traits (prospect_id, name, is_dealbreaker, state)
		VALUES ($1, $2, $3, $4)`,
		prospectID, name, dealbreaker, state)
	require.NoError(t, err)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath), "Failed to apply migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}
