// Package storage источник данных о проспектах, свиданиях и чертах на основе
// PostgreSQL. Движок только читает эти данные: счётчики для проверки лимитов,
// снимки для правил подсказок и выборку для фоновых напоминаний.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lyssareba/flika-app-sub001/internal/models"
)

// ErrProspectNotFound проспект не существует или принадлежит другому пользователю.
var ErrProspectNotFound = errors.New("prospect not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет, что миграции применены.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables 
        WHERE table_name = 'prospects'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check prospects table: %w", err)
	}
	if !exists {
		return errors.New("required table prospects missing")
	}
	return nil
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close закрывает соединение.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// CountProspects возвращает число активных (не архивных) и архивных проспектов пользователя.
func (s *Storage) CountProspects(ctx context.Context, userID string) (models.ProspectCounts, error) {
	const op = "storage.CountProspects"

	query := `SELECT
				COUNT(*) FILTER (WHERE NOT is_archived),
				COUNT(*) FILTER (WHERE is_archived)
			  FROM prospects
			  WHERE user_uid = $1`
	var counts models.ProspectCounts
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&counts.Active, &counts.Archived); err != nil {
		return models.ProspectCounts{}, fmt.Errorf("%s: %w", op, err)
	}
	return counts, nil
}

// CountDates возвращает число свиданий с проспектом пользователя.
func (s *Storage) CountDates(ctx context.Context, userID, prospectID string) (int, error) {
	const op = "storage.CountDates"

	query := `SELECT COUNT(d.id)
			  FROM prospects p
			  LEFT JOIN dates d ON d.prospect_id = p.id
			  WHERE p.id = $1 AND p.user_uid = $2
			  GROUP BY p.id`
	var count int
	err := s.DB.QueryRowContext(ctx, query, prospectID, userID).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, ErrProspectNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListProspectSnapshots возвращает проспекты пользователя с агрегатами по свиданиям
// и неразрешённым dealbreaker чертам.
func (s *Storage) ListProspectSnapshots(ctx context.Context, userID string) ([]models.ProspectSnapshot, error) {
	const op = "storage.ListProspectSnapshots"

	query := `SELECT p.id, p.user_uid, p.name, p.status, p.is_archived, p.created_at,
				(SELECT COUNT(*) FROM dates d WHERE d.prospect_id = p.id),
				(SELECT MAX(d.occurred_at) FROM dates d WHERE d.prospect_id = p.id),
				(SELECT COUNT(*) FROM traits t
				  WHERE t.prospect_id = p.id AND t.is_dealbreaker AND t.state = 'unknown')
			  FROM prospects p
			  WHERE p.user_uid = $1
			  ORDER BY p.id`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []models.ProspectSnapshot
	for rows.Next() {
		var (
			p        models.ProspectSnapshot
			status   string
			lastDate sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &status, &p.IsArchived, &p.CreatedAt,
			&p.DateCount, &lastDate, &p.UnresolvedDealbreakers); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.Status = models.ProspectStatus(status)
		if lastDate.Valid {
			t := lastDate.Time
			p.LastDateAt = &t
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// FindStaleProspects возвращает активные неархивные проспекты, у которых последнее
// свидание (или создание, если свиданий нет) было не позже cutoff. Старые идут первыми.
func (s *Storage) FindStaleProspects(ctx context.Context, cutoff time.Time, limit, offset int) ([]models.ReminderInfo, error) {
	const op = "storage.FindStaleProspects"

	query := `SELECT u.uid, u.email, u.username, p.id, p.name,
				COALESCE(MAX(d.occurred_at), p.created_at) AS last_date
			  FROM prospects p
			  JOIN users u ON u.uid = p.user_uid
			  LEFT JOIN dates d ON d.prospect_id = p.id
			  WHERE p.status = 'active' AND NOT p.is_archived
			  GROUP BY u.uid, u.email, u.username, p.id, p.name, p.created_at
			  HAVING COALESCE(MAX(d.occurred_at), p.created_at) <= $1
			  ORDER BY last_date, p.id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, cutoff, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []models.ReminderInfo
	for rows.Next() {
		var info models.ReminderInfo
		if err := rows.Scan(&info.UserID, &info.Email, &info.Username,
			&info.ProspectID, &info.ProspectName, &info.LastDateAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
