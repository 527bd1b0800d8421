package models

import "time"

// ProspectStatus статус проспекта.
type ProspectStatus string

const (
	ProspectActive       ProspectStatus = "active"
	ProspectRelationship ProspectStatus = "relationship"
	ProspectEnded        ProspectStatus = "ended"
)

// Prospect человек, с которым пользователь ходит на свидания.
type Prospect struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Name       string         `json:"name"`
	Status     ProspectStatus `json:"status"`
	IsArchived bool           `json:"is_archived"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ProspectSnapshot агрегированное состояние проспекта, которого достаточно правилам подсказок.
type ProspectSnapshot struct {
	Prospect
	DateCount              int        `json:"date_count"`
	LastDateAt             *time.Time `json:"last_date_at,omitempty"`
	UnresolvedDealbreakers int        `json:"unresolved_dealbreakers"`
}

// ProspectCounts текущие счётчики пользователя для проверки лимитов.
type ProspectCounts struct {
	Active   int `json:"active"`
	Archived int `json:"archived"`
}

// ReminderInfo данные для напоминания о свидании вне приложения.
type ReminderInfo struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	ProspectID   string    `json:"prospect_id"`
	ProspectName string    `json:"prospect_name"`
	LastDateAt   time.Time `json:"last_date_at"`
}
