package models

import "time"

// ActivityLog records who did what. Persisted through GORM, separate
// from the raw-SQL business tables.
type ActivityLog struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	CreatedAt      time.Time `json:"created_at"`
	UserName       string    `json:"user_name"`
	HostName       string    `json:"host_name"`
	IPAddress      string    `json:"ip_address"`
	EventContext   string    `json:"event_context"`
	EventName      string    `json:"event_name"`
	Description    string    `json:"description"`
	AffectedEntity string    `json:"affected_entity"`
}

func (ActivityLog) TableName() string { return "activity_log" }
