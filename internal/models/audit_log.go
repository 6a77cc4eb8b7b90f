package models

import "time"

type AuditLog struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID string `gorm:"type:uuid;index"`
	User   User

	OrganizationID string `gorm:"type:uuid;index"`

	Entity   string `gorm:"size:50;not null"` // "asset", "risk", "round" и т.п.
	EntityID string `gorm:"type:uuid"`
	Action   string `gorm:"size:50;not null"` // "create", "finish_round" и т.п.
	Details  string `gorm:"type:text"`
}
