package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleCoordinator UserRole = "coordinator" // ведёт кампании, закрывает раунды
	RoleAssessor    UserRole = "assessor"    // проставляет impact / likelihood
	RoleViewer      UserRole = "viewer"
)

type User struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	OrganizationID string `gorm:"type:uuid;index;not null"`
	Organization   Organization

	Email        string   `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string   `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(20);not null"`

	FirstName string `gorm:"size:255"`
	LastName  string `gorm:"size:255"`
	LastLogin *time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
