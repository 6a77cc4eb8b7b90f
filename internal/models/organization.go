package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Организация — корень тенанта. Все доменные сущности ссылаются ровно на одну организацию.
type Organization struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name   string `gorm:"size:255;not null"`
	Email  string `gorm:"size:255"`
	Locale string `gorm:"size:32;default:en"`

	Users    []User
	Assets   []Asset
	Catalogs []RiskCatalog
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
