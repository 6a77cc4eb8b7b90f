package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Риск принадлежит ровно одному каталогу (и через него — организации).
type Risk struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`

	OrganizationID string `gorm:"type:uuid;index;not null"`
	Organization   Organization

	CatalogID string `gorm:"type:uuid;index;not null"`
	Catalog   RiskCatalog

	// уникальность имени среди живых рисков организации проверяется при записи
	Name        string `gorm:"size:255;not null;index"`
	Description string `gorm:"type:text"`
	Category    string `gorm:"size:128;index"`
	Meta        string `gorm:"type:text"` // произвольный JSON
}

func (r *Risk) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r *Risk) SoftDelete(db *gorm.DB) error {
	r.DeletedAt = now()
	return db.Model(r).Update("deleted_at", r.DeletedAt).Error
}
