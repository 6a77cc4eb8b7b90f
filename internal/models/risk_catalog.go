package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Каталог рисков организации. Иерархия через parent_id (родитель — каталог той же организации).
type RiskCatalog struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`

	OrganizationID string `gorm:"type:uuid;index;not null"`
	Organization   Organization

	// уникальность имени среди живых каталогов организации проверяется при записи
	Name        string `gorm:"size:128;not null;index"`
	Description string `gorm:"type:text"`

	ParentID *string       `gorm:"type:uuid;index"`
	Parent   *RiskCatalog
	Children []RiskCatalog `gorm:"foreignKey:ParentID"`

	Risks []Risk `gorm:"foreignKey:CatalogID"`
}

func (rc *RiskCatalog) BeforeCreate(tx *gorm.DB) error {
	if rc.ID == "" {
		rc.ID = uuid.NewString()
	}
	return nil
}

func (rc *RiskCatalog) SoftDelete(db *gorm.DB) error {
	rc.DeletedAt = now()
	return db.Model(rc).Update("deleted_at", rc.DeletedAt).Error
}

// ValidateParent проверяет нового родителя каталога: та же организация,
// не сам каталог и не его потомок (иначе получится цикл).
func ValidateParent(db *gorm.DB, catalog *RiskCatalog, parentID string) error {
	var parent RiskCatalog
	if err := db.Scopes(NotDeleted).First(&parent, "id = ?", parentID).Error; err != nil {
		return err
	}
	if parent.OrganizationID != catalog.OrganizationID {
		return ErrForeignOrganization
	}

	// поднимаемся от родителя к корню; если встретим сам каталог — цикл
	seen := map[string]bool{}
	cur := &parent
	for {
		if cur.ID == catalog.ID {
			return ErrCatalogCycle
		}
		if cur.ParentID == nil || seen[cur.ID] {
			return nil
		}
		seen[cur.ID] = true
		var next RiskCatalog
		if err := db.First(&next, "id = ?", *cur.ParentID).Error; err != nil {
			return err
		}
		cur = &next
	}
}
