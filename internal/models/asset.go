package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Объект оценки (актив) организации.
type Asset struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`

	OrganizationID string `gorm:"type:uuid;index;not null"`
	Organization   Organization

	// имя уникально среди живых активов организации; проверяется при записи,
	// индекс в БД невозможен из-за мягкого удаления
	Name        string `gorm:"size:255;not null;index"`
	Description string `gorm:"type:text"`

	Catalogs []AssetCatalog `gorm:"foreignKey:AssetID"`
}

// Связь актив — каталог рисков. Явная join-таблица вместо списка id в метаданных.
type AssetCatalog struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	AssetID   string `gorm:"type:uuid;index;not null;uniqueIndex:uq_asset_catalog"`
	CatalogID string `gorm:"type:uuid;index;not null;uniqueIndex:uq_asset_catalog"`

	Asset   Asset
	Catalog RiskCatalog `gorm:"foreignKey:CatalogID"`
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (a *Asset) SoftDelete(db *gorm.DB) error {
	a.DeletedAt = now()
	return db.Model(a).Update("deleted_at", a.DeletedAt).Error
}

// CatalogIDs возвращает id каталогов, привязанных к активу.
func (a *Asset) CatalogIDs(db *gorm.DB) ([]string, error) {
	var ids []string
	err := db.Model(&AssetCatalog{}).
		Where("asset_id = ?", a.ID).
		Order("catalog_id asc").
		Pluck("catalog_id", &ids).Error
	return ids, err
}

// LinkCatalog привязывает каталог к активу. Каталог должен существовать,
// быть не удалённым и принадлежать той же организации.
func (a *Asset) LinkCatalog(db *gorm.DB, catalogID string) error {
	var catalog RiskCatalog
	if err := db.Scopes(NotDeleted).First(&catalog, "id = ?", catalogID).Error; err != nil {
		return err
	}
	if catalog.OrganizationID != a.OrganizationID {
		return ErrForeignOrganization
	}

	var count int64
	db.Model(&AssetCatalog{}).
		Where("asset_id = ? AND catalog_id = ?", a.ID, catalogID).
		Count(&count)
	if count > 0 {
		return nil
	}

	return db.Create(&AssetCatalog{AssetID: a.ID, CatalogID: catalogID}).Error
}

func (a *Asset) UnlinkCatalog(db *gorm.DB, catalogID string) error {
	return db.Where("asset_id = ? AND catalog_id = ?", a.ID, catalogID).
		Delete(&AssetCatalog{}).Error
}
