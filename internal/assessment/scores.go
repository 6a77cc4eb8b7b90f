package assessment

import (
	"errors"
	"fmt"

	"riskmatrix/internal/models"

	"gorm.io/gorm"
)

// Оценки задаются точечными обновлениями одной колонки: одновременные
// выставления по разным записям не конфликтуют, по одной записи —
// последняя запись побеждает.

func SetImpact(db *gorm.DB, entryID string, level int) error {
	return setLevel(db, entryID, "impact", level)
}

func SetLikelihood(db *gorm.DB, entryID string, level int) error {
	return setLevel(db, entryID, "likelihood", level)
}

func setLevel(db *gorm.DB, entryID, field string, level int) error {
	if level < 1 || level > 5 {
		return &ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("level %d is out of range 1..5", level),
		}
	}

	var entry models.AssessmentEntry
	if err := db.First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return db.Model(&entry).Update(field, level).Error
}

// GetEntry — запись по id, ErrNotFound если такой нет.
func GetEntry(db *gorm.DB, id string) (*models.AssessmentEntry, error) {
	var entry models.AssessmentEntry
	err := db.
		Preload("Risk").
		Preload("Asset").
		First(&entry, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// CreateEntry создаёт запись вручную (добавление риска/актива посреди раунда).
// Риск и актив должны принадлежать одной организации, пара (риск, актив)
// в рамках раунда уникальна.
func CreateEntry(db *gorm.DB, roundID, assetID, riskID string) (*models.AssessmentEntry, error) {
	var asset models.Asset
	if err := db.First(&asset, "id = ?", assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var risk models.Risk
	if err := db.First(&risk, "id = ?", riskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if asset.OrganizationID != risk.OrganizationID {
		return nil, &ValidationError{
			Field:  "risk_id",
			Reason: "risk and asset belong to different organizations",
		}
	}

	var count int64
	db.Model(&models.AssessmentEntry{}).
		Where("round_id = ? AND asset_id = ? AND risk_id = ?", roundID, assetID, riskID).
		Count(&count)
	if count > 0 {
		return nil, &ValidationError{
			Field:  "risk_id",
			Reason: "entry for this risk and asset already exists in the round",
		}
	}

	entry := models.AssessmentEntry{
		RoundID: roundID,
		AssetID: assetID,
		RiskID:  riskID,
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
