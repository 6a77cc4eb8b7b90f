package assessment

import (
	"riskmatrix/internal/models"

	"gorm.io/gorm"
)

// SyncAssetEntries приводит записи ТЕКУЩЕГО открытого раунда в соответствие
// со списком каталогов актива. Другие раунды не трогаем никогда.
// Новые пары (актив, риск) получают пустые записи; записи по выпавшим
// рискам удаляются, только если они не тронуты (нет оценок и снимка).
func SyncAssetEntries(db *gorm.DB, asset *models.Asset) error {
	round, err := OpenRound(db, asset.OrganizationID)
	if err != nil {
		return err
	}

	catalogIDs, err := asset.CatalogIDs(db)
	if err != nil {
		return err
	}

	// тот же критерий живости, что и у roll-forward: удалённый каталог
	// выводит свои риски из раунда, даже если связь с активом осталась
	wanted := map[string]bool{}
	if len(catalogIDs) > 0 {
		var risks []models.Risk
		if err := db.
			Joins("JOIN risk_catalogs ON risk_catalogs.id = risks.catalog_id AND risk_catalogs.deleted_at IS NULL").
			Where("risks.deleted_at IS NULL AND risks.catalog_id IN ?", catalogIDs).
			Find(&risks).Error; err != nil {
			return err
		}
		for _, r := range risks {
			wanted[r.ID] = true
		}
	}

	var existing []models.AssessmentEntry
	if err := db.
		Where("round_id = ? AND asset_id = ?", round.ID, asset.ID).
		Find(&existing).Error; err != nil {
		return err
	}

	have := map[string]bool{}
	for i := range existing {
		e := &existing[i]
		have[e.RiskID] = true

		if wanted[e.RiskID] {
			continue
		}
		// риск выпал из каталогов актива: пустую заготовку убираем,
		// тронутую запись оставляем как есть
		if !e.Touched() {
			if err := db.Delete(e).Error; err != nil {
				return err
			}
		}
	}

	for riskID := range wanted {
		if have[riskID] {
			continue
		}
		entry := models.AssessmentEntry{
			RoundID: round.ID,
			AssetID: asset.ID,
			RiskID:  riskID,
		}
		if err := db.Create(&entry).Error; err != nil {
			return err
		}
	}

	return nil
}
