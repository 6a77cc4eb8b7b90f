package assessment

import (
	"encoding/json"
	"time"

	"riskmatrix/internal/models"

	"gorm.io/gorm"
)

// Денормализованная проекция записи для снимка: запись + актив + риск,
// без обратных ссылок (списки организации, ссылки риска/актива на оценки),
// иначе сериализация уходит в рекурсию.
type entrySnapshot struct {
	ID         string    `json:"id"`
	RoundID    string    `json:"round_id"`
	Impact     *int      `json:"impact"`
	Likelihood *int      `json:"likelihood"`
	Meta       string    `json:"meta,omitempty"`
	Created    time.Time `json:"created"`
	Modified   time.Time `json:"modified"`

	Asset struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	} `json:"asset"`

	Risk struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Category    string `json:"category,omitempty"`
		Catalog     struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"catalog"`
	} `json:"risk"`
}

func snapshotEntry(e *models.AssessmentEntry) (string, error) {
	var s entrySnapshot
	s.ID = e.ID
	s.RoundID = e.RoundID
	s.Impact = e.Impact
	s.Likelihood = e.Likelihood
	s.Meta = e.Meta
	s.Created = e.CreatedAt
	s.Modified = e.UpdatedAt

	s.Asset.ID = e.Asset.ID
	s.Asset.Name = e.Asset.Name
	s.Asset.Description = e.Asset.Description

	s.Risk.ID = e.Risk.ID
	s.Risk.Name = e.Risk.Name
	s.Risk.Description = e.Risk.Description
	s.Risk.Category = e.Risk.Category
	s.Risk.Catalog.ID = e.Risk.Catalog.ID
	s.Risk.Catalog.Name = e.Risk.Catalog.Name

	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// CloseAndRollForward закрывает открытые раунды организации и создаёт следующий.
// Порядок шагов жёсткий, всё в одной транзакции:
//  1. снимок всех записей открытых раундов (до смены состояния);
//  2. state = finished, имя и finished_at от оператора;
//  3. новый открытый раунд + записи по текущему графу актив-каталог-риск.
// Любая ошибка откатывает всё: организация не может остаться без открытого раунда.
func CloseAndRollForward(db *gorm.DB, orgID, displayName string, finishedAt time.Time) (*models.AssessmentRound, error) {
	if finishedAt.IsZero() {
		finishedAt = time.Now().UTC()
	}

	var next *models.AssessmentRound
	err := db.Transaction(func(tx *gorm.DB) error {
		var open []models.AssessmentRound
		if err := tx.
			Where("organization_id = ? AND state = ?", orgID, models.RoundOpen).
			Order("created_at asc").
			Find(&open).Error; err != nil {
			return err
		}
		if len(open) == 0 {
			return &ConsistencyError{Reason: "no open round to close for organization " + orgID}
		}

		openIDs := make([]string, 0, len(open))
		for _, r := range open {
			openIDs = append(openIDs, r.ID)
		}

		// шаг 1: снимок до закрытия, чтобы он отражал значения "до"
		var entries []models.AssessmentEntry
		if err := tx.
			Preload("Asset").
			Preload("Risk").
			Preload("Risk.Catalog").
			Where("round_id IN ?", openIDs).
			Find(&entries).Error; err != nil {
			return err
		}
		for i := range entries {
			snap, err := snapshotEntry(&entries[i])
			if err != nil {
				return err
			}
			if err := tx.Model(&entries[i]).Update("state_at_finish", snap).Error; err != nil {
				return err
			}
		}

		// шаг 2: закрываем
		if err := tx.Model(&models.AssessmentRound{}).
			Where("id IN ?", openIDs).
			Updates(map[string]interface{}{
				"state":       models.RoundFinished,
				"name":        displayName,
				"finished_at": finishedAt,
			}).Error; err != nil {
			return err
		}

		// шаг 3: новый раунд и записи по актуальным связям
		round := models.AssessmentRound{
			OrganizationID: orgID,
			State:          models.RoundOpen,
		}
		if err := tx.Create(&round).Error; err != nil {
			return err
		}

		if err := rollForwardEntries(tx, orgID, round.ID); err != nil {
			return err
		}

		next = &round
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// rollForwardEntries создаёт по записи на каждую пару (актив, риск),
// где риск лежит в каталоге, привязанном к активу. Удалённые активы,
// каталоги и риски не участвуют.
func rollForwardEntries(tx *gorm.DB, orgID, roundID string) error {
	var assets []models.Asset
	if err := tx.Scopes(models.NotDeleted).
		Where("organization_id = ?", orgID).
		Find(&assets).Error; err != nil {
		return err
	}

	for i := range assets {
		catalogIDs, err := assets[i].CatalogIDs(tx)
		if err != nil {
			return err
		}
		if len(catalogIDs) == 0 {
			continue
		}

		var risks []models.Risk
		if err := tx.
			Joins("JOIN risk_catalogs ON risk_catalogs.id = risks.catalog_id AND risk_catalogs.deleted_at IS NULL").
			Where("risks.deleted_at IS NULL AND risks.catalog_id IN ?", catalogIDs).
			Find(&risks).Error; err != nil {
			return err
		}

		for j := range risks {
			entry := models.AssessmentEntry{
				RoundID: roundID,
				AssetID: assets[i].ID,
				RiskID:  risks[j].ID,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
