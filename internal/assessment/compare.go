package assessment

import (
	"sort"

	"riskmatrix/internal/models"

	"gorm.io/gorm"
)

// Идентичность записи между раундами — составной ключ (риск, актив).
// Никакой склейки id в строку: отдельный тип исключает случайные коллизии.
type entryKey struct {
	RiskID  string
	AssetID string
}

// ComparisonRow — одна строка сравнения двух раундов.
// Likelihood/Impact — значения базового раунда с откатом на сравниваемый
// ("как риск выглядит сейчас, с историческим фолбэком").
// Diff* заполнены, только если значение есть с обеих сторон.
type ComparisonRow struct {
	Nr          int    `json:"nr"`
	RiskID      string `json:"risk_id"`
	AssetID     string `json:"asset_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	AssetName   string `json:"asset_name"`

	Likelihood *int `json:"likelihood"`
	Impact     *int `json:"impact"`

	DiffLikelihood *int `json:"diff_likelihood"`
	DiffImpact     *int `json:"diff_impact"`

	InBase    bool `json:"in_base"`
	InCompare bool `json:"in_compare"`
}

// Compare сопоставляет записи раундов base и compare по паре (риск, актив).
// Порядок аргументов не означает хронологию: базовым может быть и более
// новый, и более старый раунд. Фильтр "только открытые раунды" здесь
// не действует — сравнивают почти всегда закрытые.
func Compare(db *gorm.DB, baseID, compareID string) ([]ComparisonRow, error) {
	if _, err := GetRound(db, baseID); err != nil {
		return nil, err
	}
	if _, err := GetRound(db, compareID); err != nil {
		return nil, err
	}

	baseEntries, err := roundEntries(db, baseID)
	if err != nil {
		return nil, err
	}
	compEntries, err := roundEntries(db, compareID)
	if err != nil {
		return nil, err
	}

	baseByKey := map[entryKey]*models.AssessmentEntry{}
	for i := range baseEntries {
		e := &baseEntries[i]
		baseByKey[entryKey{e.RiskID, e.AssetID}] = e
	}
	compByKey := map[entryKey]*models.AssessmentEntry{}
	for i := range compEntries {
		e := &compEntries[i]
		compByKey[entryKey{e.RiskID, e.AssetID}] = e
	}

	// объединение ключей обоих раундов; номер присваивается при первом
	// появлении ключа и одинаков для всех его вхождений
	numbers := map[entryKey]int{}
	next := 1
	for i := range compEntries {
		k := entryKey{compEntries[i].RiskID, compEntries[i].AssetID}
		if _, ok := numbers[k]; !ok {
			numbers[k] = next
			next++
		}
	}
	for i := range baseEntries {
		k := entryKey{baseEntries[i].RiskID, baseEntries[i].AssetID}
		if _, ok := numbers[k]; !ok {
			numbers[k] = next
			next++
		}
	}

	rows := make([]ComparisonRow, 0, len(numbers))
	for k, nr := range numbers {
		base := baseByKey[k]
		comp := compByKey[k]

		// значения берём из base, при его отсутствии — из compare
		src := base
		if src == nil {
			src = comp
		}

		row := ComparisonRow{
			Nr:          nr,
			RiskID:      k.RiskID,
			AssetID:     k.AssetID,
			Name:        src.Risk.Name,
			Description: src.Risk.Description,
			Category:    src.Risk.Category,
			AssetName:   src.Asset.Name,
			Likelihood:  src.Likelihood,
			Impact:      src.Impact,
			InBase:      base != nil,
			InCompare:   comp != nil,
		}

		// дельты считаются только для пар, присутствующих в обоих раундах,
		// и только по полям, заполненным с обеих сторон; иначе null, не ноль
		if base != nil && comp != nil {
			if base.Likelihood != nil && comp.Likelihood != nil {
				d := *base.Likelihood - *comp.Likelihood
				row.DiffLikelihood = &d
			}
			if base.Impact != nil && comp.Impact != nil {
				d := *base.Impact - *comp.Impact
				row.DiffImpact = &d
			}
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Nr < rows[j].Nr })
	return rows, nil
}

// roundEntries — все записи раунда с рисками и активами,
// независимо от состояния раунда.
func roundEntries(db *gorm.DB, roundID string) ([]models.AssessmentEntry, error) {
	var entries []models.AssessmentEntry
	err := db.
		Preload("Risk").
		Preload("Asset").
		Where("round_id = ?", roundID).
		Order("created_at asc, id asc").
		Find(&entries).Error
	return entries, err
}
