package assessment

import (
	"errors"

	"riskmatrix/internal/models"

	"gorm.io/gorm"
)

type RoundOrder string

const (
	NewestFirst RoundOrder = "newest"
	OldestFirst RoundOrder = "oldest"
)

// OpenRound возвращает текущий открытый раунд организации, создавая
// пустой, если его нет. Политика: ровно один открытый раунд на организацию;
// если открытых несколько (старые данные), берём самый старый — он же
// будет закрыт первым при следующем CloseAndRollForward.
func OpenRound(db *gorm.DB, orgID string) (*models.AssessmentRound, error) {
	var round models.AssessmentRound
	err := db.
		Where("organization_id = ? AND state = ?", orgID, models.RoundOpen).
		Order("created_at asc").
		First(&round).Error
	if err == nil {
		return &round, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	round = models.AssessmentRound{
		OrganizationID: orgID,
		State:          models.RoundOpen,
	}
	if err := db.Create(&round).Error; err != nil {
		return nil, err
	}
	return &round, nil
}

// ListRounds — все раунды организации; история нужна обеим сортировкам.
func ListRounds(db *gorm.DB, orgID string, order RoundOrder) ([]models.AssessmentRound, error) {
	dir := "created_at desc"
	if order == OldestFirst {
		dir = "created_at asc"
	}

	var rounds []models.AssessmentRound
	err := db.
		Where("organization_id = ?", orgID).
		Order(dir).
		Find(&rounds).Error
	return rounds, err
}

// GetRound — раунд по id, ErrNotFound если такого нет.
func GetRound(db *gorm.DB, id string) (*models.AssessmentRound, error) {
	var round models.AssessmentRound
	if err := db.First(&round, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &round, nil
}
