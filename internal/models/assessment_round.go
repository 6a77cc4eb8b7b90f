package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoundState string

const (
	RoundOpen     RoundState = "open"
	RoundFinished RoundState = "finished"
)

// Раунд оценки рисков — одна итерация кампании для организации.
// Единственный переход: open -> finished, обратного нет.
// Раунды никогда не удаляются: это постоянная история.
type AssessmentRound struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	OrganizationID string `gorm:"type:uuid;index;not null"`
	Organization   Organization

	Name       string     `gorm:"size:255"` // выставляется оператором при закрытии
	State      RoundState `gorm:"type:varchar(20);not null;default:open"`
	FinishedAt *time.Time

	Entries []AssessmentEntry `gorm:"foreignKey:RoundID"`
}

func (r *AssessmentRound) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.State == "" {
		r.State = RoundOpen
	}
	return nil
}
