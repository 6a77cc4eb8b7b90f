package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Запись оценки: риск, назначенный активу в рамках раунда.
// Идентичность записи между раундами — пара (risk_id, asset_id),
// а не её собственный первичный ключ: у каждого раунда свои строки.
type AssessmentEntry struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	RoundID string          `gorm:"type:uuid;index;not null;uniqueIndex:uq_entry_risk_asset_round"`
	Round   AssessmentRound `gorm:"foreignKey:RoundID"`

	RiskID string `gorm:"type:uuid;index;not null;uniqueIndex:uq_entry_risk_asset_round"`
	Risk   Risk

	AssetID string `gorm:"type:uuid;index;not null;uniqueIndex:uq_entry_risk_asset_round"`
	Asset   Asset

	Impact     *int `gorm:"check:impact IS NULL OR (impact >= 1 AND impact <= 5)"`
	Likelihood *int `gorm:"check:likelihood IS NULL OR (likelihood >= 1 AND likelihood <= 5)"`

	Meta string `gorm:"type:text"`

	// Неизменяемый JSON-снимок состояния записи, пишется один раз при закрытии раунда.
	StateAtFinish *string `gorm:"type:text"`
}

func (e *AssessmentEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Touched — запись тронута оценщиком; такие записи физически не удаляются.
func (e *AssessmentEntry) Touched() bool {
	return e.Impact != nil || e.Likelihood != nil || e.StateAtFinish != nil
}
