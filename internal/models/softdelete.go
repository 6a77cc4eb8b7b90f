package models

import (
	"time"

	"gorm.io/gorm"
)

// Мягкое удаление без неявного скоупа: каждый "живой" запрос
// фильтрует deleted_at явно через Scopes(models.NotDeleted).
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

func now() *time.Time {
	t := time.Now().UTC()
	return &t
}
